package middleware

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "requestID"
	// RequestIDHeader is the HTTP header for request ID
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestID stores a request ID in the context and echoes it in the
// response. Order of preference: a short enough client header, the id chi's
// RequestID middleware assigned, a new UUID.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = chimw.GetReqID(r.Context())
			}
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID)))
		})
	}
}

// GetRequestID extracts the request ID from the request context
func GetRequestID(r *http.Request) string {
	requestID, _ := r.Context().Value(RequestIDKey).(string)
	return requestID
}
