package middleware

import (
	"net/http"
	"time"

	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
	fields     map[string]interface{}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// AddLogField adds a field to the request log
func AddLogField(w http.ResponseWriter, key string, value interface{}) {
	for {
		switch rw := w.(type) {
		case *responseWriter:
			rw.fields[key] = value
			return
		case interface{ Unwrap() http.ResponseWriter }:
			w = rw.Unwrap()
		default:
			return
		}
	}
}

// Logger returns a middleware that logs HTTP requests. Server errors are
// logged at error level and client errors at warn level.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				fields:         make(map[string]interface{}),
			}

			next.ServeHTTP(wrapped, r)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      wrapped.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       wrapped.written,
				"ip":          r.RemoteAddr,
				"user_agent":  r.UserAgent(),
				"request_id":  GetRequestID(r),
			}

			// Merge custom fields
			for k, v := range wrapped.fields {
				fields[k] = v
			}

			entry := log.WithFields(fields)
			switch {
			case wrapped.statusCode >= 500:
				entry.Error("HTTP request")
			case wrapped.statusCode >= 400:
				entry.Warn("HTTP request")
			default:
				entry.Info("HTTP request")
			}
		})
	}
}
