package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/sitevoice/internal/auth"
	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

type stubVerifier struct {
	tokens map[string]string
}

func (s stubVerifier) Verify(ctx context.Context, token string) (*auth.Session, error) {
	if userID, ok := s.tokens[token]; ok {
		return &auth.Session{UserID: userID}, nil
	}
	return nil, errors.New("invalid token")
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		userID = "anonymous"
	}
	_, _ = w.Write([]byte(userID))
}

func TestAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]string{"good": "user_1"}}
	handler := AuthMiddleware(verifier)(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{name: "bearer token", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "user_1"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusOK, wantBody: "user_1"},
		{name: "session cookie", cookie: "good", wantStatus: http.StatusOK, wantBody: "user_1"},
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic Zm9vOmJhcg==", cookie: "good", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, false, body["success"])
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	verifier := stubVerifier{tokens: map[string]string{"good": "user_1"}}
	handler := OptionalAuthMiddleware(verifier)(http.HandlerFunc(echoUser))

	for token, want := range map[string]string{"": "anonymous", "bad": "anonymous", "good": "user_1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetRequestID(r)))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Len(t, rec.Body.String(), 36)

	var chiID string
	chained := chimw.RequestID(RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chiID = chimw.GetReqID(r.Context())
		_, _ = w.Write([]byte(GetRequestID(r)))
	})))
	rec = httptest.NewRecorder()
	chained.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, chiID)
	assert.Equal(t, chiID, rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, limiter.Len())
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret detail")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestLogger_AddLogField(t *testing.T) {
	var buf strings.Builder
	log := logger.NewWriter(&buf, "info")
	handler := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogField(w, "user_id", "user_1")
		w.WriteHeader(http.StatusAccepted)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/voice/extract", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &entry))
	assert.Equal(t, "user_1", entry["user_id"])
	assert.Equal(t, float64(http.StatusAccepted), entry["status"])
	assert.Equal(t, "/api/voice/extract", entry["path"])
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
		want []string
	}{
		{
			name: "production keeps only configured origins",
			cfg: config.ServerConfig{
				FrontendURL:    "https://app.sitevoice.io/",
				AllowedOrigins: []string{"https://admin.sitevoice.io/path", "not a url"},
				Environment:    "production",
			},
			want: []string{"https://app.sitevoice.io", "https://admin.sitevoice.io"},
		},
		{
			name: "development adds dev servers once",
			cfg: config.ServerConfig{
				FrontendURL: "http://localhost:5173",
				Environment: "development",
			},
			want: []string{"http://localhost:5173", "http://localhost:8081", "http://localhost:8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedOrigins(tt.cfg))
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://app.sitevoice.io"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/voice/extract", nil)
	req.Header.Set("Origin", "https://app.sitevoice.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.sitevoice.io", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/voice/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
