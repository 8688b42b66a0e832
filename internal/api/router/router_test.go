package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/sitevoice/internal/api/handlers"
	"github.com/pratik-mahalle/sitevoice/internal/api/middleware"
	"github.com/pratik-mahalle/sitevoice/internal/auth"
	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/validator"
	"github.com/pratik-mahalle/sitevoice/internal/services"
	"github.com/pratik-mahalle/sitevoice/internal/testutil"
)

func walk(t *testing.T, r chi.Routes) []string {
	t.Helper()
	var routes []string
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(routes)
	return routes
}

func TestRegisterVoiceRoutes(t *testing.T) {
	var calls []string
	r := chi.NewRouter()
	RegisterVoiceRoutes(r, VoiceRoutes{
		Extract: func(w http.ResponseWriter, r *http.Request) { calls = append(calls, "extract") },
		Health:  func(w http.ResponseWriter, r *http.Request) { calls = append(calls, "health") },
	})

	assert.Equal(t, []string{"GET /voice/health", "POST /voice/extract"}, walk(t, r))

	tests := []struct {
		method string
		path   string
		want   []string
		status int
	}{
		{method: http.MethodPost, path: "/voice/extract", want: []string{"extract"}, status: http.StatusOK},
		{method: http.MethodGet, path: "/voice/health", want: []string{"health"}, status: http.StatusOK},
		{method: http.MethodGet, path: "/voice/extract", status: http.StatusMethodNotAllowed},
		{method: http.MethodPost, path: "/voice/health", status: http.StatusMethodNotAllowed},
		{method: http.MethodGet, path: "/voice", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			calls = nil
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.want, calls)
		})
	}
}

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, token string) (*auth.Session, error) {
	if token == "good" {
		return &auth.Session{UserID: "user_1", Email: "user_1@example.com"}, nil
	}
	return nil, errors.New("invalid token")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newLimitedTestRouter(t, middleware.NewRateLimiter(1000, 1000))
}

func newLimitedTestRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	log := logger.Nop()
	val := validator.New()
	cfg := &config.Config{
		Server:     config.ServerConfig{FrontendURL: "http://localhost:5173"},
		Navigation: config.NavigationConfig{HomePath: "/home", SignInPath: "/sign-in"},
	}

	users := services.NewUserService(testutil.NewMockUserRepository(), log)
	events := testutil.NewMockEventRepository()
	billingSvc := services.NewBillingService(users, events, testutil.NewMockBillingGateway(), config.BillingConfig{
		PriceMonthly: "price_m",
		PriceAnnual:  "price_a",
	}, log)
	identitySvc, err := services.NewIdentityService(users, events, "whsec_dGVzdHNlY3JldA==", log)
	require.NoError(t, err)
	voiceSvc := services.NewVoiceService(&testutil.MockVoiceBackend{}, nil, val, 0, log)

	return New(cfg, log, stubVerifier{}, limiter, &Handlers{
		Health:   handlers.NewHealthHandler(testutil.NewTestDB(t), log),
		Entry:    handlers.NewEntryHandler(cfg.Navigation),
		Voice:    handlers.NewVoiceHandler(voiceSvc, log, val, 1<<20),
		Profile:  handlers.NewProfileHandler(users, log, val),
		Billing:  handlers.NewBillingHandler(billingSvc, users, log, val),
		Identity: handlers.NewIdentityHandler(identitySvc, log),
	})
}

func TestNew_VoiceRoutesMountedUnderAPI(t *testing.T) {
	routes := walk(t, newTestRouter(t).(chi.Routes))

	assert.Contains(t, routes, "POST /api/voice/extract")
	assert.Contains(t, routes, "GET /api/voice/health")
	assert.NotContains(t, routes, "POST /voice/extract")
	assert.NotContains(t, routes, "GET /voice/health")
}

func TestNew_Access(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{name: "voice health is public", method: http.MethodGet, path: "/api/voice/health", status: http.StatusOK},
		{name: "extract needs a session", method: http.MethodPost, path: "/api/voice/extract", status: http.StatusUnauthorized},
		{name: "profile needs a session", method: http.MethodGet, path: "/api/me", status: http.StatusUnauthorized},
		{name: "profile with session", method: http.MethodGet, path: "/api/me", token: "good", status: http.StatusOK},
		{name: "plans with session", method: http.MethodGet, path: "/api/billing/plans", token: "good", status: http.StatusOK},
		{name: "webhook without signature", method: http.MethodPost, path: "/api/webhooks/clerk", status: http.StatusBadRequest},
		{name: "liveness", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "entry redirects", method: http.MethodGet, path: "/", status: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestNew_EntryRedirectTargets(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "/sign-in", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
}

func TestNew_RateLimitKeys(t *testing.T) {
	// httptest requests come from 192.0.2.1
	const ipKey = "ip:192.0.2.1"

	t.Run("signed-in requests are keyed by user", func(t *testing.T) {
		limiter := middleware.NewRateLimiter(0.0001, 1)
		r := newLimitedTestRouter(t, limiter)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.False(t, limiter.Allow("user:user_1"))
		assert.True(t, limiter.Allow(ipKey))
	})

	t.Run("public requests are keyed by ip", func(t *testing.T) {
		limiter := middleware.NewRateLimiter(0.0001, 1)
		r := newLimitedTestRouter(t, limiter)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/voice/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/voice/health", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("one user does not exhaust another", func(t *testing.T) {
		limiter := middleware.NewRateLimiter(0.0001, 1)
		r := newLimitedTestRouter(t, limiter)
		require.True(t, limiter.Allow(ipKey))

		req := httptest.NewRequest(http.MethodGet, "/api/billing/plans", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
