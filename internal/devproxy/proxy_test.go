package devproxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

func TestProxy_ForwardsAPIOnly(t *testing.T) {
	var gotPath, gotHost string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotHost = r.URL.Path, r.Host
		_, _ = w.Write([]byte("backend"))
	}))
	defer backend.Close()

	p, err := New(backend.URL, logger.Nop())
	require.NoError(t, err)

	tests := []struct {
		path       string
		wantStatus int
		wantPath   string
	}{
		{path: "/api/voice/health?probe=1", wantStatus: http.StatusOK, wantPath: "/api/voice/health"},
		{path: "/api", wantStatus: http.StatusOK, wantPath: "/api"},
		{path: "/apikeys", wantStatus: http.StatusNotFound},
		{path: "/sign-in", wantStatus: http.StatusNotFound},
		{path: "/", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			gotPath = ""
			req := httptest.NewRequest(http.MethodGet, "http://localhost:5173"+tt.path, nil)
			rec := httptest.NewRecorder()

			p.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantPath, gotPath)
			if tt.wantStatus == http.StatusOK {
				body, _ := io.ReadAll(rec.Body)
				assert.Equal(t, "backend", string(body))
				assert.Equal(t, backend.Listener.Addr().String(), gotHost)
			}
		})
	}
}

func TestProxy_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	p, err := New(url, logger.Nop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/voice/health", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backend unreachable")
}

func TestNew(t *testing.T) {
	p, err := New("", logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultTarget, p.Target())

	_, err = New("localhost:3001", logger.Nop())
	assert.Error(t, err)

	_, err = New("ftp://localhost", logger.Nop())
	assert.Error(t, err)
}
