// Package devproxy forwards the frontend dev server's /api calls to the
// locally running backend.
package devproxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/utils"
)

const (
	// DefaultTarget is the backend the proxy forwards to
	DefaultTarget = "http://localhost:3001"

	// Prefix is the only path forwarded
	Prefix = "/api"
)

// Proxy forwards Prefix requests to the backend and answers 404 for the rest
type Proxy struct {
	target *url.URL
	rp     *httputil.ReverseProxy
	logger *logger.Logger
}

// New creates a proxy to target. An empty target uses DefaultTarget.
func New(target string, log *logger.Logger) (*Proxy, error) {
	if target == "" {
		target = DefaultTarget
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy target %q: need an http(s) URL with a host", target)
	}

	p := &Proxy{target: u, logger: log}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
			// the backend sees its own host, as with a changeOrigin proxy
			pr.Out.Host = u.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.logger.WithFields(map[string]interface{}{
				"path":   r.URL.Path,
				"target": u.String(),
			}).ErrorWithErr(err, "Backend unreachable")
			utils.WriteError(w, errors.Wrap(err, errors.ErrCodeServiceUnavailable,
				"Backend unreachable", http.StatusBadGateway))
		},
	}
	return p, nil
}

// Target returns the backend URL
func (p *Proxy) Target() string {
	return p.target.String()
}

// ServeHTTP implements http.Handler
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !forwarded(r.URL.Path) {
		http.NotFound(w, r)
		return
	}
	p.rp.ServeHTTP(w, r)
}

func forwarded(path string) bool {
	return path == Prefix || strings.HasPrefix(path, Prefix+"/")
}
