package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"

	"github.com/pratik-mahalle/sitevoice/internal/config"
)

// devOrigins are the Vite web app, the Expo web build of the mobile app and
// the CLI dev proxy.
var devOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8081",
	"http://localhost:8080",
}

// CORS returns a CORS middleware with the given allowed origins. Webhook
// routes are called server to server and are unaffected.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// AllowedOrigins lists the origins a server configuration accepts: the
// frontend, any configured extras, and the local dev servers outside
// production. Duplicates are dropped.
func AllowedOrigins(cfg config.ServerConfig) []string {
	origins := []string{}
	seen := map[string]bool{}
	add := func(origin string) {
		origin = normalizeOrigin(origin)
		if origin != "" && !seen[origin] {
			seen[origin] = true
			origins = append(origins, origin)
		}
	}

	add(cfg.FrontendURL)
	for _, o := range cfg.AllowedOrigins {
		add(o)
	}
	if cfg.Environment != "production" {
		for _, o := range devOrigins {
			add(o)
		}
	}
	return origins
}

// normalizeOrigin reduces a URL to scheme://host[:port]
func normalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "*" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
