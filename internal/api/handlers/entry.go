package handlers

import (
	"net/http"

	"github.com/pratik-mahalle/sitevoice/internal/api/middleware"
	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/navigation"
)

// EntryHandler sends visitors of the app root to home or sign-in
type EntryHandler struct {
	nav config.NavigationConfig
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(nav config.NavigationConfig) *EntryHandler {
	return &EntryHandler{nav: nav}
}

// Redirect runs the navigation guard for one mount of the entry point.
// The session check has already resolved in the optional auth middleware.
func (h *EntryHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	guard := navigation.NewGuard(h.nav.HomePath, h.nav.SignInPath)
	_, signedIn := middleware.GetSession(r)

	target, ok := guard.Observe(navigation.AuthStatus{Loaded: true, SignedIn: signedIn})
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}
