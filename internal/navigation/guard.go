// Package navigation decides where the app entry point sends a visitor once
// the identity provider has resolved their session.
package navigation

import (
	"context"
	"errors"
)

// State is the guard's view of the session
type State int

const (
	// StateLoading means the session check has not resolved; nothing is rendered.
	StateLoading State = iota
	// StateAuthenticated redirects to the app home.
	StateAuthenticated
	// StateUnauthenticated redirects to sign-in.
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// AuthStatus is one observation of the identity provider's session check
type AuthStatus struct {
	Loaded   bool
	SignedIn bool
}

// ErrUnresolved is returned by Wait when the status stream ends before the
// session check resolves.
var ErrUnresolved = errors.New("auth status stream closed before resolving")

// Guard is the entry-point state machine. It only observes the session check
// and redirects exactly once per mount. A Guard belongs to a single mount and
// is not safe for concurrent use.
type Guard struct {
	homePath   string
	signInPath string

	state      State
	redirected bool
}

// NewGuard creates a mounted guard with the two redirect targets
func NewGuard(homePath, signInPath string) *Guard {
	return &Guard{homePath: homePath, signInPath: signInPath}
}

// Mount resets the guard to loading. Every mount re-evaluates from scratch.
func (g *Guard) Mount() {
	g.state = StateLoading
	g.redirected = false
}

// State returns the current state
func (g *Guard) State() State {
	return g.state
}

// Observe feeds one status observation. It returns the redirect target the
// first time the status is resolved, and ok=false for every other call.
func (g *Guard) Observe(s AuthStatus) (target string, ok bool) {
	if g.redirected || !s.Loaded {
		return "", false
	}

	g.redirected = true
	if s.SignedIn {
		g.state = StateAuthenticated
		return g.homePath, true
	}
	g.state = StateUnauthenticated
	return g.signInPath, true
}

// Wait observes statuses until one resolves and returns its redirect target
func (g *Guard) Wait(ctx context.Context, statuses <-chan AuthStatus) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case s, open := <-statuses:
			if !open {
				return "", ErrUnresolved
			}
			if target, ok := g.Observe(s); ok {
				return target, nil
			}
		}
	}
}
