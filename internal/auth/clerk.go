package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

var errMissingSubject = errors.New("token missing subject claim")

// Session is a verified Clerk session
type Session struct {
	UserID    string
	SessionID string
	Email     string
	ExpiresAt time.Time
}

// Verifier validates session tokens
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

// ClerkVerifier validates Clerk-issued RS256 session JWTs against the
// instance JWKS. keyfunc refreshes the key set in the background and on
// unknown kids, rate limited.
type ClerkVerifier struct {
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

// NewClerkVerifier loads the JWKS of the configured Clerk instance
func NewClerkVerifier(cfg config.AuthConfig, log *logger.Logger) (*ClerkVerifier, error) {
	return newClerkVerifier(cfg, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			if log != nil {
				log.WithError(err).Warn("Failed to refresh Clerk JWKS")
			}
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
}

func newClerkVerifier(cfg config.AuthConfig, options keyfunc.Options) (*ClerkVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("clerk JWKS URL is required")
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	return &ClerkVerifier{
		jwks:     jwks,
		audience: cfg.Audience,
		issuer:   cfg.Issuer,
	}, nil
}

// Verify checks the signature and registered claims of a session token
func (v *ClerkVerifier) Verify(ctx context.Context, token string) (*Session, error) {
	options := []jwt.ParserOption{
		jwt.WithLeeway(5 * time.Second),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		options = append(options, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	t, err := jwt.Parse(token, v.jwks.Keyfunc, options...)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errMissingSubject
	}

	session := &Session{UserID: subject}
	session.SessionID, _ = claims["sid"].(string)
	session.Email, _ = claims["email"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}
	return session, nil
}

// Close stops the background JWKS refresh
func (v *ClerkVerifier) Close() {
	v.jwks.EndBackground()
}
