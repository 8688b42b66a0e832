package identity

import (
	"context"
	"net/http"

	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
)

// Clerk event types handled by the identity service
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Service defines the interface for identity provider webhooks
type Service interface {
	// HandleWebhook verifies and applies a Clerk webhook delivery
	HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (*webhook.Result, error)
}
