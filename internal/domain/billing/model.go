package billing

import (
	"context"
	"errors"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
)

// PlanInfo describes a purchasable plan
type PlanInfo struct {
	ID       user.Plan       `json:"id"`
	Name     string          `json:"name"`
	Interval config.Interval `json:"interval,omitempty"`
	Features []string        `json:"features"`
}

// CheckoutParams are the inputs of a subscription checkout session
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// Gateway is the payment provider
type Gateway interface {
	// CreateCustomer creates a customer and returns its id
	CreateCustomer(ctx context.Context, email, userID string) (string, error)

	// CreateCheckoutSession returns the URL of a hosted checkout page
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)

	// CreatePortalSession returns the URL of the hosted billing portal
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// ErrNoCustomer means the user has never started a checkout.
var ErrNoCustomer = errors.New("user has no billing customer")

// Service defines the interface for billing business logic
type Service interface {
	// Plans lists the purchasable plans
	Plans() []PlanInfo

	// CreateCheckoutSession starts a pro subscription checkout for the user
	CreateCheckoutSession(ctx context.Context, userID string, interval config.Interval) (string, error)

	// CreatePortalSession opens the billing portal for the user
	CreatePortalSession(ctx context.Context, userID string) (string, error)

	// HandleWebhook verifies and applies a Stripe webhook delivery
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*webhook.Result, error)
}
