package providers

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/pratik-mahalle/sitevoice/internal/domain/billing"
)

// StripeGateway implements billing.Gateway on the Stripe API
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway. Nil backends use the live Stripe API.
func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api}
}

// CreateCustomer creates a customer tagged with the user id
func (g *StripeGateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return c.ID, nil
}

// CreateCheckoutSession creates a subscription checkout for one seat of the price
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p billing.CheckoutParams) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(p.CustomerID),
		ClientReferenceID: stripe.String(p.UserID),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": p.UserID},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", p.UserID)

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

// CreatePortalSession opens the customer billing portal
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return s.URL, nil
}

var _ billing.Gateway = (*StripeGateway)(nil)
