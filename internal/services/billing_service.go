package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	stripewebhook "github.com/stripe/stripe-go/v76/webhook"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/domain/billing"
	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
	apperrors "github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

// Stripe event types applied to user plans
const (
	stripeCheckoutCompleted   = "checkout.session.completed"
	stripeSubscriptionCreated = "customer.subscription.created"
	stripeSubscriptionUpdated = "customer.subscription.updated"
	stripeSubscriptionDeleted = "customer.subscription.deleted"
	stripeInvoicePaymentFail  = "invoice.payment_failed"
)

// BillingService implements billing.Service
type BillingService struct {
	users   user.Service
	events  event.Repository
	gateway billing.Gateway
	cfg     config.BillingConfig
	logger  *logger.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	users user.Service,
	events event.Repository,
	gateway billing.Gateway,
	cfg config.BillingConfig,
	log *logger.Logger,
) billing.Service {
	return &BillingService{
		users:   users,
		events:  events,
		gateway: gateway,
		cfg:     cfg,
		logger:  log,
	}
}

// Plans lists the purchasable plans
func (s *BillingService) Plans() []billing.PlanInfo {
	proFeatures := []string{"Unlimited voice extractions", "Audio archive", "Priority support"}
	return []billing.PlanInfo{
		{ID: user.PlanFree, Name: "Free", Features: []string{"10 voice extractions per month"}},
		{ID: user.PlanPro, Name: "Pro Monthly", Interval: config.IntervalMonthly, Features: proFeatures},
		{ID: user.PlanPro, Name: "Pro Annual", Interval: config.IntervalAnnual, Features: proFeatures},
	}
}

// CreateCheckoutSession starts a pro subscription checkout for the user
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID string, interval config.Interval) (string, error) {
	priceID, err := s.cfg.PriceID(interval)
	if errors.Is(err, config.ErrUnknownInterval) {
		return "", apperrors.BadRequest(fmt.Sprintf("Unknown billing interval %q", interval))
	}
	if err != nil {
		return "", apperrors.Internal("Billing is misconfigured", err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	customerID, err := s.ensureCustomer(ctx, u)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		UserID:     u.ID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return "", apperrors.ProviderAPIError("Stripe", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"interval": interval,
	}).Info("Checkout session created")

	return url, nil
}

// CreatePortalSession opens the billing portal for the user
func (s *BillingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.StripeCustomerID == nil {
		return "", billing.ErrNoCustomer
	}

	url, err := s.gateway.CreatePortalSession(ctx, *u.StripeCustomerID, s.cfg.PortalReturnURL)
	if err != nil {
		return "", apperrors.ProviderAPIError("Stripe", err)
	}
	return url, nil
}

func (s *BillingService) ensureCustomer(ctx context.Context, u *user.User) (string, error) {
	if u.StripeCustomerID != nil {
		return *u.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, u.Email, u.ID)
	if err != nil {
		return "", apperrors.ProviderAPIError("Stripe", err)
	}
	if err := s.users.LinkStripeCustomer(ctx, u.ID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// HandleWebhook verifies the delivery, records its event id and applies it.
// A failed apply releases the record so that Stripe's retry is processed.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*webhook.Result, error) {
	ev, err := stripewebhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", webhook.ErrInvalidSignature, err)
	}

	result := &webhook.Result{EventID: ev.ID, Type: string(ev.Type)}
	log := s.logger.WithFields(map[string]interface{}{
		"event_id":   ev.ID,
		"event_type": ev.Type,
	})

	err = s.events.Claim(ctx, &event.ProcessedEvent{EventID: ev.ID, Source: event.SourceStripe})
	if errors.Is(err, event.ErrAlreadyProcessed) {
		log.Info("Duplicate Stripe event skipped")
		result.Duplicate = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	handled, err := s.apply(ctx, ev)
	if err != nil {
		if relErr := s.events.Release(ctx, ev.ID); relErr != nil {
			log.ErrorWithErr(relErr, "Failed to release Stripe event")
		}
		log.ErrorWithErr(err, "Failed to apply Stripe event")
		return nil, err
	}

	result.Ignored = !handled
	log.Info("Stripe event processed")
	return result, nil
}

func (s *BillingService) apply(ctx context.Context, ev stripe.Event) (bool, error) {
	switch string(ev.Type) {
	case stripeCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return false, fmt.Errorf("%w: %v", webhook.ErrInvalidPayload, err)
		}
		return true, s.applyCheckout(ctx, &cs)

	case stripeSubscriptionCreated, stripeSubscriptionUpdated, stripeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return false, fmt.Errorf("%w: %v", webhook.ErrInvalidPayload, err)
		}
		plan := planForStatus(sub.Status)
		if string(ev.Type) == stripeSubscriptionDeleted {
			plan = user.PlanFree
		}
		return true, s.applySubscription(ctx, &sub, plan)

	case stripeInvoicePaymentFail:
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return false, fmt.Errorf("%w: %v", webhook.ErrInvalidPayload, err)
		}
		fields := map[string]interface{}{"invoice_id": inv.ID}
		if inv.Customer != nil {
			fields["customer_id"] = inv.Customer.ID
		}
		s.logger.WithFields(fields).Warn("Invoice payment failed")
		return true, nil
	}
	return false, nil
}

func (s *BillingService) applyCheckout(ctx context.Context, cs *stripe.CheckoutSession) error {
	userID := cs.ClientReferenceID
	if userID == "" {
		userID = cs.Metadata["user_id"]
	}
	if userID == "" {
		return fmt.Errorf("%w: checkout session %s has no user reference", webhook.ErrInvalidPayload, cs.ID)
	}

	if cs.Customer != nil && cs.Customer.ID != "" {
		err := s.users.LinkStripeCustomer(ctx, userID, cs.Customer.ID)
		if err != nil && !errors.Is(err, user.ErrCustomerTaken) {
			return err
		}
	}
	return s.users.SetPlan(ctx, userID, user.PlanPro)
}

func (s *BillingService) applySubscription(ctx context.Context, sub *stripe.Subscription, plan user.Plan) error {
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("%w: subscription %s has no customer", webhook.ErrInvalidPayload, sub.ID)
	}

	u, err := s.users.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if errors.Is(err, user.ErrNotFound) && sub.Metadata["user_id"] != "" {
		userID := sub.Metadata["user_id"]
		if err := s.users.LinkStripeCustomer(ctx, userID, sub.Customer.ID); err != nil {
			return err
		}
		return s.users.SetPlan(ctx, userID, plan)
	}
	if err != nil {
		return err
	}
	return s.users.SetPlan(ctx, u.ID, plan)
}

// planForStatus maps a subscription status to the plan it grants.
// past_due keeps pro while Stripe retries the payment.
func planForStatus(status stripe.SubscriptionStatus) user.Plan {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return user.PlanPro
	default:
		return user.PlanFree
	}
}
