package client

import "context"

// BillingService manages the subscription of the signed-in user
type BillingService struct {
	client *Client
}

// Plans lists the subscription plans
func (s *BillingService) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := s.client.doRequest(ctx, "GET", "/api/billing/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Checkout starts a pro checkout and returns the hosted checkout URL.
// interval is monthly or annual.
func (s *BillingService) Checkout(ctx context.Context, interval string) (string, error) {
	var out sessionURL
	body := map[string]string{"interval": interval}
	if err := s.client.doRequest(ctx, "POST", "/api/billing/checkout", body, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Portal returns the URL of the billing portal
func (s *BillingService) Portal(ctx context.Context) (string, error) {
	var out sessionURL
	if err := s.client.doRequest(ctx, "POST", "/api/billing/portal", nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
