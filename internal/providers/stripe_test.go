package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/pratik-mahalle/sitevoice/internal/domain/billing"
)

func newTestStripe(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeGateway("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripeGateway_CreateCustomer(t *testing.T) {
	g := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/customers", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "owner@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "user_1", r.PostForm.Get("metadata[user_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cus_123","object":"customer"}`))
	})

	id, err := g.CreateCustomer(context.Background(), "owner@example.com", "user_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_123", id)
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	g := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "cus_123", r.PostForm.Get("customer"))
		assert.Equal(t, "price_annual", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "user_1", r.PostForm.Get("client_reference_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_1","object":"checkout.session","url":"https://checkout.stripe.com/c/cs_1"}`))
	})

	url, err := g.CreateCheckoutSession(context.Background(), billing.CheckoutParams{
		CustomerID: "cus_123",
		PriceID:    "price_annual",
		UserID:     "user_1",
		SuccessURL: "http://localhost:5173/billing/success",
		CancelURL:  "http://localhost:5173/billing",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", url)
}

func TestStripeGateway_Errors(t *testing.T) {
	g := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such customer"}}`))
	})

	_, err := g.CreatePortalSession(context.Background(), "cus_missing", "http://localhost:5173/settings")
	require.Error(t, err)

	var stripeErr *stripe.Error
	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, "No such customer", stripeErr.Msg)
}
