package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/pratik-mahalle/sitevoice/internal/domain/identity"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/testutil"
)

var testClerkSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("clerk-test-signing-secret-32byte"))

func signedClerkRequest(t *testing.T, msgID string, payload []byte) http.Header {
	t.Helper()
	wh, err := svix.NewWebhook(testClerkSecret)
	require.NoError(t, err)

	ts := time.Now()
	sig, err := wh.Sign(msgID, ts, payload)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("svix-id", msgID)
	h.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	h.Set("svix-signature", sig)
	return h
}

func newIdentityFixture(t *testing.T) (identity.Service, *testutil.MockUserRepository, *testutil.MockEventRepository) {
	t.Helper()
	users := testutil.NewMockUserRepository()
	events := testutil.NewMockEventRepository()
	svc, err := NewIdentityService(NewUserService(users, logger.Nop()), events, testClerkSecret, logger.Nop())
	require.NoError(t, err)
	return svc, users, events
}

const clerkUserCreated = `{
	"type": "user.created",
	"object": "event",
	"data": {
		"id": "user_abc",
		"primary_email_address_id": "idn_2",
		"email_addresses": [
			{"id": "idn_1", "email_address": "old@example.com"},
			{"id": "idn_2", "email_address": "owner@example.com"}
		],
		"unsafe_metadata": {"business_name": "Acme Roofing", "trade": "roofing"}
	}
}`

func TestIdentityService_UserCreated(t *testing.T) {
	svc, users, _ := newIdentityFixture(t)
	ctx := context.Background()
	payload := []byte(clerkUserCreated)

	result, err := svc.HandleWebhook(ctx, payload, signedClerkRequest(t, "msg_1", payload))
	require.NoError(t, err)
	assert.Equal(t, "msg_1", result.EventID)
	assert.Equal(t, identity.EventUserCreated, result.Type)

	u := users.Users["user_abc"]
	require.NotNil(t, u)
	assert.Equal(t, "owner@example.com", u.Email)
	assert.Equal(t, "Acme Roofing", *u.BusinessName)
	assert.Equal(t, user.TradeRoofing, *u.Trade)
	assert.Equal(t, user.PlanFree, u.Plan)

	result, err = svc.HandleWebhook(ctx, payload, signedClerkRequest(t, "msg_1", payload))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
}

func TestIdentityService_UserUpdated(t *testing.T) {
	svc, users, _ := newIdentityFixture(t)
	ctx := context.Background()

	created := []byte(clerkUserCreated)
	_, err := svc.HandleWebhook(ctx, created, signedClerkRequest(t, "msg_1", created))
	require.NoError(t, err)

	updated := []byte(`{"type":"user.updated","data":{"id":"user_abc","primary_email_address_id":"idn_3","email_addresses":[{"id":"idn_3","email_address":"new@example.com"}]}}`)
	_, err = svc.HandleWebhook(ctx, updated, signedClerkRequest(t, "msg_2", updated))
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", users.Users["user_abc"].Email)
	assert.Equal(t, "Acme Roofing", *users.Users["user_abc"].BusinessName)
}

func TestIdentityService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		tamper  bool
		wantErr error
	}{
		{
			name:    "bad signature",
			payload: clerkUserCreated,
			tamper:  true,
			wantErr: webhook.ErrInvalidSignature,
		},
		{
			name:    "no primary email",
			payload: `{"type":"user.created","data":{"id":"user_x","email_addresses":[]}}`,
			wantErr: webhook.ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, events := newIdentityFixture(t)
			payload := []byte(tt.payload)
			headers := signedClerkRequest(t, "msg_1", payload)
			if tt.tamper {
				payload = append(payload, ' ')
			}

			_, err := svc.HandleWebhook(context.Background(), payload, headers)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, users.Users)
			assert.Empty(t, events.Events)
		})
	}
}

func TestIdentityService_IgnoresOtherEvents(t *testing.T) {
	svc, _, _ := newIdentityFixture(t)
	payload := []byte(`{"type":"session.created","data":{"id":"sess_1"}}`)

	result, err := svc.HandleWebhook(context.Background(), payload, signedClerkRequest(t, "msg_9", payload))
	require.NoError(t, err)
	assert.True(t, result.Ignored)
}

func TestNewIdentityService_InvalidSecret(t *testing.T) {
	_, err := NewIdentityService(nil, nil, "whsec_%%%not-base64", logger.Nop())
	assert.Error(t, err)
}
