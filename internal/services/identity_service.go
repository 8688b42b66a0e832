package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	"github.com/pratik-mahalle/sitevoice/internal/domain/identity"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/webhook"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

// clerkEvent is the envelope of a Clerk webhook
type clerkEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// clerkUser is the subset of the Clerk user object stored locally
type clerkUser struct {
	ID                    string `json:"id"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	UnsafeMetadata struct {
		BusinessName string `json:"business_name"`
		Trade        string `json:"trade"`
	} `json:"unsafe_metadata"`
}

// primaryEmail returns the primary address, or the only address when no
// primary is flagged.
func (u *clerkUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) == 1 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// IdentityService implements identity.Service for Clerk webhooks delivered by Svix
type IdentityService struct {
	users  user.Service
	events event.Repository
	wh     *svix.Webhook
	logger *logger.Logger
}

// NewIdentityService creates a new identity service. secret is the whsec_
// signing secret of the Clerk endpoint.
func NewIdentityService(users user.Service, events event.Repository, secret string, log *logger.Logger) (identity.Service, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid Clerk webhook secret: %w", err)
	}
	return &IdentityService{
		users:  users,
		events: events,
		wh:     wh,
		logger: log,
	}, nil
}

// HandleWebhook verifies the Svix signature, records the svix-id and applies the event
func (s *IdentityService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (*webhook.Result, error) {
	if err := s.wh.Verify(payload, headers); err != nil {
		return nil, fmt.Errorf("%w: %v", webhook.ErrInvalidSignature, err)
	}

	var evt clerkEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", webhook.ErrInvalidPayload, err)
	}

	msgID := headers.Get("svix-id")
	result := &webhook.Result{EventID: msgID, Type: evt.Type}
	log := s.logger.WithFields(map[string]interface{}{
		"event_id":   msgID,
		"event_type": evt.Type,
	})

	err := s.events.Claim(ctx, &event.ProcessedEvent{EventID: msgID, Source: event.SourceClerk})
	if errors.Is(err, event.ErrAlreadyProcessed) {
		log.Info("Duplicate Clerk event skipped")
		result.Duplicate = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	handled, err := s.apply(ctx, evt)
	if err != nil {
		if relErr := s.events.Release(ctx, msgID); relErr != nil {
			log.ErrorWithErr(relErr, "Failed to release Clerk event")
		}
		log.ErrorWithErr(err, "Failed to apply Clerk event")
		return nil, err
	}

	result.Ignored = !handled
	log.Info("Clerk event processed")
	return result, nil
}

func (s *IdentityService) apply(ctx context.Context, evt clerkEvent) (bool, error) {
	switch evt.Type {
	case identity.EventUserCreated, identity.EventUserUpdated:
		var cu clerkUser
		if err := json.Unmarshal(evt.Data, &cu); err != nil {
			return false, fmt.Errorf("%w: %v", webhook.ErrInvalidPayload, err)
		}
		email := cu.primaryEmail()
		if cu.ID == "" || email == "" {
			return false, fmt.Errorf("%w: user has no id or primary email", webhook.ErrInvalidPayload)
		}

		if evt.Type == identity.EventUserUpdated {
			if _, err := s.users.EnsureProfile(ctx, cu.ID, email); err != nil {
				return false, err
			}
			return true, s.users.ChangeEmail(ctx, cu.ID, email)
		}

		u := &user.User{ID: cu.ID, Email: email}
		if name := cu.UnsafeMetadata.BusinessName; name != "" {
			u.BusinessName = &name
		}
		if trade := user.Trade(cu.UnsafeMetadata.Trade); trade.Valid() {
			u.Trade = &trade
		}
		_, err := s.users.Register(ctx, u)
		return true, err

	case identity.EventUserDeleted:
		var deleted struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(evt.Data, &deleted); err != nil {
			return false, fmt.Errorf("%w: %v", webhook.ErrInvalidPayload, err)
		}
		// Profiles are kept for billing history; the session layer rejects deleted users.
		s.logger.With("user_id", deleted.ID).Info("Clerk user deleted")
		return true, nil
	}
	return false, nil
}
