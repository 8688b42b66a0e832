package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	apperrors "github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
)

// UserService implements user.Service
type UserService struct {
	repo   user.Repository
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, log *logger.Logger) user.Service {
	return &UserService{
		repo:   repo,
		logger: log,
	}
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByStripeCustomerID retrieves the user linked to a Stripe customer
func (s *UserService) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	return s.repo.GetByStripeCustomerID(ctx, customerID)
}

// EnsureProfile returns the user, creating a free profile on first sight.
// Sessions can reach the API before the Clerk user.created webhook lands.
func (s *UserService) EnsureProfile(ctx context.Context, id, email string) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	created, err := s.Register(ctx, &user.User{ID: id, Email: email})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Register creates the profile of a newly signed-up user. Registering an
// existing id returns the stored profile.
func (s *UserService) Register(ctx context.Context, u *user.User) (*user.User, error) {
	if u.ID == "" {
		return nil, apperrors.BadRequest("User ID is required")
	}
	if u.Trade != nil && !u.Trade.Valid() {
		u.Trade = nil
	}
	u.BusinessName = normalizeName(u.BusinessName)
	u.Plan = user.PlanFree

	err := s.repo.Create(ctx, u)
	if errors.Is(err, user.ErrAlreadyExists) {
		return s.repo.GetByID(ctx, u.ID)
	}
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
	}).Info("User created")

	return u, nil
}

// ChangeEmail updates the contact email of a user
func (s *UserService) ChangeEmail(ctx context.Context, id, email string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Email == email {
		return nil
	}

	u.Email = email
	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update user email")
		return err
	}
	return nil
}

// UpdateProfile applies a profile update. An empty business name clears it.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update user.ProfileUpdate) (*user.User, error) {
	if update.Trade != nil && !update.Trade.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("Unknown trade %q", *update.Trade))
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.BusinessName != nil {
		u.BusinessName = normalizeName(update.BusinessName)
	}
	if update.Trade != nil {
		trade := *update.Trade
		u.Trade = &trade
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
	}).Info("User updated")

	return u, nil
}

// SetPlan changes the subscription plan of a user
func (s *UserService) SetPlan(ctx context.Context, id string, plan user.Plan) error {
	if !plan.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("Unknown plan %q", plan))
	}
	if err := s.repo.SetPlan(ctx, id, plan); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": id,
		"plan":    plan,
	}).Info("User plan changed")
	return nil
}

// LinkStripeCustomer stores the Stripe customer id of a user
func (s *UserService) LinkStripeCustomer(ctx context.Context, id, customerID string) error {
	return s.repo.LinkStripeCustomer(ctx, id, customerID)
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
