package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	apperrors "github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
)

const userColumns = `id, email, business_name, trade, plan, stripe_customer_id, created_at, updated_at`

// UserRepository implements user.Repository
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) user.Repository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	ts := now()
	u.CreatedAt = ts
	u.UpdatedAt = ts
	if u.Plan == "" {
		u.Plan = user.PlanFree
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :business_name, :trade, :plan, :stripe_customer_id, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		if isUniqueViolation(err) {
			return user.ErrAlreadyExists
		}
		return apperrors.DatabaseError("Failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByStripeCustomerID retrieves the user linked to a Stripe customer
func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE stripe_customer_id = ?`, customerID)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to get user", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// Update writes the email, business name and trade of a user
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = now()

	query := `
		UPDATE users
		SET email = :email, business_name = :business_name, trade = :trade, updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return apperrors.DatabaseError("Failed to update user", err)
	}
	return expectOneRow(result, user.ErrNotFound)
}

// SetPlan changes the subscription plan of a user
func (r *UserRepository) SetPlan(ctx context.Context, id string, plan user.Plan) error {
	query := r.db.Rebind(`UPDATE users SET plan = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, plan, now(), id)
	if err != nil {
		return apperrors.DatabaseError("Failed to update plan", err)
	}
	return expectOneRow(result, user.ErrNotFound)
}

// LinkStripeCustomer stores the Stripe customer id of a user
func (r *UserRepository) LinkStripeCustomer(ctx context.Context, id, customerID string) error {
	query := r.db.Rebind(`UPDATE users SET stripe_customer_id = ?, updated_at = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, customerID, now(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrCustomerTaken
		}
		return apperrors.DatabaseError("Failed to link billing customer", err)
	}
	return expectOneRow(result, user.ErrNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
