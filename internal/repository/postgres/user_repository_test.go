package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/repository/postgres"
	"github.com/pratik-mahalle/sitevoice/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *user.User
		wantErr error
	}{
		{
			name: "create user successfully",
			user: &user.User{ID: "user_1", Email: "one@example.com"},
		},
		{
			name: "create user with profile",
			user: &user.User{
				ID:           "user_2",
				Email:        "two@example.com",
				BusinessName: testutil.StrPtr("Acme Plumbing"),
				Plan:         user.PlanPro,
			},
		},
		{
			name:    "duplicate id",
			user:    &user.User{ID: "user_1", Email: "again@example.com"},
			wantErr: user.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.False(t, tt.user.CreatedAt.IsZero())
		})
	}

	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, user.PlanFree, got.Plan)
	assert.Equal(t, "one@example.com", got.Email)
	assert.Nil(t, got.BusinessName)
	assert.Nil(t, got.Trade)
}

func TestUserRepository_GetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	trade := user.TradeElectrical
	require.NoError(t, repo.Create(ctx, &user.User{
		ID:           "user_1",
		Email:        "sparky@example.com",
		BusinessName: testutil.StrPtr("Sparky LLC"),
		Trade:        &trade,
	}))

	tests := []struct {
		name    string
		userID  string
		wantErr error
	}{
		{name: "existing user", userID: "user_1"},
		{name: "missing user", userID: "user_404", wantErr: user.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByID(ctx, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got.Trade)
			assert.Equal(t, user.TradeElectrical, *got.Trade)
			assert.Equal(t, "Sparky LLC", *got.BusinessName)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{ID: "user_1", Email: "old@example.com"}
	require.NoError(t, repo.Create(ctx, u))

	trade := user.TradeRoofing
	u.Email = "new@example.com"
	u.Trade = &trade
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, user.TradeRoofing, *got.Trade)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	err = repo.Update(ctx, &user.User{ID: "user_404", Email: "x@example.com"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepository_SetPlan(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &user.User{ID: "user_1", Email: "a@example.com"}))

	require.NoError(t, repo.SetPlan(ctx, "user_1", user.PlanPro))
	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, user.PlanPro, got.Plan)

	assert.ErrorIs(t, repo.SetPlan(ctx, "user_404", user.PlanPro), user.ErrNotFound)
	assert.Error(t, repo.SetPlan(ctx, "user_1", user.Plan("enterprise")), "plan check constraint")
}

func TestUserRepository_LinkStripeCustomer(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &user.User{ID: "user_1", Email: "a@example.com"}))
	require.NoError(t, repo.Create(ctx, &user.User{ID: "user_2", Email: "b@example.com"}))

	require.NoError(t, repo.LinkStripeCustomer(ctx, "user_1", "cus_123"))

	got, err := repo.GetByStripeCustomerID(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.ID)

	err = repo.LinkStripeCustomer(ctx, "user_2", "cus_123")
	assert.ErrorIs(t, err, user.ErrCustomerTaken)

	_, err = repo.GetByStripeCustomerID(ctx, "cus_999")
	assert.ErrorIs(t, err, user.ErrNotFound)
}
