package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	"github.com/pratik-mahalle/sitevoice/internal/repository/postgres"
	"github.com/pratik-mahalle/sitevoice/internal/testutil"
)

func TestEventRepository_ClaimRejectsDuplicateID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewEventRepository(db)
	ctx := context.Background()

	first := &event.ProcessedEvent{EventID: "evt_1", Source: event.SourceStripe}
	require.NoError(t, repo.Claim(ctx, first))

	second := &event.ProcessedEvent{EventID: "evt_1", Source: event.SourceClerk}
	err := repo.Claim(ctx, second)
	assert.ErrorIs(t, err, event.ErrAlreadyProcessed)

	got, err := repo.Get(ctx, "evt_1")
	require.NoError(t, err)
	assert.Equal(t, event.SourceStripe, got.Source, "first claim wins")
}

func TestEventRepository_Release(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewEventRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Claim(ctx, &event.ProcessedEvent{EventID: "evt_1", Source: event.SourceClerk}))
	require.NoError(t, repo.Release(ctx, "evt_1"))

	_, err := repo.Get(ctx, "evt_1")
	assert.ErrorIs(t, err, event.ErrNotFound)

	// A released event can be claimed again.
	require.NoError(t, repo.Claim(ctx, &event.ProcessedEvent{EventID: "evt_1", Source: event.SourceClerk}))

	assert.ErrorIs(t, repo.Release(ctx, "evt_404"), event.ErrNotFound)
}

func TestEventRepository_PruneBefore(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewEventRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	events := []*event.ProcessedEvent{
		{EventID: "evt_old", Source: event.SourceStripe, ProcessedAt: now.Add(-100 * 24 * time.Hour)},
		{EventID: "evt_older", Source: event.SourceClerk, ProcessedAt: now.Add(-200 * 24 * time.Hour)},
		{EventID: "evt_new", Source: event.SourceStripe, ProcessedAt: now.Add(-time.Hour)},
	}
	for _, e := range events {
		require.NoError(t, repo.Claim(ctx, e))
	}

	n, err := repo.PruneBefore(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.Get(ctx, "evt_new")
	assert.NoError(t, err)
	_, err = repo.Get(ctx, "evt_old")
	assert.ErrorIs(t, err, event.ErrNotFound)
}
