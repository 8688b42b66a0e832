package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/repository/postgres"
	"github.com/pratik-mahalle/sitevoice/internal/testutil"
)

func TestPruner_RunOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := testutil.NewMockEventRepository()
	ctx := context.Background()

	for id, age := range map[string]time.Duration{
		"evt_old":    100 * 24 * time.Hour,
		"evt_edge":   89 * 24 * time.Hour,
		"evt_recent": time.Hour,
	} {
		require.NoError(t, repo.Claim(ctx, &event.ProcessedEvent{
			EventID:     id,
			Source:      event.SourceStripe,
			ProcessedAt: now.Add(-age),
		}))
	}

	p := NewPruner(repo, "@daily", 90*24*time.Hour, logger.Nop())
	p.now = func() time.Time { return now }

	n, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NotContains(t, repo.Events, "evt_old")
	assert.Contains(t, repo.Events, "evt_edge")
	assert.Contains(t, repo.Events, "evt_recent")
}

func TestPruner_RunOnceDatabase(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewEventRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Claim(ctx, &event.ProcessedEvent{EventID: "evt_1", Source: event.SourceClerk}))

	p := NewPruner(repo, "@daily", time.Hour, logger.Nop())
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	n, err := p.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Get(ctx, "evt_1")
	assert.ErrorIs(t, err, event.ErrNotFound)
}

func TestPruner_StartStop(t *testing.T) {
	t.Run("schedules next run", func(t *testing.T) {
		p := NewPruner(testutil.NewMockEventRepository(), "@hourly", time.Hour, logger.Nop())
		require.NoError(t, p.Start(context.Background()))
		defer p.Stop()

		assert.True(t, p.NextRun().After(time.Now()))
		assert.Error(t, p.Start(context.Background()))
	})

	t.Run("empty schedule disables", func(t *testing.T) {
		p := NewPruner(testutil.NewMockEventRepository(), "", time.Hour, logger.Nop())
		require.NoError(t, p.Start(context.Background()))
		assert.True(t, p.NextRun().IsZero())
		p.Stop()
	})

	t.Run("invalid schedule", func(t *testing.T) {
		p := NewPruner(testutil.NewMockEventRepository(), "every tuesday", time.Hour, logger.Nop())
		assert.Error(t, p.Start(context.Background()))
	})
}
