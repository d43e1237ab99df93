package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/guildledger/internal/domain"
)

func TestOutboxRepositoryCreateInTransaction(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := newOutboxRepository(pool)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ev := &domain.OutboxEvent{
		ID:            "ev-1",
		AggregateID:   "batch-1",
		AggregateType: domain.AggregateTypeBatch,
		EventType:     domain.EventTypeBatchCreated,
		Payload:       map[string]any{"batch_id": "batch-1"},
		CreatedAt:     now,
	}

	pool.ExpectExec(regexp.QuoteMeta(insertOutboxEventSQL)).
		WithArgs("ev-1", "batch-1", "distribution_batch", "distribution.batch.created", []byte(`{"batch_id":"batch-1"}`), now, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), tx, ev))
	require.NoError(t, tx.Commit(context.Background()))
	assertExpectations(t, pool)
}

func TestOutboxRepositoryGetUnpublished(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pool.ExpectQuery(regexp.QuoteMeta(getUnpublishedEventsSQL)).
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "aggregate_id", "aggregate_type", "event_type", "payload", "created_at", "published_at", "published"}).
			AddRow("ev-1", "loot-1", "loot", "loot.distributed", []byte(`{"loot_id":"loot-1","recipients":2}`), now, (*time.Time)(nil), false))

	events, err := repo.GetUnpublished(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "loot-1", events[0].Payload["loot_id"])
	assert.Equal(t, float64(2), events[0].Payload["recipients"])
	assert.Nil(t, events[0].PublishedAt)
}

func TestOutboxRepositoryMarkAndPurge(t *testing.T) {
	pool := newMockPool(t)
	repo := newOutboxRepository(pool)

	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pool.ExpectExec(regexp.QuoteMeta(markEventPublishedSQL)).
		WithArgs("ev-1", now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectExec(regexp.QuoteMeta(deletePublishedEventsSQL)).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	require.NoError(t, repo.MarkPublished(context.Background(), "ev-1", now))
	require.NoError(t, repo.DeletePublished(context.Background(), now))
	assertExpectations(t, pool)
}

func TestNullOutboxRepository(t *testing.T) {
	repo := NewNullOutboxRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, nil, &domain.OutboxEvent{ID: "ev-1"}))
	events, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
