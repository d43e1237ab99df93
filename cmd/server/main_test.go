package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iho/guildledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/guildledger/internal/adapter/repository/postgres"
)

func TestNewOutboxRepository(t *testing.T) {
	assert.IsType(t, &postgresRepo.NullOutboxRepository{}, newOutboxRepository(false, nil))
	assert.IsType(t, &postgresRepo.OutboxRepository{}, newOutboxRepository(true, nil))
}

func TestCleanupLimitersStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		cleanupLimiters(ctx, middleware.NewRateLimiter(1, 1, nil), time.Millisecond, time.Minute)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop after cancellation")
	}
}
