package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
)

// BalanceRepository computes the aggregates the balance is derived from.
type BalanceRepository interface {
	// LockSource serializes writers for one guild and source until tx ends.
	LockSource(ctx context.Context, tx Transaction, guildID string, source domain.DistributionSource) error
	SumConfirmedIncome(ctx context.Context, tx Transaction, guildID string) (decimal.Decimal, error)
	SumLootValue(ctx context.Context, tx Transaction, guildID string, includeDistributed bool) (decimal.Decimal, error)
	SumDisbursed(ctx context.Context, tx Transaction, guildID string, source domain.DistributionSource) (decimal.Decimal, error)
}

// MemberRepository resolves recipients against the guild roster.
type MemberRepository interface {
	FetchMembers(ctx context.Context, tx Transaction, guildID string, ids []string) ([]*domain.Member, error)
}

// DistributionRepository defines data access for distribution batches.
type DistributionRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, batch *domain.DistributionBatch, items []*domain.DistributionItem) error
	List(ctx context.Context, guildID string, filter domain.BatchFilter) ([]*domain.DistributionBatch, int64, error)
	GetByID(ctx context.Context, id string) (*domain.DistributionBatch, error)
	GetItems(ctx context.Context, batchID string) ([]*domain.DistributionItem, error)
}

// LootRepository defines data access for loot records and their shares.
type LootRepository interface {
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LootRecord, error)
	GetByID(ctx context.Context, id string) (*domain.LootRecord, error)
	ReplaceItems(ctx context.Context, tx Transaction, lootID string, items []*domain.LootDistributionItem) error
	// MarkDistributed flips distributed only while it is still false and
	// returns domain.ErrLootAlreadyDistributed otherwise.
	MarkDistributed(ctx context.Context, tx Transaction, id string, at time.Time) error
	GetItems(ctx context.Context, lootID string) ([]*domain.LootDistributionItem, error)
}

// LedgerEntryRepository writes companion ledger entries.
type LedgerEntryRepository interface {
	CreateExpense(ctx context.Context, entry *domain.LedgerEntry) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository appends audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
	BeginSerializable(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient serialization failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ReferenceGenerator produces human-readable batch reference codes.
type ReferenceGenerator interface {
	Generate(at time.Time) string
}

// BatchCache stores immutable batch details.
type BatchCache interface {
	GetBatch(ctx context.Context, batchID string) (*domain.BatchDetail, error)
	SetBatch(ctx context.Context, detail *domain.BatchDetail) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed.
	Release(ctx context.Context, key string) error
}
