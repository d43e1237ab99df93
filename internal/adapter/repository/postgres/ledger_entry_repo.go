package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/guildledger/internal/domain"
)

const insertLedgerEntrySQL = `
	INSERT INTO ledger_entries (
		id, guild_id, member_id, type, category, status, amount,
		reference_id, description, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)`

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	db querier
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return newLedgerEntryRepository(pool)
}

func newLedgerEntryRepository(db querier) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: db}
}

// CreateExpense writes one expense entry in its own implicit transaction.
func (r *LedgerEntryRepository) CreateExpense(ctx context.Context, entry *domain.LedgerEntry) error {
	_, err := r.db.Exec(ctx, insertLedgerEntrySQL,
		entry.ID,
		entry.GuildID,
		entry.MemberID,
		string(domain.LedgerEntryExpense),
		entry.Category,
		entry.Status,
		entry.Amount.String(),
		entry.ReferenceID,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
