package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

const (
	// The lock serializes writers per source but does not refresh the
	// transaction snapshot; see DistributionUseCase.CreateBatch.
	lockSourceSQL = `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`

	sumConfirmedIncomeSQL = `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM ledger_entries
		WHERE guild_id = $1 AND type = 'INCOME' AND status = 'CONFIRMED'`

	sumLootValueSQL = `
		SELECT COALESCE(SUM(estimated_value), 0)::text
		FROM loot_records
		WHERE guild_id = $1 AND ($2 OR distributed = FALSE)`

	sumDisbursedSQL = `
		SELECT COALESCE(SUM(total_amount), 0)::text
		FROM distribution_batches
		WHERE guild_id = $1 AND source = $2`
)

// BalanceRepository implements usecase.BalanceRepository.
// Every query runs inside the caller's transaction.
type BalanceRepository struct{}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{}
}

// LockSource takes a transaction-scoped advisory lock keyed on guild and
// source. It is released automatically on commit or rollback.
func (r *BalanceRepository) LockSource(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	if _, err := q.Exec(ctx, lockSourceSQL, guildID, string(source)); err != nil {
		return fmt.Errorf("lock balance source: %w", err)
	}

	return nil
}

// SumConfirmedIncome sums CONFIRMED income entries of the guild.
func (r *BalanceRepository) SumConfirmedIncome(ctx context.Context, tx usecase.Transaction, guildID string) (decimal.Decimal, error) {
	return r.sum(ctx, tx, "sum confirmed income", sumConfirmedIncomeSQL, guildID)
}

// SumLootValue sums estimated loot value. Distributed loot is included only
// when includeDistributed is set.
func (r *BalanceRepository) SumLootValue(ctx context.Context, tx usecase.Transaction, guildID string, includeDistributed bool) (decimal.Decimal, error) {
	return r.sum(ctx, tx, "sum loot value", sumLootValueSQL, guildID, includeDistributed)
}

// SumDisbursed sums the totals of every batch drawn from source.
func (r *BalanceRepository) SumDisbursed(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) (decimal.Decimal, error) {
	return r.sum(ctx, tx, "sum disbursed", sumDisbursedSQL, guildID, string(source))
}

func (r *BalanceRepository) sum(ctx context.Context, tx usecase.Transaction, op, sql string, args ...any) (decimal.Decimal, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return decimal.Zero, err
	}

	var raw string
	if err := q.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", op, err)
	}

	return parseDecimal(raw)
}
