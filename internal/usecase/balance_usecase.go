package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
)

// balanceResolver derives the available balance from aggregates read
// through the caller's transaction.
type balanceResolver struct {
	repo BalanceRepository
}

// resolve computes pool, disbursed and available for guildID and source
// inside tx. The coordinator calls it in the same transaction it writes in.
func (r balanceResolver) resolve(ctx context.Context, tx Transaction, guildID string, source domain.DistributionSource) (*domain.Balance, error) {
	var (
		pool decimal.Decimal
		err  error
	)

	switch source {
	case domain.SourceTransaction:
		pool, err = r.repo.SumConfirmedIncome(ctx, tx, guildID)
	case domain.SourceLoot:
		// The loot pool counts every recorded drop, distributed or not.
		pool, err = r.repo.SumLootValue(ctx, tx, guildID, true)
	default:
		return nil, domain.ErrInvalidSource.WithField("source", "must be TRANSACTION or LOOT")
	}
	if err != nil {
		return nil, fmt.Errorf("sum %s pool: %w", source, err)
	}

	paid, err := r.repo.SumDisbursed(ctx, tx, guildID, source)
	if err != nil {
		return nil, fmt.Errorf("sum disbursed: %w", err)
	}

	return &domain.Balance{
		GuildID:   guildID,
		Source:    source,
		Pool:      pool,
		Disbursed: paid,
		Available: domain.AvailableBalance(pool, paid),
		AsOf:      time.Now().UTC(),
	}, nil
}

// BalanceUseCase exposes the available balance to readers.
type BalanceUseCase struct {
	txManager TransactionManager
	retrier   Retrier
	resolver  balanceResolver
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(txManager TransactionManager, retrier Retrier, balanceRepo BalanceRepository) *BalanceUseCase {
	return &BalanceUseCase{
		txManager: txManager,
		retrier:   retrier,
		resolver:  balanceResolver{repo: balanceRepo},
	}
}

// GetAvailableBalance returns the distributable balance for guildID and source.
func (uc *BalanceUseCase) GetAvailableBalance(ctx context.Context, guildID string, source domain.DistributionSource) (*domain.Balance, error) {
	if !source.Valid() {
		return nil, domain.ErrInvalidSource.WithField("source", "must be TRANSACTION or LOOT")
	}

	var balance *domain.Balance
	err := uc.retrier.Retry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.BeginSerializable(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		balance, err = uc.resolver.resolve(txCtx, tx, guildID, source)
		if err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	return balance, nil
}
