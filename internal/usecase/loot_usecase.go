package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/infrastructure/logger"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
)

const companionEntryTimeout = 10 * time.Second

// LootUseCase distributes a single loot record among guild members.
type LootUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	lootRepo   LootRepository
	memberRepo MemberRepository
	entryRepo  LedgerEntryRepository
	outboxRepo OutboxRepository
	audit      *AuditRecorder
	idGen      IDGenerator
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// LootDeps groups the collaborators of LootUseCase.
type LootDeps struct {
	TxManager  TransactionManager
	Retrier    Retrier
	LootRepo   LootRepository
	MemberRepo MemberRepository
	EntryRepo  LedgerEntryRepository // optional
	OutboxRepo OutboxRepository
	Audit      *AuditRecorder
	IDGen      IDGenerator
	Metrics    *metrics.Metrics // optional
	Logger     zerolog.Logger
}

// NewLootUseCase creates a new LootUseCase.
func NewLootUseCase(deps LootDeps) *LootUseCase {
	return &LootUseCase{
		txManager:  deps.TxManager,
		retrier:    deps.Retrier,
		lootRepo:   deps.LootRepo,
		memberRepo: deps.MemberRepo,
		entryRepo:  deps.EntryRepo,
		outboxRepo: deps.OutboxRepo,
		audit:      deps.Audit,
		idGen:      deps.IDGen,
		metrics:    deps.Metrics,
		log:        deps.Logger,
	}
}

// DistributeLoot splits loot lootID of guildID among shares and marks the
// record distributed. A record that is already distributed is rejected with
// domain.ErrLootAlreadyDistributed and left untouched.
func (uc *LootUseCase) DistributeLoot(
	ctx context.Context,
	guildID string,
	actor domain.Actor,
	lootID string,
	shares []domain.LootShare,
) (*domain.LootDistribution, error) {
	start := time.Now()

	result, err := uc.distribute(ctx, guildID, lootID, shares)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.DistributionErrors.WithLabelValues("distribute_loot", string(domain.KindOf(err))).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LootDistributed.Inc()
		uc.metrics.LootDuration.Observe(time.Since(start).Seconds())
	}

	log := logger.WithContext(ctx, uc.log)
	log.Info().
		Str("guild_id", guildID).
		Str("loot_id", lootID).
		Int("recipients", len(result.Items)).
		Msg("loot distributed")

	uc.createCompanionEntries(ctx, log, result)

	uc.audit.Append(ctx, actor.ID, guildID, domain.AuditActionLootDistribute,
		domain.LootAuditMetadata(result.Loot, result.Items))

	return result, nil
}

func (uc *LootUseCase) distribute(ctx context.Context, guildID, lootID string, shares []domain.LootShare) (*domain.LootDistribution, error) {
	if err := domain.ValidateLootShares(shares); err != nil {
		return nil, err
	}

	var result *domain.LootDistribution
	err := uc.retrier.Retry(ctx, func() error {
		var txErr error
		result, txErr = uc.distributeTx(ctx, guildID, lootID, shares)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *LootUseCase) distributeTx(ctx context.Context, guildID, lootID string, shares []domain.LootShare) (*domain.LootDistribution, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// Row lock: a concurrent distribution waits here and then observes the flip.
	loot, err := uc.lootRepo.GetByIDForUpdate(txCtx, tx, lootID)
	if err != nil {
		return nil, err
	}
	if !loot.BelongsTo(guildID) {
		return nil, domain.ErrLootNotFound
	}
	if loot.Distributed {
		return nil, domain.ErrLootAlreadyDistributed.WithField("loot_id", lootID)
	}

	if err := domain.CheckLootShareTotal(loot.EstimatedValue, shares); err != nil {
		return nil, err
	}

	ids := make([]string, len(shares))
	for i, s := range shares {
		ids[i] = s.MemberID
	}
	members, err := uc.memberRepo.FetchMembers(txCtx, tx, guildID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	byID, err := domain.CheckMembership(guildID, ids, members)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]*domain.LootDistributionItem, len(shares))
	for i, s := range shares {
		items[i] = &domain.LootDistributionItem{
			LootID:     lootID,
			MemberID:   s.MemberID,
			MemberName: byID[s.MemberID].Name,
			Amount:     s.Amount,
			CreatedAt:  now,
		}
	}

	if err := uc.lootRepo.ReplaceItems(txCtx, tx, lootID, items); err != nil {
		return nil, fmt.Errorf("replace loot items: %w", err)
	}

	if err := uc.lootRepo.MarkDistributed(txCtx, tx, lootID, now); err != nil {
		return nil, err
	}

	event := domain.NewLootDistributedEvent(uc.idGen.Generate(), loot, len(items), now)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	loot.Distributed = true
	loot.DistributedAt = &now

	return &domain.LootDistribution{Loot: loot, Items: items}, nil
}

// createCompanionEntries writes one expense entry per share. The
// distribution is already committed; failures are logged and counted only.
func (uc *LootUseCase) createCompanionEntries(ctx context.Context, log zerolog.Logger, result *domain.LootDistribution) {
	if uc.entryRepo == nil {
		return
	}

	entryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), companionEntryTimeout)
	defer cancel()

	now := time.Now().UTC()
	for _, item := range result.Items {
		if item.Amount.IsZero() {
			continue
		}

		entry := domain.NewLootExpenseEntry(uc.idGen.Generate(), result.Loot, item, now)
		if err := uc.entryRepo.CreateExpense(entryCtx, entry); err != nil {
			log.Error().Err(err).
				Str("loot_id", result.Loot.ID).
				Str("member_id", item.MemberID).
				Msg("companion ledger entry failed")
			if uc.metrics != nil {
				uc.metrics.CompanionEntryFailures.Inc()
			}
		}
	}
}

// GetLootDistribution returns loot lootID of guildID with its current shares.
func (uc *LootUseCase) GetLootDistribution(ctx context.Context, guildID, lootID string) (*domain.LootDistribution, error) {
	loot, err := uc.lootRepo.GetByID(ctx, lootID)
	if err != nil {
		return nil, err
	}
	if !loot.BelongsTo(guildID) {
		return nil, domain.ErrLootNotFound
	}

	items, err := uc.lootRepo.GetItems(ctx, lootID)
	if err != nil {
		return nil, err
	}

	return &domain.LootDistribution{Loot: loot, Items: items}, nil
}
