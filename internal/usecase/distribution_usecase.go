package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/infrastructure/logger"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
)

// DistributionUseCase validates, allocates and persists distribution batches.
type DistributionUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	resolver   balanceResolver
	memberRepo MemberRepository
	batchRepo  DistributionRepository
	outboxRepo OutboxRepository
	cache      BatchCache
	audit      *AuditRecorder
	idGen      IDGenerator
	refGen     ReferenceGenerator
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// DistributionDeps groups the collaborators of DistributionUseCase.
type DistributionDeps struct {
	TxManager   TransactionManager
	Retrier     Retrier
	BalanceRepo BalanceRepository
	MemberRepo  MemberRepository
	BatchRepo   DistributionRepository
	OutboxRepo  OutboxRepository
	Cache       BatchCache // optional
	Audit       *AuditRecorder
	IDGen       IDGenerator
	RefGen      ReferenceGenerator
	Metrics     *metrics.Metrics // optional
	Logger      zerolog.Logger
}

// NewDistributionUseCase creates a new DistributionUseCase.
func NewDistributionUseCase(deps DistributionDeps) *DistributionUseCase {
	return &DistributionUseCase{
		txManager:  deps.TxManager,
		retrier:    deps.Retrier,
		resolver:   balanceResolver{repo: deps.BalanceRepo},
		memberRepo: deps.MemberRepo,
		batchRepo:  deps.BatchRepo,
		outboxRepo: deps.OutboxRepo,
		cache:      deps.Cache,
		audit:      deps.Audit,
		idGen:      deps.IDGen,
		refGen:     deps.RefGen,
		metrics:    deps.Metrics,
		log:        deps.Logger,
	}
}

// CreateBatchInput represents input for creating a distribution batch.
type CreateBatchInput struct {
	PeriodFrom  *time.Time
	PeriodTo    *time.Time
	Distributor domain.Actor
	Source      domain.DistributionSource
	Mode        domain.AllocationMode
	Notes       string
	Recipients  []domain.Recipient
	TotalAmount decimal.Decimal
}

func (in CreateBatchInput) validate() error {
	if in.Distributor.ID == "" {
		return domain.ErrMissingActor.WithField("distributor", "distributor is required")
	}
	if !in.Source.Valid() {
		return domain.ErrInvalidSource.WithField("source", "must be TRANSACTION or LOOT")
	}
	if !in.Mode.Valid() {
		return domain.ErrInvalidMode.WithField("mode", "must be EQUAL, PERCENTAGE or FIXED")
	}
	if err := domain.ValidateAmount(in.TotalAmount); err != nil {
		return err
	}

	ids := make([]string, len(in.Recipients))
	for i, r := range in.Recipients {
		ids[i] = r.MemberID
	}
	if err := domain.ValidateRecipientIDs(ids); err != nil {
		return err
	}
	if err := domain.ValidatePeriod(in.PeriodFrom, in.PeriodTo); err != nil {
		return err
	}

	return domain.ValidateNotes(in.Notes)
}

// CreateBatch distributes input.TotalAmount among the recipients of guildID.
// Balance resolution, the balance check and the batch write happen in one
// serializable transaction. The per-guild, per-source advisory lock only
// queues concurrent writers: the snapshot is taken by the lock statement
// itself, so a waiter may read sums from before the holder committed. That
// stale read is caught by the serializable abort (40001) and the whole
// transaction is re-run by the Retrier.
func (uc *DistributionUseCase) CreateBatch(ctx context.Context, guildID string, input CreateBatchInput) (*domain.BatchDetail, error) {
	start := time.Now()

	detail, err := uc.createBatch(ctx, guildID, input)
	if err != nil {
		uc.countError("create_batch", err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BatchDuration.Observe(time.Since(start).Seconds())
		uc.metrics.BatchRecipients.Observe(float64(len(detail.Items)))
		uc.metrics.BatchesCreated.WithLabelValues(string(input.Source), string(input.Mode)).Inc()
		uc.metrics.DistributedAmount.WithLabelValues(string(input.Source)).Add(detail.Batch.TotalAmount.InexactFloat64())
	}

	log := logger.WithContext(ctx, uc.log)
	log.Info().
		Str("guild_id", guildID).
		Str("batch_id", detail.Batch.ID).
		Str("reference_code", detail.Batch.ReferenceCode).
		Str("total_amount", detail.Batch.TotalAmount.StringFixed(2)).
		Msg("distribution batch created")

	uc.audit.Append(ctx, input.Distributor.ID, guildID, domain.AuditActionBatchCreate,
		domain.BatchAuditMetadata(detail.Batch, detail.Items))

	return detail, nil
}

func (uc *DistributionUseCase) createBatch(ctx context.Context, guildID string, input CreateBatchInput) (*domain.BatchDetail, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var detail *domain.BatchDetail
	err := uc.retrier.Retry(ctx, func() error {
		var txErr error
		detail, txErr = uc.createBatchTx(ctx, guildID, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// createBatchTx checks membership, then balance, then computes allocations,
// so an unknown recipient is reported ahead of a mode-specific sum error.
func (uc *DistributionUseCase) createBatchTx(
	ctx context.Context,
	guildID string,
	input CreateBatchInput,
) (*domain.BatchDetail, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.BeginSerializable(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.resolver.repo.LockSource(txCtx, tx, guildID, input.Source); err != nil {
		return nil, fmt.Errorf("lock balance: %w", err)
	}

	ids := make([]string, len(input.Recipients))
	for i, r := range input.Recipients {
		ids[i] = r.MemberID
	}

	members, err := uc.memberRepo.FetchMembers(txCtx, tx, guildID, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	byID, err := domain.CheckMembership(guildID, ids, members)
	if err != nil {
		return nil, err
	}

	balance, err := uc.resolver.resolve(txCtx, tx, guildID, input.Source)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckBalance(input.TotalAmount, balance.Available); err != nil {
		return nil, err
	}

	allocations, err := domain.ComputeAllocations(input.Mode, input.TotalAmount, input.Recipients)
	if err != nil {
		return nil, err
	}
	if err := domain.VerifyAllocations(input.TotalAmount, allocations); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batch := &domain.DistributionBatch{
		ID:              uc.idGen.Generate(),
		GuildID:         guildID,
		Source:          input.Source,
		Mode:            input.Mode,
		TotalAmount:     domain.Round2(input.TotalAmount),
		BalanceBefore:   balance.Available,
		BalanceAfter:    balance.Available.Sub(domain.Round2(input.TotalAmount)),
		PeriodFrom:      input.PeriodFrom,
		PeriodTo:        input.PeriodTo,
		Notes:           input.Notes,
		DistributorID:   input.Distributor.ID,
		DistributorName: input.Distributor.Name,
		ReferenceCode:   uc.refGen.Generate(now),
		CreatedAt:       now,
	}

	items := make([]*domain.DistributionItem, len(allocations))
	for i, a := range allocations {
		items[i] = &domain.DistributionItem{
			ID:         uc.idGen.Generate(),
			BatchID:    batch.ID,
			MemberID:   a.MemberID,
			MemberName: byID[a.MemberID].Name,
			Amount:     a.Amount,
			Percentage: a.Percentage,
		}
	}

	if err := uc.batchRepo.CreateBatch(txCtx, tx, batch, items); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	event := domain.NewBatchCreatedEvent(uc.idGen.Generate(), batch, len(items))
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, fmt.Errorf("create outbox event: %w", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &domain.BatchDetail{Batch: batch, Items: items}, nil
}

// ListBatches returns a page of batches of guildID matching filter.
func (uc *DistributionUseCase) ListBatches(ctx context.Context, guildID string, filter domain.BatchFilter) (*domain.BatchPage, error) {
	limit, offset, err := domain.ValidatePagination(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	if filter.Source != "" && !filter.Source.Valid() {
		return nil, domain.ErrInvalidSource.WithField("source", "must be TRANSACTION or LOOT")
	}
	if err := domain.ValidatePeriod(filter.From, filter.To); err != nil {
		return nil, err
	}

	batches, total, err := uc.batchRepo.List(ctx, guildID, filter)
	if err != nil {
		return nil, err
	}

	return &domain.BatchPage{
		Batches: batches,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// GetBatchDetail returns a batch of guildID together with its items.
// Batches of other guilds are reported as not found.
func (uc *DistributionUseCase) GetBatchDetail(ctx context.Context, guildID, batchID string) (*domain.BatchDetail, error) {
	log := logger.WithContext(ctx, uc.log)

	if uc.cache != nil {
		cached, err := uc.cache.GetBatch(ctx, batchID)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("batch_id", batchID).Msg("batch cache read failed")
		case cached != nil:
			uc.countCache("hit")
			if cached.Batch.GuildID != guildID {
				return nil, domain.ErrBatchNotFound
			}
			return cached, nil
		default:
			uc.countCache("miss")
		}
	}

	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.GuildID != guildID {
		return nil, domain.ErrBatchNotFound
	}

	items, err := uc.batchRepo.GetItems(ctx, batchID)
	if err != nil {
		return nil, err
	}

	detail := &domain.BatchDetail{Batch: batch, Items: items}

	if uc.cache != nil {
		if err := uc.cache.SetBatch(ctx, detail); err != nil {
			log.Warn().Err(err).Str("batch_id", batchID).Msg("batch cache write failed")
		}
	}

	return detail, nil
}

func (uc *DistributionUseCase) countError(operation string, err error) {
	if uc.metrics != nil {
		uc.metrics.DistributionErrors.WithLabelValues(operation, string(domain.KindOf(err))).Inc()
	}
}

func (uc *DistributionUseCase) countCache(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheHits.WithLabelValues(result).Inc()
	}
}
