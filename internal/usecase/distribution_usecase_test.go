package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

func TestDistributionUseCase_CreateBatch_EqualSplit(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100.00"))

	detail, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("10.00", "A", "B", "C"))
	require.NoError(t, err)

	assert.Equal(t, []string{"3.33", "3.33", "3.34"}, itemAmounts(detail.Items))
	assert.Equal(t, "100.00", detail.Batch.BalanceBefore.StringFixed(2))
	assert.Equal(t, "90.00", detail.Batch.BalanceAfter.StringFixed(2))
	assert.Equal(t, officer.ID, detail.Batch.DistributorID)
	assert.Equal(t, "Aria", detail.Items[0].MemberName)
	assert.NotEmpty(t, detail.Batch.ReferenceCode)

	require.Len(t, h.store.Batches(), 1)
	assert.Len(t, h.store.BatchItems(detail.Batch.ID), 3)

	events := h.store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeBatchCreated, events[0].EventType)

	audits := h.store.Audits()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.AuditActionBatchCreate, audits[0].Action)
	assert.Equal(t, officer.ID, audits[0].ActorID)

	require.Len(t, h.txManager.Transactions, 1)
	assert.True(t, h.txManager.Transactions[0].Serializable)
	assert.True(t, h.txManager.Transactions[0].Committed)
	assert.Equal(t, 1, h.balances.LockCalls)

	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.BatchesCreated.WithLabelValues("TRANSACTION", "EQUAL")))
}

func TestDistributionUseCase_CreateBatch_Percentage(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("250"))

	input := usecase.CreateBatchInput{
		Distributor: officer,
		Source:      domain.SourceTransaction,
		Mode:        domain.ModePercentage,
		TotalAmount: d("100.00"),
		Recipients: []domain.Recipient{
			{MemberID: "A", Percentage: dp("33.33")},
			{MemberID: "B", Percentage: dp("33.33")},
			{MemberID: "C", Percentage: dp("33.34")},
		},
	}

	detail, err := h.distribution.CreateBatch(context.Background(), guildID, input)
	require.NoError(t, err)
	assert.Equal(t, []string{"33.33", "33.33", "33.34"}, itemAmounts(detail.Items))
	require.NotNil(t, detail.Items[2].Percentage)
	assert.Equal(t, "33.34", detail.Items[2].Percentage.String())
}

func TestDistributionUseCase_CreateBatch_InsufficientBalance(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("400"))

	_, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("500", "A", "B"))

	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "insufficient balance")

	assert.Empty(t, h.store.Batches())
	assert.Empty(t, h.store.Events())
	assert.Empty(t, h.store.Audits())
	assert.Zero(t, h.batches.CreateBatchCalls)
	require.Len(t, h.txManager.Transactions, 1)
	assert.True(t, h.txManager.Transactions[0].RolledBack)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.DistributionErrors.WithLabelValues("create_batch", "validation")))
}

func TestDistributionUseCase_CreateBatch_RejectedBeforeAnyWrite(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	tests := []struct {
		name    string
		mutate  func(in *usecase.CreateBatchInput)
		wantErr error
	}{
		{"duplicate recipient", func(in *usecase.CreateBatchInput) {
			in.Recipients = append(in.Recipients, domain.Recipient{MemberID: "A"})
		}, domain.ErrDuplicateRecipient},
		{"empty recipients", func(in *usecase.CreateBatchInput) { in.Recipients = nil }, domain.ErrEmptyRecipients},
		{"zero total", func(in *usecase.CreateBatchInput) { in.TotalAmount = d("0") }, domain.ErrInvalidAmount},
		{"negative total", func(in *usecase.CreateBatchInput) { in.TotalAmount = d("-1") }, domain.ErrInvalidAmount},
		{"total below one cent", func(in *usecase.CreateBatchInput) { in.TotalAmount = d("0.004") }, domain.ErrInvalidAmount},
		{"period reversed", func(in *usecase.CreateBatchInput) { in.PeriodFrom, in.PeriodTo = &from, &to }, domain.ErrInvalidPeriod},
		{"missing distributor", func(in *usecase.CreateBatchInput) { in.Distributor = domain.Actor{} }, domain.ErrMissingActor},
		{"unknown source", func(in *usecase.CreateBatchInput) { in.Source = "BANK" }, domain.ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.AddIncome(guildID, d("1000"))

			input := equalInput("10", "A", "B")
			tt.mutate(&input)

			_, err := h.distribution.CreateBatch(context.Background(), guildID, input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Empty(t, h.txManager.Transactions, "no transaction may be opened")
			assert.Zero(t, h.batches.CreateBatchCalls)
		})
	}
}

func TestDistributionUseCase_CreateBatch_AllocationErrorRollsBack(t *testing.T) {
	tests := []struct {
		name       string
		mode       domain.AllocationMode
		recipients []domain.Recipient
		wantErr    error
	}{
		{"fixed sum mismatch", domain.ModeFixed,
			[]domain.Recipient{{MemberID: "A", Amount: dp("1")}, {MemberID: "B", Amount: dp("1")}}, domain.ErrFixedSum},
		{"percentage sum mismatch", domain.ModePercentage,
			[]domain.Recipient{{MemberID: "A", Percentage: dp("50")}, {MemberID: "B", Percentage: dp("40")}}, domain.ErrPercentageSum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.AddIncome(guildID, d("1000"))

			input := equalInput("10", "A", "B")
			input.Mode = tt.mode
			input.Recipients = tt.recipients

			_, err := h.distribution.CreateBatch(context.Background(), guildID, input)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Zero(t, h.batches.CreateBatchCalls)
			assert.Empty(t, h.store.Events())
			require.Len(t, h.txManager.Transactions, 1)
			assert.False(t, h.txManager.Transactions[0].Committed)
		})
	}
}

func TestDistributionUseCase_CreateBatch_UnknownMemberBeforeAllocation(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))

	input := equalInput("10", "A", "ZZZ")
	input.Mode = domain.ModePercentage
	input.Recipients = []domain.Recipient{
		{MemberID: "A", Percentage: dp("50")},
		{MemberID: "ZZZ", Percentage: dp("40")},
	}

	_, err := h.distribution.CreateBatch(context.Background(), guildID, input)
	require.ErrorIs(t, err, domain.ErrMemberNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	assert.Contains(t, domain.FieldsOf(err), "ZZZ")
	assert.Zero(t, h.batches.CreateBatchCalls)
}

func TestDistributionUseCase_CreateBatch_RecipientOutsideGuild(t *testing.T) {
	for _, id := range []string{"X", "nobody"} {
		t.Run(id, func(t *testing.T) {
			h := newHarness(t)
			h.store.AddIncome(guildID, d("100"))

			_, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("10", "A", id))
			require.ErrorIs(t, err, domain.ErrMemberNotFound)
			assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
			assert.Contains(t, domain.FieldsOf(err), id)
			assert.Empty(t, h.store.Batches())
		})
	}
}

func TestDistributionUseCase_CreateBatch_DrainsBalance(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))
	ctx := context.Background()

	first, err := h.distribution.CreateBatch(ctx, guildID, equalInput("60", "A", "B"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", first.Batch.BalanceBefore.StringFixed(2))

	second, err := h.distribution.CreateBatch(ctx, guildID, equalInput("40", "A", "B"))
	require.NoError(t, err)
	assert.Equal(t, "40.00", second.Batch.BalanceBefore.StringFixed(2))
	assert.Equal(t, "0.00", second.Batch.BalanceAfter.StringFixed(2))

	_, err = h.distribution.CreateBatch(ctx, guildID, equalInput("0.02", "A"))
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// LOOT is a separate pool.
	_, err = h.distribution.CreateBatch(ctx, guildID, usecase.CreateBatchInput{
		Distributor: officer, Source: domain.SourceLoot, Mode: domain.ModeEqual,
		TotalAmount: d("1"), Recipients: []domain.Recipient{{MemberID: "A"}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestDistributionUseCase_CreateBatch_WithinTolerance(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("10.00"))

	detail, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("10.01", "A"))
	require.NoError(t, err)
	assert.Equal(t, "-0.01", detail.Batch.BalanceAfter.StringFixed(2))
}

func TestDistributionUseCase_CreateBatch_ConcurrentRequestsNeverOverspend(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("30", "A", "B"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientBalance):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, workers-3, rejected)

	total := d("0")
	for _, b := range h.store.Batches() {
		total = total.Add(b.TotalAmount)
	}
	assert.True(t, total.LessThanOrEqual(d("100")), "disbursed %s", total)
}

func TestDistributionUseCase_CreateBatch_AuditFailureDoesNotFail(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))
	h.audits.CreateFunc = func(ctx context.Context, entry *domain.AuditEntry) error {
		return errors.New("audit store down")
	}

	detail, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("10", "A"))
	require.NoError(t, err)
	assert.NotNil(t, detail)
	assert.Len(t, h.store.Batches(), 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.AuditLogsCreated.WithLabelValues("distribution.batch.create", "failed")))
}

func TestDistributionUseCase_CreateBatch_OutboxFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))
	h.outbox.CreateFunc = func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
		return errors.New("insert failed")
	}

	_, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("10", "A"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Equal(t, 1, h.batches.CreateBatchCalls)
	assert.Empty(t, h.store.Batches(), "batch must not be visible after rollback")
	assert.Empty(t, h.store.Audits())
}

func TestDistributionUseCase_CreateBatch_StoreFailureIsInternal(t *testing.T) {
	h := newHarness(t)
	h.balances.SumDisbursedFunc = func(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) (decimal.Decimal, error) {
		return d("0"), errors.New("connection reset")
	}

	_, err := h.distribution.CreateBatch(context.Background(), guildID, equalInput("10", "A"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Empty(t, h.store.Batches())
}

func TestDistributionUseCase_ListBatches(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))
	ctx := context.Background()

	_, err := h.distribution.CreateBatch(ctx, guildID, equalInput("10", "A", "B"))
	require.NoError(t, err)
	_, err = h.distribution.CreateBatch(ctx, guildID, equalInput("10", "C"))
	require.NoError(t, err)

	page, err := h.distribution.ListBatches(ctx, guildID, domain.BatchFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 50, page.Limit)

	page, err = h.distribution.ListBatches(ctx, guildID, domain.BatchFilter{RecipientID: "C"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = h.distribution.ListBatches(ctx, "guild-2", domain.BatchFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = h.distribution.ListBatches(ctx, guildID, domain.BatchFilter{Source: "BANK"})
	assert.ErrorIs(t, err, domain.ErrInvalidSource)
}

func TestDistributionUseCase_GetBatchDetail(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))
	ctx := context.Background()

	created, err := h.distribution.CreateBatch(ctx, guildID, equalInput("10", "A", "B"))
	require.NoError(t, err)

	detail, err := h.distribution.GetBatchDetail(ctx, guildID, created.Batch.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 2)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.CacheHits.WithLabelValues("miss")))

	// Second read is served from the cache.
	h.batches.GetByIDFunc = func(ctx context.Context, id string) (*domain.DistributionBatch, error) {
		t.Fatal("repository must not be hit on a cached read")
		return nil, nil
	}
	_, err = h.distribution.GetBatchDetail(ctx, guildID, created.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.metrics.CacheHits.WithLabelValues("hit")))

	_, err = h.distribution.GetBatchDetail(ctx, "guild-2", created.Batch.ID)
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}

func TestDistributionUseCase_GetBatchDetail_ForeignGuildUncached(t *testing.T) {
	h := newHarness(t)
	h.store.AddIncome(guildID, d("100"))
	ctx := context.Background()

	created, err := h.distribution.CreateBatch(ctx, guildID, equalInput("10", "A"))
	require.NoError(t, err)

	_, err = h.distribution.GetBatchDetail(ctx, "guild-2", created.Batch.ID)
	require.ErrorIs(t, err, domain.ErrBatchNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = h.distribution.GetBatchDetail(ctx, guildID, "missing")
	assert.ErrorIs(t, err, domain.ErrBatchNotFound)
}
