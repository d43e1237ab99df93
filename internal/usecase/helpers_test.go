package usecase_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
	"github.com/iho/guildledger/internal/usecase"
	"github.com/iho/guildledger/internal/usecase/mocks"
)

const guildID = "guild-1"

var officer = domain.Actor{ID: "officer-1", Name: "Quartermaster"}

// harness wires the use cases to the in-memory store.
type harness struct {
	store     *mocks.MockStore
	txManager *mocks.MockTransactionManager
	retrier   *mocks.MockRetrier
	balances  *mocks.MockBalanceRepository
	members   *mocks.MockMemberRepository
	batches   *mocks.MockDistributionRepository
	loot      *mocks.MockLootRepository
	entries   *mocks.MockLedgerEntryRepository
	outbox    *mocks.MockOutboxRepository
	audits    *mocks.MockAuditRepository
	cache     *mocks.MockBatchCache
	metrics   *metrics.Metrics

	distribution *usecase.DistributionUseCase
	lootUC       *usecase.LootUseCase
	balance      *usecase.BalanceUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := mocks.NewMockStore()
	h := &harness{
		store:     store,
		txManager: mocks.NewMockTransactionManager(),
		retrier:   mocks.NewMockRetrier(),
		balances:  mocks.NewMockBalanceRepository(store),
		members:   mocks.NewMockMemberRepository(store),
		batches:   mocks.NewMockDistributionRepository(store),
		loot:      mocks.NewMockLootRepository(store),
		entries:   mocks.NewMockLedgerEntryRepository(store),
		outbox:    mocks.NewMockOutboxRepository(store),
		audits:    mocks.NewMockAuditRepository(store),
		cache:     mocks.NewMockBatchCache(),
		metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
	}

	idGen := mocks.NewMockIDGenerator()
	log := zerolog.Nop()
	audit := usecase.NewAuditRecorder(h.audits, idGen, h.metrics, log)

	h.distribution = usecase.NewDistributionUseCase(usecase.DistributionDeps{
		TxManager:   h.txManager,
		Retrier:     h.retrier,
		BalanceRepo: h.balances,
		MemberRepo:  h.members,
		BatchRepo:   h.batches,
		OutboxRepo:  h.outbox,
		Cache:       h.cache,
		Audit:       audit,
		IDGen:       idGen,
		RefGen:      &mocks.MockReferenceGenerator{},
		Metrics:     h.metrics,
		Logger:      log,
	})
	h.lootUC = usecase.NewLootUseCase(usecase.LootDeps{
		TxManager:  h.txManager,
		Retrier:    h.retrier,
		LootRepo:   h.loot,
		MemberRepo: h.members,
		EntryRepo:  h.entries,
		OutboxRepo: h.outbox,
		Audit:      audit,
		IDGen:      idGen,
		Metrics:    h.metrics,
		Logger:     log,
	})
	h.balance = usecase.NewBalanceUseCase(h.txManager, h.retrier, h.balances)

	for _, m := range []*domain.Member{
		{ID: "A", GuildID: guildID, Name: "Aria"},
		{ID: "B", GuildID: guildID, Name: "Bran"},
		{ID: "C", GuildID: guildID, Name: "Cael"},
		{ID: "X", GuildID: "guild-2", Name: "Outsider"},
	} {
		store.AddMember(m)
	}

	return h
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func equalInput(total string, ids ...string) usecase.CreateBatchInput {
	rs := make([]domain.Recipient, len(ids))
	for i, id := range ids {
		rs[i] = domain.Recipient{MemberID: id}
	}
	return usecase.CreateBatchInput{
		Distributor: officer,
		Source:      domain.SourceTransaction,
		Mode:        domain.ModeEqual,
		TotalAmount: d(total),
		Recipients:  rs,
	}
}

func itemAmounts(items []*domain.DistributionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Amount.StringFixed(2)
	}
	return out
}
