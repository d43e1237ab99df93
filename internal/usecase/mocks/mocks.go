package mocks

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

// MockStore is shared in-memory state behind the stateful repository mocks.
// Writes made through a *MockTransaction become visible only on Commit.
type MockStore struct {
	mu sync.Mutex

	incomes    map[string][]decimal.Decimal
	members    map[string]*domain.Member
	loot       map[string]*domain.LootRecord
	lootItems  map[string][]*domain.LootDistributionItem
	batches    []*domain.DistributionBatch
	batchItems map[string][]*domain.DistributionItem
	entries    []*domain.LedgerEntry
	events     []*domain.OutboxEvent
	audits     []*domain.AuditEntry
}

func NewMockStore() *MockStore {
	return &MockStore{
		incomes:    make(map[string][]decimal.Decimal),
		members:    make(map[string]*domain.Member),
		loot:       make(map[string]*domain.LootRecord),
		lootItems:  make(map[string][]*domain.LootDistributionItem),
		batchItems: make(map[string][]*domain.DistributionItem),
	}
}

func (s *MockStore) AddIncome(guildID string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes[guildID] = append(s.incomes[guildID], amount)
}

func (s *MockStore) AddMember(m *domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
}

func (s *MockStore) AddLoot(l *domain.LootRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.loot[l.ID] = &cp
}

func (s *MockStore) SetLootItems(lootID string, items []*domain.LootDistributionItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lootItems[lootID] = items
}

func (s *MockStore) Loot(id string) *domain.LootRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.loot[id]; ok {
		cp := *l
		return &cp
	}
	return nil
}

func (s *MockStore) LootItems(lootID string) []*domain.LootDistributionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lootItems[lootID])
}

func (s *MockStore) Batches() []*domain.DistributionBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.batches)
}

func (s *MockStore) BatchItems(batchID string) []*domain.DistributionItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.batchItems[batchID])
}

func (s *MockStore) Entries() []*domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

func (s *MockStore) Events() []*domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *MockStore) Audits() []*domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.audits)
}

// apply runs op on commit of tx, or immediately when tx is not a mock.
func (s *MockStore) apply(tx usecase.Transaction, op func()) {
	locked := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		op()
	}
	if mt, ok := tx.(*MockTransaction); ok {
		mt.stage(locked)
		return
	}
	locked()
}

// rowLocks hands out one mutex per key, held until the owning
// transaction ends.
type rowLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *rowLocks) acquire(tx usecase.Transaction, key string) {
	r.mu.Lock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	r.mu.Unlock()

	l.Lock()
	if mt, ok := tx.(*MockTransaction); ok {
		mt.onEnd(l.Unlock)
		return
	}
	l.Unlock()
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	store *MockStore
	locks rowLocks

	mu             sync.Mutex
	LootValueCalls []bool
	LockCalls      int

	LockSourceFunc         func(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) error
	SumConfirmedIncomeFunc func(ctx context.Context, tx usecase.Transaction, guildID string) (decimal.Decimal, error)
	SumLootValueFunc       func(ctx context.Context, tx usecase.Transaction, guildID string, includeDistributed bool) (decimal.Decimal, error)
	SumDisbursedFunc       func(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) (decimal.Decimal, error)
}

func NewMockBalanceRepository(store *MockStore) *MockBalanceRepository {
	return &MockBalanceRepository{store: store}
}

func (m *MockBalanceRepository) LockSource(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) error {
	m.mu.Lock()
	m.LockCalls++
	m.mu.Unlock()
	if m.LockSourceFunc != nil {
		return m.LockSourceFunc(ctx, tx, guildID, source)
	}
	m.locks.acquire(tx, guildID+":"+string(source))
	return nil
}

func (m *MockBalanceRepository) SumConfirmedIncome(ctx context.Context, tx usecase.Transaction, guildID string) (decimal.Decimal, error) {
	if m.SumConfirmedIncomeFunc != nil {
		return m.SumConfirmedIncomeFunc(ctx, tx, guildID)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return domain.SumAmounts(m.store.incomes[guildID]...), nil
}

func (m *MockBalanceRepository) SumLootValue(ctx context.Context, tx usecase.Transaction, guildID string, includeDistributed bool) (decimal.Decimal, error) {
	m.mu.Lock()
	m.LootValueCalls = append(m.LootValueCalls, includeDistributed)
	m.mu.Unlock()
	if m.SumLootValueFunc != nil {
		return m.SumLootValueFunc(ctx, tx, guildID, includeDistributed)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	total := decimal.Zero
	for _, l := range m.store.loot {
		if l.GuildID == guildID && (includeDistributed || !l.Distributed) {
			total = total.Add(l.EstimatedValue)
		}
	}
	return total, nil
}

func (m *MockBalanceRepository) SumDisbursed(ctx context.Context, tx usecase.Transaction, guildID string, source domain.DistributionSource) (decimal.Decimal, error) {
	if m.SumDisbursedFunc != nil {
		return m.SumDisbursedFunc(ctx, tx, guildID, source)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	total := decimal.Zero
	for _, b := range m.store.batches {
		if b.GuildID == guildID && b.Source == source {
			total = total.Add(b.TotalAmount)
		}
	}
	return total, nil
}

// MockMemberRepository is a mock implementation of MemberRepository.
type MockMemberRepository struct {
	store *MockStore

	FetchMembersFunc func(ctx context.Context, tx usecase.Transaction, guildID string, ids []string) ([]*domain.Member, error)
}

func NewMockMemberRepository(store *MockStore) *MockMemberRepository {
	return &MockMemberRepository{store: store}
}

// FetchMembers returns the requested members regardless of guild, like a
// lookup by primary key; ownership is checked by the caller.
func (m *MockMemberRepository) FetchMembers(ctx context.Context, tx usecase.Transaction, guildID string, ids []string) ([]*domain.Member, error) {
	if m.FetchMembersFunc != nil {
		return m.FetchMembersFunc(ctx, tx, guildID, ids)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.Member
	for _, id := range ids {
		if mem, ok := m.store.members[id]; ok {
			out = append(out, mem)
		}
	}
	return out, nil
}

// MockDistributionRepository is a mock implementation of DistributionRepository.
type MockDistributionRepository struct {
	store *MockStore

	mu               sync.Mutex
	CreateBatchCalls int

	CreateBatchFunc func(ctx context.Context, tx usecase.Transaction, batch *domain.DistributionBatch, items []*domain.DistributionItem) error
	ListFunc        func(ctx context.Context, guildID string, filter domain.BatchFilter) ([]*domain.DistributionBatch, int64, error)
	GetByIDFunc     func(ctx context.Context, id string) (*domain.DistributionBatch, error)
	GetItemsFunc    func(ctx context.Context, batchID string) ([]*domain.DistributionItem, error)
}

func NewMockDistributionRepository(store *MockStore) *MockDistributionRepository {
	return &MockDistributionRepository{store: store}
}

func (m *MockDistributionRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, batch *domain.DistributionBatch, items []*domain.DistributionItem) error {
	m.mu.Lock()
	m.CreateBatchCalls++
	m.mu.Unlock()
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, batch, items)
	}
	m.store.apply(tx, func() {
		m.store.batches = append(m.store.batches, batch)
		m.store.batchItems[batch.ID] = items
	})
	return nil
}

func (m *MockDistributionRepository) List(ctx context.Context, guildID string, filter domain.BatchFilter) ([]*domain.DistributionBatch, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, guildID, filter)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var matched []*domain.DistributionBatch
	for _, b := range m.store.batches {
		if b.GuildID != guildID {
			continue
		}
		if filter.Source != "" && b.Source != filter.Source {
			continue
		}
		if filter.DistributorID != "" && b.DistributorID != filter.DistributorID {
			continue
		}
		if filter.RecipientID != "" && !slices.ContainsFunc(m.store.batchItems[b.ID], func(it *domain.DistributionItem) bool {
			return it.MemberID == filter.RecipientID
		}) {
			continue
		}
		matched = append(matched, b)
	}
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], total, nil
}

func (m *MockDistributionRepository) GetByID(ctx context.Context, id string) (*domain.DistributionBatch, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, b := range m.store.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, domain.ErrBatchNotFound
}

func (m *MockDistributionRepository) GetItems(ctx context.Context, batchID string) ([]*domain.DistributionItem, error) {
	if m.GetItemsFunc != nil {
		return m.GetItemsFunc(ctx, batchID)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return slices.Clone(m.store.batchItems[batchID]), nil
}

// MockLootRepository is a mock implementation of LootRepository.
type MockLootRepository struct {
	store *MockStore
	locks rowLocks

	mu                sync.Mutex
	ReplaceItemsCalls int

	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LootRecord, error)
	GetByIDFunc          func(ctx context.Context, id string) (*domain.LootRecord, error)
	ReplaceItemsFunc     func(ctx context.Context, tx usecase.Transaction, lootID string, items []*domain.LootDistributionItem) error
	MarkDistributedFunc  func(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error
	GetItemsFunc         func(ctx context.Context, lootID string) ([]*domain.LootDistributionItem, error)
}

func NewMockLootRepository(store *MockStore) *MockLootRepository {
	return &MockLootRepository{store: store}
}

func (m *MockLootRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LootRecord, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	m.locks.acquire(tx, id)
	return m.GetByID(ctx, id)
}

func (m *MockLootRepository) GetByID(ctx context.Context, id string) (*domain.LootRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	if l := m.store.Loot(id); l != nil {
		return l, nil
	}
	return nil, domain.ErrLootNotFound
}

func (m *MockLootRepository) ReplaceItems(ctx context.Context, tx usecase.Transaction, lootID string, items []*domain.LootDistributionItem) error {
	m.mu.Lock()
	m.ReplaceItemsCalls++
	m.mu.Unlock()
	if m.ReplaceItemsFunc != nil {
		return m.ReplaceItemsFunc(ctx, tx, lootID, items)
	}
	m.store.apply(tx, func() {
		m.store.lootItems[lootID] = items
	})
	return nil
}

// MarkDistributed checks the flag immediately and flips it on commit, the
// way a conditional UPDATE behaves under a row lock.
func (m *MockLootRepository) MarkDistributed(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	if m.MarkDistributedFunc != nil {
		return m.MarkDistributedFunc(ctx, tx, id, at)
	}
	m.store.mu.Lock()
	l, ok := m.store.loot[id]
	already := ok && l.Distributed
	m.store.mu.Unlock()
	if !ok {
		return domain.ErrLootNotFound
	}
	if already {
		return domain.ErrLootAlreadyDistributed
	}
	m.store.apply(tx, func() {
		l.Distributed = true
		l.DistributedAt = &at
	})
	return nil
}

func (m *MockLootRepository) GetItems(ctx context.Context, lootID string) ([]*domain.LootDistributionItem, error) {
	if m.GetItemsFunc != nil {
		return m.GetItemsFunc(ctx, lootID)
	}
	return m.store.LootItems(lootID), nil
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository.
type MockLedgerEntryRepository struct {
	store *MockStore

	CreateExpenseFunc func(ctx context.Context, entry *domain.LedgerEntry) error
}

func NewMockLedgerEntryRepository(store *MockStore) *MockLedgerEntryRepository {
	return &MockLedgerEntryRepository{store: store}
}

func (m *MockLedgerEntryRepository) CreateExpense(ctx context.Context, entry *domain.LedgerEntry) error {
	if m.CreateExpenseFunc != nil {
		return m.CreateExpenseFunc(ctx, entry)
	}
	m.store.apply(nil, func() {
		m.store.entries = append(m.store.entries, entry)
	})
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	store *MockStore

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository(store *MockStore) *MockOutboxRepository {
	return &MockOutboxRepository{store: store}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.store.apply(tx, func() {
		m.store.events = append(m.store.events, event)
	})
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.store.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, e := range m.store.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.events = slices.DeleteFunc(m.store.events, func(e *domain.OutboxEvent) bool {
		return e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before)
	})
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	store *MockStore

	CreateFunc func(ctx context.Context, entry *domain.AuditEntry) error
}

func NewMockAuditRepository(store *MockStore) *MockAuditRepository {
	return &MockAuditRepository{store: store}
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	m.store.apply(nil, func() {
		m.store.audits = append(m.store.audits, entry)
	})
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu           sync.Mutex
	Transactions []*MockTransaction

	BeginFunc             func(ctx context.Context) (usecase.Transaction, error)
	BeginSerializableFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return m.track(&MockTransaction{}), nil
}

func (m *MockTransactionManager) BeginSerializable(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginSerializableFunc != nil {
		return m.BeginSerializableFunc(ctx)
	}
	return m.track(&MockTransaction{Serializable: true}), nil
}

func (m *MockTransactionManager) track(tx *MockTransaction) *MockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions = append(m.Transactions, tx)
	return tx
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	mu           sync.Mutex
	pending      []func()
	release      []func()
	Serializable bool
	Committed    bool
	RolledBack   bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) stage(op func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, op)
}

func (m *MockTransaction) onEnd(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release = append(m.release, fn)
}

// end releases held locks exactly once.
func (m *MockTransaction) end() {
	m.mu.Lock()
	release := m.release
	m.release = nil
	m.mu.Unlock()
	for _, fn := range release {
		fn()
	}
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		if err := m.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.Committed = true
	m.mu.Unlock()
	for _, op := range pending {
		op()
	}
	m.end()
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	if m.Committed {
		m.mu.Unlock()
		return nil
	}
	m.pending = nil
	m.RolledBack = true
	m.mu.Unlock()
	m.end()
	return nil
}

// MockRetrier is a mock implementation of Retrier. By default it runs the
// operation exactly once.
type MockRetrier struct {
	mu       sync.Mutex
	Attempts int

	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	m.mu.Lock()
	m.Attempts++
	m.mu.Unlock()
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}

// MockReferenceGenerator is a mock implementation of ReferenceGenerator.
type MockReferenceGenerator struct {
	GenerateFunc func(at time.Time) string
}

func (m *MockReferenceGenerator) Generate(at time.Time) string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(at)
	}
	return "PAY-" + at.Format("20060102") + "-MOCK01"
}

// MockBatchCache is a mock implementation of BatchCache.
type MockBatchCache struct {
	mu   sync.RWMutex
	data map[string]*domain.BatchDetail

	GetBatchFunc func(ctx context.Context, batchID string) (*domain.BatchDetail, error)
	SetBatchFunc func(ctx context.Context, detail *domain.BatchDetail) error
}

func NewMockBatchCache() *MockBatchCache {
	return &MockBatchCache{data: make(map[string]*domain.BatchDetail)}
}

func (m *MockBatchCache) GetBatch(ctx context.Context, batchID string) (*domain.BatchDetail, error) {
	if m.GetBatchFunc != nil {
		return m.GetBatchFunc(ctx, batchID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[batchID], nil
}

func (m *MockBatchCache) SetBatch(ctx context.Context, detail *domain.BatchDetail) error {
	if m.SetBatchFunc != nil {
		return m.SetBatchFunc(ctx, detail)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[detail.Batch.ID] = detail
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseFunc     func(ctx context.Context, key string) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
