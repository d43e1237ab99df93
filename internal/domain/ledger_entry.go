package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType classifies a guild ledger record.
type LedgerEntryType string

const (
	LedgerEntryIncome  LedgerEntryType = "INCOME"
	LedgerEntryExpense LedgerEntryType = "EXPENSE"
)

// Ledger entry categories written by the engine.
const (
	CategoryLootDistribution = "LOOT_DISTRIBUTION"
)

// LedgerEntryStatusConfirmed marks entries that count towards balances.
const LedgerEntryStatusConfirmed = "CONFIRMED"

// LedgerEntry is an income or expense record in the guild ledger. The engine
// only writes companion expense entries for loot shares.
type LedgerEntry struct {
	CreatedAt   time.Time
	ID          string
	GuildID     string
	MemberID    string
	Type        LedgerEntryType
	Category    string
	Status      string
	ReferenceID string
	Description string
	Amount      decimal.Decimal
}

// NewLootExpenseEntry builds the companion expense entry for one loot share.
func NewLootExpenseEntry(id string, loot *LootRecord, item *LootDistributionItem, now time.Time) *LedgerEntry {
	return &LedgerEntry{
		ID:          id,
		GuildID:     loot.GuildID,
		MemberID:    item.MemberID,
		Type:        LedgerEntryExpense,
		Category:    CategoryLootDistribution,
		Status:      LedgerEntryStatusConfirmed,
		ReferenceID: loot.ID,
		Description: "loot share: " + loot.ItemName,
		Amount:      item.Amount,
		CreatedAt:   now,
	}
}
