package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LootStatus is the derived lifecycle state of a loot record.
type LootStatus string

const (
	LootStatusPending     LootStatus = "PENDING"
	LootStatusDistributed LootStatus = "DISTRIBUTED"
)

// LootRecord is a recorded loot drop. It is mutable only through the one-way
// PENDING -> DISTRIBUTED transition.
type LootRecord struct {
	CreatedAt      time.Time
	DistributedAt  *time.Time
	ID             string
	GuildID        string
	ItemName       string
	EstimatedValue decimal.Decimal
	Distributed    bool
}

// Status returns the lifecycle state of the record.
func (l *LootRecord) Status() LootStatus {
	if l.Distributed {
		return LootStatusDistributed
	}
	return LootStatusPending
}

// BelongsTo reports whether the record is owned by guildID.
func (l *LootRecord) BelongsTo(guildID string) bool {
	return l.GuildID == guildID
}

// LootShare is one caller-supplied share of a loot record.
type LootShare struct {
	MemberID string
	Amount   decimal.Decimal
}

// LootDistributionItem is a persisted share of a loot record.
type LootDistributionItem struct {
	CreatedAt  time.Time
	LootID     string
	MemberID   string
	MemberName string
	Amount     decimal.Decimal
}

// LootDistribution is a loot record together with its current shares.
type LootDistribution struct {
	Loot  *LootRecord
	Items []*LootDistributionItem
}

// MaxLootSharePlaces is the storage scale of loot share amounts.
const MaxLootSharePlaces = 4

// ValidateLootShares rejects an empty list, duplicate recipients, negative
// shares and shares finer than MaxLootSharePlaces decimal places.
func ValidateLootShares(shares []LootShare) error {
	ids := make([]string, len(shares))
	for i, s := range shares {
		ids[i] = s.MemberID
	}
	if err := ValidateRecipientIDs(ids); err != nil {
		return err
	}

	for _, s := range shares {
		if s.Amount.IsNegative() {
			return ErrNegativeShare.WithField(s.MemberID, "must not be negative")
		}
		if !s.Amount.Equal(s.Amount.Truncate(MaxLootSharePlaces)) {
			return ErrSharePrecision.WithField(s.MemberID, "must have at most 4 decimal places")
		}
	}

	return nil
}

// CheckLootShareTotal rejects shares whose sum exceeds the estimated value by
// more than LootShareTolerance.
func CheckLootShareTotal(value decimal.Decimal, shares []LootShare) error {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	if sum.GreaterThan(value.Add(LootShareTolerance)) {
		return ErrLootShareExceedsValue.WithField("distributions",
			"sum "+sum.String()+" exceeds estimated value "+value.String())
	}
	return nil
}
