package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DistributionSource is the origin of distributable funds.
type DistributionSource string

const (
	SourceTransaction DistributionSource = "TRANSACTION"
	SourceLoot        DistributionSource = "LOOT"
)

// Valid reports whether s is a known source.
func (s DistributionSource) Valid() bool {
	return s == SourceTransaction || s == SourceLoot
}

// ParseDistributionSource parses a case-insensitive source name.
func ParseDistributionSource(s string) (DistributionSource, error) {
	source := DistributionSource(strings.ToUpper(strings.TrimSpace(s)))
	if !source.Valid() {
		return "", ErrInvalidSource.WithField("source", "must be TRANSACTION or LOOT")
	}
	return source, nil
}

// AllocationMode is the policy used to partition a total among recipients.
type AllocationMode string

const (
	ModeEqual      AllocationMode = "EQUAL"
	ModePercentage AllocationMode = "PERCENTAGE"
	ModeFixed      AllocationMode = "FIXED"
)

// Valid reports whether m is a known mode.
func (m AllocationMode) Valid() bool {
	switch m {
	case ModeEqual, ModePercentage, ModeFixed:
		return true
	}
	return false
}

// ParseAllocationMode parses a case-insensitive mode name.
func ParseAllocationMode(s string) (AllocationMode, error) {
	mode := AllocationMode(strings.ToUpper(strings.TrimSpace(s)))
	if !mode.Valid() {
		return "", ErrInvalidMode.WithField("mode", "must be EQUAL, PERCENTAGE or FIXED")
	}
	return mode, nil
}

// DistributionBatch is one persisted distribution event. Batches are
// write-once: created together with their items and never updated.
type DistributionBatch struct {
	CreatedAt       time.Time
	PeriodFrom      *time.Time
	PeriodTo        *time.Time
	ID              string
	GuildID         string
	Source          DistributionSource
	Mode            AllocationMode
	Notes           string
	DistributorID   string
	DistributorName string
	ReferenceCode   string
	TotalAmount     decimal.Decimal
	BalanceBefore   decimal.Decimal
	BalanceAfter    decimal.Decimal
}

// DistributionItem is one recipient's line in a batch.
type DistributionItem struct {
	Percentage *decimal.Decimal
	ID         string
	BatchID    string
	MemberID   string
	MemberName string
	Amount     decimal.Decimal
}

// BatchDetail is a batch together with its line items.
type BatchDetail struct {
	Batch *DistributionBatch  `json:"batch"`
	Items []*DistributionItem `json:"items"`
}

// BatchFilter narrows batch listings. Zero values mean "no filter".
type BatchFilter struct {
	From          *time.Time
	To            *time.Time
	Source        DistributionSource
	DistributorID string
	RecipientID   string
	Limit         int
	Offset        int
}

// BatchPage is one page of batches plus the unpaged total.
type BatchPage struct {
	Batches []*DistributionBatch
	Total   int64
	Limit   int
	Offset  int
}

// Balance is the distributable amount for a guild and source.
type Balance struct {
	AsOf      time.Time
	GuildID   string
	Source    DistributionSource
	Pool      decimal.Decimal
	Disbursed decimal.Decimal
	Available decimal.Decimal
}

// AvailableBalance returns max(0, round2(pool - disbursed)).
func AvailableBalance(pool, disbursed decimal.Decimal) decimal.Decimal {
	available := Round2(pool.Sub(disbursed))
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// CheckBalance rejects a total that exceeds the available balance by more
// than AmountTolerance.
func CheckBalance(total, available decimal.Decimal) error {
	if total.Sub(available).GreaterThan(AmountTolerance) {
		return ErrInsufficientBalance.WithField("total_amount",
			"exceeds available balance of "+available.StringFixed(2))
	}
	return nil
}

// ValidatePeriod rejects a period whose end precedes its start.
func ValidatePeriod(from, to *time.Time) error {
	if from != nil && to != nil && to.Before(*from) {
		return ErrInvalidPeriod.WithField("period_to", "must not precede period_from")
	}
	return nil
}

// ValidateRecipientIDs rejects an empty list, blank ids and repeated ids.
func ValidateRecipientIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrEmptyRecipients.WithField("recipients", "at least one recipient is required")
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyRecipients.WithField("recipients", "recipient id must not be blank")
		}
		if _, ok := seen[id]; ok {
			return ErrDuplicateRecipient.WithField(id, "appears more than once")
		}
		seen[id] = struct{}{}
	}

	return nil
}
