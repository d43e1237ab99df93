package domain

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxNotesLength      = 2000
	MaxDistributionAmnt = "1000000000000" // 1 trillion
)

var maxDistributionAmount = decimal.RequireFromString(MaxDistributionAmnt)

// ValidateAmount validates a distribution total. Allocation works in whole
// cents, so a total that rounds to zero cents is rejected as well.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount.WithField("total_amount", "must be greater than zero")
	}

	if ToCents(amount) <= 0 {
		return ErrInvalidAmount.WithField("total_amount", "must be at least 0.01")
	}

	if amount.GreaterThan(maxDistributionAmount) {
		return ErrAmountTooLarge.WithField("total_amount", "maximum amount is "+MaxDistributionAmnt)
	}

	return nil
}

// ValidateNotes validates free-text batch notes.
func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return ErrNotesTooLong.WithField("notes", "must not exceed 2000 characters")
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
