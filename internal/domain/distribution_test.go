package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDistributionSource(t *testing.T) {
	t.Parallel()

	s, err := ParseDistributionSource(" loot ")
	require.NoError(t, err)
	assert.Equal(t, SourceLoot, s)

	_, err = ParseDistributionSource("BANK")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestParseAllocationMode(t *testing.T) {
	t.Parallel()

	m, err := ParseAllocationMode("percentage")
	require.NoError(t, err)
	assert.Equal(t, ModePercentage, m)

	_, err = ParseAllocationMode("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestAvailableBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pool, paid, want string
	}{
		{"1000", "600", "400.00"},
		{"100.005", "0", "100.01"},
		{"100", "100", "0.00"},
		{"100", "150.50", "0.00"},
		{"0", "0", "0.00"},
	}

	for _, tt := range tests {
		got := AvailableBalance(dec(tt.pool), dec(tt.paid))
		assert.Equal(t, tt.want, got.StringFixed(2), "pool=%s paid=%s", tt.pool, tt.paid)
	}
}

func TestCheckBalance(t *testing.T) {
	t.Parallel()

	err := CheckBalance(dec("500"), dec("400"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "insufficient balance")
	assert.Contains(t, FieldsOf(err), "total_amount")

	assert.NoError(t, CheckBalance(dec("400"), dec("400")))
	assert.NoError(t, CheckBalance(dec("400.01"), dec("400")), "within tolerance")
	assert.ErrorIs(t, CheckBalance(dec("400.02"), dec("400")), ErrInsufficientBalance)
}

func TestValidatePeriod(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	assert.NoError(t, ValidatePeriod(&from, &to))
	assert.NoError(t, ValidatePeriod(&from, &from))
	assert.NoError(t, ValidatePeriod(nil, &to))
	assert.NoError(t, ValidatePeriod(&from, nil))
	assert.ErrorIs(t, ValidatePeriod(&to, &from), ErrInvalidPeriod)
}

func TestValidateRecipientIDs(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRecipientIDs([]string{"a", "b"}))
	assert.ErrorIs(t, ValidateRecipientIDs(nil), ErrEmptyRecipients)
	assert.ErrorIs(t, ValidateRecipientIDs([]string{"a", " "}), ErrEmptyRecipients)

	err := ValidateRecipientIDs([]string{"a", "b", "a"})
	require.ErrorIs(t, err, ErrDuplicateRecipient)
	assert.Contains(t, FieldsOf(err), "a")
}
