package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{"positive", decimal.RequireFromString("0.01"), nil},
		{"zero", decimal.Zero, ErrInvalidAmount},
		{"negative", decimal.NewFromInt(-5), ErrInvalidAmount},
		{"rounds to zero cents", decimal.RequireFromString("0.004"), ErrInvalidAmount},
		{"rounds up to one cent", decimal.RequireFromString("0.005"), nil},
		{"at ceiling", decimal.RequireFromString(MaxDistributionAmnt), nil},
		{"above ceiling", decimal.RequireFromString(MaxDistributionAmnt).Add(decimal.NewFromInt(1)), ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if FieldsOf(err)["total_amount"] == "" {
				t.Fatalf("expected total_amount field, got %v", FieldsOf(err))
			}
		})
	}
}

func TestValidateNotes(t *testing.T) {
	t.Parallel()

	if err := ValidateNotes(strings.Repeat("é", MaxNotesLength)); err != nil {
		t.Fatalf("expected multibyte notes at the limit to pass, got %v", err)
	}

	if err := ValidateNotes(strings.Repeat("a", MaxNotesLength+1)); !errors.Is(err, ErrNotesTooLong) {
		t.Fatalf("expected ErrNotesTooLong, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 50, 0},
		{10, 5, 10, 5},
		{5000, -1, 1000, 0},
	}

	for _, tt := range tests {
		limit, offset, err := ValidatePagination(tt.limit, tt.offset)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Fatalf("ValidatePagination(%d, %d) = %d, %d", tt.limit, tt.offset, limit, offset)
		}
	}
}
