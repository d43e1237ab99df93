package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recipient is one caller-supplied share request. Percentage is required in
// PERCENTAGE mode and Amount in FIXED mode; both are ignored in EQUAL mode.
type Recipient struct {
	Percentage *decimal.Decimal
	Amount     *decimal.Decimal
	MemberID   string
}

// Allocation is the computed amount for one recipient.
type Allocation struct {
	Percentage *decimal.Decimal
	MemberID   string
	Amount     decimal.Decimal
}

// ComputeAllocations partitions total among recipients according to mode.
// All arithmetic is done in integer cents. The function is pure: identical
// inputs always produce identical outputs.
//
// Remainder handling is deliberately order-dependent: in every mode the last
// recipient in the supplied order absorbs whatever cents the other shares
// leave over. For EQUAL this means the last recipient receives base plus the
// whole remainder (up to n-1 cents more than the others), not a round-robin
// spread.
func ComputeAllocations(mode AllocationMode, total decimal.Decimal, recipients []Recipient) ([]Allocation, error) {
	if len(recipients) == 0 {
		return nil, ErrEmptyRecipients.WithField("recipients", "at least one recipient is required")
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount.WithField("total_amount", "must be greater than zero")
	}

	totalCents := ToCents(total)

	var (
		cents []int64
		err   error
	)

	switch mode {
	case ModeEqual:
		cents = equalCents(totalCents, len(recipients))
	case ModePercentage:
		cents, err = percentageCents(totalCents, recipients)
	case ModeFixed:
		cents, err = fixedCents(total, totalCents, recipients)
	default:
		return nil, ErrInvalidMode.WithField("mode", fmt.Sprintf("unsupported mode %q", mode))
	}
	if err != nil {
		return nil, err
	}

	allocations := make([]Allocation, len(recipients))
	for i, r := range recipients {
		allocations[i] = Allocation{
			MemberID: r.MemberID,
			Amount:   FromCents(cents[i]),
		}
		if mode == ModePercentage {
			pct := *r.Percentage
			allocations[i].Percentage = &pct
		}
	}

	if err := VerifyAllocations(total, allocations); err != nil {
		return nil, err
	}

	return allocations, nil
}

// VerifyAllocations checks that allocations sum to total exactly in cents.
// A mismatch is an internal defect, never a validation failure.
func VerifyAllocations(total decimal.Decimal, allocations []Allocation) error {
	var sum int64
	for _, a := range allocations {
		sum += ToCents(a.Amount)
	}
	if want := ToCents(total); sum != want {
		return ErrAllocationMismatch.Wrap(fmt.Errorf("allocated %d cents, expected %d", sum, want))
	}
	return nil
}

func equalCents(totalCents int64, n int) []int64 {
	base := totalCents / int64(n)
	remainder := totalCents - base*int64(n)

	cents := make([]int64, n)
	for i := range cents {
		cents[i] = base
	}
	cents[n-1] += remainder

	return cents
}

func percentageCents(totalCents int64, recipients []Recipient) ([]int64, error) {
	pctSum := decimal.Zero
	for _, r := range recipients {
		if r.Percentage == nil {
			return nil, ErrMissingPercentage.WithField(r.MemberID, "percentage is required")
		}
		if r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred) {
			return nil, ErrInvalidPercentage.WithField(r.MemberID, "must be between 0 and 100")
		}
		pctSum = pctSum.Add(*r.Percentage)
	}
	if pctSum.Sub(hundred).Abs().GreaterThan(PercentageTolerance) {
		return nil, ErrPercentageSum.WithField("percentages", "sum is "+pctSum.String())
	}

	last := len(recipients) - 1
	cents := make([]int64, len(recipients))

	var allocated int64
	for i, r := range recipients[:last] {
		share := decimal.NewFromInt(totalCents).Mul(*r.Percentage).Div(hundred).Round(0).IntPart()
		cents[i] = share
		allocated += share
	}
	cents[last] = totalCents - allocated

	if cents[last] < 0 {
		return nil, ErrPercentageSum.WithField(recipients[last].MemberID, "leaves a negative remainder")
	}

	return cents, nil
}

func fixedCents(total decimal.Decimal, totalCents int64, recipients []Recipient) ([]int64, error) {
	sum := decimal.Zero
	for _, r := range recipients {
		if r.Amount == nil {
			return nil, ErrMissingFixedAmount.WithField(r.MemberID, "amount is required")
		}
		if !r.Amount.IsPositive() {
			return nil, ErrInvalidAmount.WithField(r.MemberID, "must be greater than zero")
		}
		sum = sum.Add(*r.Amount)
	}
	if sum.Sub(total).Abs().GreaterThan(AmountTolerance) {
		return nil, ErrFixedSum.WithField("amounts", "sum is "+sum.String()+", total is "+total.String())
	}

	last := len(recipients) - 1
	cents := make([]int64, len(recipients))

	var allocated int64
	for i, r := range recipients {
		cents[i] = ToCents(*r.Amount)
		allocated += cents[i]
	}

	// Sums inside the tolerance but not exact in cents are settled on the
	// last recipient so the batch total stays exact.
	cents[last] += totalCents - allocated
	if cents[last] <= 0 {
		return nil, ErrFixedSum.WithField(recipients[last].MemberID, "leaves a non-positive amount")
	}

	return cents, nil
}
