package dto

import (
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

// CreateDistributionRequest represents a request to create a distribution batch.
type CreateDistributionRequest struct {
	PeriodFrom  *time.Time         `json:"period_from,omitempty"`
	PeriodTo    *time.Time         `json:"period_to,omitempty"`
	Source      string             `json:"source"`
	Mode        string             `json:"mode"`
	Notes       string             `json:"notes,omitempty"`
	Recipients  []RecipientRequest `json:"recipients"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

// RecipientRequest is one recipient of a distribution batch. Percentage is
// read in PERCENTAGE mode and Amount in FIXED mode.
type RecipientRequest struct {
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	MemberID   string           `json:"member_id"`
}

// ToUseCaseInput converts to use case input on behalf of distributor.
func (r *CreateDistributionRequest) ToUseCaseInput(distributor domain.Actor) (usecase.CreateBatchInput, error) {
	source, err := domain.ParseDistributionSource(r.Source)
	if err != nil {
		return usecase.CreateBatchInput{}, err
	}

	mode, err := domain.ParseAllocationMode(r.Mode)
	if err != nil {
		return usecase.CreateBatchInput{}, err
	}

	recipients := make([]domain.Recipient, len(r.Recipients))
	for i, rec := range r.Recipients {
		recipients[i] = domain.Recipient{
			MemberID:   rec.MemberID,
			Percentage: rec.Percentage,
			Amount:     rec.Amount,
		}
	}

	return usecase.CreateBatchInput{
		PeriodFrom:  r.PeriodFrom,
		PeriodTo:    r.PeriodTo,
		Distributor: distributor,
		Source:      source,
		Mode:        mode,
		Notes:       r.Notes,
		Recipients:  recipients,
		TotalAmount: r.TotalAmount,
	}, nil
}

// DistributeLootRequest represents a request to split a loot record.
type DistributeLootRequest struct {
	Distributions []LootShareRequest `json:"distributions"`
}

// LootShareRequest is one member's share of a loot record.
type LootShareRequest struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// ToShares converts the request to domain shares.
func (r *DistributeLootRequest) ToShares() []domain.LootShare {
	shares := make([]domain.LootShare, len(r.Distributions))
	for i, d := range r.Distributions {
		shares[i] = domain.LootShare{MemberID: d.MemberID, Amount: d.Amount}
	}
	return shares
}

// ParseBatchFilter reads the batch listing query parameters. Dates accept
// RFC 3339 timestamps or plain YYYY-MM-DD days; a plain "to" day covers the
// whole day.
func ParseBatchFilter(q url.Values) (domain.BatchFilter, error) {
	var filter domain.BatchFilter

	if s := q.Get("source"); s != "" {
		source, err := domain.ParseDistributionSource(s)
		if err != nil {
			return filter, err
		}
		filter.Source = source
	}

	filter.DistributorID = q.Get("distributor_id")
	filter.RecipientID = q.Get("recipient_id")

	var err error
	if filter.From, err = parseTimeParam(q, "from", false); err != nil {
		return filter, err
	}
	if filter.To, err = parseTimeParam(q, "to", true); err != nil {
		return filter, err
	}

	if filter.Limit, err = parseIntParam(q, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseIntParam(q, "offset"); err != nil {
		return filter, err
	}

	return filter, nil
}

func parseTimeParam(q url.Values, key string, endOfDay bool) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.ErrInvalidRequest.WithField(key, "must be RFC 3339 or YYYY-MM-DD")
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}

func parseIntParam(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidRequest.WithField(key, "must be a non-negative integer")
	}
	return n, nil
}
