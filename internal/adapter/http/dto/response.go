package dto

import (
	"time"

	"github.com/iho/guildledger/internal/domain"
)

// Money amounts are rendered as decimal strings so no client ever parses
// them as floats.

// BatchResponse represents a distribution batch in API responses.
type BatchResponse struct {
	ID              string     `json:"id"`
	GuildID         string     `json:"guild_id"`
	ReferenceCode   string     `json:"reference_code"`
	Source          string     `json:"source"`
	Mode            string     `json:"mode"`
	TotalAmount     string     `json:"total_amount"`
	BalanceBefore   string     `json:"balance_before"`
	BalanceAfter    string     `json:"balance_after"`
	PeriodFrom      *time.Time `json:"period_from,omitempty"`
	PeriodTo        *time.Time `json:"period_to,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	DistributorID   string     `json:"distributor_id"`
	DistributorName string     `json:"distributor_name,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BatchFromDomain converts a domain batch to response.
func BatchFromDomain(b *domain.DistributionBatch) *BatchResponse {
	return &BatchResponse{
		ID:              b.ID,
		GuildID:         b.GuildID,
		ReferenceCode:   b.ReferenceCode,
		Source:          string(b.Source),
		Mode:            string(b.Mode),
		TotalAmount:     b.TotalAmount.StringFixed(2),
		BalanceBefore:   b.BalanceBefore.StringFixed(2),
		BalanceAfter:    b.BalanceAfter.StringFixed(2),
		PeriodFrom:      b.PeriodFrom,
		PeriodTo:        b.PeriodTo,
		Notes:           b.Notes,
		DistributorID:   b.DistributorID,
		DistributorName: b.DistributorName,
		CreatedAt:       b.CreatedAt,
	}
}

// BatchItemResponse represents one recipient line of a batch.
type BatchItemResponse struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name"`
	Amount     string  `json:"amount"`
	Percentage *string `json:"percentage,omitempty"`
}

// BatchDetailResponse is a batch with its items.
type BatchDetailResponse struct {
	Batch *BatchResponse       `json:"batch"`
	Items []*BatchItemResponse `json:"items"`
}

// BatchDetailFromDomain converts a domain batch detail to response.
func BatchDetailFromDomain(d *domain.BatchDetail) *BatchDetailResponse {
	items := make([]*BatchItemResponse, len(d.Items))
	for i, it := range d.Items {
		items[i] = &BatchItemResponse{
			ID:         it.ID,
			MemberID:   it.MemberID,
			MemberName: it.MemberName,
			Amount:     it.Amount.StringFixed(2),
		}
		if it.Percentage != nil {
			pct := it.Percentage.String()
			items[i].Percentage = &pct
		}
	}

	return &BatchDetailResponse{
		Batch: BatchFromDomain(d.Batch),
		Items: items,
	}
}

// BatchListResponse is one page of batches.
type BatchListResponse struct {
	Batches []*BatchResponse `json:"batches"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// BatchListFromDomain converts a domain page to response.
func BatchListFromDomain(p *domain.BatchPage) *BatchListResponse {
	batches := make([]*BatchResponse, len(p.Batches))
	for i, b := range p.Batches {
		batches[i] = BatchFromDomain(b)
	}
	return &BatchListResponse{
		Batches: batches,
		Total:   p.Total,
		Limit:   p.Limit,
		Offset:  p.Offset,
	}
}

// BalanceResponse represents the available balance of a guild source.
type BalanceResponse struct {
	GuildID   string    `json:"guild_id"`
	Source    string    `json:"source"`
	Pool      string    `json:"pool"`
	Disbursed string    `json:"disbursed"`
	Available string    `json:"available"`
	AsOf      time.Time `json:"as_of"`
}

// BalanceFromDomain converts a domain balance to response.
func BalanceFromDomain(b *domain.Balance) *BalanceResponse {
	return &BalanceResponse{
		GuildID:   b.GuildID,
		Source:    string(b.Source),
		Pool:      b.Pool.StringFixed(2),
		Disbursed: b.Disbursed.StringFixed(2),
		Available: b.Available.StringFixed(2),
		AsOf:      b.AsOf,
	}
}

// LootResponse represents a loot record.
type LootResponse struct {
	ID             string     `json:"id"`
	GuildID        string     `json:"guild_id"`
	ItemName       string     `json:"item_name"`
	EstimatedValue string     `json:"estimated_value"`
	Status         string     `json:"status"`
	Distributed    bool       `json:"distributed"`
	DistributedAt  *time.Time `json:"distributed_at,omitempty"`
}

// LootShareResponse is one member's share of a loot record.
type LootShareResponse struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Amount     string `json:"amount"`
}

// LootDistributionResponse is a loot record with its shares.
type LootDistributionResponse struct {
	Loot          *LootResponse        `json:"loot"`
	Distributions []*LootShareResponse `json:"distributions"`
}

// LootDistributionFromDomain converts a domain loot distribution to response.
func LootDistributionFromDomain(d *domain.LootDistribution) *LootDistributionResponse {
	shares := make([]*LootShareResponse, len(d.Items))
	for i, it := range d.Items {
		shares[i] = &LootShareResponse{
			MemberID:   it.MemberID,
			MemberName: it.MemberName,
			Amount:     it.Amount.String(),
		}
	}

	return &LootDistributionResponse{
		Loot: &LootResponse{
			ID:             d.Loot.ID,
			GuildID:        d.Loot.GuildID,
			ItemName:       d.Loot.ItemName,
			EstimatedValue: d.Loot.EstimatedValue.String(),
			Status:         string(d.Loot.Status()),
			Distributed:    d.Loot.Distributed,
			DistributedAt:  d.Loot.DistributedAt,
		},
		Distributions: shares,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
