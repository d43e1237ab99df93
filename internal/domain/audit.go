package domain

import (
	"encoding/json"
	"time"
)

// AuditAction is one member of the closed set of auditable engine actions.
// The name is unexported so no value outside this package can be constructed.
type AuditAction struct {
	name string
}

var (
	AuditActionBatchCreate    = AuditAction{name: "distribution.batch.create"}
	AuditActionLootDistribute = AuditAction{name: "loot.distribute"}
)

// String returns the stored tag of the action.
func (a AuditAction) String() string {
	return a.name
}

// IsZero reports whether a is the zero value.
func (a AuditAction) IsZero() bool {
	return a.name == ""
}

// AuditEntry is an append-only record of an engine action.
type AuditEntry struct {
	CreatedAt time.Time
	Metadata  JSON
	ID        string
	ActorID   string
	GuildID   string
	Action    AuditAction
}

// JSON is a type alias for JSON data
type JSON map[string]any

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// BatchAuditMetadata describes a created batch and its full breakdown.
func BatchAuditMetadata(batch *DistributionBatch, items []*DistributionItem) JSON {
	breakdown := make([]map[string]any, len(items))
	for i, item := range items {
		row := map[string]any{
			"member_id": item.MemberID,
			"amount":    item.Amount.StringFixed(2),
		}
		if item.Percentage != nil {
			row["percentage"] = item.Percentage.String()
		}
		breakdown[i] = row
	}

	return JSON{
		"batch_id":       batch.ID,
		"reference_code": batch.ReferenceCode,
		"source":         string(batch.Source),
		"mode":           string(batch.Mode),
		"total_amount":   batch.TotalAmount.StringFixed(2),
		"balance_before": batch.BalanceBefore.StringFixed(2),
		"balance_after":  batch.BalanceAfter.StringFixed(2),
		"allocations":    breakdown,
	}
}

// LootAuditMetadata describes a completed loot distribution.
func LootAuditMetadata(loot *LootRecord, items []*LootDistributionItem) JSON {
	breakdown := make([]map[string]any, len(items))
	for i, item := range items {
		breakdown[i] = map[string]any{
			"member_id": item.MemberID,
			"amount":    item.Amount.String(),
		}
	}

	return JSON{
		"loot_id":         loot.ID,
		"item_name":       loot.ItemName,
		"estimated_value": loot.EstimatedValue.String(),
		"distributions":   breakdown,
	}
}
