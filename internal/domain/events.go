package domain

import "time"

// Event types
const (
	EventTypeBatchCreated    = "distribution.batch.created"
	EventTypeLootDistributed = "loot.distributed"
)

// Aggregate types
const (
	AggregateTypeBatch = "distribution_batch"
	AggregateTypeLoot  = "loot"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BatchCreatedEvent payload
type BatchCreatedEvent struct {
	BatchID       string `json:"batch_id"`
	GuildID       string `json:"guild_id"`
	ReferenceCode string `json:"reference_code"`
	Source        string `json:"source"`
	Mode          string `json:"mode"`
	TotalAmount   string `json:"total_amount"`
	Recipients    int    `json:"recipients"`
}

// LootDistributedEvent payload
type LootDistributedEvent struct {
	LootID         string `json:"loot_id"`
	GuildID        string `json:"guild_id"`
	EstimatedValue string `json:"estimated_value"`
	Recipients     int    `json:"recipients"`
	DistributedAt  string `json:"distributed_at"`
}

// NewBatchCreatedEvent builds the outbox event for a created batch.
func NewBatchCreatedEvent(id string, batch *DistributionBatch, recipients int) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   batch.ID,
		AggregateType: AggregateTypeBatch,
		EventType:     EventTypeBatchCreated,
		Payload: MarshalState(BatchCreatedEvent{
			BatchID:       batch.ID,
			GuildID:       batch.GuildID,
			ReferenceCode: batch.ReferenceCode,
			Source:        string(batch.Source),
			Mode:          string(batch.Mode),
			TotalAmount:   batch.TotalAmount.StringFixed(2),
			Recipients:    recipients,
		}),
		CreatedAt: batch.CreatedAt,
	}
}

// NewLootDistributedEvent builds the outbox event for a distributed loot record.
func NewLootDistributedEvent(id string, loot *LootRecord, recipients int, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   loot.ID,
		AggregateType: AggregateTypeLoot,
		EventType:     EventTypeLootDistributed,
		Payload: MarshalState(LootDistributedEvent{
			LootID:         loot.ID,
			GuildID:        loot.GuildID,
			EstimatedValue: loot.EstimatedValue.String(),
			Recipients:     recipients,
			DistributedAt:  at.UTC().Format(time.RFC3339),
		}),
		CreatedAt: at,
	}
}
