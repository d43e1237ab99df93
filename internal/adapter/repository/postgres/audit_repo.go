package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/guildledger/internal/domain"
)

const insertAuditSQL = `
	INSERT INTO audit_logs (id, actor_id, guild_id, action, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// AuditRepository implements usecase.AuditRepository. Audit rows are
// append-only; there is no update or delete path.
type AuditRepository struct {
	db querier
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return newAuditRepository(pool)
}

func newAuditRepository(db querier) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit entry.
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = domain.JSON{}
	}

	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = r.db.Exec(ctx, insertAuditSQL,
		entry.ID,
		entry.ActorID,
		entry.GuildID,
		entry.Action.String(),
		payload,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}
