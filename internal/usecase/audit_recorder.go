package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/infrastructure/logger"
	"github.com/iho/guildledger/internal/infrastructure/metrics"
)

const auditTimeout = 5 * time.Second

// AuditRecorder appends audit entries on a best-effort basis. Append never
// returns an error: failures are logged and counted.
type AuditRecorder struct {
	repo    AuditRepository
	idGen   IDGenerator
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewAuditRecorder creates a new AuditRecorder.
func NewAuditRecorder(repo AuditRepository, idGen IDGenerator, m *metrics.Metrics, log zerolog.Logger) *AuditRecorder {
	return &AuditRecorder{
		repo:    repo,
		idGen:   idGen,
		metrics: m,
		log:     log,
	}
}

// Append records action for guildID performed by actorID.
func (r *AuditRecorder) Append(ctx context.Context, actorID, guildID string, action domain.AuditAction, metadata domain.JSON) {
	if r == nil || r.repo == nil {
		return
	}

	log := logger.WithContext(ctx, r.log)

	if action.IsZero() {
		log.Error().Str("guild_id", guildID).Msg("audit append rejected: empty action")
		r.count(action, "rejected")
		return
	}

	if actorID == "" {
		actorID = SystemActorID
	}

	// The primary write is already committed; a cancelled caller must not
	// lose the audit entry.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	entry := &domain.AuditEntry{
		ID:        r.idGen.Generate(),
		ActorID:   actorID,
		GuildID:   guildID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.repo.Create(auditCtx, entry); err != nil {
		log.Error().Err(err).
			Str("guild_id", guildID).
			Str("action", action.String()).
			Msg("audit append failed")
		r.count(action, "failed")
		return
	}

	r.count(action, "success")
}

func (r *AuditRecorder) count(action domain.AuditAction, status string) {
	if r.metrics != nil {
		r.metrics.AuditLogsCreated.WithLabelValues(action.String(), status).Inc()
	}
}
