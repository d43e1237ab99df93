package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/adapter/http/dto"
	"github.com/iho/guildledger/internal/domain"
)

// LootService is the use case surface behind LootHandler.
type LootService interface {
	DistributeLoot(ctx context.Context, guildID string, actor domain.Actor, lootID string, shares []domain.LootShare) (*domain.LootDistribution, error)
	GetLootDistribution(ctx context.Context, guildID, lootID string) (*domain.LootDistribution, error)
}

// LootHandler handles loot distribution requests.
type LootHandler struct {
	service LootService
	logger  zerolog.Logger
}

// NewLootHandler creates a new LootHandler.
func NewLootHandler(service LootService, logger zerolog.Logger) *LootHandler {
	return &LootHandler{service: service, logger: logger}
}

// Distribute splits a loot record among members.
func (h *LootHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req dto.DistributeLootRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.service.DistributeLoot(r.Context(), chi.URLParam(r, "guildID"), actor, chi.URLParam(r, "lootID"), req.ToShares())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LootDistributionFromDomain(result))
}

// Get returns a loot record with its current shares.
func (h *LootHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetLootDistribution(r.Context(), chi.URLParam(r, "guildID"), chi.URLParam(r, "lootID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LootDistributionFromDomain(result))
}
