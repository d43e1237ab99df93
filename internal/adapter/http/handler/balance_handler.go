package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/adapter/http/dto"
	"github.com/iho/guildledger/internal/domain"
)

// BalanceService is the use case surface behind BalanceHandler.
type BalanceService interface {
	GetAvailableBalance(ctx context.Context, guildID string, source domain.DistributionSource) (*domain.Balance, error)
}

// BalanceHandler handles balance requests.
type BalanceHandler struct {
	service BalanceService
	logger  zerolog.Logger
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(service BalanceService, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{service: service, logger: logger}
}

// Get returns the available balance for the ?source= pool.
func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	source, err := domain.ParseDistributionSource(r.URL.Query().Get("source"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	balance, err := h.service.GetAvailableBalance(r.Context(), chi.URLParam(r, "guildID"), source)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}
