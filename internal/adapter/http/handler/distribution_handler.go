package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/adapter/http/dto"
	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

// DistributionService is the use case surface behind DistributionHandler.
type DistributionService interface {
	CreateBatch(ctx context.Context, guildID string, input usecase.CreateBatchInput) (*domain.BatchDetail, error)
	ListBatches(ctx context.Context, guildID string, filter domain.BatchFilter) (*domain.BatchPage, error)
	GetBatchDetail(ctx context.Context, guildID, batchID string) (*domain.BatchDetail, error)
}

// DistributionHandler handles distribution batch requests.
type DistributionHandler struct {
	service DistributionService
	logger  zerolog.Logger
}

// NewDistributionHandler creates a new DistributionHandler.
func NewDistributionHandler(service DistributionService, logger zerolog.Logger) *DistributionHandler {
	return &DistributionHandler{service: service, logger: logger}
}

// Create creates a distribution batch.
func (h *DistributionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req dto.CreateDistributionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	input, err := req.ToUseCaseInput(actor)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.CreateBatch(r.Context(), chi.URLParam(r, "guildID"), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BatchDetailFromDomain(detail))
}

// List lists the guild's batches.
func (h *DistributionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseBatchFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.service.ListBatches(r.Context(), chi.URLParam(r, "guildID"), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchListFromDomain(page))
}

// Get returns one batch with its items.
func (h *DistributionHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetBatchDetail(r.Context(), chi.URLParam(r, "guildID"), chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchDetailFromDomain(detail))
}
