package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/guildledger/internal/adapter/http/dto"
	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/usecase"
)

type distributionServiceStub struct {
	createFn func(ctx context.Context, guildID string, input usecase.CreateBatchInput) (*domain.BatchDetail, error)
	listFn   func(ctx context.Context, guildID string, filter domain.BatchFilter) (*domain.BatchPage, error)
	getFn    func(ctx context.Context, guildID, batchID string) (*domain.BatchDetail, error)
}

func (s *distributionServiceStub) CreateBatch(ctx context.Context, guildID string, input usecase.CreateBatchInput) (*domain.BatchDetail, error) {
	return s.createFn(ctx, guildID, input)
}

func (s *distributionServiceStub) ListBatches(ctx context.Context, guildID string, filter domain.BatchFilter) (*domain.BatchPage, error) {
	return s.listFn(ctx, guildID, filter)
}

func (s *distributionServiceStub) GetBatchDetail(ctx context.Context, guildID, batchID string) (*domain.BatchDetail, error) {
	return s.getFn(ctx, guildID, batchID)
}

func distributionRouter(h *DistributionHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/guilds/{guildID}/distributions", h.Create)
	r.Get("/guilds/{guildID}/distributions", h.List)
	r.Get("/guilds/{guildID}/distributions/{batchID}", h.Get)
	return r
}

func sampleDetail() *domain.BatchDetail {
	return &domain.BatchDetail{
		Batch: &domain.DistributionBatch{
			ID:            "b-1",
			GuildID:       "g-1",
			ReferenceCode: "PAY-20260101-ABCDEF",
			Source:        domain.SourceTransaction,
			Mode:          domain.ModeEqual,
			TotalAmount:   decimal.RequireFromString("100"),
			BalanceBefore: decimal.RequireFromString("500"),
			BalanceAfter:  decimal.RequireFromString("400"),
			DistributorID: "officer-1",
			CreatedAt:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		Items: []*domain.DistributionItem{
			{ID: "i-1", BatchID: "b-1", MemberID: "m-1", MemberName: "Ayla", Amount: decimal.RequireFromString("33.33")},
			{ID: "i-2", BatchID: "b-1", MemberID: "m-2", MemberName: "Bram", Amount: decimal.RequireFromString("33.33")},
			{ID: "i-3", BatchID: "b-1", MemberID: "m-3", MemberName: "Cato", Amount: decimal.RequireFromString("33.34")},
		},
	}
}

func TestDistributionHandler_Create_Success(t *testing.T) {
	var (
		capturedGuild string
		captured      usecase.CreateBatchInput
	)
	h := NewDistributionHandler(&distributionServiceStub{
		createFn: func(ctx context.Context, guildID string, input usecase.CreateBatchInput) (*domain.BatchDetail, error) {
			capturedGuild = guildID
			captured = input
			return sampleDetail(), nil
		},
	}, zerolog.Nop())

	body := `{"source":"transaction","mode":"equal","total_amount":"100","recipients":[{"member_id":"m-1"},{"member_id":"m-2"},{"member_id":"m-3"}]}`
	req := httptest.NewRequest(http.MethodPost, "/guilds/g-1/distributions", strings.NewReader(body))
	req = req.WithContext(domain.ContextWithActor(req.Context(), domain.Actor{ID: "officer-1", Name: "Officer"}))
	rr := httptest.NewRecorder()

	distributionRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "g-1", capturedGuild)
	assert.Equal(t, domain.SourceTransaction, captured.Source)
	assert.Equal(t, domain.ModeEqual, captured.Mode)
	assert.Equal(t, "officer-1", captured.Distributor.ID)
	assert.Len(t, captured.Recipients, 3)
	assert.True(t, captured.TotalAmount.Equal(decimal.NewFromInt(100)))

	var resp dto.BatchDetailResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "PAY-20260101-ABCDEF", resp.Batch.ReferenceCode)
	assert.Equal(t, "400.00", resp.Batch.BalanceAfter)
	assert.Equal(t, "33.34", resp.Items[2].Amount)
}

func TestDistributionHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		withActor  bool
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing actor",
			body:       `{"source":"TRANSACTION","mode":"EQUAL","total_amount":"1","recipients":[{"member_id":"m-1"}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "missing_actor",
		},
		{
			name:       "malformed body",
			body:       `{"source":`,
			withActor:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "unknown mode",
			body:       `{"source":"TRANSACTION","mode":"RANDOM","total_amount":"1","recipients":[{"member_id":"m-1"}]}`,
			withActor:  true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_mode",
		},
		{
			name:       "insufficient balance",
			body:       `{"source":"LOOT","mode":"EQUAL","total_amount":"1000","recipients":[{"member_id":"m-1"}]}`,
			withActor:  true,
			serviceErr: domain.ErrInsufficientBalance,
			wantStatus: http.StatusBadRequest,
			wantCode:   "insufficient_balance",
		},
		{
			name:       "member outside guild",
			body:       `{"source":"LOOT","mode":"EQUAL","total_amount":"10","recipients":[{"member_id":"m-9"}]}`,
			withActor:  true,
			serviceErr: domain.ErrMemberNotFound.WithField("m-9", "not a member of guild"),
			wantStatus: http.StatusNotFound,
			wantCode:   "member_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDistributionHandler(&distributionServiceStub{
				createFn: func(ctx context.Context, guildID string, input usecase.CreateBatchInput) (*domain.BatchDetail, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return sampleDetail(), nil
				},
			}, zerolog.Nop())

			req := httptest.NewRequest(http.MethodPost, "/guilds/g-1/distributions", strings.NewReader(tt.body))
			if tt.withActor {
				req = req.WithContext(domain.ContextWithActor(req.Context(), domain.Actor{ID: "officer-1"}))
			}
			rr := httptest.NewRecorder()

			distributionRouter(h).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestDistributionHandler_List(t *testing.T) {
	var captured domain.BatchFilter
	h := NewDistributionHandler(&distributionServiceStub{
		listFn: func(ctx context.Context, guildID string, filter domain.BatchFilter) (*domain.BatchPage, error) {
			captured = filter
			return &domain.BatchPage{
				Batches: []*domain.DistributionBatch{sampleDetail().Batch},
				Total:   7,
				Limit:   1,
				Offset:  2,
			}, nil
		},
	}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/guilds/g-1/distributions?source=loot&recipient_id=m-2&limit=1&offset=2", nil)
	rr := httptest.NewRecorder()
	distributionRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.SourceLoot, captured.Source)
	assert.Equal(t, "m-2", captured.RecipientID)
	assert.Equal(t, 1, captured.Limit)
	assert.Equal(t, 2, captured.Offset)

	var resp dto.BatchListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Total)
	assert.Len(t, resp.Batches, 1)
}

func TestDistributionHandler_List_BadQuery(t *testing.T) {
	h := NewDistributionHandler(&distributionServiceStub{}, zerolog.Nop())

	rr := httptest.NewRecorder()
	distributionRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/guilds/g-1/distributions?limit=-3", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDistributionHandler_Get(t *testing.T) {
	h := NewDistributionHandler(&distributionServiceStub{
		getFn: func(ctx context.Context, guildID, batchID string) (*domain.BatchDetail, error) {
			if guildID != "g-1" || batchID != "b-1" {
				return nil, domain.ErrBatchNotFound
			}
			return sampleDetail(), nil
		},
	}, zerolog.Nop())

	rr := httptest.NewRecorder()
	distributionRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/guilds/g-1/distributions/b-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	distributionRouter(h).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/guilds/g-2/distributions/b-1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
