package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iho/guildledger/internal/domain"
)

func TestActorMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		headers    map[string]string
		wantStatus int
		wantActor  *domain.Actor
	}{
		{
			name:       "post with actor",
			method:     http.MethodPost,
			headers:    map[string]string{ActorIDHeader: "officer-1", ActorNameHeader: " Officer "},
			wantStatus: http.StatusOK,
			wantActor:  &domain.Actor{ID: "officer-1", Name: "Officer"},
		},
		{
			name:       "post without actor",
			method:     http.MethodPost,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "blank actor id",
			method:     http.MethodPost,
			headers:    map[string]string{ActorIDHeader: "   "},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "get without actor",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/guilds/g-1/distributions", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()

			var got *domain.Actor
			Actor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if a, ok := domain.ActorFromContext(r.Context()); ok {
					got = &a
				}
			})).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantActor, got)
		})
	}
}
