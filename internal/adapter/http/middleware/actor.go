package middleware

import (
	"net/http"
	"strings"

	"github.com/iho/guildledger/internal/domain"
)

// Headers set by the upstream gateway once it has authenticated the caller.
const (
	ActorIDHeader   = "X-Actor-ID"
	ActorNameHeader = "X-Actor-Name"
)

// Actor places the calling actor from the gateway headers into the request
// context. Mutating requests without an actor are rejected with 401.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
		if id != "" {
			actor := domain.Actor{
				ID:   id,
				Name: strings.TrimSpace(r.Header.Get(ActorNameHeader)),
			}
			r = r.WithContext(domain.ContextWithActor(r.Context(), actor))
		} else if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing "+ActorIDHeader+" header")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + http.StatusText(status) + `","code":"` + code + `","message":"` + message + `"}`))
}
