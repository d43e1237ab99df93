package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/guildledger/internal/adapter/http/dto"
	"github.com/iho/guildledger/internal/domain"
	"github.com/iho/guildledger/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code and writes it as dto.ErrorResponse.
// Causes of internal errors are logged, never returned to the client.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status := statusFor(err)

	resp := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Code:    domain.CodeOf(err),
		Message: "internal server error",
	}

	if status == http.StatusInternalServerError {
		reqLog := logger.WithContext(r.Context(), log)
		reqLog.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	} else {
		var de *domain.Error
		if errors.As(err, &de) {
			resp.Message = de.Message
		}
		resp.Fields = domain.FieldsOf(err)
	}

	writeJSON(w, status, resp)
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a bounded request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidRequest.WithField("body", err.Error())
	}
	return nil
}

// actorFrom returns the calling actor placed in the context by the Actor
// middleware.
func actorFrom(r *http.Request) (domain.Actor, error) {
	actor, ok := domain.ActorFromContext(r.Context())
	if !ok {
		return domain.Actor{}, domain.ErrMissingActor
	}
	return actor, nil
}
