package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/emiliopalmerini/mfocus/internal/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status    int    `json:"status"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, Envelope{
		Status:    status,
		RequestID: middleware.GetReqID(r.Context()),
		Data:      data,
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	writeJSON(w, status, Envelope{
		Status:    status,
		Code:      code,
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

var errReadOnly = errors.New("server is read-only: observations come from a JSONL snapshot")

// badRequest marks decode and parameter errors.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func classify(err error) (int, string) {
	var br badRequest
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, domain.ErrInvalidInterval):
		return http.StatusBadRequest, "invalid_interval"
	case errors.Is(err, domain.ErrInvalidGranularity):
		return http.StatusBadRequest, "invalid_granularity"
	case errors.Is(err, domain.ErrInvalidRule):
		return http.StatusBadRequest, "invalid_rule"
	case errors.Is(err, domain.ErrUnknownCategory):
		return http.StatusBadRequest, "unknown_category"
	case errors.Is(err, domain.ErrRuleTableConflict):
		return http.StatusConflict, "rule_table_conflict"
	case errors.Is(err, domain.ErrTrackingDisabled):
		return http.StatusConflict, "tracking_disabled"
	case errors.Is(err, errReadOnly):
		return http.StatusConflict, "read_only"
	case errors.As(err, &br):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest{err}
	}
	return nil
}
