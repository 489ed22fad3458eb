package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"csvimport/internal/errs"
)

// ErrorResponse is the JSON body of a failed request. Summary is set when an
// import stopped after it started.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Line      int    `json:"line,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Summary   any    `json:"summary,omitempty"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	switch errs.KindOf(err) {
	case errs.KindConfiguration, errs.KindSourceFormat:
		return http.StatusBadRequest
	case errs.KindRowCoercion, errs.KindRowRejected, errs.KindErrorBudgetExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it as an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error, summary any) {
	status := statusFor(err)
	body := ErrorResponse{
		Error:     err.Error(),
		Kind:      errs.KindOf(err).String(),
		RequestID: middleware.GetReqID(r.Context()),
		Summary:   summary,
	}
	var e *errs.Error
	if errors.As(err, &e) {
		body.Line = e.Line
	}
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, body)
}

// badRequest answers a malformed request that never reached the pipeline.
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:     msg,
		Kind:      "request",
		RequestID: middleware.GetReqID(r.Context()),
	})
}
