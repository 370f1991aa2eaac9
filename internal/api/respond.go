package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
	"github.com/hackgods/vet-appointment-scheduling/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// statusFor maps every error kind to an HTTP status.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Validation, apperr.UseCancelEndpoint:
		return http.StatusBadRequest
	case apperr.Conflict, apperr.ImmutableState, apperr.AlreadyCancelled,
		apperr.AlreadyCompleted, apperr.DuplicateIdentifier:
		return http.StatusConflict
	case apperr.Inactive, apperr.PastTimestamp, apperr.OutOfHours,
		apperr.MisalignedSlot, apperr.CancellationWindowClosed:
		return http.StatusUnprocessableEntity
	case apperr.ServiceUnavailable:
		return http.StatusServiceUnavailable
	case apperr.Internal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// writeAppError renders err by kind. Internal errors are logged and their
// text is not sent to the client.
func writeAppError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	if errors.Is(err, auth.ErrInvalidCredential) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
		return
	}

	kind := apperr.KindOf(err)
	status := statusFor(kind)

	if kind == apperr.Internal {
		log.Error("request failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("subject", subjectOf(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, status, kind.String(), "internal error")
		return
	}
	if kind == apperr.ServiceUnavailable {
		log.Warn("dependency unavailable",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("subject", subjectOf(r.Context())),
			zap.Error(err),
		)
	}

	writeError(w, status, kind.String(), err.Error())
}

func badRequest(w http.ResponseWriter, details string) {
	writeError(w, http.StatusBadRequest, apperr.Validation.String(), details)
}
