// Package respond writes the JSON envelopes returned by every HTTP handler.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

type envelope struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func OK(w http.ResponseWriter, result interface{}) {
	JSON(w, http.StatusOK, envelope{Result: result})
}

func Created(w http.ResponseWriter, result interface{}) {
	JSON(w, http.StatusCreated, envelope{Result: result})
}

func Accepted(w http.ResponseWriter, result interface{}) {
	JSON(w, http.StatusAccepted, envelope{Result: result})
}

// Fail writes err with the given status.
func Fail(w http.ResponseWriter, status int, err error) {
	JSON(w, status, envelope{Error: err.Error()})
}

// Error writes a domain error with the status its kind maps to.
// Unknown errors are reported as internal without their detail.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		JSON(w, status, envelope{Error: "internal server error", Kind: "internal"})
		return
	}

	JSON(w, status, envelope{Error: err.Error(), Kind: model.ErrorKind(err)})
}

// Status maps the error taxonomy to HTTP status codes.
func Status(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrOutOfOrderApproval),
		errors.Is(err, model.ErrAlreadyDecided),
		errors.Is(err, model.ErrDelegationConflict),
		errors.Is(err, model.ErrDelegationOverlap),
		errors.Is(err, model.ErrRunInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
