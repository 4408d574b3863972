package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{model.ErrInvalidConfiguration, http.StatusBadRequest},
		{model.ErrOutOfOrderApproval, http.StatusConflict},
		{&model.TransitionError{Kind: model.ErrAlreadyDecided, RequestID: "r"}, http.StatusConflict},
		{fmt.Errorf("wrap: %w", model.ErrUnauthorized), http.StatusForbidden},
		{model.ErrDelegationConflict, http.StatusConflict},
		{model.ErrDelegationOverlap, http.StatusConflict},
		{model.ErrNotFound, http.StatusNotFound},
		{model.ErrRunInProgress, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), tt.err.Error())
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}

func TestError_CarriesKind(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, &model.TransitionError{Kind: model.ErrOutOfOrderApproval, RequestID: "req-1", LevelNumber: 2})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "out_of_order_approval", body["kind"])
	assert.Contains(t, body["error"], "req-1 level 2")
}
