package approval

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/leave-approvals/internal/api/dto"
	"github.com/aliskhannn/leave-approvals/internal/middlewares"
	mocks "github.com/aliskhannn/leave-approvals/internal/mocks/api/handlers/approval"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/service/approval"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MockapprovalService) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockapprovalService(ctrl)
	handler := NewHandler(mockService, validator.New())
	return handler, mockService
}

func newContext(method, target string, body interface{}, actor string) (*gin.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, target, &buf)
	if actor != "" {
		req.Header.Set(middlewares.ActorHeader, actor)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	return c, w
}

func TestHandler_Submit_Success(t *testing.T) {
	handler, mockService := setupHandler(t)

	body := dto.SubmitRequest{
		RequestID: "req-1",
		StaffID:   "STF-001",
		LeaveType: "annual",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:      5,
		Levels: []dto.LevelRequest{
			{LevelNumber: 1, ApproverRole: "supervisor"},
			{LevelNumber: 2, ApproverRole: "hr_manager"},
		},
	}
	c, w := newContext(http.MethodPost, "/api/approvals", body, "emp-1")

	mockService.EXPECT().
		Submit(gomock.Any(), gomock.AssignableToTypeOf(approval.SubmitRequest{})).
		DoAndReturn(func(_ interface{}, req approval.SubmitRequest) (*model.LeaveApproval, error) {
			assert.Equal(t, "emp-1", req.RequesterID)
			assert.Equal(t, 5, req.Leave.Days)
			require.Len(t, req.Levels, 2)
			assert.Equal(t, "hr_manager", req.Levels[1].ApproverRole)
			return &model.LeaveApproval{RequestID: "req-1", Status: model.ApprovalPending}, nil
		})

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, w.Result().StatusCode)
}

func TestHandler_Submit_ValidationError(t *testing.T) {
	handler, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/approvals", dto.SubmitRequest{RequestID: "req-1"}, "emp-1")

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Submit_InvalidConfiguration(t *testing.T) {
	handler, mockService := setupHandler(t)

	body := dto.SubmitRequest{
		RequestID: "req-1",
		Levels:    []dto.LevelRequest{{LevelNumber: 2, ApproverRole: "supervisor"}},
	}
	c, w := newContext(http.MethodPost, "/api/approvals", body, "emp-1")

	mockService.EXPECT().
		Submit(gomock.Any(), gomock.Any()).
		Return(nil, model.ErrInvalidConfiguration)

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Act(t *testing.T) {
	decided := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"approved", nil, http.StatusOK},
		{"out of order", &model.TransitionError{Kind: model.ErrOutOfOrderApproval, RequestID: "req-1", LevelNumber: 2}, http.StatusConflict},
		{"already decided", &model.TransitionError{Kind: model.ErrAlreadyDecided, RequestID: "req-1", DecidedBy: "sup-1", DecidedAt: &decided}, http.StatusConflict},
		{"unauthorized", &model.TransitionError{Kind: model.ErrUnauthorized, RequestID: "req-1"}, http.StatusForbidden},
		{"delegation conflict", model.ErrDelegationConflict, http.StatusConflict},
		{"not found", &model.TransitionError{Kind: model.ErrNotFound, RequestID: "req-1"}, http.StatusNotFound},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService := setupHandler(t)

			comments := "enjoy"
			c, w := newContext(http.MethodPost, "/api/approvals/req-1/levels/2/act",
				dto.ActRequest{Decision: "approve", Comments: &comments}, "hrm-1")
			c.Params = gin.Params{{Key: "id", Value: "req-1"}, {Key: "level", Value: "2"}}

			var result *model.LeaveApproval
			if tt.err == nil {
				result = &model.LeaveApproval{RequestID: "req-1"}
			}

			mockService.EXPECT().
				Act(gomock.Any(), approval.ActRequest{
					RequestID:   "req-1",
					LevelNumber: 2,
					ActorID:     "hrm-1",
					Decision:    model.DecisionApprove,
					Comments:    &comments,
				}).
				Return(result, tt.err)

			handler.Act(c)

			assert.Equal(t, tt.want, w.Result().StatusCode)
		})
	}
}

func TestHandler_Act_BadInput(t *testing.T) {
	handler, _ := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/approvals/req-1/levels/x/act", dto.ActRequest{Decision: "approve"}, "sup-1")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}, {Key: "level", Value: "x"}}
	handler.Act(c)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)

	c, w = newContext(http.MethodPost, "/api/approvals/req-1/levels/1/act", dto.ActRequest{Decision: "maybe"}, "sup-1")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}, {Key: "level", Value: "1"}}
	handler.Act(c)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Cancel(t *testing.T) {
	handler, mockService := setupHandler(t)

	c, w := newContext(http.MethodPost, "/api/approvals/req-1/cancel", nil, "emp-2")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	mockService.EXPECT().
		Cancel(gomock.Any(), "req-1", "emp-2").
		Return(nil, &model.TransitionError{Kind: model.ErrUnauthorized, RequestID: "req-1"})

	handler.Cancel(c)

	assert.Equal(t, http.StatusForbidden, w.Result().StatusCode)
}

func TestHandler_GetAndHistory(t *testing.T) {
	handler, mockService := setupHandler(t)

	c, w := newContext(http.MethodGet, "/api/approvals/req-1", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	mockService.EXPECT().
		Get(gomock.Any(), "req-1").
		Return(&model.LeaveApproval{RequestID: "req-1", Status: model.ApprovalApproved}, nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var body struct {
		Result model.LeaveApproval `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.ApprovalApproved, body.Result.Status)

	c, w = newContext(http.MethodGet, "/api/approvals/missing/history", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	mockService.EXPECT().
		History(gomock.Any(), "missing").
		Return(nil, &model.TransitionError{Kind: model.ErrNotFound, RequestID: "missing"})

	handler.History(c)

	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
}

func TestHandler_Pending(t *testing.T) {
	handler, mockService := setupHandler(t)

	c, w := newContext(http.MethodGet, "/api/pending-approvals", nil, "sup-1")

	mockService.EXPECT().
		PendingFor(gomock.Any(), "sup-1").
		Return([]*model.LeaveApproval{{RequestID: "req-1"}}, nil)

	handler.Pending(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}
