//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/alert"
	"garage-orchestrator/internal/domain/device"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/session"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/handler/api"
	resdto "garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/pkg/errs"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/internal/usecase/shared"
	"garage-orchestrator/tests/common/httptest"
	apimock "garage-orchestrator/tests/mock/api"
	usecasemock "garage-orchestrator/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockAdmin   *usecasemock.MockAdminUseCase
	mockDevices *usecasemock.MockDeviceUseCase
	mockJobs    *apimock.MockJobReporter
	operatorID  uuid.UUID
}

func (s *AdminHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockAdmin = usecasemock.NewMockAdminUseCase(s.mockCtrl)
	s.mockDevices = usecasemock.NewMockDeviceUseCase(s.mockCtrl)
	s.mockJobs = apimock.NewMockJobReporter(s.mockCtrl)
	s.operatorID = uuid.New()

	h := api.NewAdminHandler(s.mockAdmin, s.mockDevices, s.mockJobs)
	g := s.router.Group("/admin", func(c *gin.Context) {
		c.Set("user_id", s.operatorID)
	})
	g.GET("/slots", h.ListSlots)
	g.GET("/slots/:id", h.GetSlot)
	g.PATCH("/slots/:id/status", h.SetSlotStatus)
	g.GET("/alerts", h.ListAlerts)
	g.PATCH("/alerts/:id", h.TransitionAlert)
	g.GET("/sessions", h.ListSessions)
	g.GET("/devices", h.ListDevices)
	g.GET("/jobs", h.JobStats)
	g.POST("/jobs/:id/retry", h.RetryJob)
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func occupiedView(id, plate string) usecase.SlotView {
	since := time.Now().UTC().Truncate(time.Second)
	return usecase.SlotView{
		Slot: slot.Slot{
			ID:             id,
			Status:         slot.StatusOccupied,
			CurrentVehicle: &slot.CurrentVehicle{PlateNumber: plate, OccupiedSince: &since},
		},
		Type: slot.TypeRegular,
	}
}

func (s *AdminHandlerTestSuite) TestListSlots() {
	s.Run("success: passes status filter", func() {
		occupied := slot.StatusOccupied
		s.mockAdmin.EXPECT().ListSlots(gomock.Any(), &occupied).
			Return([]usecase.SlotView{occupiedView("A-01", "ABC123")}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/slots?status=OCCUPIED", nil, "")

		var response []resdto.SlotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response, 1)
		s.Equal("A-01", response[0].ID)
		s.Equal("REGULAR", response[0].Type)
	})

	s.Run("success: no filter", func() {
		s.mockAdmin.EXPECT().ListSlots(gomock.Any(), nil).Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/slots", nil, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: unknown status", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/slots?status=PARKED", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid query")
	})
}

func (s *AdminHandlerTestSuite) TestGetSlot() {
	s.Run("success", func() {
		view := occupiedView("A-02", "XYZ789")
		s.mockAdmin.EXPECT().GetSlot(gomock.Any(), "A-02").Return(&view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/slots/A-02", nil, "")

		var response resdto.SlotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("OCCUPIED", response.Status)
	})

	s.Run("error: not found", func() {
		s.mockAdmin.EXPECT().GetSlot(gomock.Any(), "Z-99").
			Return(nil, errs.Mark(errors.New("missing"), errs.ErrSlotNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/slots/Z-99", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Slot not found")
	})
}

func (s *AdminHandlerTestSuite) TestSetSlotStatus() {
	url := "/admin/slots/A-01/status"

	s.Run("success: into maintenance", func() {
		s.mockAdmin.EXPECT().SetSlotStatus(gomock.Any(), "A-01", slot.StatusMaintenance).
			Return(&slot.Slot{ID: "A-01", Status: slot.StatusMaintenance}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "MAINTENANCE"}, "")

		var response resdto.SlotResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("MAINTENANCE", response.Status)
	})

	s.Run("error: operational statuses cannot be set by hand", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "OCCUPIED"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: maps usecase errors", func() {
		cases := []struct {
			name   string
			err    error
			status int
			msg    string
		}{
			{"not found", errs.ErrSlotNotFound, http.StatusNotFound, "Slot not found"},
			{"holds vehicle", errs.ErrSlotStateNotMet, http.StatusConflict, "holds a vehicle"},
			{"unexpected", errors.New("redis down"), http.StatusInternalServerError, "Internal server error"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				s.mockAdmin.EXPECT().SetSlotStatus(gomock.Any(), "A-01", slot.StatusDisabled).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"status": "DISABLED"}, "")
				httptest.AssertErrorResponse(s.T(), rec, tc.status, tc.msg)
			})
		}
	})
}

func (s *AdminHandlerTestSuite) TestAlerts() {
	alertID := uuid.New()

	s.Run("list: builds filter from query", func() {
		pending := alert.StatusPending
		critical := alert.SeverityCritical
		want := shared.AlertFilter{Status: &pending, Severity: &critical, Limit: 20}
		a := alert.New(alert.TypeSystemFailure, alert.SeverityCritical, "Slot store unavailable", "", time.Now())
		s.mockAdmin.EXPECT().ListAlerts(gomock.Any(), want).Return([]alert.Alert{*a}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/alerts?status=PENDING&severity=CRITICAL&limit=20", nil, "")

		var response []resdto.AlertResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response, 1)
		s.Equal(a.ID, response[0].ID)
	})

	s.Run("transition: resolved by the calling operator", func() {
		resolved := &alert.Alert{ID: alertID, Status: alert.StatusResolved, ResolvedBy: &s.operatorID}
		s.mockAdmin.EXPECT().TransitionAlert(gomock.Any(), alertID, alert.StatusResolved, s.operatorID).
			Return(resolved, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/alerts/"+alertID.String(), map[string]any{"status": "RESOLVED"}, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("transition: final alerts refuse changes", func() {
		s.mockAdmin.EXPECT().TransitionAlert(gomock.Any(), alertID, alert.StatusAcknowledged, s.operatorID).
			Return(nil, alert.ErrInvalidTransition).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/alerts/"+alertID.String(), map[string]any{"status": "ACKNOWLEDGED"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "cannot move")
	})

	s.Run("transition: unknown alert", func() {
		s.mockAdmin.EXPECT().TransitionAlert(gomock.Any(), alertID, alert.StatusDismissed, s.operatorID).
			Return(nil, usecase.ErrAlertNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/alerts/"+alertID.String(), map[string]any{"status": "DISMISSED"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Alert not found")
	})

	s.Run("transition: malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/admin/alerts/abc", map[string]any{"status": "RESOLVED"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid alert id")
	})
}

func (s *AdminHandlerTestSuite) TestListSessions() {
	active := session.StatusActive
	slotID := "A-01"
	want := shared.SessionFilter{Status: &active, SlotID: &slotID}
	s.mockAdmin.EXPECT().ListSessions(gomock.Any(), want).
		Return([]session.Session{{ID: uuid.New(), SlotID: "A-01", Status: session.StatusActive}}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/sessions?status=ACTIVE&slot_id=A-01", nil, "")

	var response []resdto.SessionResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	s.Require().Len(response, 1)
	s.Equal("ACTIVE", response[0].Status)
}

func (s *AdminHandlerTestSuite) TestListDevices() {
	temp := 61.5
	s.mockDevices.EXPECT().List(gomock.Any()).Return([]usecase.DeviceView{
		{Status: device.Status{DeviceID: "gate-entry-1", Status: "online", LastSeen: time.Now(), CPUTemp: &temp}},
		{Status: device.Status{DeviceID: "cam-b2", Status: "online", LastSeen: time.Now().Add(-time.Hour)}, Stale: true},
	}, nil).Times(1)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/devices", nil, "")

	var response []resdto.DeviceResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
	s.Require().Len(response, 2)
	s.Equal(61.5, response[0].CPUTemp.Float64)
	s.False(response[1].CPUTemp.Valid)
	s.True(response[1].Stale)
}

func (s *AdminHandlerTestSuite) TestJobs() {
	s.Run("stats", func() {
		s.mockJobs.EXPECT().Stats(gomock.Any()).Return([]jobqueue.Stat{
			{Queue: job.QueueLifecycle, State: job.StatePending, Count: 4, Due: 1},
			{Queue: job.QueuePayment, State: job.StateDead, Count: 1},
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/jobs", nil, "")

		var response []resdto.JobStatResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().Len(response, 2)
		s.Equal("session-lifecycle-queue", response[0].Queue)
		s.Equal(int64(1), response[0].Due)
	})

	s.Run("retry", func() {
		id := uuid.New()
		s.mockJobs.EXPECT().Retry(gomock.Any(), id).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/jobs/"+id.String()+"/retry", nil, "")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("retry: job is not dead", func() {
		id := uuid.New()
		s.mockJobs.EXPECT().Retry(gomock.Any(), id).
			Return(infra.NewRepositoryError(infra.KindNotFound, "dead job not found", nil)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/jobs/"+id.String()+"/retry", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Dead job not found")
	})
}
