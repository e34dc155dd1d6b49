//go:build e2e

package garage_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/handler/dto/request"
	"garage-orchestrator/internal/handler/dto/response"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/tests/common/authtest"
	"garage-orchestrator/tests/common/httptest"
	"garage-orchestrator/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const plate = "WLK42"

type garageSuite struct {
	e2e.SharedSuite
	token string
}

func TestGarageSuite(t *testing.T) {
	suite.Run(t, new(garageSuite))
}

func (s *garageSuite) SetupTest() {
	s.SharedSuite.SetupTest()

	_, err := s.Provision.Provision(context.Background(), []usecase.SlotLayout{
		{ID: "A-01", Type: slot.TypeRegular, Floor: "1"},
		{ID: "E-01", Type: slot.TypeEmergency, Floor: "1"},
	})
	s.Require().NoError(err)
	s.token = authtest.CreateAndLogin(s.T(), s.DB, s.Router, "operator@example.com", string(user.RoleOperator))
}

func (s *garageSuite) slot(id string) response.SlotResponse {
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/admin/slots/"+id, nil, s.token)
	var res response.SlotResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &res)
	return res
}

func (s *garageSuite) awaitSlotStatus(id string, want slot.Status) {
	s.T().Helper()
	require.Eventually(s.T(), func() bool {
		return s.slot(id).Status == string(want)
	}, 10*time.Second, 50*time.Millisecond, "slot %s never became %s", id, want)
}

func (s *garageSuite) registerCashWalkIn() {
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/walk-in/register", request.WalkInRegisterRequest{
		Name:                    "Walk In",
		Phone:                   "+20 100 999 8877",
		PlateNumber:             plate,
		ExpectedDurationMinutes: 60,
		PaymentType:             "CASH",
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *garageSuite) TestCashWalkInStay() {
	t := s.T()
	topics := s.Topics()

	s.registerCashWalkIn()

	// entry gate
	s.Bus.Send(t, topics.EntryRequest(), job.EntryRequest{PlateNumber: plate, RequestID: "entry-1"})
	entry := s.Bus.AwaitResponse(t, topics.Response(), "entry-1")
	require.Equal(t, decision.AllowEntry, entry.Decision)
	require.Equal(t, decision.ReasonWalkInAccepted, entry.Reason)
	require.NotNil(t, entry.SlotName)
	require.Equal(t, "A-01", *entry.SlotName)

	assigned := s.slot("A-01")
	require.Equal(t, string(slot.StatusAssigned), assigned.Status)
	require.Equal(t, plate, assigned.CurrentVehicle.PlateNumber)

	var sessionStatus string
	require.NoError(t, s.DB.QueryRow(t.Context(), `
		SELECT s.status FROM parking_sessions s JOIN vehicles v ON v.id = s.vehicle_id
		WHERE v.plate = $1`, plate).Scan(&sessionStatus))
	require.Equal(t, "ACTIVE", sessionStatus)

	// the car parks where it was sent
	now := time.Now().UTC()
	p := plate
	s.Bus.Send(t, topics.SlotEvent(), job.SlotEvent{SlotID: "A-01", PlateNumber: &p, EventType: job.SlotEventOccupied, Timestamp: now})
	s.awaitSlotStatus("A-01", slot.StatusOccupied)

	// and leaves
	s.Bus.Send(t, topics.SlotEvent(), job.SlotEvent{SlotID: "A-01", EventType: job.SlotEventAvailable, Timestamp: now.Add(time.Minute)})
	s.awaitSlotStatus("A-01", slot.StatusAvailable)

	require.Eventually(t, func() bool {
		var n int
		err := s.DB.QueryRow(context.Background(), `
			SELECT COUNT(*) FROM alerts WHERE alert_type = 'PAYMENT_HELP_REQUEST' AND plate_number = $1`, plate).Scan(&n)
		return err == nil && n == 1
	}, 10*time.Second, 100*time.Millisecond, "cash settlement never asked for an attendant")

	var txnStatus string
	var amount int64
	require.NoError(t, s.DB.QueryRow(t.Context(), `
		SELECT t.status, t.amount FROM payment_transactions t
		JOIN parking_sessions s ON s.id = t.session_id
		JOIN vehicles v ON v.id = s.vehicle_id
		WHERE v.plate = $1`, plate).Scan(&txnStatus, &amount))
	require.Equal(t, "PENDING", txnStatus)
	require.Positive(t, amount)

	// exit gate holds the car until the attendant collects
	s.Bus.Send(t, topics.ExitRequest(), job.ExitRequest{PlateNumber: plate, RequestID: "exit-1", Gate: "exit-1"})
	exit := s.Bus.AwaitResponse(t, topics.Response(), "exit-1")
	require.Equal(t, decision.DenyExit, exit.Decision)
	require.Equal(t, decision.ReasonCashPending, exit.Reason)
	require.Equal(t, "exit-1", exit.Gate)
	require.Equal(t, plate, exit.PlateNumber)
}

func (s *garageSuite) TestUnknownVehicleIsTurnedAway() {
	t := s.T()
	topics := s.Topics()

	s.Bus.Send(t, topics.EntryRequest(), job.EntryRequest{PlateNumber: "NOPE99", RequestID: "entry-x"})

	resp := s.Bus.AwaitResponse(t, topics.Response(), "entry-x")
	require.Equal(t, decision.DenyEntry, resp.Decision)
	require.Equal(t, decision.ReasonNoReservationOrPermit, resp.Reason)
	require.Equal(t, string(slot.StatusAvailable), s.slot("A-01").Status)
}

func (s *garageSuite) TestOperatorClosesSlot() {
	t := s.T()

	w := httptest.PerformRequest(t, s.Router, http.MethodPatch, "/api/admin/slots/A-01/status",
		map[string]string{"status": string(slot.StatusMaintenance)}, s.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s.registerCashWalkIn()
	s.Bus.Send(t, s.Topics().EntryRequest(), job.EntryRequest{PlateNumber: plate, RequestID: "entry-m"})

	resp := s.Bus.AwaitResponse(t, s.Topics().Response(), "entry-m")
	require.Equal(t, decision.DenyEntry, resp.Decision)
	require.Equal(t, decision.ReasonGarageFull, resp.Reason)
}

func (s *garageSuite) TestDeviceHeartbeat() {
	t := s.T()
	temp := 51.5

	s.Bus.Send(t, s.Topics().Heartbeat("gate-pi-1"), job.DeviceStatus{
		DeviceID: "gate-pi-1",
		Status:   "online",
		LastSeen: time.Now().UTC(),
		CPUTemp:  &temp,
	})

	require.Eventually(t, func() bool {
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, "/api/admin/devices", nil, s.token)
		var devices []response.DeviceResponse
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &devices) != nil {
			return false
		}
		return len(devices) == 1 && devices[0].DeviceID == "gate-pi-1" && !devices[0].Stale
	}, 10*time.Second, 100*time.Millisecond)
}

func (s *garageSuite) TestJobStats() {
	w := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/admin/jobs", nil, s.token)

	s.Equal(http.StatusOK, w.Code, w.Body.String())
}
