//go:build unit

package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/worker"
	usecasemock "garage-orchestrator/tests/mock/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DispatcherTestSuite struct {
	suite.Suite
	mockCtrl   *gomock.Controller
	entry      *usecasemock.MockEntryUseCase
	exit       *usecasemock.MockExitUseCase
	occupancy  *usecasemock.MockOccupancyUseCase
	lifecycle  *usecasemock.MockLifecycleUseCase
	settlement *usecasemock.MockSettlementUseCase
	devices    *usecasemock.MockDeviceUseCase
	dispatcher *worker.Dispatcher
}

func (s *DispatcherTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.entry = usecasemock.NewMockEntryUseCase(s.mockCtrl)
	s.exit = usecasemock.NewMockExitUseCase(s.mockCtrl)
	s.occupancy = usecasemock.NewMockOccupancyUseCase(s.mockCtrl)
	s.lifecycle = usecasemock.NewMockLifecycleUseCase(s.mockCtrl)
	s.settlement = usecasemock.NewMockSettlementUseCase(s.mockCtrl)
	s.devices = usecasemock.NewMockDeviceUseCase(s.mockCtrl)
	s.dispatcher = worker.NewDispatcher(s.entry, s.exit, s.occupancy, s.lifecycle, s.settlement, s.devices,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *DispatcherTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (s *DispatcherTestSuite) newJob(kind job.Kind, payload any) job.Job {
	raw, err := job.Encode(payload)
	s.Require().NoError(err)
	q, err := kind.Queue()
	s.Require().NoError(err)
	return job.Job{ID: uuid.New(), Queue: q, Kind: kind, Payload: raw}
}

func (s *DispatcherTestSuite) TestGateRequests() {
	s.Run("entry: decision is published by the use case, job completes", func() {
		req := job.EntryRequest{PlateNumber: "ABC123", RequestID: "req-1"}
		s.entry.EXPECT().HandleEntry(gomock.Any(), req).
			Return(decision.GateResponse{Decision: decision.DenyEntry}).Times(1)

		s.NoError(s.dispatcher.Handle(context.Background(), s.newJob(job.KindEntryRequest, req)))
	})

	s.Run("exit", func() {
		req := job.ExitRequest{PlateNumber: "ABC123", RequestID: "req-2", Gate: "exit"}
		s.exit.EXPECT().HandleExit(gomock.Any(), req).
			Return(decision.GateResponse{Decision: decision.AllowExit}).Times(1)

		s.NoError(s.dispatcher.Handle(context.Background(), s.newJob(job.KindExitRequest, req)))
	})
}

func (s *DispatcherTestSuite) TestLifecycleKinds() {
	id := uuid.New()
	p := job.Lifecycle{SessionID: &id, SlotID: "A-01"}

	s.lifecycle.EXPECT().CheckOccupancy(gomock.Any(), p).Return(nil).Times(1)
	s.lifecycle.EXPECT().CheckSessionExpiry(gomock.Any(), p).Return(nil).Times(1)
	s.lifecycle.EXPECT().CheckGracePeriodExpiry(gomock.Any(), p).Return(nil).Times(1)

	for _, kind := range []job.Kind{job.KindCheckOccupancy, job.KindCheckSessionExpiry, job.KindCheckGracePeriodEnded} {
		s.NoError(s.dispatcher.Handle(context.Background(), s.newJob(kind, p)), kind)
	}
}

func (s *DispatcherTestSuite) TestHandlerErrorIsReturned() {
	boom := errors.New("ledger unavailable")
	p := job.Payment{SessionID: uuid.New(), Amount: 4500, UserID: uuid.New(), PlateNumber: "ABC123"}
	s.settlement.EXPECT().Settle(gomock.Any(), p).Return(boom).Times(1)

	err := s.dispatcher.Handle(context.Background(), s.newJob(job.KindProcessPayment, p))

	s.ErrorIs(err, boom)
}

func (s *DispatcherTestSuite) TestSlotEventAndHeartbeat() {
	plate := "ABC123"
	ev := job.SlotEvent{SlotID: "A-01", PlateNumber: &plate, EventType: job.SlotEventOccupied}
	s.occupancy.EXPECT().HandleSlotEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, got job.SlotEvent) error {
			s.Equal(ev.SlotID, got.SlotID)
			s.Equal(plate, *got.PlateNumber)
			return nil
		}).Times(1)
	s.NoError(s.dispatcher.Handle(context.Background(), s.newJob(job.KindSlotEvent, ev)))

	hb := job.DeviceStatus{DeviceID: "gate-pi-1", Status: "online"}
	s.devices.EXPECT().RecordHeartbeat(gomock.Any(), hb).Return(nil).Times(1)
	s.NoError(s.dispatcher.Handle(context.Background(), s.newJob(job.KindDeviceStatus, hb)))
}

func (s *DispatcherTestSuite) TestUnrunnableJobs() {
	s.Run("undecodable payload", func() {
		j := job.Job{ID: uuid.New(), Queue: job.QueuePayment, Kind: job.KindProcessPayment, Payload: []byte(`{"amount":"lots"}`)}

		err := s.dispatcher.Handle(context.Background(), j)

		s.ErrorIs(err, job.ErrInvalidPayload)
	})

	s.Run("unknown kind", func() {
		j := job.Job{ID: uuid.New(), Queue: job.QueueSystem, Kind: job.Kind("reindex"), Payload: []byte(`{}`)}

		err := s.dispatcher.Handle(context.Background(), j)

		s.ErrorIs(err, job.ErrUnknownKind)
	})
}
