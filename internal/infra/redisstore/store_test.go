//go:build e2e

package redisstore_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/domain/permit"
	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/infra/redisstore"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/tests/common/containers"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	client  *redis.Client
	cfg     config.RedisConfig
	slots   *redisstore.SlotStore
	permits *redisstore.PermitStore
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupSuite() {
	s.cfg = containers.RedisConfig(s.T())
	client, err := redisstore.NewClient(s.cfg)
	s.Require().NoError(err)
	s.client = client

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.slots = redisstore.NewSlotStore(client, s.cfg, logger)
	s.permits = redisstore.NewPermitStore(client, s.cfg, logger)
}

func (s *StoreTestSuite) TearDownSuite() {
	if s.client != nil {
		s.NoError(s.client.Close())
	}
}

func (s *StoreTestSuite) SetupTest() {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.cfg.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		s.Require().NoError(s.client.Del(ctx, iter.Val()).Err())
	}
	s.Require().NoError(iter.Err())
}

func (s *StoreTestSuite) put(ids ...string) {
	for _, id := range ids {
		sl, err := slot.New(id)
		s.Require().NoError(err)
		s.Require().NoError(s.slots.Put(context.Background(), sl))
	}
}

func (s *StoreTestSuite) TestPutGetList() {
	ctx := context.Background()
	s.put("B-01", "A-02", "A-01")

	got, err := s.slots.Get(ctx, "A-01")
	s.Require().NoError(err)
	s.Equal(slot.StatusAvailable, got.Status)
	s.False(got.UpdatedAt.IsZero())

	all, err := s.slots.List(ctx)
	s.Require().NoError(err)
	ids := make([]string, len(all))
	for i := range all {
		ids[i] = all[i].ID
	}
	s.Equal([]string{"A-01", "A-02", "B-01"}, ids)

	_, err = s.slots.Get(ctx, "Z-99")
	s.True(infra.IsNotFound(err))
}

func (s *StoreTestSuite) TestPutRejectsInvalidDocument() {
	bad := &slot.Slot{ID: "A-01", Status: slot.StatusOccupied, CurrentVehicle: nil, ConflictDetails: &slot.ConflictDetails{}}

	s.Error(s.slots.Put(context.Background(), bad))
}

func (s *StoreTestSuite) TestUpdateGuard() {
	ctx := context.Background()
	s.put("A-01")
	sessionID := uuid.New()

	s.Run("applies when the status matches", func() {
		applied, err := s.slots.Update(ctx, "A-01", []slot.Status{slot.StatusAvailable}, func(sl *slot.Slot) {
			sl.Assign("ABC123", &sessionID)
		})
		s.Require().NoError(err)
		s.True(applied)

		got, err := s.slots.Get(ctx, "A-01")
		s.Require().NoError(err)
		s.Equal(slot.StatusAssigned, got.Status)
		s.Equal("ABC123", got.ExpectedPlate())
		s.Equal(&sessionID, got.SessionID())
	})

	s.Run("skips when the status does not match", func() {
		applied, err := s.slots.Update(ctx, "A-01", []slot.Status{slot.StatusAvailable}, func(sl *slot.Slot) {
			sl.Assign("XYZ789", nil)
		})
		s.Require().NoError(err)
		s.False(applied)

		got, err := s.slots.Get(ctx, "A-01")
		s.Require().NoError(err)
		s.Equal("ABC123", got.ExpectedPlate())
	})

	s.Run("unknown slot", func() {
		_, err := s.slots.Update(ctx, "Z-99", []slot.Status{slot.StatusAvailable}, (*slot.Slot).Release)
		s.True(infra.IsNotFound(err))
	})

	s.Run("mutation breaking the document is refused", func() {
		applied, err := s.slots.Update(ctx, "A-01", []slot.Status{slot.StatusAssigned}, func(sl *slot.Slot) {
			sl.Status = slot.StatusOccupied
			sl.CurrentVehicle = nil
			sl.ConflictDetails = &slot.ConflictDetails{ActualPlate: "XYZ789"}
		})
		s.Error(err)
		s.False(applied)
	})

	s.Run("list by status", func() {
		s.put("A-02")
		assigned, err := s.slots.ListByStatus(ctx, slot.StatusAssigned)
		s.Require().NoError(err)
		s.Require().Len(assigned, 1)
		s.Equal("A-01", assigned[0].ID)
	})
}

func (s *StoreTestSuite) TestConcurrentAssignmentHasOneWinner() {
	ctx := context.Background()
	s.put("A-01")

	const contenders = 8
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		errCh   = make(chan error, contenders)
	)
	for i := range contenders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plate := string(rune('A'+i)) + "BC123"
			applied, err := s.slots.Update(ctx, "A-01", []slot.Status{slot.StatusAvailable}, func(sl *slot.Slot) {
				sl.Assign(plate, nil)
			})
			if err != nil {
				errCh <- err
				return
			}
			if applied {
				winners.Add(1)
			}
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		s.NoError(err)
	}
	s.Equal(int32(1), winners.Load())
}

func (s *StoreTestSuite) TestPermits() {
	ctx := context.Background()
	intent := "pi_123"
	p := permit.EntryPermit{
		UserID:           uuid.New(),
		VehicleID:        uuid.New(),
		PaymentIntentID:  &intent,
		PaymentType:      payment.MethodCard,
		ExpectedExitTime: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}

	s.Run("round trip and delete", func() {
		s.Require().NoError(s.permits.Put(ctx, "ABC123", p, time.Minute))

		got, err := s.permits.Get(ctx, "ABC123")
		s.Require().NoError(err)
		s.Require().NotNil(got)
		s.Equal(p.UserID, got.UserID)
		s.Equal(intent, *got.PaymentIntentID)
		s.True(p.ExpectedExitTime.Equal(got.ExpectedExitTime))

		s.Require().NoError(s.permits.Delete(ctx, "ABC123"))
		got, err = s.permits.Get(ctx, "ABC123")
		s.NoError(err)
		s.Nil(got)
	})

	s.Run("expires with its ttl", func() {
		s.Require().NoError(s.permits.Put(ctx, "XYZ789", p, time.Second))

		ttl, err := s.client.TTL(ctx, s.cfg.Prefix+permit.Key("XYZ789")).Result()
		s.Require().NoError(err)
		s.Greater(ttl, time.Duration(0))

		assert.Eventually(s.T(), func() bool {
			got, err := s.permits.Get(ctx, "XYZ789")
			return err == nil && got == nil
		}, 5*time.Second, 100*time.Millisecond)
	})

	s.Run("missing permit is not an error", func() {
		got, err := s.permits.Get(ctx, "NONE01")
		require.NoError(s.T(), err)
		s.Nil(got)
	})
}
