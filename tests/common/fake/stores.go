//go:build unit || e2e

package fake

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"garage-orchestrator/internal/domain/decision"
	"garage-orchestrator/internal/domain/job"
	"garage-orchestrator/internal/domain/permit"
	"garage-orchestrator/internal/domain/slot"

	"github.com/google/uuid"
)

// SlotStore is an in-memory live slot store with the same guard semantics as
// the Redis one.
type SlotStore struct {
	mu    sync.Mutex
	slots map[string]slot.Slot

	// Err fails every call when set.
	Err error
	// UpdateErr fails only Update.
	UpdateErr error
	// BeforeUpdate runs ahead of every Update, outside the store lock, so a
	// test can interleave another writer or fail one particular write.
	BeforeUpdate func(id string, expect []slot.Status) error
}

func NewSlotStore(slots ...*slot.Slot) *SlotStore {
	s := &SlotStore{slots: map[string]slot.Slot{}}
	for _, sl := range slots {
		s.slots[sl.ID] = *sl
	}
	return s
}

func (s *SlotStore) Get(_ context.Context, id string) (*slot.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sl, ok := s.slots[id]
	if !ok {
		return nil, notFound("slot")
	}
	return &sl, nil
}

// Slot returns the stored slot for assertions.
func (s *SlotStore) Slot(id string) slot.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[id]
}

func (s *SlotStore) List(_ context.Context) ([]slot.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]slot.Slot, 0, len(s.slots))
	for _, sl := range s.slots {
		out = append(out, sl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *SlotStore) ListByStatus(ctx context.Context, status slot.Status) ([]slot.Slot, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []slot.Slot
	for _, sl := range all {
		if sl.Status == status {
			out = append(out, sl)
		}
	}
	return out, nil
}

func (s *SlotStore) Update(_ context.Context, id string, expect []slot.Status, mutate func(*slot.Slot)) (bool, error) {
	if hook := s.BeforeUpdate; hook != nil {
		if err := hook(id, expect); err != nil {
			return false, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	if s.UpdateErr != nil {
		return false, s.UpdateErr
	}
	sl, ok := s.slots[id]
	if !ok {
		return false, notFound("slot")
	}
	if !slot.Contains(expect, sl.Status) {
		return false, nil
	}
	mutate(&sl)
	sl.UpdatedAt = time.Now()
	if err := sl.Validate(); err != nil {
		return false, err
	}
	s.slots[id] = sl
	return true, nil
}

func (s *SlotStore) Put(_ context.Context, sl *slot.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.slots[sl.ID] = *sl
	return nil
}

// ScheduledJob is a job recorded by Scheduler.
type ScheduledJob struct {
	ID        job.ID
	Queue     job.Queue
	Kind      job.Kind
	Payload   json.RawMessage
	Options   job.Options
	Cancelled bool
}

// Scheduler records scheduled jobs instead of running them.
type Scheduler struct {
	mu   sync.Mutex
	jobs []*ScheduledJob

	// ScheduleErr fails Schedule for the given kinds.
	ScheduleErr map[job.Kind]error
}

func NewScheduler() *Scheduler {
	return &Scheduler{ScheduleErr: map[job.Kind]error{}}
}

func (s *Scheduler) Schedule(_ context.Context, queue job.Queue, kind job.Kind, payload any, opts job.Options) (job.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ScheduleErr[kind]; err != nil {
		return uuid.Nil, err
	}
	raw, err := job.Encode(payload)
	if err != nil {
		return uuid.Nil, err
	}
	j := &ScheduledJob{ID: uuid.New(), Queue: queue, Kind: kind, Payload: raw, Options: opts}
	s.jobs = append(s.jobs, j)
	return j.ID, nil
}

func (s *Scheduler) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := make([]ScheduledJob, len(s.jobs))
	for i, j := range s.jobs {
		saved[i] = *j
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.jobs = s.jobs[:0]
		for i := range saved {
			j := saved[i]
			s.jobs = append(s.jobs, &j)
		}
	}
}

func (s *Scheduler) Cancel(_ context.Context, id job.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			j.Cancelled = true
		}
	}
	return nil
}

func (s *Scheduler) UpdatePayload(_ context.Context, id job.ID, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := job.Encode(payload)
	if err != nil {
		return err
	}
	for _, j := range s.jobs {
		if j.ID == id {
			j.Payload = raw
		}
	}
	return nil
}

// Pending returns the jobs of kind that were not cancelled.
func (s *Scheduler) Pending(kind job.Kind) []ScheduledJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ScheduledJob
	for _, j := range s.jobs {
		if j.Kind == kind && !j.Cancelled {
			out = append(out, *j)
		}
	}
	return out
}

// Job returns the recorded job with id.
func (s *Scheduler) Job(id job.ID) (ScheduledJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return *j, true
		}
	}
	return ScheduledJob{}, false
}

// AsJob turns a recorded job into the form a worker hands to a handler.
func (j ScheduledJob) AsJob() job.Job {
	return job.Job{ID: j.ID, Queue: j.Queue, Kind: j.Kind, Payload: j.Payload, Priority: j.Options.Priority}
}

type PermitStore struct {
	mu      sync.Mutex
	permits map[string]permit.EntryPermit

	PutErr error
}

func NewPermitStore() *PermitStore {
	return &PermitStore{permits: map[string]permit.EntryPermit{}}
}

func (p *PermitStore) Get(_ context.Context, plate string) (*permit.EntryPermit, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ep, ok := p.permits[plate]
	if !ok {
		return nil, nil
	}
	return &ep, nil
}

func (p *PermitStore) Put(_ context.Context, plate string, ep permit.EntryPermit, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PutErr != nil {
		return p.PutErr
	}
	p.permits[plate] = ep
	return nil
}

func (p *PermitStore) Delete(_ context.Context, plate string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.permits, plate)
	return nil
}

// Publisher records published gate decisions.
type Publisher struct {
	mu        sync.Mutex
	Responses []decision.GateResponse
}

func (p *Publisher) PublishDecision(_ context.Context, resp decision.GateResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Responses = append(p.Responses, resp)
	return nil
}

func (p *Publisher) Last() decision.GateResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Responses) == 0 {
		return decision.GateResponse{}
	}
	return p.Responses[len(p.Responses)-1]
}

// Broadcaster records live events.
type Broadcaster struct {
	mu     sync.Mutex
	Events []string
}

func (b *Broadcaster) Broadcast(event string, _ any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, event)
}
