package realtime

import (
	"context"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/usecase"
)

const EventSlotUpdated = "slot.updated"

// SlotFeed decorates a SlotStore and broadcasts every applied write.
type SlotFeed struct {
	usecase.SlotStore
	broadcaster usecase.Broadcaster
}

func NewSlotFeed(store usecase.SlotStore, broadcaster usecase.Broadcaster) *SlotFeed {
	return &SlotFeed{SlotStore: store, broadcaster: broadcaster}
}

func (f *SlotFeed) Update(ctx context.Context, id string, expect []slot.Status, mutate func(*slot.Slot)) (bool, error) {
	var after slot.Slot
	applied, err := f.SlotStore.Update(ctx, id, expect, func(s *slot.Slot) {
		mutate(s)
		after = *s
	})
	if err == nil && applied {
		f.broadcaster.Broadcast(EventSlotUpdated, after)
	}
	return applied, err
}

func (f *SlotFeed) Put(ctx context.Context, s *slot.Slot) error {
	if err := f.SlotStore.Put(ctx, s); err != nil {
		return err
	}
	f.broadcaster.Broadcast(EventSlotUpdated, *s)
	return nil
}
