package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"time"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/config"

	"github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 10

// SlotStore stores one JSON document per slot under {prefix}slot:{id} and
// keeps the ids in the {prefix}slots set. Updates are optimistic
// transactions on the single slot key.
type SlotStore struct {
	client *redis.Client
	keys   keyspace
	now    func() time.Time
	logger *slog.Logger
}

func NewSlotStore(client *redis.Client, cfg config.RedisConfig, logger *slog.Logger) *SlotStore {
	return &SlotStore{
		client: client,
		keys:   keyspace{prefix: cfg.Prefix, timeout: cfg.Timeout},
		now:    time.Now,
		logger: logger,
	}
}

func (s *SlotStore) slotKey(id string) string { return s.keys.key("slot:", id) }
func (s *SlotStore) indexKey() string         { return s.keys.key("slots") }

func (s *SlotStore) Get(ctx context.Context, id string) (*slot.Slot, error) {
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, s.slotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "slot not found", nil)
		}
		return nil, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to read slot", err)
	}
	return decodeSlot(data)
}

func (s *SlotStore) List(ctx context.Context) ([]slot.Slot, error) {
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to list slot ids", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.slotKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to read slots", err)
	}

	out := make([]slot.Slot, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// indexed but the document is gone
			s.logger.WarnContext(ctx, "slot document missing", slog.String("slot_id", ids[i]))
			continue
		}
		sl, err := decodeSlot([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, *sl)
	}
	return out, nil
}

func (s *SlotStore) ListByStatus(ctx context.Context, status slot.Status) ([]slot.Slot, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, sl := range all {
		if sl.Status == status {
			out = append(out, sl)
		}
	}
	return out, nil
}

// Update reads the slot under WATCH, checks the status guard and writes the
// mutated document in MULTI/EXEC. A concurrent writer aborts the transaction
// and the whole read-check-write is retried.
func (s *SlotStore) Update(ctx context.Context, id string, expect []slot.Status, mutate func(*slot.Slot)) (bool, error) {
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	key := s.slotKey(id)
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var applied bool
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}
			sl, err := decodeSlot(data)
			if err != nil {
				return err
			}
			if !slot.Contains(expect, sl.Status) {
				return nil
			}
			mutate(sl)
			sl.UpdatedAt = s.now().UTC()
			if err := sl.Validate(); err != nil {
				return err
			}
			payload, err := json.Marshal(sl)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, 0)
				return nil
			})
			if err == nil {
				applied = true
			}
			return err
		}, key)

		switch {
		case err == nil:
			return applied, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, redis.Nil):
			return false, infra.WrapRepoErr(s.logger, infra.KindNotFound, "slot not found", nil)
		case errors.Is(err, slot.ErrVehicleInvariant), errors.Is(err, slot.ErrConflictInvariant), errors.Is(err, slot.ErrInvalidStatus):
			return false, err
		default:
			return false, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to update slot", err)
		}
	}
	return false, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "slot update kept conflicting", redis.TxFailedErr)
}

// Put writes the document unconditionally and indexes it.
func (s *SlotStore) Put(ctx context.Context, sl *slot.Slot) error {
	if err := sl.Validate(); err != nil {
		return err
	}
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	if sl.UpdatedAt.IsZero() {
		sl.UpdatedAt = s.now().UTC()
	}
	payload, err := json.Marshal(sl)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to encode slot", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.slotKey(sl.ID), payload, 0)
		pipe.SAdd(ctx, s.indexKey(), sl.ID)
		return nil
	})
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to write slot", err)
	}
	return nil
}

func decodeSlot(data []byte) (*slot.Slot, error) {
	var sl slot.Slot
	if err := json.Unmarshal(data, &sl); err != nil {
		return nil, infra.NewRepositoryError(infra.KindStoreFailure, "corrupt slot document", err)
	}
	return &sl, nil
}
