package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"garage-orchestrator/internal/domain/permit"
	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/config"

	"github.com/redis/go-redis/v9"
)

// PermitStore keeps walk-in entry permits under {prefix}entry-permit:{plate}
// and lets Redis expire them.
type PermitStore struct {
	client *redis.Client
	keys   keyspace
	logger *slog.Logger
}

func NewPermitStore(client *redis.Client, cfg config.RedisConfig, logger *slog.Logger) *PermitStore {
	return &PermitStore{
		client: client,
		keys:   keyspace{prefix: cfg.Prefix, timeout: cfg.Timeout},
		logger: logger,
	}
}

func (s *PermitStore) Get(ctx context.Context, plate string) (*permit.EntryPermit, error) {
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, s.keys.key(permit.Key(plate))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to read entry permit", err)
	}
	var p permit.EntryPermit
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "corrupt entry permit", err)
	}
	return &p, nil
}

func (s *PermitStore) Put(ctx context.Context, plate string, p permit.EntryPermit, ttl time.Duration) error {
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(p)
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to encode entry permit", err)
	}
	if err := s.client.Set(ctx, s.keys.key(permit.Key(plate)), payload, ttl).Err(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to write entry permit", err)
	}
	return nil
}

func (s *PermitStore) Delete(ctx context.Context, plate string) error {
	ctx, cancel := s.keys.withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, s.keys.key(permit.Key(plate))).Err(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindStoreFailure, "failed to delete entry permit", err)
	}
	return nil
}
