//go:build e2e

// Package containers starts the Postgres and Redis instances the e2e and
// infrastructure tests run against. Each container is started once per test
// process; every caller gets its own database or key prefix.
package containers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"garage-orchestrator/internal/infra/db"
	"garage-orchestrator/internal/pkg/config"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "test"
	pgPassword = "testpass"
)

var (
	postgresOnce      sync.Once
	postgresContainer testcontainers.Container
	postgresErr       error

	redisOnce      sync.Once
	redisContainer testcontainers.Container
	redisErr       error

	migrationFiles = []string{
		"migrations/001_initial_schema.sql",
	}
)

type HostPort struct {
	Host string
	Port nat.Port
}

func startGeneric(req testcontainers.ContainerRequest, timeout time.Duration) (testcontainers.Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

func hostPort(c testcontainers.Container, port string) (HostPort, error) {
	ctx := context.Background()
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return HostPort{}, err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return HostPort{}, err
	}
	return HostPort{Host: host, Port: mapped}, nil
}

// Postgres returns the shared Postgres container, starting it on first use.
// Ryuk removes it when the test process exits.
func Postgres(t *testing.T) HostPort {
	t.Helper()
	postgresOnce.Do(func() {
		postgresContainer, postgresErr = startGeneric(testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=512m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "shared_buffers=256MB",
				"-c", "max_connections=200",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					pgUser, pgPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "e2e-tests"},
		}, 3*time.Minute)
	})
	require.NoError(t, postgresErr, "failed to start postgres container")

	hp, err := hostPort(postgresContainer, "5432/tcp")
	require.NoError(t, err, "failed to resolve postgres address")
	return hp
}

// Redis returns the shared Redis container, starting it on first use.
func Redis(t *testing.T) HostPort {
	t.Helper()
	redisOnce.Do(func() {
		redisContainer, redisErr = startGeneric(testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			Cmd:          []string{"redis-server", "--save", "", "--appendonly", "no"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Labels:       map[string]string{"purpose": "e2e-tests"},
		}, time.Minute)
	})
	require.NoError(t, redisErr, "failed to start redis container")

	hp, err := hostPort(redisContainer, "6379/tcp")
	require.NoError(t, err, "failed to resolve redis address")
	return hp
}

// RedisConfig points at the shared Redis with a prefix no other caller uses.
func RedisConfig(t *testing.T) config.RedisConfig {
	t.Helper()
	hp := Redis(t)
	return config.RedisConfig{
		Address:  fmt.Sprintf("%s:%s", hp.Host, hp.Port.Port()),
		Prefix:   "test-" + uuid.NewString()[:8] + ":",
		Timeout:  2 * time.Second,
		PoolSize: 5,
	}
}

// NewDatabase creates a fresh database with the schema applied and drops it
// when the test finishes.
func NewDatabase(t *testing.T) (*pgxpool.Pool, config.DBConfig) {
	t.Helper()
	hp := Postgres(t)

	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		pgUser, pgPassword, hp.Host, hp.Port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "failed to connect as admin")
	defer adminPool.Close()

	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(min(time.Duration(500+attempt*500)*time.Millisecond, 3*time.Second))
		}
		if _, createErr = adminPool.Exec(ctx, "CREATE DATABASE "+dbName); createErr == nil {
			break
		}
		slog.Warn("retrying database creation", "attempt", attempt+1, "error", createErr.Error())
	}
	require.NoError(t, createErr, "failed to create test database")

	dbConfig := config.DBConfig{
		Host:     hp.Host,
		Port:     hp.Port.Port(),
		User:     pgUser,
		Password: pgPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	pool, _, err := db.Connect(dbConfig)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, applyMigrations(ctx, pool), "failed to migrate test database")

	t.Cleanup(func() {
		pool.Close()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			slog.Warn("failed to connect for database cleanup", "database", dbName, "error", err.Error())
			return
		}
		defer cleanupPool.Close()
		if _, err := cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	return pool, dbConfig
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, file := range migrationFiles {
		sql, err := readFromRepoRoot(file)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}

// readFromRepoRoot resolves path against the package directory go test runs in.
func readFromRepoRoot(path string) ([]byte, error) {
	var lastErr error
	for depth := range 5 {
		parts := make([]string, 0, depth+1)
		for range depth {
			parts = append(parts, "..")
		}
		parts = append(parts, path)
		b, err := os.ReadFile(filepath.Join(parts...))
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to read %s: %w", path, lastErr)
}
