//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"garage-orchestrator/cmd/bootstrap"
	"garage-orchestrator/cmd/bootstrap/components"
	"garage-orchestrator/internal/infra/bus"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/usecase"
	"garage-orchestrator/tests/common/containers"
	"garage-orchestrator/tests/common/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

type environment struct {
	Router    *gin.Engine
	DB        *pgxpool.Pool
	Redis     *redis.Client
	Config    config.Config
	Bus       *Loopback
	Provision usecase.ProvisionUseCase
}

// ------------------------------------------------------------
// one isolated database, key prefix and running service per suite
// ------------------------------------------------------------
func setupE2EEnvironment(t *testing.T) environment {
	gin.SetMode(gin.TestMode)

	pool, dbConfig := containers.NewDatabase(t)
	cfg := createTestConfig(dbConfig, containers.RedisConfig(t))

	env := environment{DB: pool, Bus: NewLoopback()}
	app := buildE2EApp(t, pool, cfg, &env)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			slog.Warn("failed to stop fx app", "error", err.Error())
		}
	})

	return env
}

func buildE2EApp(t *testing.T, pool *pgxpool.Pool, cfg config.Config, env *environment) *fx.App {
	t.Helper()

	testDBModule := fx.Module("testdb",
		fx.Provide(func() *pgxpool.Pool { return pool }),
	)

	testConfigModule := fx.Module("testconfig",
		fx.Provide(func() config.Config { return cfg }),
	)

	testBusModule := fx.Module("testbus",
		fx.Provide(
			fx.Annotate(
				func() *Loopback { return env.Bus },
				fx.As(new(bus.Publisher), new(bus.Subscriber)),
			),
			func(cfg config.Config) bus.Topics { return bus.Topics{Prefix: cfg.Bus.TopicPrefix} },
		),
	)

	app := fx.New(
		testDBModule,
		testConfigModule,
		testBusModule,
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.RedisModule,
		bootstrap.TelemetryModule,
		bootstrap.JWTModule,
		components.PersistenceModule,
		components.IntegrationModule,
		components.UseCaseModule,
		components.HandlerModule,
		components.WorkerModule,

		fx.Populate(&env.Router, &env.Config, &env.Redis, &env.Provision),

		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx), "failed to start fx app")
	require.NotNil(t, env.Router, "router was not built")

	return app
}

func createTestConfig(dbConfig config.DBConfig, redisConfig config.RedisConfig) config.Config {
	cfg := config.NewTestConfig()
	cfg.DB = dbConfig
	cfg.Redis = redisConfig
	return cfg
}

// ------------------------------------------------------------
// shared setup for every e2e suite
// ------------------------------------------------------------
type SharedSuite struct {
	suite.Suite
	environment
}

func (s *SharedSuite) SetupSuite() {
	s.environment = setupE2EEnvironment(s.T())
	require.NotNil(s.T(), s.DB, "database setup failed")
	require.NotNil(s.T(), s.Router, "router setup failed")
}

func (s *SharedSuite) SetupTest() {
	s.reset()
}

func (s *SharedSuite) SetupSubTest() {
	s.reset()
}

func (s *SharedSuite) reset() {
	require.NoError(s.T(), dbtest.ResetDB(s.DB), "failed to reset database")

	ctx := context.Background()
	iter := s.Redis.Scan(ctx, 0, s.Config.Redis.Prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		require.NoError(s.T(), s.Redis.Del(ctx, iter.Val()).Err())
	}
	require.NoError(s.T(), iter.Err(), "failed to reset live store")

	s.Bus.Reset()
}

// Topics returns the topic names the service is configured with.
func (s *SharedSuite) Topics() bus.Topics {
	return bus.Topics{Prefix: s.Config.Bus.TopicPrefix}
}
