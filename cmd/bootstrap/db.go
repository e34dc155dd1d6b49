package bootstrap

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/infra/db"
	"garage-orchestrator/internal/pkg/config"
	"garage-orchestrator/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

// tables the service cannot start without; garagectl migrate creates them
var requiredTables = []string{"users", "ledger_slots", "parking_sessions", "payment_transactions", "jobs"}

func NewDB(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := checkSchema(ctx, pool); err != nil {
				return err
			}
			stat := pool.Stat()
			logger.Info("database ready",
				slog.String("host", cfg.DB.Host),
				slog.String("database", cfg.DB.DBName),
				slog.Int("max_conns", int(stat.MaxConns())),
			)
			return nil
		},
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}

func checkSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range requiredTables {
		var exists bool
		if err := pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists); err != nil {
			return errs.Wrap(err, "check schema")
		}
		if !exists {
			return errs.Newf("table %q is missing, run garagectl migrate", table)
		}
	}
	return nil
}
