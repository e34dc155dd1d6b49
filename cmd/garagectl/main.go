// Command garagectl provisions and operates a garage-orchestrator deployment.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"garage-orchestrator/internal/handler/middleware"
	"garage-orchestrator/internal/infra/db"
	"garage-orchestrator/internal/infra/redisstore"
	"garage-orchestrator/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "garagectl",
		Short:         "Provisioning and operations for the garage orchestrator",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(slotsCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(jobsCmd())
	rootCmd.AddCommand(usersCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env bundles what the commands share. Connections are opened lazily so
// commands that need neither store do not require them.
type env struct {
	cfg    config.Config
	logger *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: middleware.NewLogger(cfg.Log).GetSlogLogger()}, nil
}

func (e *env) postgres() (*pgxpool.Pool, func(), error) {
	return db.Connect(e.cfg.DB)
}

func (e *env) redis() (*redis.Client, error) {
	return redisstore.NewClient(e.cfg.Redis)
}
