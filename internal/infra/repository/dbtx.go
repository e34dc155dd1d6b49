package repository

import (
	"context"
	"log/slog"

	"garage-orchestrator/internal/infra"
	"garage-orchestrator/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// repoErr classifies a pgx error into a RepositoryError kind.
func repoErr(msg string, err error) error {
	kind := infra.KindDBFailure
	switch {
	case pgconv.IsNoRows(err):
		kind = infra.KindNotFound
	case pgconv.IsUniqueViolation(err):
		kind = infra.KindDuplicateKey
	case pgconv.IsForeignKeyViolation(err):
		kind = infra.KindForeignKeyViolated
	}
	return infra.WrapRepoErr(slog.Default(), kind, msg, err)
}

func notFound(msg string) error {
	return infra.WrapRepoErr(slog.Default(), infra.KindNotFound, msg, nil)
}

func pageLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}
