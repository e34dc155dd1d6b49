package repository

import (
	"context"

	"garage-orchestrator/internal/domain/user"
	"garage-orchestrator/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, name, email, phone, password_hash, role, push_token, stripe_customer_id,
	has_outstanding_debt, is_active, last_login, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, repoErr("failed to find user by id", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email user.Email) (*user.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, q, email.Value()))
	if err != nil {
		return nil, repoErr("failed to find user by email", err)
	}
	return u, nil
}

// UpsertByPhone keeps an existing email when the new registration has none.
func (r *UserRepository) UpsertByPhone(ctx context.Context, u *user.User) (*user.User, error) {
	q := `INSERT INTO users (id, name, email, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO UPDATE SET
			name = EXCLUDED.name,
			email = COALESCE(EXCLUDED.email, users.email),
			updated_at = NOW()
		RETURNING ` + userColumns
	stored, err := scanUser(r.db.QueryRow(ctx, q,
		u.ID, u.Name, pgconv.StringPtrToPgtype(u.Email), pgconv.StringPtrToPgtype(u.Phone), u.Role.String(),
	))
	if err != nil {
		return nil, repoErr("failed to upsert user by phone", err)
	}
	return stored, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	const q = `INSERT INTO users (id, name, email, phone, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, q,
		u.ID, u.Name, pgconv.StringPtrToPgtype(u.Email), pgconv.StringPtrToPgtype(u.Phone),
		pgconv.StringPtrToPgtype(u.PasswordHash), u.Role.String(), u.IsActive,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return repoErr("failed to create user", err)
	}
	return nil
}

func (r *UserRepository) SetStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	return r.exec(ctx, "failed to store payment customer id",
		`UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`, id, customerID)
}

func (r *UserRepository) SetDebt(ctx context.Context, id uuid.UUID, debt bool) error {
	return r.exec(ctx, "failed to update user debt flag",
		`UPDATE users SET has_outstanding_debt = $2, updated_at = NOW() WHERE id = $1`, id, debt)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "failed to update user last login",
		`UPDATE users SET last_login = NOW() WHERE id = $1`, id)
}

func (r *UserRepository) exec(ctx context.Context, msg, q string, args ...any) error {
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return repoErr(msg, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("user not found")
	}
	return nil
}

func scanUser(row scanner) (*user.User, error) {
	var (
		u                             user.User
		role                          string
		email, phone, hash, push, cus pgtype.Text
		lastLogin                     pgtype.Timestamptz
	)
	err := row.Scan(
		&u.ID, &u.Name, &email, &phone, &hash, &role, &push, &cus,
		&u.HasOutstandingDebt, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = user.Role(role)
	u.Email = pgconv.StringPtrFromPgtype(email)
	u.Phone = pgconv.StringPtrFromPgtype(phone)
	u.PasswordHash = pgconv.StringPtrFromPgtype(hash)
	u.PushToken = pgconv.StringPtrFromPgtype(push)
	u.StripeCustomerID = pgconv.StringPtrFromPgtype(cus)
	u.LastLogin = pgconv.TimePtrFromPgtype(lastLogin)
	return &u, nil
}
