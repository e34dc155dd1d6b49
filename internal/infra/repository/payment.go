package repository

import (
	"context"

	"garage-orchestrator/internal/domain/payment"
	"garage-orchestrator/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	const q = `INSERT INTO payment_transactions (
		id, session_id, amount, method, status, payment_intent_id, checkout_url, paid_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, q,
		t.ID, t.SessionID, t.Amount, string(t.Method), string(t.Status),
		pgconv.StringPtrToPgtype(t.PaymentIntentID), pgconv.StringPtrToPgtype(t.CheckoutURL),
		pgconv.TimePtrToPgtype(t.PaidAt),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return repoErr("failed to create payment transaction", err)
	}
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, t *payment.Transaction) error {
	const q = `UPDATE payment_transactions
		SET status = $2, checkout_url = $3, paid_at = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, q,
		t.ID, string(t.Status), pgconv.StringPtrToPgtype(t.CheckoutURL), pgconv.TimePtrToPgtype(t.PaidAt),
	).Scan(&t.UpdatedAt)
	if err != nil {
		return repoErr("failed to update payment transaction", err)
	}
	return nil
}

func (r *PaymentRepository) FindLatestBySession(ctx context.Context, sessionID uuid.UUID) (*payment.Transaction, error) {
	const q = `SELECT id, session_id, amount, method, status, payment_intent_id, checkout_url, paid_at,
		created_at, updated_at
		FROM payment_transactions
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var (
		t              payment.Transaction
		method, status string
		intentID, url  pgtype.Text
		paidAt         pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, q, sessionID).Scan(
		&t.ID, &t.SessionID, &t.Amount, &method, &status, &intentID, &url, &paidAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, repoErr("failed to find payment transaction by session", err)
	}
	t.Method = payment.Method(method)
	t.Status = payment.Status(status)
	t.PaymentIntentID = pgconv.StringPtrFromPgtype(intentID)
	t.CheckoutURL = pgconv.StringPtrFromPgtype(url)
	t.PaidAt = pgconv.TimePtrFromPgtype(paidAt)
	return &t, nil
}
