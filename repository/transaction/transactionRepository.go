package transactionrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
	AllByTypeAndUserID(ctx context.Context, typ model.TransactionType, userID uuid.UUID) ([]model.Transaction, error)
	AllByTypeSince(ctx context.Context, typ model.TransactionType, since time.Time) ([]model.Transaction, error)
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
	DeleteAllByInstanceIDs(ctx context.Context, tx *sql.Tx, instanceIDs []uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	const q = `
		INSERT INTO transactions (type, instance_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return tx.QueryRowContext(ctx, q, t.Type, t.InstanceID, t.UserID, t.CreatedAt).Scan(&t.ID)
}

func (r *repo) AllByTypeAndUserID(ctx context.Context, typ model.TransactionType, userID uuid.UUID) ([]model.Transaction, error) {
	const q = `
		SELECT id, type, instance_id, user_id, created_at
		FROM transactions
		WHERE type = $1 AND user_id = $2`
	return r.query(ctx, q, typ, userID)
}

func (r *repo) AllByTypeSince(ctx context.Context, typ model.TransactionType, since time.Time) ([]model.Transaction, error) {
	const q = `
		SELECT id, type, instance_id, user_id, created_at
		FROM transactions
		WHERE type = $1 AND created_at > $2`
	return r.query(ctx, q, typ, since)
}

func (r *repo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	const q = `DELETE FROM transactions WHERE instance_id = $1`
	_, err := tx.ExecContext(ctx, q, instanceID)
	return err
}

func (r *repo) DeleteAllByInstanceIDs(ctx context.Context, tx *sql.Tx, instanceIDs []uuid.UUID) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	ph := make([]string, len(instanceIDs))
	args := make([]any, len(instanceIDs))
	for i, id := range instanceIDs {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := `DELETE FROM transactions WHERE instance_id IN (` + strings.Join(ph, ",") + `)`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

func (r *repo) query(ctx context.Context, q string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.InstanceID, &t.UserID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
