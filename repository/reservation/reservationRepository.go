package reservationrepo

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ByInstanceID(ctx context.Context, instanceID uuid.UUID) (*model.Reservation, error)
	AllByUserID(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
	DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

// Create relies on the UNIQUE constraint on instance_id to reject a second
// hold on the same instance; callers map the violation to a conflict.
func (r *repo) Create(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `
		INSERT INTO reservations (instance_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`
	err := tx.QueryRowContext(ctx, q, res.InstanceID, res.UserID).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return err
	}
	res.ExpireAt = res.CreatedAt.Add(model.ReservationTTL)
	return nil
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	const q = `SELECT id, instance_id, user_id, created_at FROM reservations WHERE id = $1`
	return scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) ByInstanceID(ctx context.Context, instanceID uuid.UUID) (*model.Reservation, error) {
	const q = `SELECT id, instance_id, user_id, created_at FROM reservations WHERE instance_id = $1`
	return scanOne(r.db.QueryRowContext(ctx, q, instanceID))
}

func scanOne(row *sql.Row) (*model.Reservation, error) {
	res := &model.Reservation{}
	err := row.Scan(&res.ID, &res.InstanceID, &res.UserID, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res.ExpireAt = res.CreatedAt.Add(model.ReservationTTL)
	return res, nil
}

func (r *repo) AllByUserID(ctx context.Context, userID uuid.UUID) ([]model.Reservation, error) {
	const q = `
		SELECT id, instance_id, user_id, created_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.InstanceID, &res.UserID, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.ExpireAt = res.CreatedAt.Add(model.ReservationTTL)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	const q = `DELETE FROM reservations WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	const q = `DELETE FROM reservations WHERE instance_id = $1`
	_, err := tx.ExecContext(ctx, q, instanceID)
	return err
}

func (r *repo) DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	const q = `DELETE FROM reservations WHERE user_id = $1`
	_, err := tx.ExecContext(ctx, q, userID)
	return err
}
