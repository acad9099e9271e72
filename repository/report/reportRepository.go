package reportrepo

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, rep *model.Report) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	All(ctx context.Context) ([]model.Report, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error
	DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, tx *sql.Tx, rep *model.Report) error {
	const q = `
		INSERT INTO reports (reservation_id, text)
		VALUES ($1, $2)
		RETURNING id`
	return tx.QueryRowContext(ctx, q, rep.ReservationID, rep.Text).Scan(&rep.ID)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	const q = `SELECT id, reservation_id, text FROM reports WHERE id = $1`
	rep := &model.Report{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(&rep.ID, &rep.ReservationID, &rep.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *repo) All(ctx context.Context) ([]model.Report, error) {
	const q = `SELECT id, reservation_id, text FROM reports`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(&rep.ID, &rep.ReservationID, &rep.Text); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	const q = `DELETE FROM reports WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) DeleteAllByInstanceID(ctx context.Context, tx *sql.Tx, instanceID uuid.UUID) error {
	const q = `
		DELETE FROM reports
		WHERE reservation_id IN (SELECT id FROM reservations WHERE instance_id = $1)`
	_, err := tx.ExecContext(ctx, q, instanceID)
	return err
}

func (r *repo) DeleteAllByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	const q = `
		DELETE FROM reports
		WHERE reservation_id IN (SELECT id FROM reservations WHERE user_id = $1)`
	_, err := tx.ExecContext(ctx, q, userID)
	return err
}
