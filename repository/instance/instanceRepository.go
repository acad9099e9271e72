package instancerepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error
	ByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	Update(ctx context.Context, inst *model.BookInstance) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error
	AllByBookAndStatuses(ctx context.Context, bookID uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error)
	AllByStatus(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error)
	AllByIDsAndStatuses(ctx context.Context, ids []uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error)
	AllByLocationID(ctx context.Context, locationID uuid.UUID) ([]model.BookInstance, error)
	AllByBookID(ctx context.Context, bookID uuid.UUID) ([]model.BookInstance, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const instCols = `id, book_id, description, condition, owner_id, photo_id, location_id, status, created_at`

func (r *repo) Create(ctx context.Context, tx *sql.Tx, inst *model.BookInstance) error {
	const q = `
		INSERT INTO book_instances (book_id, description, condition, owner_id, photo_id, location_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		inst.BookID, inst.Description, inst.Condition, inst.OwnerID,
		inst.PhotoID, inst.LocationID, inst.Status,
	).Scan(&inst.ID, &inst.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	q := `SELECT ` + instCols + ` FROM book_instances WHERE id = $1`
	inst := &model.BookInstance{}
	err := scanInstance(r.db.QueryRowContext(ctx, q, id), inst)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inst, nil
}

func (r *repo) Update(ctx context.Context, inst *model.BookInstance) error {
	const q = `
		UPDATE book_instances
		SET description = $2, condition = $3, photo_id = $4, location_id = $5, status = $6
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q,
		inst.ID, inst.Description, inst.Condition, inst.PhotoID, inst.LocationID, inst.Status,
	)
	return err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.InstanceStatus) error {
	const q = `UPDATE book_instances SET status = $2 WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status)
	return err
}

func (r *repo) AllByBookAndStatuses(ctx context.Context, bookID uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error) {
	ph, args := statusPlaceholders(statuses, 1)
	q := `SELECT ` + instCols + ` FROM book_instances WHERE book_id = $1 AND status IN (` + ph + `) ORDER BY created_at`
	return r.queryInstances(ctx, q, append([]any{bookID}, args...)...)
}

func (r *repo) AllByStatus(ctx context.Context, status model.InstanceStatus) ([]model.BookInstance, error) {
	q := `SELECT ` + instCols + ` FROM book_instances WHERE status = $1 ORDER BY created_at`
	return r.queryInstances(ctx, q, status)
}

func (r *repo) AllByIDsAndStatuses(ctx context.Context, ids []uuid.UUID, statuses []model.InstanceStatus) ([]model.BookInstance, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idPH := make([]string, len(ids))
	args := make([]any, 0, len(ids)+len(statuses))
	for i, id := range ids {
		idPH[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	stPH, stArgs := statusPlaceholders(statuses, len(ids))
	args = append(args, stArgs...)
	q := `SELECT ` + instCols + ` FROM book_instances WHERE id IN (` + strings.Join(idPH, ",") + `) AND status IN (` + stPH + `)`
	return r.queryInstances(ctx, q, args...)
}

func (r *repo) AllByLocationID(ctx context.Context, locationID uuid.UUID) ([]model.BookInstance, error) {
	q := `SELECT ` + instCols + ` FROM book_instances WHERE location_id = $1`
	return r.queryInstances(ctx, q, locationID)
}

func (r *repo) AllByBookID(ctx context.Context, bookID uuid.UUID) ([]model.BookInstance, error) {
	q := `SELECT ` + instCols + ` FROM book_instances WHERE book_id = $1`
	return r.queryInstances(ctx, q, bookID)
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	const q = `DELETE FROM book_instances WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) queryInstances(ctx context.Context, q string, args ...any) ([]model.BookInstance, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookInstance
	for rows.Next() {
		var inst model.BookInstance
		if err := scanInstance(rows, &inst); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanInstance(s scanner, inst *model.BookInstance) error {
	return s.Scan(
		&inst.ID, &inst.BookID, &inst.Description, &inst.Condition,
		&inst.OwnerID, &inst.PhotoID, &inst.LocationID, &inst.Status, &inst.CreatedAt,
	)
}

func statusPlaceholders(statuses []model.InstanceStatus, offset int) (string, []any) {
	ph := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, st := range statuses {
		ph[i] = fmt.Sprintf("$%d", offset+i+1)
		args[i] = st
	}
	return strings.Join(ph, ","), args
}
