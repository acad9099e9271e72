package locationrepo

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, loc *model.Location) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	All(ctx context.Context) ([]model.Location, error)
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, loc *model.Location) error {
	const q = `
		INSERT INTO locations (address, extra, name, cap_limit)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, loc.Address, loc.Extra, loc.Name, loc.Limit).Scan(&loc.ID)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	const q = `SELECT id, address, extra, name, cap_limit FROM locations WHERE id = $1`
	loc := &model.Location{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(&loc.ID, &loc.Address, &loc.Extra, &loc.Name, &loc.Limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *repo) All(ctx context.Context) ([]model.Location, error) {
	const q = `SELECT id, address, extra, name, cap_limit FROM locations ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.Address, &loc.Extra, &loc.Name, &loc.Limit); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, loc *model.Location) error {
	const q = `UPDATE locations SET address = $2, extra = $3, name = $4, cap_limit = $5 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, loc.ID, loc.Address, loc.Extra, loc.Name, loc.Limit)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	const q = `DELETE FROM locations WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
