package attachmentrepo

import (
	"context"
	"database/sql"
	"errors"

	"bookcrossing/model"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, a *model.Attachment) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, a *model.Attachment) error {
	const q = `
		INSERT INTO attachments (extension, content_type)
		VALUES ($1, $2)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, a.Extension, a.ContentType).Scan(&a.ID)
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	const q = `SELECT id, extension, content_type FROM attachments WHERE id = $1`
	a := &model.Attachment{}
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Extension, &a.ContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
