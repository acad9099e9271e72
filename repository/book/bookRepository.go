package bookrepo

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
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	All(ctx context.Context) ([]model.Book, error)
	AllByIDsAndStatus(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error)
	AllByStatus(ctx context.Context, status model.BookStatus) ([]model.Book, error)
	Search(ctx context.Context, query string, limit int) ([]model.Book, error)
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error

	Favorite(ctx context.Context, userID, bookID uuid.UUID) error
	Unfavorite(ctx context.Context, userID, bookID uuid.UUID) error
	FavoriteBookIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	DeleteFavoritesByBookID(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) error
	DeleteFavoritesByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookCols = `id, name, author, isbn, genre, edition_year, publishing_company, language, cover, pages, size, cover_id, status`

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (name, author, isbn, genre, edition_year, publishing_company, language, cover, pages, size, cover_id, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		b.Name, b.Author, b.ISBN, b.Genre, b.EditionYear, b.PublishingCompany,
		b.Language, b.Cover, b.Pages, b.Size, b.CoverID, b.Status,
	).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET name = $2, author = $3, isbn = $4, genre = $5, edition_year = $6,
		    publishing_company = $7, language = $8, cover = $9, pages = $10,
		    size = $11, cover_id = $12, status = $13
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.Name, b.Author, b.ISBN, b.Genre, b.EditionYear, b.PublishingCompany,
		b.Language, b.Cover, b.Pages, b.Size, b.CoverID, b.Status,
	)
	return err
}

func (r *repo) ByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE id = $1`
	b := &model.Book{}
	err := scanBook(r.db.QueryRowContext(ctx, q, id), b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) All(ctx context.Context) ([]model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books ORDER BY name`
	return r.queryBooks(ctx, q)
}

func (r *repo) AllByIDsAndStatus(ctx context.Context, ids []uuid.UUID, status model.BookStatus) ([]model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, args := placeholders(ids, 1)
	q := `SELECT ` + bookCols + ` FROM books WHERE status = $1 AND id IN (` + ph + `)`
	return r.queryBooks(ctx, q, append([]any{status}, args...)...)
}

func (r *repo) AllByStatus(ctx context.Context, status model.BookStatus) ([]model.Book, error) {
	q := `SELECT ` + bookCols + ` FROM books WHERE status = $1 ORDER BY name`
	return r.queryBooks(ctx, q, status)
}

// Search ranks ACTIVE books by the best of an exact ISBN match, a websearch
// tsquery rank over name+author and a trigram similarity on either field.
func (r *repo) Search(ctx context.Context, query string, limit int) ([]model.Book, error) {
	q := `
		SELECT ` + bookCols + `
		FROM books
		WHERE status = 'ACTIVE'
		  AND (
		     isbn = $1
		     OR to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(author, ''))
		         @@ websearch_to_tsquery('simple', $1)
		     OR similarity(lower(coalesce(name, '')), lower($1)) > 0.7
		     OR similarity(lower(coalesce(author, '')), lower($1)) > 0.7
		  )
		ORDER BY GREATEST(
		    ts_rank(
		      to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(author, '')),
		      websearch_to_tsquery('simple', $1)
		    ),
		    similarity(lower(coalesce(name, '')), lower($1)),
		    similarity(lower(coalesce(author, '')), lower($1))
		) DESC
		LIMIT $2`
	return r.queryBooks(ctx, q, strings.TrimSpace(query), limit)
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	const q = `DELETE FROM books WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// Favorites

func (r *repo) Favorite(ctx context.Context, userID, bookID uuid.UUID) error {
	const q = `
		INSERT INTO book_favorites (user_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, userID, bookID)
	return err
}

func (r *repo) Unfavorite(ctx context.Context, userID, bookID uuid.UUID) error {
	const q = `DELETE FROM book_favorites WHERE user_id = $1 AND book_id = $2`
	_, err := r.db.ExecContext(ctx, q, userID, bookID)
	return err
}

func (r *repo) FavoriteBookIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT book_id FROM book_favorites WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repo) DeleteFavoritesByBookID(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) error {
	const q = `DELETE FROM book_favorites WHERE book_id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

func (r *repo) DeleteFavoritesByUserID(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	const q = `DELETE FROM book_favorites WHERE user_id = $1`
	_, err := tx.ExecContext(ctx, q, userID)
	return err
}

// helpers

func (r *repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface{ Scan(dest ...any) error }

func scanBook(s scanner, b *model.Book) error {
	return s.Scan(
		&b.ID, &b.Name, &b.Author, &b.ISBN, &b.Genre, &b.EditionYear,
		&b.PublishingCompany, &b.Language, &b.Cover, &b.Pages, &b.Size,
		&b.CoverID, &b.Status,
	)
}

func placeholders(ids []uuid.UUID, offset int) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", offset+i+1)
		args[i] = id
	}
	return strings.Join(ph, ","), args
}
