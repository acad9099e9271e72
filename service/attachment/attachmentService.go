package attachmentsvc

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"bookcrossing/model"
	"bookcrossing/repository/blob"

	"github.com/google/uuid"
)

type ErrCode string

const (
	ErrNotFound    ErrCode = "ATTACHMENT_NOT_FOUND"
	ErrEmpty       ErrCode = "EMPTY_FILE"
	ErrTooLarge    ErrCode = "FILE_TOO_LARGE"
	ErrUnsupported ErrCode = "UNSUPPORTED_TYPE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// maxUploadSize caps a single upload at 15 MB.
const maxUploadSize = 15 << 20

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

type Repo interface {
	Create(ctx context.Context, a *model.Attachment) error
	ByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type Download struct {
	Attachment model.Attachment
	Data       []byte
}

type Service interface {
	Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*model.Attachment, error)
	Get(ctx context.Context, id uuid.UUID) (*Download, error)
}

type service struct {
	r     Repo
	blobs blob.Store
}

func New(r Repo, blobs blob.Store) Service {
	return &service{r: r, blobs: blobs}
}

func (s *service) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (*model.Attachment, error) {
	if size == 0 {
		return nil, makeErr(ErrEmpty)
	}
	if size >= maxUploadSize {
		return nil, makeErr(ErrTooLarge)
	}
	if !allowedTypes[contentType] {
		return nil, makeErr(ErrUnsupported)
	}

	a := &model.Attachment{ContentType: contentType}
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		a.Extension = &ext
	}
	if err := s.r.Create(ctx, a); err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, a.ID.String(), io.LimitReader(r, maxUploadSize)); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Download, error) {
	a, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, makeErr(ErrNotFound)
	}
	data, err := s.blobs.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return &Download{Attachment: *a, Data: data}, nil
}
