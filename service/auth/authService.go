package authsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookcrossing/model"
	"bookcrossing/service/session"
	"bookcrossing/util/hash"
	jwtutil "bookcrossing/util/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"
	ErrBadCreds   ErrCode = "BAD_CREDENTIALS"
	ErrBadPass    ErrCode = "BAD_PASSWORD"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const tokenTTL = 24 * time.Hour

type UserRepo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type Service interface {
	Register(ctx context.Context, email, password, name string) (*model.User, string, error)
	SignIn(ctx context.Context, email, password string) (*model.User, string, error)
	LogOut(ctx context.Context, jti string) error
	ChangePassword(ctx context.Context, user model.User, oldPassword, newPassword, currentJTI string) error
}

type service struct {
	ur       UserRepo
	sessions session.Store
	secret   string
}

func New(ur UserRepo, sessions session.Store, secret string) Service {
	return &service{ur: ur, sessions: sessions, secret: secret}
}

func (s *service) Register(ctx context.Context, email, password, name string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if existing, err := s.ur.ByEmail(ctx, email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", makeErr(ErrEmailTaken)
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Email:        email,
		Role:         model.RoleUser,
		Name:         name,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		// The pre-check races with concurrent registration; the unique index
		// on email is authoritative.
		if isUniqueViolation(err) {
			return nil, "", makeErr(ErrEmailTaken)
		}
		return nil, "", err
	}

	return s.issue(u)
}

func (s *service) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.ur.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, password) {
		return nil, "", makeErr(ErrBadCreds)
	}
	return s.issue(u)
}

func (s *service) LogOut(ctx context.Context, jti string) error {
	s.sessions.Revoke(jti)
	return nil
}

func (s *service) ChangePassword(ctx context.Context, user model.User, oldPassword, newPassword, currentJTI string) error {
	if !hash.Check(user.PasswordHash, oldPassword) {
		return makeErr(ErrBadPass)
	}
	hashed, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.ur.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	s.sessions.RevokeOthers(user.ID, currentJTI)
	return nil
}

func (s *service) issue(u *model.User) (*model.User, string, error) {
	token, jti, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTL)
	if err != nil {
		return nil, "", err
	}
	s.sessions.Register(u.ID, jti)
	return u, token, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
