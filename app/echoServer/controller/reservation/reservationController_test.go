package reservation

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	"bookcrossing/model"
	reservationsvc "bookcrossing/service/reservation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type svcErr struct{ code reservationsvc.ErrCode }

func (e svcErr) Error() string                { return string(e.code) }
func (e svcErr) Code() reservationsvc.ErrCode { return e.code }

type mockService struct {
	createFn func(ctx context.Context, actor model.User, instanceID uuid.UUID) (*model.Reservation, error)
}

var _ reservationsvc.Service = (*mockService)(nil)

func (m *mockService) Create(ctx context.Context, actor model.User, instanceID uuid.UUID) (*model.Reservation, error) {
	if m.createFn == nil {
		return nil, nil
	}
	return m.createFn(ctx, actor, instanceID)
}

func (m *mockService) ForUser(ctx context.Context, user model.User) ([]model.Reservation, error) {
	return nil, nil
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	return nil
}

func (m *mockService) Confirm(ctx context.Context, actor model.User, id uuid.UUID) error {
	return nil
}

func TestCreate_UnavailableCopyIsForbidden(t *testing.T) {
	svc := &mockService{
		createFn: func(ctx context.Context, actor model.User, instanceID uuid.UUID) (*model.Reservation, error) {
			return nil, svcErr{code: reservationsvc.ErrNotAccessible}
		},
	}
	ct := &Controller{Svc: svc, V: validation.New(), Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	e := echo.New()
	body := `{"instance_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	principal.Set(c, &model.User{ID: uuid.New(), Role: model.RoleUser}, "jti")

	require.NoError(t, ct.Create(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}
