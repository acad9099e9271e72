package user

import (
	"log/slog"
	"net/http"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	usersvc "bookcrossing/service/user"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc usersvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

type UpdateNameReq struct {
	Name string `json:"name" validate:"required"`
}

// GET /v1/users  (admin)
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.All(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "user list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/me
func (ct *Controller) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, principal.User(c))
}

// GET /v1/users/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "user detail")
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /v1/users/me
func (ct *Controller) UpdateName(c echo.Context) error {
	var req UpdateNameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	u, err := ct.Svc.UpdateName(c.Request().Context(), *principal.User(c), req.Name)
	if err != nil {
		return ct.fail(c, err, "user update")
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /v1/users/:id  (self or admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Delete(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "user delete")
	}
	return c.NoContent(http.StatusNoContent)
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch usersvc.Code(err) {
	case usersvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case usersvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case usersvc.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "account is still referenced"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
