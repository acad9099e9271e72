package location

import (
	"log/slog"
	"net/http"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	locationsvc "bookcrossing/service/location"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc locationsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// GET /v1/locations
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.All(c.Request().Context())
	if err != nil {
		return ct.fail(c, err, "location list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/locations/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	loc, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "location detail")
	}
	return c.JSON(http.StatusOK, loc)
}

// POST /v1/locations  (admin)
func (ct *Controller) Create(c echo.Context) error {
	var req locationsvc.CreateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	loc, err := ct.Svc.Create(c.Request().Context(), *principal.User(c), req)
	if err != nil {
		return ct.fail(c, err, "location create")
	}
	return c.JSON(http.StatusCreated, loc)
}

// PATCH /v1/locations/:id  (admin)
func (ct *Controller) Modify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req locationsvc.ModifyInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	loc, err := ct.Svc.Modify(c.Request().Context(), *principal.User(c), id, req)
	if err != nil {
		return ct.fail(c, err, "location modify")
	}
	return c.JSON(http.StatusOK, loc)
}

// DELETE /v1/locations/:id  (admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Delete(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "location delete")
	}
	return c.NoContent(http.StatusNoContent)
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch locationsvc.Code(err) {
	case locationsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "location not found"})
	case locationsvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
