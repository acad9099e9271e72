package report

import (
	"log/slog"
	"net/http"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	reportsvc "bookcrossing/service/report"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reportsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

type CreateReportReq struct {
	ReservationID uuid.UUID `json:"reservation_id" validate:"required"`
	Text          string    `json:"text" validate:"required"`
}

// GET /v1/reports  (admin)
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.All(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "report list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/reports  (reservation holder)
func (ct *Controller) Create(c echo.Context) error {
	var req CreateReportReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	rep, err := ct.Svc.Create(c.Request().Context(), *principal.User(c), req.ReservationID, req.Text)
	if err != nil {
		return ct.fail(c, err, "report create")
	}
	return c.JSON(http.StatusCreated, rep)
}

// GET /v1/reports/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rep, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "report detail")
	}
	return c.JSON(http.StatusOK, rep)
}

// POST /v1/reports/:id/approve  (admin)
func (ct *Controller) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Approve(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "report approve")
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /v1/reports/:id/reject  (admin)
func (ct *Controller) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Reject(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "report reject")
	}
	return c.NoContent(http.StatusNoContent)
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch reportsvc.Code(err) {
	case reportsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "report not found"})
	case reportsvc.ErrReservationNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
	case reportsvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
