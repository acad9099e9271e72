package reservation

import (
	"log/slog"
	"net/http"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	reservationsvc "bookcrossing/service/reservation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reservationsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

type CreateReservationReq struct {
	InstanceID uuid.UUID `json:"instance_id" validate:"required"`
}

// Reserve a copy
// @Summary      Reserve a book instance
// @Description  Places a hold on an available copy. One hold per copy, at most five per user.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateReservationReq  true  "Reservation payload"
// @Success      201  {object}  model.Reservation
// @Failure      400  {object}  map[string]any "reservation limit reached"
// @Failure      403  {object}  map[string]any "copy is not available"
// @Failure      404  {object}  map[string]any "instance not found"
// @Failure      409  {object}  map[string]any "already reserved"
// @Router       /v1/reservations [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	res, err := ct.Svc.Create(c.Request().Context(), *principal.User(c), req.InstanceID)
	if err != nil {
		return ct.fail(c, err, "reservation create")
	}
	return c.JSON(http.StatusCreated, res)
}

// GET /v1/reservations/my
func (ct *Controller) My(c echo.Context) error {
	rows, err := ct.Svc.ForUser(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "reservation list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/reservations/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	res, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "reservation detail")
	}
	return c.JSON(http.StatusOK, res)
}

// DELETE /v1/reservations/:id  (holder or admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Delete(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "reservation delete")
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /v1/reservations/:id/confirm  (holder or admin)
func (ct *Controller) Confirm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Confirm(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "reservation confirm")
	}
	return c.NoContent(http.StatusNoContent)
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch reservationsvc.Code(err) {
	case reservationsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
	case reservationsvc.ErrInstanceNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "instance not found"})
	case reservationsvc.ErrAlreadyExists:
		return c.JSON(http.StatusConflict, echo.Map{"message": "instance already reserved"})
	case reservationsvc.ErrNotAccessible:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "instance is not available"})
	case reservationsvc.ErrLimitReached:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "reservation limit reached"})
	case reservationsvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case reservationsvc.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"message": "reservation is still referenced"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
