package instance

import (
	"log/slog"
	"net/http"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	"bookcrossing/model"
	instancesvc "bookcrossing/service/instance"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc instancesvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// GET /v1/books/:id/instances
// Anonymous callers see copies that can be picked up; admins also see
// reserved and disputed ones.
func (ct *Controller) ByBook(c echo.Context) error {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := ct.Svc.ByBookID(c.Request().Context(), bookID, principal.User(c))
	if err != nil {
		return ct.fail(c, err, "instance list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/instances
func (ct *Controller) Create(c echo.Context) error {
	var req CreateInstanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	inst, err := ct.Svc.Create(c.Request().Context(), *principal.User(c), instancesvc.CreateInput{
		BookID:      req.BookID,
		Description: req.Description,
		Condition:   model.InstanceCondition(req.Condition),
		PhotoID:     req.PhotoID,
		LocationID:  req.LocationID,
	})
	if err != nil {
		return ct.fail(c, err, "instance create")
	}
	return c.JSON(http.StatusCreated, inst)
}

// GET /v1/instances/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	inst, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "instance detail")
	}
	return c.JSON(http.StatusOK, inst)
}

// PATCH /v1/instances/:id  (admin)
func (ct *Controller) Modify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ModifyInstanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	inst, err := ct.Svc.Modify(c.Request().Context(), *principal.User(c), id, instancesvc.ModifyInput{
		Description: req.Description,
		Condition:   conditionPtr(req.Condition),
		PhotoID:     req.PhotoID,
		LocationID:  req.LocationID,
		Status:      statusPtr(req.Status),
	})
	if err != nil {
		return ct.fail(c, err, "instance modify")
	}
	return c.JSON(http.StatusOK, inst)
}

// DELETE /v1/instances/:id  (owner or admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Delete(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "instance delete")
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /v1/instances/:id/approve  (admin)
func (ct *Controller) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	inst, err := ct.Svc.Approve(c.Request().Context(), *principal.User(c), id)
	if err != nil {
		return ct.fail(c, err, "instance approve")
	}
	return c.JSON(http.StatusOK, inst)
}

// POST /v1/instances/:id/reject  (admin)
func (ct *Controller) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Reject(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "instance reject")
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/instances/moderation  (admin)
func (ct *Controller) ModerationList(c echo.Context) error {
	rows, err := ct.Svc.ModerationList(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "instance moderation list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch instancesvc.Code(err) {
	case instancesvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "instance not found"})
	case instancesvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case instancesvc.ErrPhotoNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "photo not found"})
	case instancesvc.ErrLocationNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "location not found"})
	case instancesvc.ErrModerationNotNeeded:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "instance is not in moderation"})
	case instancesvc.ErrAccessDenied:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
