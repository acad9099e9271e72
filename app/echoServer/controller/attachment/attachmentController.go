package attachment

import (
	"log/slog"
	"net/http"

	attachmentsvc "bookcrossing/service/attachment"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc attachmentsvc.Service
	Log *slog.Logger
}

// POST /v1/attachments  (multipart, field "file")
func (ct *Controller) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot read file"})
	}
	defer src.Close()

	a, err := ct.Svc.Upload(c.Request().Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, src)
	if err != nil {
		return ct.fail(c, err, "attachment upload")
	}
	return c.JSON(http.StatusCreated, a)
}

// GET /v1/attachments/:id
func (ct *Controller) Download(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	dl, err := ct.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "attachment download")
	}
	name := dl.Attachment.ID.String()
	if ext := dl.Attachment.Extension; ext != nil && *ext != "" {
		name += "." + *ext
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Blob(http.StatusOK, dl.Attachment.ContentType, dl.Data)
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch attachmentsvc.Code(err) {
	case attachmentsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "attachment not found"})
	case attachmentsvc.ErrEmpty:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "empty file"})
	case attachmentsvc.ErrTooLarge:
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"message": "file too large"})
	case attachmentsvc.ErrUnsupported:
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"message": "only png and jpeg are accepted"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
