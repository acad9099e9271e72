package book

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	"bookcrossing/model"
	booksvc "bookcrossing/service/book"
	recommendsvc "bookcrossing/service/recommend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc    booksvc.Service
	Rec    recommendsvc.Service
	Trends recommendsvc.TrendService
	V      *validation.Validator
	Log    *slog.Logger
}

// GET /v1/books  (admin)
func (ct *Controller) List(c echo.Context) error {
	rows, err := ct.Svc.All(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "book list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Create a book
// @Summary      Submit a book
// @Description  Admin submissions go live immediately, everyone else lands in moderation
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateBookReq  true  "Book payload"
// @Success      201  {object}  model.Book
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any "cover attachment not found"
// @Router       /v1/books [post]
func (ct *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	b, err := ct.Svc.Create(c.Request().Context(), *principal.User(c), booksvc.CreateInput{
		Name:              req.Name,
		Author:            req.Author,
		ISBN:              req.ISBN,
		Genre:             req.Genre,
		EditionYear:       req.EditionYear,
		PublishingCompany: req.PublishingCompany,
		Language:          req.Language,
		Cover:             model.BookCover(req.Cover),
		Pages:             req.Pages,
		Size:              model.BookSize(req.Size),
		CoverID:           req.CoverID,
	})
	if err != nil {
		return ct.fail(c, err, "book create")
	}
	return c.JSON(http.StatusCreated, b)
}

// PATCH /v1/books/:id  (admin)
func (ct *Controller) Modify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ModifyBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	b, err := ct.Svc.Modify(c.Request().Context(), *principal.User(c), id, booksvc.ModifyInput{
		Name:              req.Name,
		Author:            req.Author,
		ISBN:              req.ISBN,
		Genre:             req.Genre,
		EditionYear:       req.EditionYear,
		PublishingCompany: req.PublishingCompany,
		Language:          req.Language,
		Cover:             coverPtr(req.Cover),
		Pages:             req.Pages,
		Size:              sizePtr(req.Size),
		CoverID:           req.CoverID,
	})
	if err != nil {
		return ct.fail(c, err, "book modify")
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id  (admin)
func (ct *Controller) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Delete(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "book delete")
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/books/search?query=
func (ct *Controller) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "query is required"})
	}
	rows, err := ct.Svc.Search(c.Request().Context(), query)
	if err != nil {
		return ct.fail(c, err, "book search")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (ct *Controller) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := ct.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return ct.fail(c, err, "book detail")
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/books/:id/approve  (admin)
func (ct *Controller) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := ct.Svc.Approve(c.Request().Context(), *principal.User(c), id)
	if err != nil {
		return ct.fail(c, err, "book approve")
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/books/:id/reject  (admin)
func (ct *Controller) Reject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Reject(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "book reject")
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/books/moderation  (admin)
func (ct *Controller) ModerationList(c echo.Context) error {
	rows, err := ct.Svc.ModerationList(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "book moderation list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/books/:id/favorite
func (ct *Controller) Favorite(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Favorite(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "book favorite")
	}
	return c.NoContent(http.StatusNoContent)
}

// DELETE /v1/books/:id/favorite
func (ct *Controller) Unfavorite(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := ct.Svc.Unfavorite(c.Request().Context(), *principal.User(c), id); err != nil {
		return ct.fail(c, err, "book unfavorite")
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/users/me/favorites
func (ct *Controller) MyFavorites(c echo.Context) error {
	rows, err := ct.Svc.UserFavorites(c.Request().Context(), *principal.User(c))
	if err != nil {
		return ct.fail(c, err, "favorites list")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/recommendations?offset=&limit=
func (ct *Controller) Recommendations(c echo.Context) error {
	scored, err := ct.Rec.ForUser(c.Request().Context(), *principal.User(c))
	if err != nil {
		ct.Log.Error("recommendations failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	offset, limit := pageParams(c, 10)
	if offset > len(scored) {
		offset = len(scored)
	}
	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": scored[offset:end], "total": len(scored)})
}

// GET /v1/books/trends?since=
func (ct *Controller) Trending(c echo.Context) error {
	since := time.Now().Add(-7 * 24 * time.Hour)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid since, want RFC3339"})
		}
		since = parsed
	}
	rows, err := ct.Trends.Trends(c.Request().Context(), since)
	if err != nil {
		ct.Log.Error("trends failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (ct *Controller) fail(c echo.Context, err error, op string) error {
	switch booksvc.Code(err) {
	case booksvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case booksvc.ErrAttachmentNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "attachment not found"})
	case booksvc.ErrModerationNotNeeded:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not in moderation"})
	case booksvc.ErrAccessDenied:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	default:
		ct.Log.Error(op+" failed", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

func pageParams(c echo.Context, defaultLimit int) (offset, limit int) {
	limit = defaultLimit
	if raw := c.QueryParam("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return offset, limit
}
