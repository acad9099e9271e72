package echoServer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/model"
	"bookcrossing/service/session"
	jwtutil "bookcrossing/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserLoader resolves the token subject to a live account.
type UserLoader interface {
	ByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

func RegisterMiddlewares(e *echo.Echo) {
	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// Principal runs after the JWT middleware has verified the signature. It
// rejects tokens whose session was force-expired, loads the account and
// stores it on the context.
func Principal(sessions session.Store, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := c.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			mc, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, err := jwtutil.FromClaims(mc)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			if !sessions.Valid(claims.JTI) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "session expired"})
			}
			u, err := users.ByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
			}
			if u == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			principal.Set(c, u, claims.JTI)
			return next(c)
		}
	}
}

// OptionalPrincipal is Principal for routes that also serve anonymous
// traffic. A missing or stale token just means no principal.
func OptionalPrincipal(secret string, sessions session.Store, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}
			tok, err := jwt.Parse(trimBearer(header), func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !tok.Valid {
				return next(c)
			}
			mc, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return next(c)
			}
			claims, err := jwtutil.FromClaims(mc)
			if err != nil || !sessions.Valid(claims.JTI) {
				return next(c)
			}
			u, err := users.ByID(c.Request().Context(), claims.UserID)
			if err != nil || u == nil {
				return next(c)
			}
			principal.Set(c, u, claims.JTI)
			return next(c)
		}
	}
}

func trimBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return header
}
