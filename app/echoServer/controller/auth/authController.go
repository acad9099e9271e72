package auth

import (
	"log/slog"
	"net/http"

	"bookcrossing/app/echoServer/principal"
	"bookcrossing/app/echoServer/validation"
	authsvc "bookcrossing/service/auth"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validation.Validator
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new account; the email must be unique
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /v1/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		default:
			ct.Log.Error("register failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// Sign in
// @Summary      Sign in
// @Description  Sign in with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  SignInReq  true  "Sign-in payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/auth/sign-in [post]
func (ct *Controller) SignIn(c echo.Context) error {
	var req SignInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	u, token, err := ct.Svc.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadCreds:
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		default:
			ct.Log.Error("sign-in failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

// POST /v1/auth/logout
func (ct *Controller) LogOut(c echo.Context) error {
	if err := ct.Svc.LogOut(c.Request().Context(), principal.JTI(c)); err != nil {
		ct.Log.Error("logout failed", "err", err, "req_id", reqID(c))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /v1/auth/password
func (ct *Controller) ChangePassword(c echo.Context) error {
	var req ChangePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := ct.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	user := principal.User(c)
	err := ct.Svc.ChangePassword(c.Request().Context(), *user, req.OldPassword, req.NewPassword, principal.JTI(c))
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadPass:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "wrong password"})
		default:
			ct.Log.Error("change password failed", "err", err, "req_id", reqID(c))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func reqID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
