// Package principal carries the authenticated user through the request
// context once the token and session have been verified.
package principal

import (
	"bookcrossing/model"

	"github.com/labstack/echo/v4"
)

const (
	userKey = "principal.user"
	jtiKey  = "principal.jti"
)

func Set(c echo.Context, u *model.User, jti string) {
	c.Set(userKey, u)
	c.Set(jtiKey, jti)
}

// User returns the authenticated user, or nil on unauthenticated routes.
func User(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

func JTI(c echo.Context) string {
	jti, _ := c.Get(jtiKey).(string)
	return jti
}
