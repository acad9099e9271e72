package echoServer

import (
	"bookcrossing/app/echoServer/controller/attachment"
	"bookcrossing/app/echoServer/controller/auth"
	"bookcrossing/app/echoServer/controller/book"
	"bookcrossing/app/echoServer/controller/instance"
	"bookcrossing/app/echoServer/controller/location"
	"bookcrossing/app/echoServer/controller/report"
	"bookcrossing/app/echoServer/controller/reservation"
	"bookcrossing/app/echoServer/controller/user"
	"bookcrossing/service/session"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type C struct {
	Auth        *auth.Controller
	Book        *book.Controller
	Instance    *instance.Controller
	Location    *location.Controller
	Reservation *reservation.Controller
	Report      *report.Controller
	User        *user.Controller
	Attachment  *attachment.Controller

	JWTSecret string
	Sessions  session.Store
	Users     UserLoader
}

func Register(e *echo.Echo, c C) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/sign-in", c.Auth.SignIn)

	pub.GET("/books/search", c.Book.Search)
	pub.GET("/books/trends", c.Book.Trending)
	pub.GET("/books/:id", c.Book.Detail)
	// Copies are visible without a token; a valid one widens what admins see.
	pub.GET("/books/:id/instances", c.Instance.ByBook,
		OptionalPrincipal(c.JWTSecret, c.Sessions, c.Users))

	pub.GET("/locations", c.Location.List)
	pub.GET("/locations/:id", c.Location.Detail)

	pub.GET("/attachments/:id", c.Attachment.Download)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(Principal(c.Sessions, c.Users))

	authed.POST("/auth/logout", c.Auth.LogOut)
	authed.POST("/auth/password", c.Auth.ChangePassword)

	// Users
	authed.GET("/users", c.User.List)
	authed.GET("/users/me", c.User.Me)
	authed.GET("/users/me/favorites", c.Book.MyFavorites)
	authed.PATCH("/users/me", c.User.UpdateName)
	authed.GET("/users/:id", c.User.Detail)
	authed.DELETE("/users/:id", c.User.Delete)

	// Books
	authed.GET("/books", c.Book.List)
	authed.POST("/books", c.Book.Create)
	authed.GET("/books/moderation", c.Book.ModerationList)
	authed.GET("/books/recommendations", c.Book.Recommendations)
	authed.PATCH("/books/:id", c.Book.Modify)
	authed.DELETE("/books/:id", c.Book.Delete)
	authed.POST("/books/:id/approve", c.Book.Approve)
	authed.POST("/books/:id/reject", c.Book.Reject)
	authed.POST("/books/:id/favorite", c.Book.Favorite)
	authed.DELETE("/books/:id/favorite", c.Book.Unfavorite)

	// Instances
	authed.POST("/instances", c.Instance.Create)
	authed.GET("/instances/moderation", c.Instance.ModerationList)
	authed.GET("/instances/:id", c.Instance.Detail)
	authed.PATCH("/instances/:id", c.Instance.Modify)
	authed.DELETE("/instances/:id", c.Instance.Delete)
	authed.POST("/instances/:id/approve", c.Instance.Approve)
	authed.POST("/instances/:id/reject", c.Instance.Reject)

	// Locations (admin writes; reads are public)
	authed.POST("/locations", c.Location.Create)
	authed.PATCH("/locations/:id", c.Location.Modify)
	authed.DELETE("/locations/:id", c.Location.Delete)

	// Reservations
	authed.POST("/reservations", c.Reservation.Create)
	authed.GET("/reservations/my", c.Reservation.My)
	authed.GET("/reservations/:id", c.Reservation.Detail)
	authed.DELETE("/reservations/:id", c.Reservation.Delete)
	authed.POST("/reservations/:id/confirm", c.Reservation.Confirm)

	// Reports
	authed.GET("/reports", c.Report.List)
	authed.POST("/reports", c.Report.Create)
	authed.GET("/reports/:id", c.Report.Detail)
	authed.POST("/reports/:id/approve", c.Report.Approve)
	authed.POST("/reports/:id/reject", c.Report.Reject)

	// Attachments
	authed.POST("/attachments", c.Attachment.Upload)
}
