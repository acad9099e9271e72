// Package main bookcrossing API.
//
// @title           Bookcrossing API
// @version         1.0
// @description     Peer-to-peer book lending: books, instances, reservations, reports, recommendations.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"bookcrossing/app/echoServer"
	attachmentctrl "bookcrossing/app/echoServer/controller/attachment"
	authctrl "bookcrossing/app/echoServer/controller/auth"
	bookctrl "bookcrossing/app/echoServer/controller/book"
	instancectrl "bookcrossing/app/echoServer/controller/instance"
	locationctrl "bookcrossing/app/echoServer/controller/location"
	reportctrl "bookcrossing/app/echoServer/controller/report"
	reservationctrl "bookcrossing/app/echoServer/controller/reservation"
	userctrl "bookcrossing/app/echoServer/controller/user"
	"bookcrossing/app/echoServer/validation"
	"bookcrossing/config"
	attachmentrepo "bookcrossing/repository/attachment"
	"bookcrossing/repository/blob"
	bookrepo "bookcrossing/repository/book"
	instancerepo "bookcrossing/repository/instance"
	locationrepo "bookcrossing/repository/location"
	reportrepo "bookcrossing/repository/report"
	reservationrepo "bookcrossing/repository/reservation"
	transactionrepo "bookcrossing/repository/transaction"
	userrepo "bookcrossing/repository/user"
	attachmentsvc "bookcrossing/service/attachment"
	authsvc "bookcrossing/service/auth"
	booksvc "bookcrossing/service/book"
	instancesvc "bookcrossing/service/instance"
	locationsvc "bookcrossing/service/location"
	recommendsvc "bookcrossing/service/recommend"
	reportsvc "bookcrossing/service/report"
	reservationsvc "bookcrossing/service/reservation"
	"bookcrossing/service/session"
	usersvc "bookcrossing/service/user"
	"bookcrossing/util/database"

	"github.com/labstack/echo/v4"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	blobs, err := blob.NewFS(cfg.BlobDir)
	if err != nil {
		log.Error("blob store init failed", "err", err)
		os.Exit(1)
	}

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	ir := instancerepo.New(db)
	rr := reservationrepo.New(db)
	pr := reportrepo.New(db)
	tr := transactionrepo.New(db)
	lr := locationrepo.New(db)
	ar := attachmentrepo.New(db)

	sessions := session.NewMemory()

	// services
	as := authsvc.New(ur, sessions, cfg.JWTSecret)
	bs := booksvc.New(db, br, ar, ir, tr, rr, pr)
	is := instancesvc.New(db, ir, br, ar, lr, tr, rr, pr)
	rs := reservationsvc.New(db, rr, ir, tr)
	ps := reportsvc.New(db, pr, rr, ir, is)
	ls := locationsvc.New(db, lr, ir, rr, pr, tr)
	us := usersvc.New(db, ur, rr, ir, pr, br, sessions)
	ats := attachmentsvc.New(ar, blobs)
	recs := recommendsvc.New(br, ir, tr)
	trends := recommendsvc.NewTrends(br, ir, tr)

	// controllers
	v := validation.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Rec: recs, Trends: trends, V: v, Log: log}
	instanceC := &instancectrl.Controller{Svc: is, V: v, Log: log}
	locationC := &locationctrl.Controller{Svc: ls, V: v, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rs, V: v, Log: log}
	reportC := &reportctrl.Controller{Svc: ps, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	attachmentC := &attachmentctrl.Controller{Svc: ats, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = v

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{"status": "ok"})
	})

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Book:        bookC,
		Instance:    instanceC,
		Location:    locationC,
		Reservation: reservationC,
		Report:      reportC,
		User:        userC,
		Attachment:  attachmentC,

		JWTSecret: cfg.JWTSecret,
		Sessions:  sessions,
		Users:     ur,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)
	e.Logger.Fatal(e.Start(":" + port))
}
