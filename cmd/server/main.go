package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/calendar"
	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/database"
	"github.com/iliyamo/room-reservation/internal/email"
	"github.com/iliyamo/room-reservation/internal/handler"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/router"
	"github.com/iliyamo/room-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()
	gCfg := config.LoadGoogleConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)

	svc := service.NewReservationService(rooms, reservations, &queue.Publisher{})

	// Confirmation mail is optional: without SMTP_HOST the consumer only
	// logs confirmed events.
	var mailer *email.Service
	if cfg.SMTPHost != "" {
		mailer, err = email.NewService(email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
		})
		if err != nil {
			log.Fatalf("smtp: %v", err)
		}
	}

	// Calendar sync is equally optional and needs service-account
	// credentials on disk.
	var cal *calendar.Service
	if gCfg.Enabled() {
		cal, err = calendar.NewService(calendar.Config{
			CredentialsFile: gCfg.CredentialsFile,
			Scope:           gCfg.CalendarScope,
			CalendarID:      gCfg.CalendarID,
			Timezone:        gCfg.Timezone,
		})
		if err != nil {
			log.Fatalf("calendar: %v", err)
		}
	}

	go queue.StartConfirmationConsumer(mailer, cal)

	e := echo.New()
	router.Register(e, router.Deps{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Rooms:        handler.NewRoomHandler(rooms),
		Reservations: handler.NewReservationHandler(svc),
		JWTSecret:    cfg.JWTSecret,
		RateLimit:    rlCfg,
		Cache:        cacheCfg,
		Rdb:          rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
