package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atkinsj/dumpbin/internal/api"
	"github.com/atkinsj/dumpbin/internal/auth"
	"github.com/atkinsj/dumpbin/internal/config"
	"github.com/atkinsj/dumpbin/internal/database"
	"github.com/atkinsj/dumpbin/internal/logger"
	"github.com/atkinsj/dumpbin/internal/monitoring"
	"github.com/atkinsj/dumpbin/internal/publicid"
	"github.com/atkinsj/dumpbin/internal/services"
	"github.com/atkinsj/dumpbin/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up auth
	codec := auth.NewCodec([]byte(cfg.JWT.Secret))

	// Set up services
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, auth.BcryptVerifier{}, eventService)
	dumpService := services.NewDumpService(db, publicid.New(), eventService)

	gate := auth.NewGate(codec, userService)

	// Set up and run the expiration sweeper
	sweeper := monitoring.NewSweeper(dumpService, eventService, cfg.Sweep.Interval)
	go sweeper.Run()

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(db, hub, cfg.Stats.Interval)
	go statUpdater.Run()

	// Set up router
	router := api.NewRouter(api.RouterDeps{
		Hub:          hub,
		Gate:         gate,
		Codec:        codec,
		DumpService:  dumpService,
		UserService:  userService,
		EventService: eventService,
		CORSOrigin:   cfg.Server.CORSOrigin,
		SessionDays:  cfg.JWT.SessionDays,
		RememberDays: cfg.JWT.RememberDays,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()
	statUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
