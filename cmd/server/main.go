package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"woofpack/config"
	"woofpack/internal/database"
	"woofpack/internal/router"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	if cfg.Server.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	app := router.Setup(cfg, db, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if app.Bridge != nil {
		go app.Bridge.Run(ctx)
	}

	sched := cron.New()
	_, err = sched.AddFunc(cfg.Game.SpawnSweepSpec, func() {
		n, err := app.Collectibles.SweepExpired()
		if err != nil {
			log.Warn().Err(err).Msg("spawn sweep failed")
			return
		}
		if n > 0 {
			log.Info().Int64("deactivated", n).Msg("spawn sweep")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Game.SpawnSweepSpec).Msg("spawn sweep schedule")
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
