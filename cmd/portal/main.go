package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crazylearners/portal/internal/app"
	"github.com/crazylearners/portal/internal/pkg/config"
	"github.com/crazylearners/portal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "portal"})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "portal",
	})

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize app")
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal started")

	<-ctx.Done()

	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}

	log.Info().Msg("portal stopped cleanly")
}
