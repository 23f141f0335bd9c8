// Package app wires the portal together and owns its lifecycle.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/api"
	"github.com/crazylearners/portal/internal/core/service"
	"github.com/crazylearners/portal/internal/pkg/config"
	"github.com/crazylearners/portal/pkg/logger"
)

type App struct {
	httpServer *http.Server
	sessions   *service.AuthSessionManager
	log        zerolog.Logger
	cleanup    []func(context.Context) error
}

// New builds every component and initializes the session. Storage or
// provider problems degrade the process instead of failing it.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{log: log}

	slots, driver, closeSlots := setupStorage(ctx, cfg.Storage, log)
	a.cleanup = append(a.cleanup, closeSlots)

	sessions, closeProvider := setupSessions(cfg.Identity, slots, log)
	a.sessions = sessions
	a.cleanup = append(a.cleanup, closeProvider)

	tutor := setupTutor(ctx, cfg.Tutor, log)

	sessions.Initialize(ctx)

	router := api.NewRouter(api.Deps{
		Sessions:      sessions,
		Tutor:         tutor,
		Slots:         slots,
		StorageDriver: driver,
		Log:           logger.Component(log, "http"),
	})

	a.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return a, nil
}

// Run serves HTTP until Shutdown is called.
func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown closes the session first so open event streams end, then drains
// HTTP and releases storage.
func (a *App) Shutdown(ctx context.Context) error {
	a.sessions.Close()

	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
