package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/api/handler"
	"github.com/crazylearners/portal/internal/api/middleware"
	"github.com/crazylearners/portal/internal/core/ports"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Sessions      ports.SessionManager
	Tutor         ports.TutorService
	Slots         ports.SlotStore
	StorageDriver string
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	sessionHandler := handler.NewSessionHandler(d.Sessions)
	authHandler := handler.NewAuthHandler(d.Sessions)
	tutorHandler := handler.NewTutorHandler(d.Tutor)

	v1 := e.Group("/v1")

	// --- Session (navigation bar, route guards) ---
	v1.GET("/session", sessionHandler.Get)
	v1.GET("/session/events", sessionHandler.Events)
	v1.GET("/me", sessionHandler.Me, middleware.RequireSession(d.Sessions))

	// --- Auth (login form) ---
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/logout", authHandler.Logout)

	// --- Tutor chat ---
	v1.GET("/tutor/messages", tutorHandler.List)
	v1.POST("/tutor/messages", tutorHandler.Ask)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Slots, d.Sessions, d.StorageDriver)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: is the slot store up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
