package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/mohammad-safakhou/neurohub/internal/router"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the collaborators of the REST API. A nil Store answers every data
// endpoint with 503; a nil Router disables /api/ally.
type Deps struct {
	Store  *store.Store
	Router Dispatcher
	Log    zerolog.Logger
}

// New builds the echo instance with every route mounted.
func New(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	httpLog := logger.Component(deps.Log, "http")
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			httpLog.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		if c.Response().Committed {
			return
		}
		req := c.Request()
		ev := httpLog.Warn()
		if code >= http.StatusInternalServerError {
			ev = httpLog.Error()
		}
		ev.Err(err).Int("code", code).Str("method", req.Method).Str("path", req.URL.Path).Str("ip", c.RealIP()).Msg("request failed")
		_ = c.JSON(code, HTTPError{Error: msg})
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	registerDocs(e)

	api := e.Group("/api")
	(&ExperimentsHandler{Store: deps.Store, Log: deps.Log}).Register(api.Group("/experiments"))
	(&AnalysesHandler{Store: deps.Store, Log: deps.Log}).Register(api.Group("/analyses"))
	(&SessionsHandler{Store: deps.Store, Log: deps.Log}).Register(api.Group("/sessions"))
	(&DevicesHandler{Store: deps.Store, Log: deps.Log}).Register(api.Group("/devices"))
	(&SignalsHandler{Store: deps.Store}).Register(api.Group("/signals"))
	rh := &ResearchersHandler{Store: deps.Store, Log: deps.Log}
	rh.Register(api.Group("/researchers"))
	rh.RegisterCollaborations(api.Group("/collaborations"))
	(&AllyHandler{Router: deps.Router, Log: logger.Component(deps.Log, "ally")}).Register(api.Group("/ally"))
	return e
}

// Run serves the REST API until ctx is cancelled. An unreachable database
// is logged and the API keeps serving, answering data endpoints with 503.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dbCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Postgres.Timeout)
	st, err := store.NewWithDSN(dbCtx, cfg.Storage.Postgres.DSN())
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable; data endpoints will answer 503")
		st = nil
	} else {
		defer st.Close()
	}

	reg, err := capability.NewRegistryFromConfig(cfg)
	if err != nil {
		return err
	}
	rt := router.New(reg, logger.Component(log, "router"))

	e := New(Deps{Store: st, Router: rt, Log: log})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Address).Msg("listening")
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
