// Package a2a serves a single agent over HTTP: a signed card for discovery
// and a /process endpoint the router invokes.
package a2a

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Version is advertised on every agent card.
const Version = "1.0.0"

// Handler answers one forwarded request within the conversation contextID.
type Handler interface {
	Handle(ctx context.Context, req capability.Request, contextID string) (string, error)
}

type HandlerFunc func(ctx context.Context, req capability.Request, contextID string) (string, error)

func (f HandlerFunc) Handle(ctx context.Context, req capability.Request, contextID string) (string, error) {
	return f(ctx, req, contextID)
}

type errorBody struct {
	Error string `json:"error"`
}

type Server struct {
	card    capability.AgentCard
	secret  string
	handler Handler
	log     zerolog.Logger
}

// New seals card with secret. An empty secret serves an unsigned card and
// accepts unauthenticated requests.
func New(card capability.AgentCard, secret string, h Handler, log zerolog.Logger) (*Server, error) {
	sealed, err := capability.Seal(card, secret)
	if err != nil {
		return nil, err
	}
	return &Server{card: sealed, secret: secret, handler: h, log: log}, nil
}

func (s *Server) Card() capability.AgentCard { return s.card }

// Echo builds the HTTP surface of the agent.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))

	e.GET("/.well-known/agent.json", func(c echo.Context) error { return c.JSON(http.StatusOK, s.card) })
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/process", s.process, s.requireToken)
	return e
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.secret == "" {
			return next(c)
		}
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		tok, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || strings.TrimSpace(tok) == "" {
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
		}
		if _, err := capability.ParseServiceToken(strings.TrimSpace(tok), []byte(s.secret), s.card.Name); err != nil {
			s.log.Warn().Err(err).Str("ip", c.RealIP()).Msg("rejected service token")
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid service token"})
		}
		return next(c)
	}
}

func (s *Server) process(c echo.Context) error {
	var req capability.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "message is required"})
	}
	contextID := strings.TrimSpace(req.ContextID)
	if contextID == "" {
		contextID = uuid.NewString()
	}
	out, err := s.handler.Handle(c.Request().Context(), req, contextID)
	if err != nil {
		s.log.Error().Err(err).Str("context_id", contextID).Msg("process failed")
		return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, capability.Reply{Response: out, Agent: s.card.Name, ContextID: contextID})
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	e := s.Echo()
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("agent", s.card.Name).Msg("agent listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
