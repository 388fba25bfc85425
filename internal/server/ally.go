package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/router"
	"github.com/rs/zerolog"
)

// Dispatcher routes a query to an agent and reports progress through emit.
type Dispatcher interface {
	Dispatch(ctx context.Context, q router.Query, emit func(router.Event)) error
}

// AllyHandler exposes the research assistant over Server-Sent Events.
type AllyHandler struct {
	Router Dispatcher
	Log    zerolog.Logger
}

func (h *AllyHandler) Register(g *echo.Group) {
	g.POST("/query", h.query)
}

// query streams router events, one `data: {json}` frame per event.
//
//	@Summary	Ask the research assistant
//	@Tags		ally
//	@Accept		json
//	@Produce	text/event-stream
//	@Success	200	{string}	string
//	@Failure	400	{object}	HTTPError
//	@Failure	503	{object}	HTTPError
//	@Router		/api/ally/query [post]
func (h *AllyHandler) query(c echo.Context) error {
	var req router.Query
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Message) == "" {
		return missingFieldsError([]string{"message"})
	}
	if h.Router == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, router.NoAgentsMessage)
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	flusher, _ := resp.Writer.(http.Flusher)

	emit := func(ev router.Event) {
		b, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(resp, "data: %s\n\n", b); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	if err := h.Router.Dispatch(c.Request().Context(), req, emit); err != nil {
		h.Log.Warn().Err(err).Msg("ally dispatch")
	}
	return nil
}
