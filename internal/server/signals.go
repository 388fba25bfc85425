package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/store"
)

type SignalsHandler struct {
	Store *store.Store
}

func (h *SignalsHandler) Register(g *echo.Group) {
	g.GET("/recent", h.recent)
}

// recent returns the most recently recorded signals.
//
//	@Summary	Recent signals
//	@Tags		signals
//	@Param		limit	query	int	false	"Max rows (default 20)"
//	@Produce	json
//	@Success	200	{array}	map[string]interface{}
//	@Router		/api/signals/recent [get]
func (h *SignalsHandler) recent(c echo.Context) error {
	rows, err := h.Store.RecentSignals(c.Request().Context(), queryLimit(c))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, rows)
}
