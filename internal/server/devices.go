package server

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/rs/zerolog"
)

type DevicesHandler struct {
	Store *store.Store
	Log   zerolog.Logger
}

func (h *DevicesHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
}

// RegisterDeviceRequest is the body of POST /api/devices.
type RegisterDeviceRequest struct {
	Name           string          `json:"name"`
	DeviceType     string          `json:"device_type"`
	Manufacturer   string          `json:"manufacturer,omitempty"`
	Model          string          `json:"model,omitempty"`
	SamplingRate   int             `json:"sampling_rate,omitempty"`
	Channels       int             `json:"channels,omitempty"`
	Specifications json.RawMessage `json:"specifications,omitempty"`
	Status         string          `json:"status,omitempty"`
}

// create registers recording equipment.
//
//	@Summary	Register device
//	@Tags		devices
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	map[string]interface{}
//	@Failure	400	{object}	HTTPError
//	@Router		/api/devices [post]
func (h *DevicesHandler) create(c echo.Context) error {
	var req RegisterDeviceRequest
	body, err := decodeBody(c, &req)
	if err != nil {
		return err
	}
	if missing := missingFields(body, "name", "device_type"); len(missing) > 0 {
		return missingFieldsError(missing)
	}
	if req.SamplingRate < 0 || req.Channels < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "sampling_rate and channels must not be negative")
	}
	id, err := h.Store.RegisterDevice(c.Request().Context(), store.NewDevice{
		Name:           req.Name,
		DeviceType:     req.DeviceType,
		Manufacturer:   req.Manufacturer,
		Model:          req.Model,
		SamplingRate:   req.SamplingRate,
		Channels:       req.Channels,
		Specifications: jsonText(req.Specifications),
		Status:         req.Status,
	})
	if err != nil {
		return storeError(err)
	}
	h.Log.Info().Str("device_id", id).Str("name", req.Name).Msg("device registered")
	return c.JSON(http.StatusCreated, map[string]any{
		"message":   "Device registered successfully",
		"device_id": id,
		"name":      req.Name,
	})
}

func (h *DevicesHandler) list(c echo.Context) error {
	rows, err := h.Store.ListDevices(c.Request().Context())
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *DevicesHandler) get(c echo.Context) error {
	row, err := h.Store.DeviceSpecifications(c.Request().Context(), c.Param("id"))
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Device not found")
		}
		return storeError(err)
	}
	return c.JSON(http.StatusOK, row)
}
