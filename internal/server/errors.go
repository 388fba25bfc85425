package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/mohammad-safakhou/neurohub/internal/store"
)

// HTTPError is the JSON body written for every failed request.
type HTTPError struct {
	Error string `json:"error"`
}

// storeError maps a Query Layer failure to an HTTP error.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	switch {
	case errors.Is(err, store.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Database connection not available").SetInternal(err)
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found").SetInternal(err)
	case errors.Is(err, store.ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), store.ErrInvalid.Error()+": ")).SetInternal(err)
	case errors.As(err, &pqErr):
		switch pqErr.Code {
		case "23503":
			return echo.NewHTTPError(http.StatusNotFound, "referenced record does not exist").SetInternal(err)
		case "23505":
			return echo.NewHTTPError(http.StatusConflict, "record already exists").SetInternal(err)
		case "23514", "22P02", "22007", "22008":
			return echo.NewHTTPError(http.StatusBadRequest, pqErr.Message).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}

// missingFields lists required keys absent from body, or present as null or
// an empty string, in the order given.
func missingFields(body map[string]any, required ...string) []string {
	var missing []string
	for _, k := range required {
		v, ok := body[k]
		if !ok || v == nil {
			missing = append(missing, k)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

func missingFieldsError(missing []string) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
}

func isNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }
