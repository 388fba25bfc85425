package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/rs/zerolog"
)

type SessionsHandler struct {
	Store *store.Store
	Log   zerolog.Logger
}

func (h *SessionsHandler) Register(g *echo.Group) {
	g.POST("", h.create)
}

// SignalRecording is one entry of CreateSessionRequest.Signals.
type SignalRecording struct {
	DeviceID         string   `json:"device_id"`
	SignalType       string   `json:"signal_type"`
	DurationSeconds  float64  `json:"duration_seconds"`
	SamplingRate     int      `json:"sampling_rate,omitempty"`
	Channels         int      `json:"channels,omitempty"`
	QualityScore     *float64 `json:"quality_score,omitempty"`
	ProcessingStatus string   `json:"processing_status,omitempty"`
	FilePath         string   `json:"file_path,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	ExperimentID    string            `json:"experiment_id"`
	ResearcherName  string            `json:"researcher_name"`
	SessionDate     string            `json:"session_date"`
	ParticipantID   string            `json:"participant_id,omitempty"`
	DurationMinutes int               `json:"duration_minutes,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Signals         []SignalRecording `json:"signals,omitempty"`
}

var sessionRequired = []string{"experiment_id", "researcher_name", "session_date"}

// create logs a recording session together with its signals.
//
//	@Summary	Log session
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	map[string]interface{}
//	@Failure	400	{object}	HTTPError
//	@Failure	404	{object}	HTTPError
//	@Failure	503	{object}	HTTPError
//	@Router		/api/sessions [post]
func (h *SessionsHandler) create(c echo.Context) error {
	var req CreateSessionRequest
	body, err := decodeBody(c, &req)
	if err != nil {
		return err
	}
	if missing := missingFields(body, sessionRequired...); len(missing) > 0 {
		return missingFieldsError(missing)
	}
	date, err := parseISO(req.SessionDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DurationMinutes < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must not be negative")
	}

	ctx := c.Request().Context()
	researcherID, err := h.Store.ResearcherIDByName(ctx, req.ResearcherName)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Researcher not found: "+req.ResearcherName)
		}
		return storeError(err)
	}
	in := store.NewSession{
		ExperimentID:    req.ExperimentID,
		ParticipantID:   req.ParticipantID,
		ResearcherID:    researcherID,
		SessionDate:     date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
	}
	for _, s := range req.Signals {
		in.Signals = append(in.Signals, store.NewSignal{
			DeviceID:         s.DeviceID,
			SignalType:       s.SignalType,
			DurationSeconds:  s.DurationSeconds,
			SamplingRate:     s.SamplingRate,
			Channels:         s.Channels,
			FilePath:         s.FilePath,
			QualityScore:     s.QualityScore,
			ProcessingStatus: s.ProcessingStatus,
			Notes:            s.Notes,
		})
	}
	sessionID, signalIDs, err := h.Store.CreateSession(ctx, in)
	if err != nil {
		return storeError(err)
	}
	h.Log.Info().Str("session_id", sessionID).Int("signals", len(signalIDs)).Msg("session logged")
	return c.JSON(http.StatusCreated, map[string]any{
		"message":    "Session logged successfully",
		"session_id": sessionID,
		"signal_ids": signalIDs,
	})
}
