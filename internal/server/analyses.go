package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/rs/zerolog"
)

type AnalysesHandler struct {
	Store *store.Store
	Log   zerolog.Logger
}

func (h *AnalysesHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("/recent", h.recent)
}

// CreateAnalysisRequest is the body of POST /api/analyses. Parameters and
// Results are opaque JSON.
type CreateAnalysisRequest struct {
	SignalID        string          `json:"signal_id"`
	ResearcherName  string          `json:"researcher_name"`
	AnalysisType    string          `json:"analysis_type"`
	Parameters      json.RawMessage `json:"parameters"`
	Results         json.RawMessage `json:"results"`
	Findings        string          `json:"findings"`
	ConfidenceScore float64         `json:"confidence_score"`
	AnalyzedAt      string          `json:"analyzed_at,omitempty"`
}

var analysisRequired = []string{"signal_id", "researcher_name", "analysis_type", "parameters", "results", "findings", "confidence_score"}

// create stores an analysis report for a signal.
//
//	@Summary	Create analysis report
//	@Tags		analyses
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	map[string]interface{}
//	@Failure	400	{object}	HTTPError
//	@Failure	404	{object}	HTTPError
//	@Failure	503	{object}	HTTPError
//	@Router		/api/analyses [post]
func (h *AnalysesHandler) create(c echo.Context) error {
	var req CreateAnalysisRequest
	body, err := decodeBody(c, &req)
	if err != nil {
		return err
	}
	if missing := missingFields(body, analysisRequired...); len(missing) > 0 {
		return missingFieldsError(missing)
	}
	if req.ConfidenceScore < 0 || req.ConfidenceScore > 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "confidence_score must be between 0 and 1")
	}
	analyzedAt := time.Now().UTC()
	if req.AnalyzedAt != "" {
		if analyzedAt, err = parseISO(req.AnalyzedAt); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	ctx := c.Request().Context()
	researcherID, err := h.Store.ResearcherIDByName(ctx, req.ResearcherName)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Researcher not found: "+req.ResearcherName)
		}
		return storeError(err)
	}
	id, err := h.Store.CreateAnalysis(ctx, store.NewAnalysis{
		SignalID:        req.SignalID,
		ResearcherID:    researcherID,
		AnalysisType:    req.AnalysisType,
		Parameters:      jsonText(req.Parameters),
		Results:         jsonText(req.Results),
		Findings:        req.Findings,
		ConfidenceScore: req.ConfidenceScore,
		AnalyzedAt:      analyzedAt,
	})
	if err != nil {
		return storeError(err)
	}
	h.Log.Info().Str("analysis_id", id).Str("signal_id", req.SignalID).Msg("analysis created")
	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "Analysis report created successfully",
		"analysis_id": id,
		"signal_id":   req.SignalID,
		"researcher":  req.ResearcherName,
	})
}

// recent returns the latest analyses.
//
//	@Summary	Recent analyses
//	@Tags		analyses
//	@Param		limit	query	int	false	"Max rows (default 20)"
//	@Produce	json
//	@Success	200	{array}	map[string]interface{}
//	@Router		/api/analyses/recent [get]
func (h *AnalysesHandler) recent(c echo.Context) error {
	rows, err := h.Store.RecentAnalyses(c.Request().Context(), queryLimit(c))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

func queryLimit(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
