package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/export"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/rs/zerolog"
)

type ExperimentsHandler struct {
	Store *store.Store
	Log   zerolog.Logger
}

func (h *ExperimentsHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.GET("/:id/export", h.export)
	g.GET("/:id/lineage", h.lineage)
}

// CreateExperimentRequest is the body of POST /api/experiments.
type CreateExperimentRequest struct {
	ExperimentName            string   `json:"experiment_name"`
	Description               string   `json:"description"`
	Protocol                  string   `json:"protocol"`
	Hypothesis                string   `json:"hypothesis"`
	PrincipalInvestigatorName string   `json:"principal_investigator_name"`
	StartDate                 string   `json:"start_date"`
	EndDate                   string   `json:"end_date,omitempty"`
	Status                    string   `json:"status,omitempty"`
	DeviceIDs                 []string `json:"device_ids,omitempty"`
}

var experimentRequired = []string{"experiment_name", "description", "protocol", "hypothesis", "principal_investigator_name", "start_date"}

// create registers a new experiment under a principal investigator.
//
//	@Summary	Create experiment
//	@Tags		experiments
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	map[string]interface{}
//	@Failure	400	{object}	HTTPError
//	@Failure	404	{object}	HTTPError
//	@Failure	503	{object}	HTTPError
//	@Router		/api/experiments [post]
func (h *ExperimentsHandler) create(c echo.Context) error {
	var req CreateExperimentRequest
	body, err := decodeBody(c, &req)
	if err != nil {
		return err
	}
	if missing := missingFields(body, experimentRequired...); len(missing) > 0 {
		return missingFieldsError(missing)
	}
	start, err := parseISO(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := store.NewExperiment{
		Name:        req.ExperimentName,
		Description: req.Description,
		Protocol:    req.Protocol,
		Hypothesis:  req.Hypothesis,
		Status:      req.Status,
		StartDate:   start,
	}
	if req.EndDate != "" {
		end, err := parseISO(req.EndDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.EndDate = &end
	}
	if in.Status != "" && !store.ValidExperimentStatus(in.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be one of planning, active, completed, archived")
	}

	ctx := c.Request().Context()
	piID, err := h.Store.ResearcherIDByName(ctx, req.PrincipalInvestigatorName)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Principal investigator not found: "+req.PrincipalInvestigatorName)
		}
		return storeError(err)
	}
	in.PrincipalInvestigatorID = piID
	id, err := h.Store.CreateExperiment(ctx, in)
	if err != nil {
		return storeError(err)
	}
	for _, deviceID := range req.DeviceIDs {
		if err := h.Store.LinkExperimentDevice(ctx, id, deviceID, ""); err != nil {
			h.Log.Warn().Err(err).Str("experiment_id", id).Str("device_id", deviceID).Msg("link device")
		}
	}
	h.Log.Info().Str("experiment_id", id).Str("pi", req.PrincipalInvestigatorName).Msg("experiment created")
	return c.JSON(http.StatusCreated, map[string]any{
		"message":                "Experiment created successfully",
		"experiment_id":          id,
		"name":                   req.ExperimentName,
		"principal_investigator": req.PrincipalInvestigatorName,
	})
}

// list returns every experiment with its principal investigator.
//
//	@Summary	List experiments
//	@Tags		experiments
//	@Produce	json
//	@Success	200	{array}	map[string]interface{}
//	@Failure	503	{object}	HTTPError
//	@Router		/api/experiments [get]
func (h *ExperimentsHandler) list(c echo.Context) error {
	rows, err := h.Store.ListExperiments(c.Request().Context())
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

// get returns one experiment with its devices and sessions.
//
//	@Summary	Experiment details
//	@Tags		experiments
//	@Param		id	path	string	true	"Experiment ID"
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	404	{object}	HTTPError
//	@Router		/api/experiments/{id} [get]
func (h *ExperimentsHandler) get(c echo.Context) error {
	id := c.Param("id")
	row, err := h.Store.ExperimentDetails(c.Request().Context(), id)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Experiment not found")
		}
		return storeError(err)
	}
	return c.JSON(http.StatusOK, row)
}

// lineage traces the experiment through its sessions and signals to the
// analyses performed on them.
//
//	@Summary	Experiment lineage
//	@Tags		experiments
//	@Param		id	path	string	true	"Experiment ID"
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	404	{object}	HTTPError
//	@Router		/api/experiments/{id}/lineage [get]
func (h *ExperimentsHandler) lineage(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	exp, err := h.Store.GetExperiment(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Experiment not found")
		}
		return storeError(err)
	}
	rows, err := rowsOf(h.Store.ExperimentLineage(ctx, id))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"experiment_id":   id,
		"experiment_name": exp["name"],
		"lineage":         rows,
	})
}

// export renders the experiment's findings as markdown, latex or json.
//
//	@Summary	Export findings
//	@Tags		experiments
//	@Param		id					path	string	true	"Experiment ID"
//	@Param		format				query	string	false	"markdown (default), latex or json"
//	@Param		include_raw_data	query	bool	false	"Include per-signal rows"
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	400	{object}	HTTPError
//	@Failure	404	{object}	HTTPError
//	@Router		/api/experiments/{id}/export [get]
func (h *ExperimentsHandler) export(c echo.Context) error {
	id := c.Param("id")
	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatMarkdown
	}
	includeRaw, _ := strconv.ParseBool(c.QueryParam("include_raw_data"))

	ctx := c.Request().Context()
	exp, err := h.Store.GetExperiment(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Experiment not found")
		}
		return storeError(err)
	}
	doc := export.Document{Experiment: exp}
	if doc.Sessions, err = rowsOf(h.Store.ExperimentSessions(ctx, id)); err != nil {
		return storeError(err)
	}
	if doc.Analyses, err = rowsOf(h.Store.ExperimentAnalyses(ctx, id)); err != nil {
		return storeError(err)
	}
	if doc.Publications, err = rowsOf(h.Store.ExperimentPublications(ctx, id)); err != nil {
		return storeError(err)
	}
	if includeRaw {
		if doc.Signals, err = rowsOf(h.Store.ExperimentSignals(ctx, id)); err != nil {
			return storeError(err)
		}
	}
	content, contentType, err := export.Render(doc, format, includeRaw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"experiment_id":    id,
		"experiment_name":  exp["name"],
		"format":           format,
		"content_type":     contentType,
		"include_raw_data": includeRaw,
		"content":          content,
	})
}

func rowsOf(rows []store.Row, err error) ([]map[string]any, error) {
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}
