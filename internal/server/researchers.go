package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/rs/zerolog"
)

type ResearchersHandler struct {
	Store *store.Store
	Log   zerolog.Logger
}

func (h *ResearchersHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.GET("/:id", h.profile)
}

// RegisterCollaborations mounts the collaboration endpoint on its own group.
func (h *ResearchersHandler) RegisterCollaborations(g *echo.Group) {
	g.POST("", h.collaborate)
}

// list returns researchers with experiment and collaboration counts.
//
//	@Summary	List researchers
//	@Tags		researchers
//	@Param		limit	query	int	false	"Max rows (default 50)"
//	@Produce	json
//	@Success	200	{array}	map[string]interface{}
//	@Router		/api/researchers [get]
func (h *ResearchersHandler) list(c echo.Context) error {
	rows, err := h.Store.ListResearchers(c.Request().Context(), queryLimit(c))
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

// profile returns one researcher with the experiments they lead and their collaborators.
//
//	@Summary	Researcher profile
//	@Tags		researchers
//	@Param		id	path	string	true	"Researcher ID"
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	404	{object}	HTTPError
//	@Router		/api/researchers/{id} [get]
func (h *ResearchersHandler) profile(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	researcher, err := h.Store.GetResearcher(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "Researcher not found")
		}
		return storeError(err)
	}
	experiments, err := h.Store.ResearcherExperiments(ctx, id)
	if err != nil {
		return storeError(err)
	}
	collaborators, err := h.Store.ResearcherCollaborations(ctx, id)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"researcher":     researcher,
		"experiments":    experiments,
		"collaborations": collaborators,
	})
}

// CollaborationRequest is the body of POST /api/collaborations. Researchers
// are given by name; the pair is unordered.
type CollaborationRequest struct {
	ResearcherA       string `json:"researcher_a"`
	ResearcherB       string `json:"researcher_b"`
	ProjectName       string `json:"project_name,omitempty"`
	CollaborationType string `json:"collaboration_type,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
}

// collaborate records an undirected collaboration. Repeating it in either
// order is a no-op answered with 200.
//
//	@Summary	Record collaboration
//	@Tags		researchers
//	@Accept		json
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Success	201	{object}	map[string]interface{}
//	@Failure	400	{object}	HTTPError
//	@Failure	404	{object}	HTTPError
//	@Router		/api/collaborations [post]
func (h *ResearchersHandler) collaborate(c echo.Context) error {
	var req CollaborationRequest
	body, err := decodeBody(c, &req)
	if err != nil {
		return err
	}
	if missing := missingFields(body, "researcher_a", "researcher_b"); len(missing) > 0 {
		return missingFieldsError(missing)
	}
	if req.ResearcherA == req.ResearcherB {
		return echo.NewHTTPError(http.StatusBadRequest, "a researcher cannot collaborate with themselves")
	}
	var start *time.Time
	if req.StartDate != "" {
		t, err := parseISO(req.StartDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		start = &t
	}

	ctx := c.Request().Context()
	ids := make([]string, 0, 2)
	for _, name := range []string{req.ResearcherA, req.ResearcherB} {
		id, err := h.Store.ResearcherIDByName(ctx, name)
		if err != nil {
			if isNotFound(err) {
				return echo.NewHTTPError(http.StatusNotFound, "Researcher not found: "+name)
			}
			return storeError(err)
		}
		ids = append(ids, id)
	}
	created, err := h.Store.AddCollaboration(ctx, store.Collaboration{
		ResearcherA: ids[0],
		ResearcherB: ids[1],
		ProjectName: req.ProjectName,
		Type:        req.CollaborationType,
		StartDate:   start,
	})
	if err != nil {
		return storeError(err)
	}
	a, b := store.CanonicalPair(ids[0], ids[1])
	resp := map[string]any{
		"researcher_id_a": a,
		"researcher_id_b": b,
		"created":         created,
	}
	if !created {
		resp["message"] = "Collaboration already recorded"
		return c.JSON(http.StatusOK, resp)
	}
	resp["message"] = "Collaboration recorded successfully"
	return c.JSON(http.StatusCreated, resp)
}
