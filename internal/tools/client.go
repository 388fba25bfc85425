// Package tools holds the tool functions agents use to write to the NeuroHub
// REST API. Each call is a single JSON request; failures are returned, never retried.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/httpclient"
)

type Client struct {
	BaseURL string
	HTTP    *httpclient.Client
	now     func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpclient.New(timeout),
		now:     time.Now,
	}
}

// NewClientFromConfig points a Client at tools.base_url.
func NewClientFromConfig(cfg config.ToolsConfig) *Client {
	return NewClient(cfg.BaseURL, cfg.Timeout)
}

type Experiment struct {
	Name                      string `json:"experiment_name"`
	Description               string `json:"description"`
	Protocol                  string `json:"protocol"`
	Hypothesis                string `json:"hypothesis"`
	PrincipalInvestigatorName string `json:"principal_investigator_name"`
	StartDate                 string `json:"start_date"`
	Status                    string `json:"status,omitempty"`
}

type AnalysisReport struct {
	SignalID        string         `json:"signal_id"`
	ResearcherName  string         `json:"researcher_name"`
	AnalysisType    string         `json:"analysis_type"`
	Parameters      map[string]any `json:"parameters"`
	Results         map[string]any `json:"results"`
	Findings        string         `json:"findings"`
	ConfidenceScore float64        `json:"confidence_score"`
}

type SessionLog struct {
	ExperimentID    string           `json:"experiment_id"`
	ResearcherName  string           `json:"researcher_name"`
	ParticipantID   string           `json:"participant_id"`
	SessionDate     string           `json:"session_date"`
	DurationMinutes int              `json:"duration_minutes"`
	Notes           string           `json:"notes"`
	Signals         []map[string]any `json:"signals"`
}

type Device struct {
	Name           string         `json:"name"`
	DeviceType     string         `json:"device_type"`
	Manufacturer   string         `json:"manufacturer"`
	Model          string         `json:"model"`
	SamplingRate   int            `json:"sampling_rate"`
	Channels       int            `json:"channels"`
	Specifications map[string]any `json:"specifications"`
}

func (c *Client) CreateExperiment(ctx context.Context, in Experiment) (map[string]any, error) {
	if in.Status == "" {
		in.Status = "planning"
	}
	return c.do(ctx, http.MethodPost, "/experiments", nil, in)
}

// CreateAnalysisReport sends parameters and results as JSON strings and stamps analyzed_at.
func (c *Client) CreateAnalysisReport(ctx context.Context, in AnalysisReport) (map[string]any, error) {
	params, err := jsonString(in.Parameters)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	results, err := jsonString(in.Results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	body := map[string]any{
		"signal_id":        in.SignalID,
		"researcher_name":  in.ResearcherName,
		"analysis_type":    in.AnalysisType,
		"parameters":       params,
		"results":          results,
		"findings":         in.Findings,
		"confidence_score": in.ConfidenceScore,
		"analyzed_at":      c.clock().UTC().Format(time.RFC3339Nano),
	}
	return c.do(ctx, http.MethodPost, "/analyses", nil, body)
}

func (c *Client) CreateSessionLog(ctx context.Context, in SessionLog) (map[string]any, error) {
	if in.Signals == nil {
		in.Signals = []map[string]any{}
	}
	return c.do(ctx, http.MethodPost, "/sessions", nil, in)
}

func (c *Client) ExportFindings(ctx context.Context, experimentID, format string, includeRaw bool) (map[string]any, error) {
	if format == "" {
		format = "markdown"
	}
	q := url.Values{}
	q.Set("format", format)
	q.Set("include_raw_data", strconv.FormatBool(includeRaw))
	return c.do(ctx, http.MethodGet, "/experiments/"+url.PathEscape(experimentID)+"/export", q, nil)
}

// RegisterDevice sends specifications as a JSON string with status "available".
func (c *Client) RegisterDevice(ctx context.Context, in Device) (map[string]any, error) {
	specs, err := jsonString(in.Specifications)
	if err != nil {
		return nil, fmt.Errorf("encode specifications: %w", err)
	}
	body := map[string]any{
		"name":           in.Name,
		"device_type":    in.DeviceType,
		"manufacturer":   in.Manufacturer,
		"model":          in.Model,
		"sampling_rate":  in.SamplingRate,
		"channels":       in.Channels,
		"specifications": specs,
		"status":         "available",
	}
	return c.do(ctx, http.MethodPost, "/devices", nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (map[string]any, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var out map[string]any
	if err := c.HTTP.DoJSON(ctx, method, u, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func jsonString(v map[string]any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
