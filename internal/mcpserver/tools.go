package mcpserver

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mohammad-safakhou/neurohub/internal/tools"
)

func createExperimentTool() mcp.Tool {
	return mcp.NewTool("create_experiment",
		mcp.WithDescription("Create a new neurotechnology experiment in the NeuroHub database."),
		mcp.WithString("experiment_name", mcp.Required(), mcp.Description("Name of the experiment")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Detailed description of the experiment")),
		mcp.WithString("protocol", mcp.Required(), mcp.Description("Experimental protocol")),
		mcp.WithString("hypothesis", mcp.Required(), mcp.Description("Research hypothesis")),
		mcp.WithString("principal_investigator_name", mcp.Required(), mcp.Description("Name of the lead researcher")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date in ISO format (YYYY-MM-DD)")),
		mcp.WithString("status", mcp.Description("Experiment status"), mcp.Enum("planning", "active", "completed", "archived"), mcp.DefaultString("planning")),
	)
}

func createAnalysisReportTool() mcp.Tool {
	return mcp.NewTool("create_analysis_report",
		mcp.WithDescription("Create an analysis report for recorded signal data."),
		mcp.WithString("signal_id", mcp.Required(), mcp.Description("ID of the analyzed signal")),
		mcp.WithString("researcher_name", mcp.Required(), mcp.Description("Name of the researcher performing analysis")),
		mcp.WithString("analysis_type", mcp.Required(), mcp.Description("Type of analysis (spectral, time-frequency, connectivity, ...)")),
		mcp.WithObject("parameters", mcp.Required(), mcp.Description("Analysis parameters used")),
		mcp.WithObject("results", mcp.Required(), mcp.Description("Analysis results")),
		mcp.WithString("findings", mcp.Required(), mcp.Description("Key findings in text format")),
		mcp.WithNumber("confidence_score", mcp.Required(), mcp.Description("Confidence in results (0.0-1.0)"), mcp.Min(0), mcp.Max(1)),
	)
}

func createSessionLogTool() mcp.Tool {
	return mcp.NewTool("create_session_log",
		mcp.WithDescription("Log an experimental recording session with the signals recorded."),
		mcp.WithString("experiment_id", mcp.Required(), mcp.Description("ID of the experiment")),
		mcp.WithString("researcher_name", mcp.Required(), mcp.Description("Name of the researcher conducting the session")),
		mcp.WithString("participant_id", mcp.Description("Anonymous participant identifier")),
		mcp.WithString("session_date", mcp.Required(), mcp.Description("Session date in ISO format")),
		mcp.WithNumber("duration_minutes", mcp.Description("Session duration in minutes"), mcp.Min(0)),
		mcp.WithString("notes", mcp.Description("Session notes")),
		mcp.WithArray("signals_recorded", mcp.Description("Signal recordings with device info"), mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"device_id":        map[string]any{"type": "string"},
				"signal_type":      map[string]any{"type": "string"},
				"duration_seconds": map[string]any{"type": "number"},
				"quality_score":    map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"file_path":        map[string]any{"type": "string"},
				"notes":            map[string]any{"type": "string"},
			},
			"required": []string{"device_id"},
		})),
	)
}

func exportFindingsTool() mcp.Tool {
	return mcp.NewTool("export_findings",
		mcp.WithDescription("Export an experiment's findings in a publication-ready format."),
		mcp.WithString("experiment_id", mcp.Required(), mcp.Description("ID of the experiment to export")),
		mcp.WithString("format", mcp.Description("Export format"), mcp.Enum("markdown", "latex", "json"), mcp.DefaultString("markdown")),
		mcp.WithBoolean("include_raw_data", mcp.Description("Include raw signal data references"), mcp.DefaultBool(false)),
	)
}

func registerDeviceTool() mcp.Tool {
	return mcp.NewTool("register_device",
		mcp.WithDescription("Register a new research device."),
		mcp.WithString("device_name", mcp.Required(), mcp.Description("Friendly name for the device")),
		mcp.WithString("device_type", mcp.Required(), mcp.Description("Type of device (EEG, EMG, ECG, ...)")),
		mcp.WithString("manufacturer", mcp.Description("Device manufacturer")),
		mcp.WithString("model", mcp.Description("Device model")),
		mcp.WithNumber("sampling_rate", mcp.Description("Sampling rate in Hz"), mcp.Min(0)),
		mcp.WithNumber("channels", mcp.Description("Number of channels"), mcp.Min(0)),
		mcp.WithObject("specifications", mcp.Description("Additional technical specifications")),
	)
}

func (s *Server) createExperiment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(req)
	if err := a.require("experiment_name", "description", "protocol", "hypothesis", "principal_investigator_name", "start_date"); err != nil {
		return failure(err)
	}
	resp, err := s.client.CreateExperiment(ctx, tools.Experiment{
		Name:                      a.str("experiment_name"),
		Description:               a.str("description"),
		Protocol:                  a.str("protocol"),
		Hypothesis:                a.str("hypothesis"),
		PrincipalInvestigatorName: a.str("principal_investigator_name"),
		StartDate:                 a.str("start_date"),
		Status:                    a.str("status"),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "create_experiment").Msg("tool call failed")
		return failure(err)
	}
	return success(resp)
}

func (s *Server) createAnalysisReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(req)
	if err := a.require("signal_id", "researcher_name", "analysis_type", "parameters", "results", "findings", "confidence_score"); err != nil {
		return failure(err)
	}
	score, ok := a.num("confidence_score")
	if !ok || score < 0 || score > 1 {
		return failure(fmt.Errorf("confidence_score must be a number between 0 and 1"))
	}
	if err := a.requireObjects("parameters", "results"); err != nil {
		return failure(err)
	}
	resp, err := s.client.CreateAnalysisReport(ctx, tools.AnalysisReport{
		SignalID:        a.str("signal_id"),
		ResearcherName:  a.str("researcher_name"),
		AnalysisType:    a.str("analysis_type"),
		Parameters:      a.obj("parameters"),
		Results:         a.obj("results"),
		Findings:        a.str("findings"),
		ConfidenceScore: score,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "create_analysis_report").Msg("tool call failed")
		return failure(err)
	}
	return success(resp)
}

func (s *Server) createSessionLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(req)
	if err := a.require("experiment_id", "researcher_name", "session_date"); err != nil {
		return failure(err)
	}
	duration, _ := a.num("duration_minutes")
	resp, err := s.client.CreateSessionLog(ctx, tools.SessionLog{
		ExperimentID:    a.str("experiment_id"),
		ResearcherName:  a.str("researcher_name"),
		ParticipantID:   a.str("participant_id"),
		SessionDate:     a.str("session_date"),
		DurationMinutes: int(math.Round(duration)),
		Notes:           a.str("notes"),
		Signals:         a.objects("signals_recorded"),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "create_session_log").Msg("tool call failed")
		return failure(err)
	}
	return success(resp)
}

func (s *Server) exportFindings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(req)
	if err := a.require("experiment_id"); err != nil {
		return failure(err)
	}
	format := a.str("format")
	switch format {
	case "", "markdown", "latex", "json":
	default:
		return failure(fmt.Errorf("format must be markdown, latex or json"))
	}
	resp, err := s.client.ExportFindings(ctx, a.str("experiment_id"), format, a.boolean("include_raw_data"))
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "export_findings").Msg("tool call failed")
		return failure(err)
	}
	return success(resp)
}

func (s *Server) registerDevice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := args(req)
	if err := a.require("device_name", "device_type"); err != nil {
		return failure(err)
	}
	if _, present := a["specifications"]; present {
		if err := a.requireObjects("specifications"); err != nil {
			return failure(err)
		}
	}
	rate, _ := a.num("sampling_rate")
	channels, _ := a.num("channels")
	resp, err := s.client.RegisterDevice(ctx, tools.Device{
		Name:           a.str("device_name"),
		DeviceType:     a.str("device_type"),
		Manufacturer:   a.str("manufacturer"),
		Model:          a.str("model"),
		SamplingRate:   int(rate),
		Channels:       int(channels),
		Specifications: a.obj("specifications"),
	})
	if err != nil {
		s.log.Warn().Err(err).Str("tool", "register_device").Msg("tool call failed")
		return failure(err)
	}
	return success(resp)
}

type arguments map[string]any

func args(req mcp.CallToolRequest) arguments { return arguments(req.GetArguments()) }

func (a arguments) require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		v, ok := a[k]
		if !ok || v == nil {
			missing = append(missing, k)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required arguments: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (a arguments) str(k string) string {
	switch v := a[k].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (a arguments) num(k string) (float64, bool) {
	switch v := a[k].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (a arguments) boolean(k string) bool {
	switch v := a[k].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// requireObjects rejects values that are not JSON objects, such as an object
// sent as an encoded string.
func (a arguments) requireObjects(keys ...string) error {
	for _, k := range keys {
		if _, ok := a[k].(map[string]any); !ok {
			return fmt.Errorf("%s must be a JSON object, got %T", k, a[k])
		}
	}
	return nil
}

func (a arguments) obj(k string) map[string]any {
	m, _ := a[k].(map[string]any)
	return m
}

func (a arguments) objects(k string) []map[string]any {
	raw, _ := a[k].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
