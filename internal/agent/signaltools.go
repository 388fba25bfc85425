package agent

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/neurohub/internal/store"
)

func stringArgSchema(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{"type": "string", "minLength": 1, "description": description},
		},
		"required": []string{name},
	}
}

// SignalTools gives the analyzer read access to the research database.
func SignalTools(st *store.Store) (Toolset, error) {
	type spec struct {
		name, description, arg, argDescription string
		fn                                     func(ctx context.Context, v string) (any, error)
	}
	specs := []spec{
		{"get_researcher_id_by_name", "Fetch the researcher_id for a researcher's exact name.", "name", "Researcher name",
			func(ctx context.Context, v string) (any, error) {
				id, err := st.ResearcherIDByName(ctx, v)
				if err != nil {
					return nil, err
				}
				return map[string]any{"researcher_id": id}, nil
			}},
		{"get_researcher_experiments", "List the experiments a researcher leads as principal investigator.", "researcher_id", "Researcher ID",
			func(ctx context.Context, v string) (any, error) { return st.ResearcherExperiments(ctx, v) }},
		{"get_experiment_sessions", "List the recording sessions of an experiment.", "experiment_id", "Experiment ID",
			func(ctx context.Context, v string) (any, error) { return st.ExperimentSessions(ctx, v) }},
		{"get_session_signals", "List the signals recorded during a session.", "session_id", "Session ID",
			func(ctx context.Context, v string) (any, error) { return st.SessionSignals(ctx, v) }},
		{"get_signal_analyses", "List the analyses filed for a signal.", "signal_id", "Signal ID",
			func(ctx context.Context, v string) (any, error) { return st.SignalAnalyses(ctx, v) }},
		{"get_device_specifications", "Fetch the technical specifications of a device.", "device_id", "Device ID",
			func(ctx context.Context, v string) (any, error) { return st.DeviceSpecifications(ctx, v) }},
		{"get_researcher_signals", "List every signal recorded in sessions a researcher conducted.", "researcher_name", "Researcher name",
			func(ctx context.Context, v string) (any, error) { return st.ResearcherSignals(ctx, v) }},
	}
	tools := make([]Tool, 0, len(specs))
	for _, s := range specs {
		s := s
		t, err := NewFunctionTool(s.name, s.description, stringArgSchema(s.arg, s.argDescription),
			func(ctx context.Context, args map[string]any) (any, error) {
				v, _ := args[s.arg].(string)
				return s.fn(ctx, v)
			})
		if err != nil {
			return Toolset{}, fmt.Errorf("signal tools: %w", err)
		}
		tools = append(tools, t)
	}
	return NewToolset(tools...), nil
}
