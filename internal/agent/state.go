package agent

import "strings"

// Well-known state keys.
const (
	KeyRequest         = "request"
	KeyResearchArea    = "research_area"
	KeyExperimentType  = "experiment_type"
	KeyAvailableAgents = "available_agents"
	KeyResearchers     = "researchers"
	KeyFindings        = "signal_findings"
	KeySummary         = "analysis_summary"
	KeyStatus          = "analysis_status"
)

// State is the value threaded through agent steps. It is never mutated in
// place; every write returns a new State.
type State struct {
	values map[string]string
}

func NewState(values map[string]string) State {
	st := State{values: make(map[string]string, len(values))}
	for k, v := range values {
		st.values[k] = v
	}
	return st
}

func (s State) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// With returns a copy of s with key set to value.
func (s State) With(key, value string) State {
	next := s.Values()
	next[key] = value
	return State{values: next}
}

// Append adds value to the text under key, separated by a blank line.
func (s State) Append(key, value string) State {
	value = strings.TrimSpace(value)
	if value == "" {
		return s
	}
	if prev, ok := s.values[key]; ok && prev != "" {
		value = prev + "\n\n" + value
	}
	return s.With(key, value)
}

// Values returns a copy of the underlying map.
func (s State) Values() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
