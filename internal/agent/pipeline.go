package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/rs/zerolog"
)

// Definition names used by the signal analysis pipeline.
const (
	SignalAnalyzer = "signal_analyzer"
	SummaryAgent   = "summary_agent"
	CheckAgent     = "check_agent"
)

// SignalPipeline builds the analyze, summarize, check loop. The analyzer
// visits the researchers listed under KeyResearchers one at a time and
// appends its findings under KeyFindings.
func SignalPipeline(model llm.Model, defs Definitions, tools Toolset, maxIterations int, log zerolog.Logger) (Loop, error) {
	build := func(name string) (*LLMAgent, error) {
		def, err := defs.Get(name)
		if err != nil {
			return nil, err
		}
		return NewLLMAgent(def, model, tools, log)
	}
	analyzer, err := build(SignalAnalyzer)
	if err != nil {
		return Loop{}, err
	}
	summarizer, err := build(SummaryAgent)
	if err != nil {
		return Loop{}, err
	}
	checker, err := build(CheckAgent)
	if err != nil {
		return Loop{}, err
	}
	return Loop{
		Steps: []Step{
			analyzeStep(analyzer),
			summarizer.Step("Write the technical summary of the findings."),
			checker.Step("Are the requested analyses complete?"),
		},
		Gate:          StatusGate(KeyStatus),
		MaxIterations: maxIterations,
		StatusKey:     KeyStatus,
		OutputKey:     KeySummary,
		Log:           log.With().Str("loop", "signal_pipeline").Logger(),
	}, nil
}

func analyzeStep(a *LLMAgent) Step {
	return StepFunc(a.Name(), func(ctx context.Context, st State) (State, error) {
		researchers := SplitNames(valueOf(st, KeyResearchers))
		if len(researchers) == 0 {
			prompt := valueOf(st, KeyRequest)
			if strings.TrimSpace(prompt) == "" {
				prompt = "Analyze all available signal data."
			}
			turn, err := a.Respond(ctx, st, nil, prompt)
			if err != nil {
				return st, err
			}
			return st.Append(KeyFindings, turn.Text), nil
		}
		for _, name := range researchers {
			turn, err := a.Respond(ctx, st, nil, fmt.Sprintf("Analyze the signal data of researcher: %s", name))
			if err != nil {
				return st, err
			}
			st = st.Append(KeyFindings, fmt.Sprintf("### %s\n%s", name, turn.Text))
		}
		return st, nil
	})
}

// SplitNames parses a comma separated list, dropping blanks.
func SplitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func valueOf(st State, key string) string {
	v, _ := st.Get(key)
	return v
}
