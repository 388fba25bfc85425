package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/neurohub/internal/metrics"
	"github.com/rs/zerolog"
)

// DefaultMaxIterations bounds a Loop that does not set MaxIterations.
const DefaultMaxIterations = 10

// Step transforms the state. Steps never share state except through the
// value they return.
type Step interface {
	Name() string
	Run(ctx context.Context, st State) (State, error)
}

type stepFunc struct {
	name string
	fn   func(ctx context.Context, st State) (State, error)
}

func (s stepFunc) Name() string                                     { return s.name }
func (s stepFunc) Run(ctx context.Context, st State) (State, error) { return s.fn(ctx, st) }

// StepFunc adapts fn to a named Step.
func StepFunc(name string, fn func(ctx context.Context, st State) (State, error)) Step {
	return stepFunc{name: name, fn: fn}
}

// Status is the checker's verdict.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusUnknown   Status = "unknown"
)

// ParseStatus maps the checker output to a Status. The token must match
// exactly after trimming whitespace; a JSON object {"status": "..."} is
// accepted too. Anything else is StatusUnknown.
func ParseStatus(raw string) Status {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(token, "{") {
		var v struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(token), &v); err == nil {
			token = strings.TrimSpace(v.Status)
		}
	}
	switch Status(token) {
	case StatusCompleted:
		return StatusCompleted
	case StatusPending:
		return StatusPending
	default:
		return StatusUnknown
	}
}

// Gate reports whether the loop may stop after an iteration.
type Gate func(st State) bool

// StatusGate stops once the value under key parses as StatusCompleted.
func StatusGate(key string) Gate {
	return func(st State) bool {
		v, _ := st.Get(key)
		return ParseStatus(v) == StatusCompleted
	}
}

// Loop runs Steps in order, then consults Gate, at most MaxIterations times.
type Loop struct {
	Steps         []Step
	Gate          Gate
	MaxIterations int
	// StatusKey and OutputKey name the state slots read when the loop exits.
	StatusKey string
	OutputKey string
	Log       zerolog.Logger
}

// Result is the final state of a Loop run. Output is set only when Promoted.
type Result struct {
	State      State
	Iterations int
	Status     Status
	Output     string
	Promoted   bool
}

// Run drives the loop. A step error aborts the run and is returned together
// with the state reached so far.
func (l Loop) Run(ctx context.Context, st State) (Result, error) {
	limit := l.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	iterations := 0
	for iterations < limit {
		if err := ctx.Err(); err != nil {
			return l.result(st, iterations), err
		}
		iterations++
		for _, step := range l.Steps {
			next, err := step.Run(ctx, st)
			if err != nil {
				l.Log.Error().Err(err).Int("iteration", iterations).Str("step", step.Name()).Msg("loop step failed")
				return l.result(st, iterations), fmt.Errorf("iteration %d, step %s: %w", iterations, step.Name(), err)
			}
			st = next
		}
		if l.Gate != nil && l.Gate(st) {
			l.Log.Debug().Int("iteration", iterations).Msg("gate passed")
			break
		}
	}
	res := l.result(st, iterations)
	metrics.PipelineIterations.Observe(float64(iterations))
	l.Log.Info().Int("iterations", iterations).Str("status", string(res.Status)).Bool("promoted", res.Promoted).Msg("loop finished")
	return res, nil
}

func (l Loop) result(st State, iterations int) Result {
	res := Result{State: st, Iterations: iterations, Status: StatusUnknown}
	if l.StatusKey != "" {
		v, _ := st.Get(l.StatusKey)
		res.Status = ParseStatus(v)
	}
	summary := ""
	if l.OutputKey != "" {
		v, _ := st.Get(l.OutputKey)
		summary = strings.TrimSpace(v)
	}
	if res.Status == StatusCompleted && summary != "" {
		res.Output = summary
		res.Promoted = true
	}
	return res
}
