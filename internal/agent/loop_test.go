package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setStep(key, value string) Step {
	return StepFunc("set_"+key, func(_ context.Context, st State) (State, error) {
		return st.With(key, value), nil
	})
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"completed":                 StatusCompleted,
		"  completed\n":             StatusCompleted,
		"pending":                   StatusPending,
		"Completed":                 StatusUnknown,
		"completed.":                StatusUnknown,
		"The analysis is completed": StatusUnknown,
		`{"status":"completed"}`:    StatusCompleted,
		`{"status":"pending"}`:      StatusPending,
		"":                          StatusUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseStatus(in), "%q", in)
	}
}

func TestLoopExhaustsWithoutPromotion(t *testing.T) {
	var runs int32
	count := StepFunc("count", func(_ context.Context, st State) (State, error) {
		atomic.AddInt32(&runs, 1)
		return st.Append(KeyFindings, "more"), nil
	})
	l := Loop{
		Steps:     []Step{count, setStep(KeySummary, "partial"), setStep(KeyStatus, "Completed")},
		Gate:      StatusGate(KeyStatus),
		StatusKey: KeyStatus,
		OutputKey: KeySummary,
		Log:       zerolog.Nop(),
	}
	res, err := l.Run(context.Background(), NewState(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxIterations, res.Iterations)
	assert.Equal(t, int32(DefaultMaxIterations), runs)
	assert.Equal(t, StatusUnknown, res.Status)
	assert.False(t, res.Promoted)
	assert.Empty(t, res.Output)
}

func TestLoopStopsAtGateAndPromotes(t *testing.T) {
	var iteration int32
	check := StepFunc("check", func(_ context.Context, st State) (State, error) {
		if atomic.AddInt32(&iteration, 1) < 3 {
			return st.With(KeyStatus, "pending"), nil
		}
		return st.With(KeyStatus, " completed "), nil
	})
	l := Loop{
		Steps:     []Step{setStep(KeySummary, "  final report "), check},
		Gate:      StatusGate(KeyStatus),
		StatusKey: KeyStatus,
		OutputKey: KeySummary,
		Log:       zerolog.Nop(),
	}
	res, err := l.Run(context.Background(), NewState(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.True(t, res.Promoted)
	assert.Equal(t, "final report", res.Output)
}

func TestLoopCompletedWithEmptySummaryIsNotPromoted(t *testing.T) {
	l := Loop{
		Steps:     []Step{setStep(KeySummary, "   "), setStep(KeyStatus, "completed")},
		Gate:      StatusGate(KeyStatus),
		StatusKey: KeyStatus,
		OutputKey: KeySummary,
		Log:       zerolog.Nop(),
	}
	res, err := l.Run(context.Background(), NewState(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.False(t, res.Promoted)
}

func TestLoopStepErrorAborts(t *testing.T) {
	boom := errors.New("model down")
	var after int32
	l := Loop{
		Steps: []Step{
			setStep(KeyFindings, "x"),
			StepFunc("fail", func(_ context.Context, st State) (State, error) { return st, boom }),
			StepFunc("after", func(_ context.Context, st State) (State, error) {
				atomic.AddInt32(&after, 1)
				return st, nil
			}),
		},
		MaxIterations: 4,
		Log:           zerolog.Nop(),
	}
	res, err := l.Run(context.Background(), NewState(nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, int32(0), after)
	v, _ := res.State.Get(KeyFindings)
	assert.Equal(t, "x", v)
}

func TestLoopHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Loop{Steps: []Step{setStep("a", "b")}, Log: zerolog.Nop()}.Run(ctx, NewState(nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Iterations)
}

func TestSignalPipelineVisitsResearchersInOrder(t *testing.T) {
	defs, err := LoadDefinitions("")
	require.NoError(t, err)
	tools, err := SignalTools(nil)
	require.NoError(t, err)

	var analyzed []string
	model := llm.ModelFunc(func(_ context.Context, req llm.Request) (llm.Response, error) {
		last := req.Messages[len(req.Messages)-1].Content
		switch {
		case strings.Contains(req.System, "one researcher at a time"):
			analyzed = append(analyzed, last)
			return llm.Response{Text: "quality ok for " + strings.TrimPrefix(last, "Analyze the signal data of researcher: ")}, nil
		case strings.Contains(req.System, "Synthesize"):
			if !strings.Contains(req.System, "quality ok for Dr. Ada") || !strings.Contains(req.System, "quality ok for Dr. Ben") {
				return llm.Response{Text: ""}, nil
			}
			return llm.Response{Text: "Both researchers recorded clean EEG."}, nil
		case strings.Contains(req.System, "exactly one word"):
			return llm.Response{Text: "completed\n"}, nil
		}
		return llm.Response{}, errors.New("unexpected agent")
	})

	loop, err := SignalPipeline(model, defs, tools, 10, zerolog.Nop())
	require.NoError(t, err)
	res, err := loop.Run(context.Background(), NewState(map[string]string{KeyResearchers: "Dr. Ada, Dr. Ben"}))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Promoted)
	assert.Equal(t, "Both researchers recorded clean EEG.", res.Output)
	assert.Equal(t, []string{
		"Analyze the signal data of researcher: Dr. Ada",
		"Analyze the signal data of researcher: Dr. Ben",
	}, analyzed)
}

func TestSignalPipelineNeverCompleting(t *testing.T) {
	defs, err := LoadDefinitions("")
	require.NoError(t, err)
	tools, err := SignalTools(nil)
	require.NoError(t, err)

	var checks int32
	model := llm.ModelFunc(func(_ context.Context, req llm.Request) (llm.Response, error) {
		if strings.Contains(req.System, "exactly one word") {
			atomic.AddInt32(&checks, 1)
			return llm.Response{Text: "The analyses look completed to me."}, nil
		}
		return llm.Response{Text: "some findings"}, nil
	})
	loop, err := SignalPipeline(model, defs, tools, 0, zerolog.Nop())
	require.NoError(t, err)
	res, err := loop.Run(context.Background(), NewState(map[string]string{KeyRequest: "analyze everything"}))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Iterations)
	assert.Equal(t, int32(10), checks)
	assert.False(t, res.Promoted)
	assert.Empty(t, res.Output)
}
