package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	category string
	delay    time.Duration
	down     bool
	reply    capability.Reply
	err      error

	mu      sync.Mutex
	invoked []capability.Request
}

func (f *fakeProvider) Category() string { return f.category }

func (f *fakeProvider) Probe(ctx context.Context) (capability.AgentCard, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.down {
		return capability.AgentCard{}, errors.New("connection refused")
	}
	return capability.AgentCard{Name: f.category, Category: f.category}, nil
}

func (f *fakeProvider) Invoke(ctx context.Context, req capability.Request) (capability.Reply, error) {
	f.mu.Lock()
	f.invoked = append(f.invoked, req)
	f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.invoked)
}

func collect() (*[]Event, func(Event)) {
	var events []Event
	return &events, func(e Event) { events = append(events, e) }
}

func TestClassifyPriority(t *testing.T) {
	cases := map[string]Category{
		"Write a report on EEG signal quality":     Documentation,
		"Please SUMMARIZE the study":               Documentation,
		"Analyze the EMG recordings":               SignalProcessor,
		"check ecg quality":                        SignalProcessor,
		"Design a protocol for a new study":        ExperimentDesigner,
		"Which experiment should we run next?":     ExperimentDesigner,
		"Who is on the team?":                      Orchestrator,
		"":                                         Orchestrator,
		"signal processing for an experiment plan": SignalProcessor,
	}
	for q, want := range cases {
		assert.Equal(t, want, Classify(q), q)
	}
}

func TestDispatchRoutesToClassifiedAgent(t *testing.T) {
	docs := &fakeProvider{category: "documentation", reply: capability.Reply{Response: "drafted"}}
	signal := &fakeProvider{category: "signal_processor", reply: capability.Reply{Response: "clean"}}
	r := New(capability.NewRegistry(docs, signal), zerolog.Nop())

	events, emit := collect()
	err := r.Dispatch(context.Background(), Query{Message: "analyze the EEG", ResearchArea: "sleep"}, emit)
	require.NoError(t, err)

	require.Len(t, *events, 2)
	assert.Equal(t, Event{Type: EventStatus, Message: "Connecting to signal_processor agent..."}, (*events)[0])
	assert.Equal(t, Event{Type: EventResponse, Agent: "signal_processor", Content: "clean"}, (*events)[1])
	require.Equal(t, 1, signal.calls())
	assert.Equal(t, 0, docs.calls())
	assert.Equal(t, "sleep", signal.invoked[0].Context.ResearchArea)
	assert.ElementsMatch(t, []string{"documentation", "signal_processor"}, signal.invoked[0].Context.AvailableAgents)
}

func TestDispatchFallsBackToFirstLiveInCompletionOrder(t *testing.T) {
	slow := &fakeProvider{category: "documentation", delay: 80 * time.Millisecond, reply: capability.Reply{Response: "slow"}}
	fast := &fakeProvider{category: "orchestrator", reply: capability.Reply{Response: "fast"}}
	down := &fakeProvider{category: "signal_processor", down: true}
	r := New(capability.NewRegistry(slow, down, fast), zerolog.Nop())

	live := r.Live(context.Background())
	assert.Equal(t, []string{"orchestrator", "documentation"}, live)

	events, emit := collect()
	require.NoError(t, r.Dispatch(context.Background(), Query{Message: "EEG signal quality"}, emit))
	assert.Equal(t, "Connecting to orchestrator agent...", (*events)[0].Message)
	assert.Equal(t, "orchestrator", (*events)[1].Agent)
	assert.Equal(t, 0, down.calls())
}

func TestDispatchNoAgents(t *testing.T) {
	r := New(capability.NewRegistry(&fakeProvider{category: "documentation", down: true}), zerolog.Nop())

	events, emit := collect()
	err := r.Dispatch(context.Background(), Query{Message: "hello"}, emit)
	assert.True(t, errors.Is(err, ErrNoAgents))
	require.Len(t, *events, 1)
	assert.Equal(t, EventError, (*events)[0].Type)
	assert.Equal(t, NoAgentsMessage, (*events)[0].Message)
}

func TestDispatchInvokeErrorIsNotRetried(t *testing.T) {
	orch := &fakeProvider{category: "orchestrator", err: errors.New("500 Internal Server Error")}
	r := New(capability.NewRegistry(orch), zerolog.Nop())

	events, emit := collect()
	err := r.Dispatch(context.Background(), Query{Message: "hi"}, emit)
	require.Error(t, err)
	assert.Equal(t, 1, orch.calls())
	require.Len(t, *events, 2)
	assert.Equal(t, EventStatus, (*events)[0].Type)
	assert.Equal(t, EventError, (*events)[1].Type)
	assert.Contains(t, (*events)[1].Message, "500")
}

func TestDispatchEmptyReply(t *testing.T) {
	orch := &fakeProvider{category: "orchestrator"}
	r := New(capability.NewRegistry(orch), zerolog.Nop())

	events, emit := collect()
	require.NoError(t, r.Dispatch(context.Background(), Query{Message: "hi"}, emit))
	assert.Equal(t, NoResponseMessage, (*events)[1].Content)
}
