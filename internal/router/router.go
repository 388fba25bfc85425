// Package router picks the agent best suited to a research query and relays
// the conversation as a stream of events.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/mohammad-safakhou/neurohub/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoAgents is returned by Dispatch when no endpoint answered its probe.
var ErrNoAgents = errors.New("no agents available")

const (
	NoAgentsMessage   = "No AI agents are currently available. Please ensure agents are running."
	NoResponseMessage = "No response from agent"
)

type Category string

const (
	Documentation      Category = config.AgentDocumentation
	SignalProcessor    Category = config.AgentSignalProcessor
	ExperimentDesigner Category = config.AgentExperimentDesigner
	Orchestrator       Category = config.AgentOrchestrator
)

// keywordSets are checked in order; the first set with a matching substring wins.
var keywordSets = []struct {
	category Category
	keywords []string
}{
	{Documentation, []string{"document", "report", "write", "summarize"}},
	{SignalProcessor, []string{"signal", "eeg", "emg", "ecg", "analyze", "quality"}},
	{ExperimentDesigner, []string{"experiment", "protocol", "design", "study"}},
}

// Classify maps a query to a category by case-insensitive substring match.
func Classify(query string) Category {
	q := strings.ToLower(query)
	for _, set := range keywordSets {
		for _, kw := range set.keywords {
			if strings.Contains(q, kw) {
				return set.category
			}
		}
	}
	return Orchestrator
}

// Query is one user request to the research assistant.
type Query struct {
	Message        string `json:"message"`
	ResearchArea   string `json:"research_area,omitempty"`
	ExperimentType string `json:"experiment_type,omitempty"`
	ContextID      string `json:"context_id,omitempty"`
}

type EventType string

const (
	EventStatus   EventType = "status"
	EventResponse EventType = "response"
	EventError    EventType = "error"
)

// Event is relayed to the caller as the dispatch progresses.
type Event struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message,omitempty"`
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content,omitempty"`
	ContextID string    `json:"context_id,omitempty"`
}

type Router struct {
	Registry *capability.Registry
	Log      zerolog.Logger
}

func New(reg *capability.Registry, log zerolog.Logger) *Router {
	return &Router{Registry: reg, Log: log}
}

// Live probes every registered provider concurrently and returns the
// categories that answered, in probe completion order.
func (r *Router) Live(ctx context.Context) []string {
	var (
		mu   sync.Mutex
		live []string
		g    errgroup.Group
	)
	for _, p := range r.Registry.Providers() {
		p := p
		g.Go(func() error {
			start := time.Now()
			card, err := p.Probe(ctx)
			metrics.RouterProbeSeconds.WithLabelValues(p.Category()).Observe(time.Since(start).Seconds())
			if err != nil {
				r.Log.Warn().Err(err).Str("category", p.Category()).Msg("agent not available")
				return nil
			}
			r.Log.Debug().Str("category", p.Category()).Str("agent", card.Name).Msg("discovered agent")
			mu.Lock()
			live = append(live, p.Category())
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return live
}

// Dispatch routes q to the classified agent, or to the first live agent when
// that one is down, and reports progress through emit. Failures are emitted as
// error events and also returned; nothing is retried.
func (r *Router) Dispatch(ctx context.Context, q Query, emit func(Event)) error {
	live := r.Live(ctx)
	if len(live) == 0 {
		metrics.RouterDispatchTotal.WithLabelValues("none", metrics.OutcomeNoAgents).Inc()
		emit(Event{Type: EventError, Message: NoAgentsMessage})
		return ErrNoAgents
	}

	target := string(Classify(q.Message))
	outcome := metrics.OutcomeOK
	if !contains(live, target) {
		r.Log.Info().Str("classified", target).Str("fallback", live[0]).Msg("classified agent not live")
		target = live[0]
		outcome = metrics.OutcomeFallback
	}
	r.Log.Info().Str("category", target).Msg("routing query")
	emit(Event{Type: EventStatus, Message: fmt.Sprintf("Connecting to %s agent...", target)})

	provider, err := r.Registry.Provider(target)
	if err != nil {
		metrics.RouterDispatchTotal.WithLabelValues(target, metrics.OutcomeError).Inc()
		emit(Event{Type: EventError, Message: err.Error()})
		return err
	}
	reply, err := provider.Invoke(ctx, capability.Request{
		Message:   q.Message,
		ContextID: q.ContextID,
		Context: capability.RequestContext{
			ResearchArea:    q.ResearchArea,
			ExperimentType:  q.ExperimentType,
			AvailableAgents: live,
		},
	})
	if err != nil {
		r.Log.Error().Err(err).Str("category", target).Msg("agent invocation failed")
		metrics.RouterDispatchTotal.WithLabelValues(target, metrics.OutcomeError).Inc()
		emit(Event{Type: EventError, Message: err.Error()})
		return err
	}
	content := reply.Response
	if strings.TrimSpace(content) == "" {
		content = NoResponseMessage
	}
	metrics.RouterDispatchTotal.WithLabelValues(target, outcome).Inc()
	emit(Event{Type: EventResponse, Agent: target, Content: content, ContextID: reply.ContextID})
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
