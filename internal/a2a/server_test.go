package a2a

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/neurohub/internal/agent"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "shared-secret"

func testCard() capability.AgentCard {
	return CardFor(agent.Definition{Name: "documentation", Description: "writes reports", Tools: []string{"export_findings"}}, "http://docs")
}

func TestProbeAndInvokeThroughProvider(t *testing.T) {
	var seen capability.Request
	var seenCtx string
	srv, err := New(testCard(), secret, HandlerFunc(func(_ context.Context, req capability.Request, contextID string) (string, error) {
		seen, seenCtx = req, contextID
		return "report drafted", nil
	}), zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	p := capability.NewHTTPProvider("documentation", ts.URL, capability.HTTPProviderConfig{Secret: secret, TokenTTL: time.Minute})
	card, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "documentation", card.Name)
	assert.NotEmpty(t, card.Signature)

	reply, err := p.Invoke(context.Background(), capability.Request{
		Message: "write up exp-1",
		Context: capability.RequestContext{ResearchArea: "BCI", AvailableAgents: []string{"documentation"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "report drafted", reply.Response)
	assert.Equal(t, "documentation", reply.Agent)
	assert.Equal(t, seenCtx, reply.ContextID)
	assert.Len(t, seenCtx, 36)
	assert.Equal(t, "BCI", seen.Context.ResearchArea)
}

func TestProcessRejectsBadTokens(t *testing.T) {
	srv, err := New(testCard(), secret, HandlerFunc(func(context.Context, capability.Request, string) (string, error) {
		return "nope", nil
	}), zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	post := func(auth string) int {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/process", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, post(""))
	other, err := capability.SignServiceToken([]byte(secret), "orchestrator", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, post("Bearer "+other))
	forged, err := capability.SignServiceToken([]byte("wrong"), "documentation", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, post("Bearer "+forged))
	good, err := capability.SignServiceToken([]byte(secret), "documentation", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, post("Bearer "+good))
}

func TestProcessKeepsContextAndReportsErrors(t *testing.T) {
	calls := 0
	srv, err := New(testCard(), "", HandlerFunc(func(_ context.Context, _ capability.Request, contextID string) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("model unavailable")
		}
		return contextID, nil
	}), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, srv.Card().Signature)
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	p := capability.NewHTTPProvider("documentation", ts.URL, capability.HTTPProviderConfig{})
	reply, err := p.Invoke(context.Background(), capability.Request{Message: "hi", ContextID: "ctx-42"})
	require.NoError(t, err)
	assert.Equal(t, "ctx-42", reply.Response)

	_, err = p.Invoke(context.Background(), capability.Request{Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")

	resp, err := http.Post(ts.URL+"/process", "application/json", strings.NewReader(`{"message":"  "}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPipelineHandler(t *testing.T) {
	never := agent.Loop{
		Steps:         []agent.Step{agent.StepFunc("check", func(_ context.Context, st agent.State) (agent.State, error) {
			return st.With(agent.KeySummary, "partial findings").With(agent.KeyStatus, "pending"), nil
		})},
		Gate:          agent.StatusGate(agent.KeyStatus),
		MaxIterations: 3,
		StatusKey:     agent.KeyStatus,
		OutputKey:     agent.KeySummary,
		Log:           zerolog.Nop(),
	}
	out, err := PipelineHandler(never, zerolog.Nop()).Handle(context.Background(), capability.Request{Message: "analyze"}, "c")
	require.NoError(t, err)
	assert.Empty(t, out)

	done := never
	done.Steps = []agent.Step{agent.StepFunc("done", func(_ context.Context, st agent.State) (agent.State, error) {
		req, _ := st.Get(agent.KeyRequest)
		return st.With(agent.KeySummary, "summary of "+req).With(agent.KeyStatus, "completed"), nil
	})}
	out, err = PipelineHandler(done, zerolog.Nop()).Handle(context.Background(), capability.Request{Message: "exp-1"}, "c")
	require.NoError(t, err)
	assert.Equal(t, "summary of exp-1", out)
}

func TestUnpromotedPipelineRepliesEmpty(t *testing.T) {
	pending := agent.Loop{
		Steps: []agent.Step{agent.StepFunc("check", func(_ context.Context, st agent.State) (agent.State, error) {
			return st.With(agent.KeySummary, "partial findings").With(agent.KeyStatus, "pending"), nil
		})},
		Gate:          agent.StatusGate(agent.KeyStatus),
		MaxIterations: 10,
		StatusKey:     agent.KeyStatus,
		OutputKey:     agent.KeySummary,
		Log:           zerolog.Nop(),
	}
	srv, err := New(testCard(), "", PipelineHandler(pending, zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Echo())
	defer ts.Close()

	p := capability.NewHTTPProvider("signal_processor", ts.URL, capability.HTTPProviderConfig{})
	reply, err := p.Invoke(context.Background(), capability.Request{Message: "analyze Dr. Sarah Chen"})
	require.NoError(t, err)
	assert.Empty(t, reply.Response)
	assert.NotContains(t, reply.Response, "partial findings")
}

type closingSessions struct {
	closed bool
}

func (s *closingSessions) Load(context.Context, string) ([]llm.Message, error)  { return nil, nil }
func (s *closingSessions) Append(context.Context, string, ...llm.Message) error { return nil }
func (s *closingSessions) Close() error {
	s.closed = true
	return nil
}

func TestDepsCloseReleasesSessionStore(t *testing.T) {
	sessions := &closingSessions{}
	deps := &Deps{Sessions: sessions}
	deps.Close()
	assert.True(t, sessions.closed)
}
