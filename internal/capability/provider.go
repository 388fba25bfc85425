package capability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/neurohub/internal/httpclient"
)

// Request is what the router forwards to an agent.
type Request struct {
	Message   string         `json:"message"`
	Context   RequestContext `json:"context"`
	ContextID string         `json:"context_id,omitempty"`
}

// RequestContext carries the caller's research context.
type RequestContext struct {
	ResearchArea    string   `json:"research_area"`
	ExperimentType  string   `json:"experiment_type"`
	AvailableAgents []string `json:"available_agents"`
}

// Reply is an agent's answer. Response may be empty.
type Reply struct {
	Response  string `json:"response"`
	Agent     string `json:"agent,omitempty"`
	ContextID string `json:"context_id,omitempty"`
}

// Provider is one dispatch target. Probe reports liveness by returning the
// agent's card; Invoke forwards a request.
type Provider interface {
	Category() string
	Probe(ctx context.Context) (AgentCard, error)
	Invoke(ctx context.Context, req Request) (Reply, error)
}

// HTTPProviderConfig tunes an HTTPProvider. An empty Secret disables bearer
// tokens and card signature checks.
type HTTPProviderConfig struct {
	Secret        string
	TokenTTL      time.Duration
	ProbeTimeout  time.Duration
	InvokeTimeout time.Duration
}

// HTTPProvider talks to an agent server over HTTP.
type HTTPProvider struct {
	category string
	baseURL  string
	cfg      HTTPProviderConfig
	http     *httpclient.Client
}

func NewHTTPProvider(category, baseURL string, cfg HTTPProviderConfig) *HTTPProvider {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 30 * time.Second
	}
	if cfg.InvokeTimeout <= 0 {
		cfg.InvokeTimeout = 120 * time.Second
	}
	return &HTTPProvider{
		category: category,
		baseURL:  baseURL,
		cfg:      cfg,
		http:     httpclient.New(cfg.InvokeTimeout),
	}
}

func (p *HTTPProvider) Category() string { return p.category }

func (p *HTTPProvider) Probe(ctx context.Context) (AgentCard, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProbeTimeout)
	defer cancel()
	var card AgentCard
	if err := p.http.DoJSON(ctx, http.MethodGet, p.baseURL+"/.well-known/agent.json", nil, nil, &card); err != nil {
		return AgentCard{}, fmt.Errorf("probe %s: %w", p.category, err)
	}
	if err := VerifyCard(card, p.cfg.Secret); err != nil {
		return AgentCard{}, fmt.Errorf("probe %s: card %s: %w", p.category, card.Name, err)
	}
	return card, nil
}

func (p *HTTPProvider) Invoke(ctx context.Context, req Request) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.InvokeTimeout)
	defer cancel()
	headers := map[string]string{}
	if p.cfg.Secret != "" {
		tok, err := SignServiceToken([]byte(p.cfg.Secret), p.category, p.cfg.TokenTTL)
		if err != nil {
			return Reply{}, err
		}
		headers["Authorization"] = "Bearer " + tok
	}
	var reply Reply
	if err := p.http.DoJSON(ctx, http.MethodPost, p.baseURL+"/process", headers, req, &reply); err != nil {
		return Reply{}, fmt.Errorf("invoke %s: %w", p.category, err)
	}
	return reply, nil
}
