package a2a

import (
	"context"
	"fmt"
	"io"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/agent"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/mohammad-safakhou/neurohub/internal/mcpserver"
	"github.com/mohammad-safakhou/neurohub/internal/session"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/mohammad-safakhou/neurohub/internal/tools"
	"github.com/rs/zerolog"
)

// Deps are the collaborators shared by every agent of a process.
type Deps struct {
	Defs     agent.Definitions
	Model    llm.Model
	Tools    agent.Toolset
	Sessions session.Store
	Store    *store.Store
}

// LoadDeps wires definitions, the model, tools and sessions from cfg. An
// unreachable database leaves the signal tools answering "unavailable".
func LoadDeps(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Deps, error) {
	defs, err := agent.LoadDefinitions(cfg.Agents.DefinitionsFile)
	if err != nil {
		return nil, err
	}
	model, err := llm.NewModel(cfg.LLM)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Postgres.Timeout)
	st, err := store.NewWithDSN(dbCtx, cfg.Storage.Postgres.DSN())
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable; signal tools will report it")
		st = nil
	}

	rest, err := agent.RESTTools(mcpserver.New(tools.NewClientFromConfig(cfg.Tools), logger.Component(log, "tools")))
	if err != nil {
		return nil, err
	}
	signal, err := agent.SignalTools(st)
	if err != nil {
		return nil, err
	}
	toolset := rest.Merge(signal)
	log.Debug().Int("tools", toolset.Len()).Msg("toolset ready")
	return &Deps{
		Defs:     defs,
		Model:    model,
		Tools:    toolset,
		Sessions: session.NewStore(ctx, cfg.Storage.Redis, log),
		Store:    st,
	}, nil
}

// Close releases the database and, when it holds a connection, the session store.
func (d *Deps) Close() {
	if d.Store != nil {
		_ = d.Store.Close()
	}
	if c, ok := d.Sessions.(io.Closer); ok {
		_ = c.Close()
	}
}

// SignalPipeline builds the refinement loop from the loaded definitions.
func (d *Deps) SignalPipeline(maxIterations int, log zerolog.Logger) (agent.Loop, error) {
	return agent.SignalPipeline(d.Model, d.Defs, d.Tools, maxIterations, log)
}

// NewAgentServer serves the named definition. signal_processor runs the
// refinement loop; every other agent answers conversational turns.
func NewAgentServer(cfg *config.Config, deps *Deps, name string, log zerolog.Logger) (*Server, error) {
	def, err := deps.Defs.Get(name)
	if err != nil {
		return nil, err
	}
	addr, err := cfg.Agents.Addr(name)
	if err != nil {
		return nil, err
	}

	var h Handler
	if name == config.AgentSignalProcessor {
		loop, err := deps.SignalPipeline(cfg.Pipeline.MaxIterations, log)
		if err != nil {
			return nil, err
		}
		h = PipelineHandler(loop, log)
	} else {
		a, err := agent.NewLLMAgent(def, deps.Model, deps.Tools, log)
		if err != nil {
			return nil, err
		}
		h = RunnerHandler(agent.NewRunner(a, deps.Sessions, log))
	}

	url := cfg.Agents.Endpoints[name]
	if url == "" {
		url = "http://" + addr
	}
	return New(CardFor(def, url), cfg.Auth.ServiceSecret, h, log)
}

// CardFor describes def as an agent card.
func CardFor(def agent.Definition, url string) capability.AgentCard {
	skill := capability.Skill{
		ID:          def.Name,
		Name:        def.Name,
		Description: def.Description,
		Tags:        def.Tools,
	}
	return capability.AgentCard{
		Name:        def.Name,
		Description: def.Description,
		URL:         url,
		Version:     Version,
		Category:    def.Name,
		Skills:      []capability.Skill{skill},
	}
}

// Addr is the listen address of the named agent.
func Addr(cfg *config.Config, name string) (string, error) {
	addr, err := cfg.Agents.Addr(name)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", name, err)
	}
	return addr, nil
}
