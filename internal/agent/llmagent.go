package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/mohammad-safakhou/neurohub/internal/llm"
	"github.com/rs/zerolog"
)

// DefaultMaxTurns caps the model calls of a single agent turn.
const DefaultMaxTurns = 8

// ErrTurnLimit is returned when the model keeps calling tools past MaxTurns.
var ErrTurnLimit = errors.New("agent exceeded the model turn limit")

// LLMAgent runs a Definition against a model with its tools.
type LLMAgent struct {
	Def      Definition
	MaxTurns int

	model       llm.Model
	tools       Toolset
	instruction *template.Template
	log         zerolog.Logger
}

// Turn is the outcome of one Respond call. Messages holds the user input and
// everything the agent added after it.
type Turn struct {
	Text     string
	Messages []llm.Message
}

// NewLLMAgent binds def to model. available must contain every tool def names.
func NewLLMAgent(def Definition, model llm.Model, available Toolset, log zerolog.Logger) (*LLMAgent, error) {
	tools, err := available.Subset(def.Tools)
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", def.Name, err)
	}
	tmpl, err := template.New(def.Name).Option("missingkey=zero").Parse(def.Instruction)
	if err != nil {
		return nil, fmt.Errorf("agent %s: instruction: %w", def.Name, err)
	}
	return &LLMAgent{
		Def:         def,
		MaxTurns:    DefaultMaxTurns,
		model:       llm.WithName(model, def.Model),
		tools:       tools,
		instruction: tmpl,
		log:         log.With().Str("agent", def.Name).Logger(),
	}, nil
}

func (a *LLMAgent) Name() string { return a.Def.Name }

// Instruction renders the system prompt against st.
func (a *LLMAgent) Instruction(st State) (string, error) {
	var b strings.Builder
	if err := a.instruction.Execute(&b, st.Values()); err != nil {
		return "", fmt.Errorf("agent %s: render instruction: %w", a.Def.Name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Respond answers input given the prior conversation, calling tools until the
// model produces a plain reply.
func (a *LLMAgent) Respond(ctx context.Context, st State, history []llm.Message, input string) (Turn, error) {
	system, err := a.Instruction(st)
	if err != nil {
		return Turn{}, err
	}
	msgs := append(append([]llm.Message(nil), history...), llm.Message{Role: llm.RoleUser, Content: input})
	start := len(history)
	specs := a.tools.Specs()

	maxTurns := a.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	for turn := 0; turn < maxTurns; turn++ {
		resp, err := a.model.Generate(ctx, llm.Request{System: system, Messages: msgs, Tools: specs})
		if err != nil {
			return Turn{}, fmt.Errorf("agent %s: %w", a.Def.Name, err)
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: resp.Text, ToolCalls: resp.ToolCalls})
		if len(resp.ToolCalls) == 0 {
			return Turn{Text: strings.TrimSpace(resp.Text), Messages: msgs[start:]}, nil
		}
		for _, call := range resp.ToolCalls {
			msgs = append(msgs, llm.Message{Role: llm.RoleTool, ToolCallID: call.ID, Content: a.callTool(ctx, call)})
		}
	}
	return Turn{Messages: msgs[start:]}, fmt.Errorf("agent %s: %w (%d)", a.Def.Name, ErrTurnLimit, maxTurns)
}

// callTool runs one call and renders the result, or the failure, as JSON for
// the model.
func (a *LLMAgent) callTool(ctx context.Context, call llm.ToolCall) string {
	tool, ok := a.tools.Lookup(call.Name)
	if !ok {
		return errorJSON(fmt.Errorf("unknown tool %q", call.Name))
	}
	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return errorJSON(fmt.Errorf("arguments are not a JSON object: %w", err))
		}
	}
	out, err := tool.Call(ctx, args)
	if err != nil {
		a.log.Warn().Err(err).Str("tool", call.Name).Msg("tool call failed")
		return errorJSON(err)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return errorJSON(err)
	}
	a.log.Debug().Str("tool", call.Name).Int("bytes", len(b)).Msg("tool call")
	return string(b)
}

func errorJSON(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

// Step returns a loop step that sends prompt and stores the reply under the
// definition's output key.
func (a *LLMAgent) Step(prompt string) Step {
	return StepFunc(a.Def.Name, func(ctx context.Context, st State) (State, error) {
		turn, err := a.Respond(ctx, st, nil, prompt)
		if err != nil {
			return st, err
		}
		if a.Def.OutputKey != "" {
			st = st.With(a.Def.OutputKey, turn.Text)
		}
		return st, nil
	})
}
