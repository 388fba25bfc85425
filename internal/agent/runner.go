package agent

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/neurohub/internal/session"
	"github.com/rs/zerolog"
)

// Runner answers one message of a conversation, carrying history across
// calls through a session store.
type Runner struct {
	Agent    *LLMAgent
	Sessions session.Store
	Log      zerolog.Logger
}

func NewRunner(a *LLMAgent, sessions session.Store, log zerolog.Logger) *Runner {
	return &Runner{Agent: a, Sessions: sessions, Log: log}
}

// Run answers input in the conversation contextID.
func (r *Runner) Run(ctx context.Context, contextID string, st State, input string) (string, error) {
	history, err := r.Sessions.Load(ctx, contextID)
	if err != nil {
		// a lost history is not fatal to the turn
		r.Log.Warn().Err(err).Str("context_id", contextID).Msg("load session")
		history = nil
	}
	turn, err := r.Agent.Respond(ctx, st, history, input)
	if err != nil {
		return "", err
	}
	if err := r.Sessions.Append(ctx, contextID, turn.Messages...); err != nil {
		return "", fmt.Errorf("save session %s: %w", contextID, err)
	}
	return turn.Text, nil
}
