package a2a

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/neurohub/internal/agent"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/rs/zerolog"
)

// requestState seeds the agent state from the forwarded context.
func requestState(req capability.Request) agent.State {
	return agent.NewState(map[string]string{
		agent.KeyRequest:         req.Message,
		agent.KeyResearchArea:    req.Context.ResearchArea,
		agent.KeyExperimentType:  req.Context.ExperimentType,
		agent.KeyAvailableAgents: strings.Join(req.Context.AvailableAgents, ", "),
	})
}

// RunnerHandler answers with one conversational agent turn.
func RunnerHandler(r *agent.Runner) Handler {
	return HandlerFunc(func(ctx context.Context, req capability.Request, contextID string) (string, error) {
		return r.Run(ctx, contextID, requestState(req), req.Message)
	})
}

// PipelineHandler runs the refinement loop once per request. An unpromoted
// run produces no output; the caller sees an empty response.
func PipelineHandler(loop agent.Loop, log zerolog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, req capability.Request, _ string) (string, error) {
		res, err := loop.Run(ctx, requestState(req))
		if err != nil {
			return "", err
		}
		if !res.Promoted {
			log.Info().Int("iterations", res.Iterations).Str("status", string(res.Status)).Msg(NotCompleted(res.Iterations))
			return "", nil
		}
		return res.Output, nil
	})
}

// NotCompleted describes a pipeline run that never passed its gate.
func NotCompleted(iterations int) string {
	return fmt.Sprintf("Analysis did not reach a completed state after %d iterations.", iterations)
}
