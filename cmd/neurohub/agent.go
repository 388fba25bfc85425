package main

import (
	"github.com/mohammad-safakhou/neurohub/internal/a2a"
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/spf13/cobra"
)

func agentCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "agent <name>",
		Short: "Serve one agent (documentation, signal_processor, experiment_designer, orchestrator, research_assistant)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			log = logger.Component(log, "agent").With().Str("agent", name).Logger()
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			deps, err := a2a.LoadDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer deps.Close()
			srv, err := a2a.NewAgentServer(cfg, deps, name, log)
			if err != nil {
				return err
			}
			addr, err := a2a.Addr(cfg, name)
			if err != nil {
				return err
			}
			card := srv.Card()
			log.Info().Str("url", card.URL).Str("version", card.Version).Msg("agent card published")
			return srv.Run(ctx, addr)
		},
	}
}
