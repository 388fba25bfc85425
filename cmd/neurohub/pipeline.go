package main

import (
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/neurohub/internal/a2a"
	"github.com/mohammad-safakhou/neurohub/internal/agent"
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/spf13/cobra"
)

func pipelineCMD(cfgPath *string) *cobra.Command {
	var researchers string
	var maxIterations int
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the signal analysis loop once and print the promoted summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			if maxIterations <= 0 {
				maxIterations = cfg.Pipeline.MaxIterations
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			deps, err := a2a.LoadDeps(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer deps.Close()
			loop, err := deps.SignalPipeline(maxIterations, logger.Component(log, "pipeline"))
			if err != nil {
				return err
			}
			names := agent.SplitNames(researchers)
			res, err := loop.Run(ctx, agent.NewState(map[string]string{agent.KeyResearchers: strings.Join(names, ", ")}))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Promoted {
				fmt.Fprintln(out, a2a.NotCompleted(res.Iterations))
				return nil
			}
			fmt.Fprintln(out, res.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&researchers, "researchers", "", `comma separated researcher names, e.g. "Dr. Sarah Chen,Dr. Michael Rodriguez"`)
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "iteration bound (default pipeline.max_iterations)")
	return cmd
}
