package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/neurohub/internal/router"
	"github.com/spf13/cobra"
)

func interactiveCMD(cfgPath *string) *cobra.Command {
	var area, kind string
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Chat with the agents through the router; type quit to exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			rt, _, err := newRouter(cfg, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			contextID := uuid.NewString()
			fmt.Fprintln(out, "NeuroHub interactive session. Type 'quit' to exit.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "\nyou> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch strings.ToLower(line) {
				case "":
					continue
				case "quit", "exit", "bye":
					return nil
				}
				q := router.Query{Message: line, ResearchArea: area, ExperimentType: kind, ContextID: contextID}
				if err := rt.Dispatch(ctx, q, printEvent(out)); err != nil {
					log.Debug().Err(err).Msg("dispatch")
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&area, "research-area", "", "research area forwarded with every query")
	cmd.Flags().StringVar(&kind, "experiment-type", "", "experiment type forwarded with every query")
	return cmd
}
