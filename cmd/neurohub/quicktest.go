package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/capability"
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/mohammad-safakhou/neurohub/internal/router"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var quickQueries = []router.Query{
	{Message: "Hello! Can you introduce yourself and tell me what you can help with?"},
	{Message: "I want to design an EEG experiment to study attention. What should I consider?", ResearchArea: "attention", ExperimentType: "EEG"},
	{Message: "What's the difference between alpha and beta brain waves?"},
}

func quicktestCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "quicktest",
		Short: "Probe every agent, then send a fixed set of queries through the router",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			rt, reg, err := newRouter(cfg, log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			live := probeAll(ctx, out, reg)
			if live == 0 {
				return router.ErrNoAgents
			}
			for _, q := range quickQueries {
				fmt.Fprintf(out, "\n> %s\n", q.Message)
				if err := rt.Dispatch(ctx, q, printEvent(out)); err != nil {
					fmt.Fprintf(out, "  failed: %v\n", err)
				}
			}
			return nil
		},
	}
}

func newRouter(cfg *config.Config, log zerolog.Logger) (*router.Router, *capability.Registry, error) {
	reg, err := capability.NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return router.New(reg, logger.Component(log, "router")), reg, nil
}

// probeAll prints the liveness of every registered agent and returns how many answered.
func probeAll(ctx context.Context, out io.Writer, reg *capability.Registry) int {
	providers := reg.Providers()
	results := make([]error, len(providers))
	cards := make([]capability.AgentCard, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			cards[i], results[i] = p.Probe(ctx)
			return nil
		})
	}
	_ = g.Wait()
	live := 0
	for i, p := range providers {
		if results[i] != nil {
			fmt.Fprintf(out, "  [down] %-20s %v\n", p.Category(), results[i])
			continue
		}
		live++
		fmt.Fprintf(out, "  [up]   %-20s %s (v%s)\n", p.Category(), cards[i].Name, cards[i].Version)
	}
	return live
}

func printEvent(out io.Writer) func(router.Event) {
	return func(ev router.Event) {
		switch ev.Type {
		case router.EventStatus:
			fmt.Fprintf(out, "  ... %s\n", ev.Message)
		case router.EventResponse:
			fmt.Fprintf(out, "  [%s] %s\n", ev.Agent, ev.Content)
		case router.EventError:
			fmt.Fprintf(out, "  error: %s\n", ev.Message)
		}
	}
}
