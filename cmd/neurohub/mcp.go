package main

import (
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/mohammad-safakhou/neurohub/internal/mcpserver"
	"github.com/mohammad-safakhou/neurohub/internal/tools"
	"github.com/spf13/cobra"
)

func mcpCMD(cfgPath *string) *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the NeuroHub tools over the Model Context Protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			if transport == "" {
				transport = cfg.MCP.Transport
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			s := mcpserver.New(tools.NewClientFromConfig(cfg.Tools), logger.Component(log, "mcp"))
			return s.Serve(ctx, transport, cfg.MCP.Addr())
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "sse or stdio (overrides mcp.transport)")
	return cmd
}
