package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string
	root := &cobra.Command{
		Use:          "neurohub",
		Short:        "NeuroHub research platform: REST API, agents, router and tool server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	root.AddCommand(
		serveCMD(&cfgPath),
		migrateCMD(&cfgPath),
		seedCMD(&cfgPath),
		setupCMD(&cfgPath),
		mcpCMD(&cfgPath),
		agentCMD(&cfgPath),
		pipelineCMD(&cfgPath),
		quicktestCMD(&cfgPath),
		interactiveCMD(&cfgPath),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// load reads the configuration and builds the process logger.
func load(cfgPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(logger.Config{Level: cfg.General.LogLevel, Pretty: cfg.General.LogPretty})
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
