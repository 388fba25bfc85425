package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/mohammad-safakhou/neurohub/config"
	"github.com/mohammad-safakhou/neurohub/internal/store"
	"github.com/spf13/cobra"
)

func migrateCMD(cfgPath *string) *cobra.Command {
	var migDir string
	var direction string
	var steps int

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			if err := store.Migrate(migDir, cfg.Storage.Postgres.DSN(), direction, steps); err != nil {
				return fmt.Errorf("migrate %s: %w", direction, err)
			}
			log.Info().Str("direction", direction).Int("steps", steps).Msg("migrations applied")
			return nil
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", "", "migrations source such as file://migrations (default: embedded)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return migrate
}

func seedCMD(cfgPath *string) *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample researchers, devices, experiments and recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := load(*cfgPath)
			if err != nil {
				return err
			}
			return runSeed(cmd, cfg, seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for generated recordings (0 = time based)")
	return cmd
}

func setupCMD(cfgPath *string) *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Migrate the database up and insert the sample data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(*cfgPath)
			if err != nil {
				return err
			}
			if err := store.Migrate("", cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			log.Info().Msg("schema ready")
			return runSeed(cmd, cfg, seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for generated recordings (0 = time based)")
	return cmd
}

func runSeed(cmd *cobra.Command, cfg *config.Config, seed int64) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()
	st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
	if err != nil {
		return err
	}
	defer st.Close()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	summary, err := st.Seed(ctx, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", summary)
	return nil
}
