package main

import (
	"context"
	"fmt"
	"os"

	"graphview/internal/config"
	"graphview/internal/graph"
	"graphview/internal/loader"
	"graphview/internal/logging"
	"graphview/internal/source"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var wipe bool

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load a graph payload file into Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Source = config.SourceNeo4j
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, args[0], wipe)
		},
	}

	cmd.Flags().BoolVar(&wipe, "wipe", false, "delete all nodes and relationships before loading")
	return cmd
}

func runSeed(ctx context.Context, cfg config.Config, path string, wipe bool) error {
	logger := logging.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open payload: %w", err)
	}
	payload, err := graph.DecodeGraph(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	src, err := source.NewNeo4jSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer src.Close(context.Background())

	l := loader.NewNeo4jLoader(src.Driver(), cfg.Neo4jDatabase)

	if wipe {
		logger.Info("Wiping database...")
		if err := l.Wipe(ctx); err != nil {
			return fmt.Errorf("failed to wipe database: %w", err)
		}
	}

	progress := logging.NewProgress(logger)
	if err := l.Load(ctx, payload); err != nil {
		return err
	}
	progress.Done(fmt.Sprintf("Loaded %d nodes and %d edges", len(payload.Nodes), len(payload.Edges)))
	return nil
}
