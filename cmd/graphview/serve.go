package main

import (
	"context"
	"fmt"

	"graphview/internal/config"
	"graphview/internal/elements"
	"graphview/internal/logging"
	"graphview/internal/render"
	"graphview/internal/server"
	"graphview/internal/source"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph page, the list page and the data endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	addRenderFlags(cmd.Flags())
	addSourceFlags(cmd.Flags())
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("graph-shell", "", "HTML shell for the graph page (must contain #cy)")
	cmd.Flags().String("list-shell", "", "HTML shell for the list page (must contain #data-container)")
	return cmd
}

// addRenderFlags registers the flags shared by serve and render.
func addRenderFlags(fs *pflag.FlagSet) {
	fs.String("graph-endpoint", "", "URL of the graph payload")
	fs.String("list-endpoint", "", "URL of the list payload")
	fs.String("reserved-keys", "", "reserved key policy: guard or overwrite")
}

func addSourceFlags(fs *pflag.FlagSet) {
	fs.String("source", "", "data source for /api: neo4j or file")
	fs.String("graph-file", "", "graph payload file for the file source")
	fs.String("list-file", "", "list payload file for the file source")
	fs.String("list-query", "", "Cypher query behind /api/list")
}

func openSource(ctx context.Context, cfg config.Config) (source.Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Source == config.SourceFile {
		return source.NewFileSource(cfg.GraphFile, cfg.ListFile), nil
	}
	return source.NewNeo4jSource(ctx, cfg)
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.FromContext(ctx)

	policy, err := elements.ParsePolicy(cfg.ReservedKeys)
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s source: %w", cfg.Source, err)
	}
	defer func() {
		if err := src.Close(context.Background()); err != nil {
			logger.Warn("failed to close source", "err", err)
		}
	}()

	graphRenderer, err := render.NewGraphRenderer(ctx, render.GraphOptions{
		Endpoint:  cfg.GraphEndpoint,
		Policy:    policy,
		ShellPath: cfg.GraphShell,
	})
	if err != nil {
		return err
	}
	listRenderer, err := render.NewListRenderer(ctx, render.ListOptions{
		Endpoint:  cfg.ListEndpoint,
		ShellPath: cfg.ListShell,
	})
	if err != nil {
		return err
	}

	logger.Debug("configured", "source", cfg.Source, "graph_endpoint", cfg.GraphEndpoint, "list_endpoint", cfg.ListEndpoint)

	srv := server.New(server.Config{
		Addr:   cfg.Addr,
		Graph:  graphRenderer,
		List:   listRenderer,
		Source: src,
		Logger: logger,
	})
	return srv.Serve(ctx)
}
