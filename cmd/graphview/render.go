package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"graphview/internal/config"
	"graphview/internal/elements"
	"graphview/internal/logging"
	"graphview/internal/render"
	"graphview/internal/storage"

	"github.com/spf13/cobra"
)

var errRender = errors.New("render failed")

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch a payload once and write the rendered result to stdout",
	}
	addRenderFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRenderGraphCmd())
	cmd.AddCommand(newRenderListCmd())
	return cmd
}

type graphOutput struct {
	format string
	nodes  string
	edges  string
}

func newRenderGraphCmd() *cobra.Command {
	var out graphOutput

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Write the Cytoscape elements built from the graph payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runRenderGraph(cmd, cfg, out)
		},
	}

	cmd.Flags().StringVar(&out.format, "format", "json", "output format: json or jsonl")
	cmd.Flags().StringVar(&out.nodes, "nodes", "", "write node elements to this JSONL file")
	cmd.Flags().StringVar(&out.edges, "edges", "", "write edge elements to this JSONL file")
	return cmd
}

func runRenderGraph(cmd *cobra.Command, cfg config.Config, out graphOutput) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	if (out.nodes == "") != (out.edges == "") {
		return fmt.Errorf("both --nodes and --edges must be provided for split output")
	}
	if out.format != "json" && out.format != "jsonl" {
		return fmt.Errorf("unknown format %q (want json or jsonl)", out.format)
	}

	policy, err := elements.ParsePolicy(cfg.ReservedKeys)
	if err != nil {
		return err
	}
	r, err := render.NewGraphRenderer(ctx, render.GraphOptions{
		Endpoint: cfg.GraphEndpoint,
		Policy:   policy,
	})
	if err != nil {
		return err
	}

	progress := logging.NewProgress(logger)
	els, err := r.Elements(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("Error fetching graph data", "err", err)
		fmt.Fprintln(cmd.OutOrStdout(), render.GraphErrorMessage)
		return errRender
	}

	if out.nodes != "" {
		if err := writeSplit(els, out.nodes, out.edges); err != nil {
			return err
		}
	} else if err := writeElements(cmd.OutOrStdout(), els, out.format); err != nil {
		return err
	}

	nodes, edges := elements.Split(els)
	progress.Done(fmt.Sprintf("Rendered %d nodes and %d edges", len(nodes), len(edges)))
	return nil
}

func writeElements(w io.Writer, els []elements.Element, format string) error {
	if format == "jsonl" {
		// Not closed: w is usually stdout.
		return storage.EmitAll(storage.NewJSONLEmitter(w), els)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if els == nil {
		els = []elements.Element{}
	}
	return enc.Encode(els)
}

func writeSplit(els []elements.Element, nodesPath, edgesPath string) error {
	nodeFile, err := os.Create(nodesPath)
	if err != nil {
		return fmt.Errorf("failed to create nodes file: %w", err)
	}
	edgeFile, err := os.Create(edgesPath)
	if err != nil {
		nodeFile.Close()
		return fmt.Errorf("failed to create edges file: %w", err)
	}

	e := storage.NewSplitJSONLEmitter(nodeFile, edgeFile)
	emitErr := storage.EmitAll(e, els)
	if err := e.Close(); err != nil && emitErr == nil {
		emitErr = err
	}
	return emitErr
}

func newRenderListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Write one serialized list entry per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runRenderList(cmd, cfg)
		},
	}
}

func runRenderList(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	w := cmd.OutOrStdout()

	r, err := render.NewListRenderer(ctx, render.ListOptions{Endpoint: cfg.ListEndpoint})
	if err != nil {
		return err
	}

	lines, err := r.Lines(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("Error fetching data", "err", err)
		fmt.Fprintln(w, render.ListErrorMessage)
		return errRender
	}

	if len(lines) == 0 {
		fmt.Fprintln(w, render.NoDataMessage)
		return nil
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
