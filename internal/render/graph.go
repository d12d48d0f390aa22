package render

import (
	"bytes"
	"context"
	"fmt"

	"graphview/internal/dom"
	"graphview/internal/elements"
	"graphview/internal/fetch"
	"graphview/internal/logging"
)

// GraphOptions configures a GraphRenderer.
type GraphOptions struct {
	Endpoint  string
	Policy    elements.Policy
	ShellPath string
	Client    *fetch.Client
}

// GraphRenderer draws the graph payload as a Cytoscape.js visualization.
type GraphRenderer struct {
	endpoint string
	client   *fetch.Client
	mapper   *elements.Mapper
	shell    *dom.Shell
}

// NewGraphRenderer loads the page shell, which must contain #cy.
func NewGraphRenderer(ctx context.Context, opts GraphOptions) (*GraphRenderer, error) {
	shell, err := loadShell(ctx, opts.ShellPath, "shells/graph.html", GraphContainer)
	if err != nil {
		return nil, err
	}
	client := opts.Client
	if client == nil {
		client = fetch.NewClient(nil)
	}
	return &GraphRenderer{
		endpoint: opts.Endpoint,
		client:   client,
		mapper:   elements.NewMapper(opts.Policy),
		shell:    shell,
	}, nil
}

// Elements fetches the payload once and maps it to elements. Reserved key
// collisions are logged as warnings.
func (r *GraphRenderer) Elements(ctx context.Context) ([]elements.Element, error) {
	logger := logging.FromContext(ctx)

	payload, err := r.client.Graph(ctx, r.endpoint)
	if err != nil {
		return nil, err
	}

	els, collisions := r.mapper.Build(payload)
	for _, c := range collisions {
		logger.Warn("property collides with reserved key", "element", c.ElementID, "key", c.Key, "policy", r.mapper.Policy)
	}
	logger.Debug("built graph elements", "nodes", len(payload.Nodes), "edges", len(payload.Edges))
	return els, nil
}

type bootstrap struct {
	Container string
	Elements  []elements.Element
	Style     []elements.StyleRule
	Layout    elements.Layout
}

// Render returns the page. An error is returned only when ctx ended before
// the response arrived; then there is nothing to render.
func (r *GraphRenderer) Render(ctx context.Context) ([]byte, error) {
	logger := logging.FromContext(ctx)

	els, err := r.Elements(ctx)
	if err == nil {
		var script bytes.Buffer
		err = fragments.ExecuteTemplate(&script, "graph-bootstrap", bootstrap{
			Container: GraphContainer,
			Elements:  els,
			Style:     elements.Stylesheet(),
			Layout:    elements.ForceLayout(),
		})
		if err == nil {
			return r.shell.Render("", script.String()), nil
		}
		err = fmt.Errorf("failed to render bootstrap script: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logger.Error("Error fetching graph data", "err", err)
	return r.shell.Render(GraphErrorMessage, ""), nil
}
