// Package render turns fetched payloads into pages. Each render issues one
// request, transforms the payload and fills the page's container; any
// failure replaces the container contents with an error message.
package render

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"

	"graphview/internal/dom"
)

//go:embed shells/*.html templates/*.html
var assets embed.FS

var fragments = template.Must(template.ParseFS(assets, "templates/*.html"))

const (
	GraphContainer = "cy"
	ListContainer  = "data-container"

	GraphErrorMessage = "<p>Error loading graph data.</p>"
	ListErrorMessage  = "<p>Error loading data.</p>"
	NoDataMessage     = "<p>No data available.</p>"
)

// loadShell reads the page shell at path, or the embedded default when path
// is empty, and checks it holds the container element.
func loadShell(ctx context.Context, path, embedded, container string) (*dom.Shell, error) {
	var (
		src []byte
		err error
	)
	if path != "" {
		src, err = os.ReadFile(path)
	} else {
		src, err = assets.ReadFile(embedded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read page shell: %w", err)
	}

	shell, err := dom.NewShell(ctx, src, container)
	if err != nil {
		return nil, fmt.Errorf("invalid page shell %s: %w", shellName(path, embedded), err)
	}
	return shell, nil
}

func shellName(path, embedded string) string {
	if path != "" {
		return path
	}
	return embedded
}
