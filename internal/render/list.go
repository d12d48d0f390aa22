package render

import (
	"bytes"
	"context"
	"fmt"

	"graphview/internal/dom"
	"graphview/internal/fetch"
	"graphview/internal/listing"
	"graphview/internal/logging"
)

// ListOptions configures a ListRenderer.
type ListOptions struct {
	Endpoint  string
	ShellPath string
	Client    *fetch.Client
}

// ListRenderer draws the list payload as an unordered list, one serialized
// entry per item.
type ListRenderer struct {
	endpoint string
	client   *fetch.Client
	shell    *dom.Shell
}

// NewListRenderer loads the page shell, which must contain #data-container.
func NewListRenderer(ctx context.Context, opts ListOptions) (*ListRenderer, error) {
	shell, err := loadShell(ctx, opts.ShellPath, "shells/list.html", ListContainer)
	if err != nil {
		return nil, err
	}
	client := opts.Client
	if client == nil {
		client = fetch.NewClient(nil)
	}
	return &ListRenderer{
		endpoint: opts.Endpoint,
		client:   client,
		shell:    shell,
	}, nil
}

// Lines fetches the payload once and serializes every entry in order.
func (r *ListRenderer) Lines(ctx context.Context) ([]string, error) {
	list, err := r.client.List(ctx, r.endpoint)
	if err != nil {
		return nil, err
	}
	lines, err := listing.Lines(list)
	if err != nil {
		return nil, &fetch.LoadError{URL: r.endpoint, Err: err}
	}
	logging.FromContext(ctx).Debug("built list items", "items", len(lines))
	return lines, nil
}

// Render returns the page. An error is returned only when ctx ended before
// the response arrived.
func (r *ListRenderer) Render(ctx context.Context) ([]byte, error) {
	lines, err := r.Lines(ctx)
	if err == nil {
		if len(lines) == 0 {
			return r.shell.Render(NoDataMessage, ""), nil
		}
		var ul bytes.Buffer
		err = fragments.ExecuteTemplate(&ul, "list", lines)
		if err == nil {
			return r.shell.Render(r.shell.Inner()+ul.String(), ""), nil
		}
		err = fmt.Errorf("failed to render list: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logging.FromContext(ctx).Error("Error fetching data", "err", err)
	return r.shell.Render(ListErrorMessage, ""), nil
}
