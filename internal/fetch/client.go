// Package fetch issues the single data request behind a render.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"graphview/internal/graph"
)

// ErrLoad is the one failure kind of a fetch: network errors, error
// responses and undecodable bodies all match it.
var ErrLoad = errors.New("fetch or parse failure")

// LoadError carries the endpoint that failed.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.URL, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// Client fetches payloads. It never retries and sets no timeout of its own;
// the caller's context bounds the request.
type Client struct {
	HTTP *http.Client
}

// NewClient returns a Client using hc, or a plain http.Client when hc is nil.
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{HTTP: hc}
}

// Graph fetches and decodes a GraphPayload from url.
func (c *Client) Graph(ctx context.Context, url string) (*graph.GraphPayload, error) {
	var payload *graph.GraphPayload
	err := c.get(ctx, url, func(body io.Reader) error {
		var err error
		payload, err = graph.DecodeGraph(body)
		return err
	})
	return payload, err
}

// List fetches and decodes a ListPayload from url.
func (c *Client) List(ctx context.Context, url string) (graph.ListPayload, error) {
	var list graph.ListPayload
	err := c.get(ctx, url, func(body io.Reader) error {
		var err error
		list, err = graph.DecodeList(body)
		return err
	})
	return list, err
}

// get performs one GET. The status code is not inspected; an error body
// fails in decode.
func (c *Client) get(ctx context.Context, url string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &LoadError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &LoadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if err := decode(resp.Body); err != nil {
		return &LoadError{URL: url, Err: fmt.Errorf("status %d: %w", resp.StatusCode, err)}
	}
	return nil
}
