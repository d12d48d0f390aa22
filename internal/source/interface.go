package source

import (
	"context"

	"graphview/internal/graph"
)

// Source backs the data endpoint.
type Source interface {
	Graph(ctx context.Context) (*graph.GraphPayload, error)
	List(ctx context.Context) (graph.ListPayload, error)
	Close(ctx context.Context) error
}
