package source

import (
	"context"
	"fmt"
	"os"

	"graphview/internal/graph"
)

// FileSource serves payloads from JSON files. Files are read on every call.
type FileSource struct {
	GraphPath string
	ListPath  string
}

// NewFileSource creates a FileSource.
func NewFileSource(graphPath, listPath string) *FileSource {
	return &FileSource{GraphPath: graphPath, ListPath: listPath}
}

func (s *FileSource) Graph(ctx context.Context) (*graph.GraphPayload, error) {
	f, err := os.Open(s.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()
	return graph.DecodeGraph(f)
}

func (s *FileSource) List(ctx context.Context) (graph.ListPayload, error) {
	f, err := os.Open(s.ListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()
	return graph.DecodeList(f)
}

func (s *FileSource) Close(ctx context.Context) error { return nil }
