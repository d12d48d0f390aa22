package storage

import (
	"encoding/json"
	"io"
	"sync"

	"graphview/internal/elements"
)

// JSONLEmitter writes one element per line.
type JSONLEmitter struct {
	w       io.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONLEmitter creates a new JSONLEmitter writing to w.
func NewJSONLEmitter(w io.Writer) *JSONLEmitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLEmitter{
		w:       w,
		encoder: enc,
	}
}

// Emit writes el as a single JSON line: {"data":{...}}.
func (e *JSONLEmitter) Emit(el *elements.Element) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encoder.Encode(el)
}

// Close closes the underlying writer if it implements io.Closer.
func (e *JSONLEmitter) Close() error {
	if c, ok := e.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SplitJSONLEmitter writes node elements and edge elements to separate outputs.
type SplitJSONLEmitter struct {
	nodes *JSONLEmitter
	edges *JSONLEmitter
}

// NewSplitJSONLEmitter creates a new SplitJSONLEmitter.
func NewSplitJSONLEmitter(nodeW, edgeW io.Writer) *SplitJSONLEmitter {
	return &SplitJSONLEmitter{
		nodes: NewJSONLEmitter(nodeW),
		edges: NewJSONLEmitter(edgeW),
	}
}

func (e *SplitJSONLEmitter) Emit(el *elements.Element) error {
	if el.IsEdge() {
		return e.edges.Emit(el)
	}
	return e.nodes.Emit(el)
}

func (e *SplitJSONLEmitter) Close() error {
	nodeErr := e.nodes.Close()
	if err := e.edges.Close(); err != nil {
		return err
	}
	return nodeErr
}

// EmitAll writes els in order and stops at the first error.
func EmitAll(e Emitter, els []elements.Element) error {
	for i := range els {
		if err := e.Emit(&els[i]); err != nil {
			return err
		}
	}
	return nil
}
