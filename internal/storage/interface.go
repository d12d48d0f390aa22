package storage

import "graphview/internal/elements"

// Emitter writes visualization elements to an export target.
type Emitter interface {
	Emit(el *elements.Element) error
	Close() error
}
