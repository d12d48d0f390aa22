package dom

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Shell is a page whose container element gets its contents replaced on
// every render. Offsets are resolved once, so rendering is a byte splice.
type Shell struct {
	src       []byte
	container string
	inner     Span
	tail      uint32
}

// NewShell parses src and locates the element with the given id. The
// element must have an end tag. Markup passed as tail to Render goes right
// before </body>, or at the end of the document if there is no body.
func NewShell(ctx context.Context, src []byte, containerID string) (*Shell, error) {
	els, ids, err := Parse(ctx, src)
	if err != nil {
		return nil, err
	}

	idx, ok := ids[containerID]
	if !ok {
		return nil, fmt.Errorf("page has no element with id %q", containerID)
	}
	container := els[idx]
	if !container.Closed {
		return nil, fmt.Errorf("element #%s has no end tag", containerID)
	}

	tail := uint32(len(src))
	for _, el := range els {
		if strings.EqualFold(el.Tag, "body") && el.Closed {
			tail = el.Inner.End
			break
		}
	}
	if tail < container.Inner.End {
		return nil, fmt.Errorf("element #%s is outside the page body", containerID)
	}

	return &Shell{
		src:       src,
		container: containerID,
		inner:     container.Inner,
		tail:      tail,
	}, nil
}

// Container returns the id of the element Render fills.
func (s *Shell) Container() string { return s.container }

// Inner returns the container's original contents.
func (s *Shell) Inner() string { return string(s.src[s.inner.Start:s.inner.End]) }

// Render returns a copy of the page with the container's contents replaced
// by inner and tail appended to the body.
func (s *Shell) Render(inner, tail string) []byte {
	var buf bytes.Buffer
	buf.Grow(len(s.src) + len(inner) + len(tail))
	buf.Write(s.src[:s.inner.Start])
	buf.WriteString(inner)
	buf.Write(s.src[s.inner.End:s.tail])
	buf.WriteString(tail)
	buf.Write(s.src[s.tail:])
	return buf.Bytes()
}
