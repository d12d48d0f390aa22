// Package dom locates and mutates elements of an HTML page shell.
package dom

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// Span is a byte range of the source document.
type Span struct {
	Start uint32
	End   uint32
}

// Element is an element found in a document.
type Element struct {
	Tag string
	// Inner is the range between the start and end tags.
	Inner Span
	// Closed is false for void or unterminated elements; Inner is empty then.
	Closed bool
}

// Parse returns every element of src, in document order.
func Parse(ctx context.Context, src []byte) ([]Element, map[string]int, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(html.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse html: %w", err)
	}
	defer tree.Close()

	var els []Element
	ids := make(map[string]int)
	walk(tree.RootNode(), src, &els, ids)
	return els, ids, nil
}

func walk(n *sitter.Node, src []byte, els *[]Element, ids map[string]int) {
	switch n.Type() {
	case "element", "script_element", "style_element":
		if el, id, ok := element(n, src); ok {
			if id != "" {
				if _, dup := ids[id]; !dup {
					ids[id] = len(*els)
				}
			}
			*els = append(*els, el)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), src, els, ids)
	}
}

func element(n *sitter.Node, src []byte) (Element, string, bool) {
	if n.NamedChildCount() == 0 {
		return Element{}, "", false
	}
	start := n.NamedChild(0)
	if start.Type() != "start_tag" && start.Type() != "self_closing_tag" {
		return Element{}, "", false
	}

	el := Element{}
	var id string
	for i := 0; i < int(start.NamedChildCount()); i++ {
		c := start.NamedChild(i)
		switch c.Type() {
		case "tag_name":
			el.Tag = c.Content(src)
		case "attribute":
			if name, value := attribute(c, src); name == "id" {
				id = value
			}
		}
	}

	last := n.NamedChild(int(n.NamedChildCount()) - 1)
	if start.Type() == "start_tag" && last.Type() == "end_tag" {
		el.Closed = true
		el.Inner = Span{Start: start.EndByte(), End: last.StartByte()}
	} else {
		el.Inner = Span{Start: start.EndByte(), End: start.EndByte()}
	}
	return el, id, true
}

func attribute(n *sitter.Node, src []byte) (name, value string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "attribute_name":
			name = c.Content(src)
		case "attribute_value":
			value = c.Content(src)
		case "quoted_attribute_value":
			if c.NamedChildCount() > 0 {
				value = c.NamedChild(0).Content(src)
			}
		}
	}
	return name, value
}
