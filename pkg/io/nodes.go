package io

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/apocalyptech/choosable/pkg/book"
	errs "github.com/apocalyptech/choosable/pkg/errors"
)

const (
	tagStr  = "!!str"
	tagInt  = "!!int"
	tagBool = "!!bool"
)

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: s}
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagInt, Value: strconv.Itoa(n)}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tagBool, Value: strconv.FormatBool(v)}
}

// idNode writes page numbers as YAML integers and labels as strings, so the
// two kinds of id survive a round trip.
func idNode(id book.PageID) *yaml.Node {
	if n, ok := id.Number(); ok {
		return intNode(n)
	}
	return strNode(id.Label())
}

func mappingNode(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: pairs}
}

func sequenceNode(items []*yaml.Node) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
	if len(items) == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

// parseID reads a page id from a scalar node. Integers must be
// non-negative; strings go through [book.PageLabel] normalisation.
func parseID(n *yaml.Node) (book.PageID, error) {
	if n.Kind != yaml.ScalarNode {
		return book.PageID{}, errs.New(errs.ErrCodeSchema, "line %d: page id must be a scalar", n.Line)
	}
	switch n.ShortTag() {
	case tagInt:
		var v int
		if err := n.Decode(&v); err != nil {
			return book.PageID{}, errs.Wrap(errs.ErrCodeSchema, err, "line %d: page id", n.Line)
		}
		if v < 0 {
			return book.PageID{}, errs.New(errs.ErrCodeSchema, "line %d: negative page number %d", n.Line, v)
		}
		return book.PageNum(v), nil
	case tagStr:
		id := book.PageLabel(n.Value)
		if err := id.Validate(); err != nil {
			return book.PageID{}, errs.Wrap(errs.ErrCodeSchema, err, "line %d: page id", n.Line)
		}
		return id, nil
	default:
		return book.PageID{}, errs.New(errs.ErrCodeSchema, "line %d: page id %q must be an integer or a string", n.Line, n.Value)
	}
}

// pairs walks a mapping node, calling fn for each key/value pair.
// A missing (zero) node is treated as an empty mapping.
func pairs(n *yaml.Node, what string, fn func(k, v *yaml.Node) error) error {
	if n == nil || n.Kind == 0 || n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return errs.New(errs.ErrCodeSchema, "line %d: %s must be a mapping", n.Line, what)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i], n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// fields indexes the scalar keys of a mapping node.
func fields(n *yaml.Node) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := n.Content[i]; k.Kind == yaml.ScalarNode {
			out[k.Value] = n.Content[i+1]
		}
	}
	return out
}
