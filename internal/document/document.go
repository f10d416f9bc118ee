// Package document turns YAML and JSON-lines documents into structure
// values, keeping mapping keys in document order so that they can serve as
// CSV column names.
package document

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oleg578/csvstream/structure"
)

// Format names an input encoding.
type Format string

const (
	// JSONLines is one JSON document per line. Blank lines are skipped.
	JSONLines Format = "jsonl"
	// YAML is a stream of YAML documents separated by "---".
	YAML Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{JSONLines, YAML}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("document: unknown format %q: must be one of %v", s, Formats)
}

const (
	maxAliasDepth = 64
	// MaxNodes bounds the values one document may expand to once aliases
	// are resolved.
	MaxNodes = 1 << 20
)

var (
	errMergeKey = errors.New("document: merge keys are not supported")
	// ErrTooLarge is returned for documents that expand past MaxNodes.
	ErrTooLarge = errors.New("document: document expands to too many values")
)

// FromNode converts a decoded YAML node.
func FromNode(n *yaml.Node) (structure.Value, error) {
	c := converter{budget: MaxNodes}
	return c.convert(n, 0)
}

// converter walks a node tree, charging every produced value against
// budget so that chains of aliases cannot fan out without limit.
type converter struct {
	budget int
}

func (c *converter) convert(n *yaml.Node, depth int) (structure.Value, error) {
	if n == nil {
		return structure.None(), nil
	}
	if n.Kind != yaml.DocumentNode && n.Kind != yaml.AliasNode {
		if c.budget--; c.budget < 0 {
			return nil, fmt.Errorf("line %d: %w (limit %d)", n.Line, ErrTooLarge, MaxNodes)
		}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return structure.None(), nil
		}
		return c.convert(n.Content[0], depth)
	case yaml.AliasNode:
		if depth >= maxAliasDepth {
			return nil, fmt.Errorf("document: line %d: alias nesting exceeds %d", n.Line, maxAliasDepth)
		}
		return c.convert(n.Alias, depth+1)
	case yaml.SequenceNode:
		vals := make([]structure.Value, len(n.Content))
		for i, child := range n.Content {
			v, err := c.convert(child, depth)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return structure.Seq(vals...), nil
	case yaml.MappingNode:
		fields := make([]structure.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.ShortTag() == "!!merge" {
				return nil, fmt.Errorf("line %d: %w", key.Line, errMergeKey)
			}
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("document: line %d: mapping keys must be scalars", key.Line)
			}
			v, err := c.convert(val, depth)
			if err != nil {
				return nil, err
			}
			fields = append(fields, structure.Named(key.Value, v))
		}
		return structure.Record(fields...), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return nil, fmt.Errorf("document: line %d: unexpected node kind %v", n.Line, n.Kind)
	}
}

func fromScalar(n *yaml.Node) (structure.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return structure.None(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("document: line %d: %w", n.Line, err)
		}
		return structure.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return structure.Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("document: line %d: %w", n.Line, err)
		}
		return structure.Uint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("document: line %d: %w", n.Line, err)
		}
		return structure.Float(f), nil
	case "!!binary":
		var b string
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("document: line %d: %w", n.Line, err)
		}
		return structure.Bytes([]byte(b)), nil
	default:
		return structure.String(n.Value), nil
	}
}

// Decode reads documents of the given format from r and sends each one to
// out. It stops at the end of input, at the first malformed document, or
// when ctx is done. Decode does not close out.
func Decode(ctx context.Context, r io.Reader, format Format, out chan<- structure.Value) error {
	send := func(v structure.Value) error {
		select {
		case out <- v:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		for {
			var node yaml.Node
			if err := dec.Decode(&node); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("document: decode yaml: %w", err)
			}
			v, err := FromNode(&node)
			if err != nil {
				return err
			}
			if err := send(v); err != nil {
				return err
			}
		}
	case JSONLines:
		br := bufio.NewReader(r)
		for lineNo := 1; ; lineNo++ {
			line, readErr := br.ReadBytes('\n')
			if readErr != nil && !errors.Is(readErr, io.EOF) {
				return fmt.Errorf("document: read line %d: %w", lineNo, readErr)
			}
			if line = bytes.TrimSpace(line); len(line) > 0 {
				var node yaml.Node
				if err := yaml.Unmarshal(line, &node); err != nil {
					return fmt.Errorf("document: line %d: %w", lineNo, err)
				}
				v, err := FromNode(&node)
				if err != nil {
					return fmt.Errorf("line %d: %w", lineNo, err)
				}
				if err := send(v); err != nil {
					return err
				}
			}
			if readErr != nil {
				return nil
			}
		}
	default:
		return fmt.Errorf("document: unknown format %q", format)
	}
}
