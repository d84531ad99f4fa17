package menutree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/menus/pkg/types"
)

// stringFields are the descriptor keys whose values must be strings or null.
var stringFields = map[string]bool{
	"type":        true,
	"referenceId": true,
	"title":       true,
	"url":         true,
	"target":      true,
	"icon":        true,
	"displayMode": true,
	"iconSize":    true,
}

// Decode parses a submitted items value. The value must be a JSON array of
// node objects; each node's children, when present and non-null, must be an
// array of node objects too. Unknown keys are ignored. Every shape problem is
// reported as an error wrapping types.ErrInvalidItems.
func Decode(raw []byte) ([]types.NodeDescriptor, error) {
	if err := checkShape(raw); err != nil {
		return nil, err
	}
	var nodes []types.NodeDescriptor
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidItems, err)
	}
	if nodes == nil {
		nodes = []types.NodeDescriptor{}
	}
	return nodes, nil
}

// checkShape walks the token stream once with an explicit stack. '[' frames
// expect node objects, '{' frames expect descriptor keys.
func checkShape(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return invalid("malformed JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return invalid("items must be an array")
	}

	// path holds, for each list frame, the index of the node being read.
	stack := []json.Delim{'['}
	path := []int{0}
	for len(stack) > 0 {
		tok, err := dec.Token()
		if err != nil {
			return invalid("malformed JSON: %v", err)
		}
		top := len(stack) - 1

		if stack[top] == '[' {
			switch tok {
			case json.Delim(']'):
				stack, path = stack[:top], path[:top]
			case json.Delim('{'):
				stack = append(stack, '{')
				path = append(path, 0)
			default:
				return invalid("node %s is not an object", nodePath(stack, path))
			}
			continue
		}

		if tok == json.Delim('}') {
			stack, path = stack[:top], path[:top]
			// Advance the sibling counter of the enclosing list.
			path[len(path)-1]++
			continue
		}
		key, ok := tok.(string)
		if !ok {
			return invalid("node %s has a non-string key", nodePath(stack, path))
		}

		switch {
		case key == "children":
			v, err := dec.Token()
			if err != nil {
				return invalid("malformed JSON: %v", err)
			}
			switch v {
			case nil:
			case json.Delim('['):
				stack = append(stack, '[')
				path = append(path, 0)
			default:
				return invalid("node %s: children must be an array", nodePath(stack, path))
			}
		case stringFields[key]:
			v, err := dec.Token()
			if err != nil {
				return invalid("malformed JSON: %v", err)
			}
			switch v.(type) {
			case nil, string:
			default:
				return invalid("node %s: %s must be a string", nodePath(stack, path), key)
			}
		default:
			if err := skipValue(dec); err != nil {
				return invalid("malformed JSON: %v", err)
			}
		}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return invalid("unexpected data after items array")
	}
	return nil
}

// skipValue consumes one complete JSON value of any kind.
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok {
		case json.Delim('['), json.Delim('{'):
			depth++
		case json.Delim(']'), json.Delim('}'):
			depth--
		}
		if depth == 0 {
			return nil
		}
	}
}

// nodePath renders the position of the current node as dotted sibling
// indices such as "1.0.2". Only list frames contribute a counter.
func nodePath(stack []json.Delim, path []int) string {
	var buf bytes.Buffer
	for i, d := range stack {
		if d != '[' {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('.')
		}
		fmt.Fprintf(&buf, "%d", path[i])
	}
	return buf.String()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidItems, fmt.Sprintf(format, args...))
}
