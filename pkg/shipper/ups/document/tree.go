package document

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// Tree is a decoded response document. Objects are map[string]any, repeated
// elements are []any and leaves are strings (XML) or JSON scalars.
type Tree map[string]any

// ErrEmptyDocument is returned when a response body holds no document.
var ErrEmptyDocument = errors.New("empty response document")

// Decode parses a response body produced by the given generation.
func Decode(raw []byte, g Generation) (Tree, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDocument
	}
	if g == XML {
		return decodeXML(raw)
	}
	return decodeJSON(raw)
}

func decodeJSON(raw []byte) (Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decoding json response: %w", err)
	}
	if tree == nil {
		return nil, ErrEmptyDocument
	}
	return tree, nil
}

type xmlFrame struct {
	name     string
	children map[string]any
	text     strings.Builder
}

func decodeXML(raw []byte) (Tree, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	// Legacy responses may declare ISO-8859-1; the payload is ASCII in practice.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	root := make(map[string]any)
	var stack []*xmlFrame
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding xml response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, &xmlFrame{name: t.Name.Local, children: make(map[string]any)})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decoding xml response: unexpected </%s>", t.Name.Local)
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			var value any = strings.TrimSpace(frame.text.String())
			if len(frame.children) > 0 {
				value = frame.children
			}
			parent := root
			if len(stack) > 0 {
				parent = stack[len(stack)-1].children
			}
			addChild(parent, frame.name, value)
		}
	}
	if len(root) == 0 {
		return nil, ErrEmptyDocument
	}
	return root, nil
}

func addChild(parent map[string]any, name string, value any) {
	existing, ok := parent[name]
	if !ok {
		parent[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		parent[name] = append(list, value)
		return
	}
	parent[name] = []any{existing, value}
}

// Lookup walks path through nested objects. When a step meets a list it
// continues with the first element, so single-or-array shapes read alike.
func Lookup(v any, path ...string) any {
	cur := v
	for _, key := range path {
		m := Object(cur)
		if m == nil {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// Path is Lookup rooted at the tree.
func (t Tree) Path(path ...string) any {
	return Lookup(map[string]any(t), path...)
}

// Object returns v as an object. A list yields its first element.
func Object(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case Tree:
		return t
	case []any:
		if len(t) == 0 {
			return nil
		}
		return Object(t[0])
	}
	return nil
}

// List normalizes a single-or-array value into a slice. nil yields nil.
func List(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// Text returns the string form of a leaf. Objects and lists yield "".
func Text(v any) string {
	switch v.(type) {
	case map[string]any, []any, nil:
		return ""
	}
	return cast.ToString(v)
}
