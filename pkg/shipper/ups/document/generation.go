// Package document is the tree shared by every UPS request builder and
// response parser. Builders assemble an ordered Node tree; the Generation
// decides whether it is sent as JSON (current REST API) or XML (legacy API).
// Responses are decoded back into a generic Tree.
package document

import (
	"fmt"
	"strings"
)

// Generation identifies the UPS API generation a document targets.
type Generation uint8

const (
	// JSON is the current OAuth-protected REST API.
	JSON Generation = iota
	// XML is the legacy access-key API with the two-step ship flow.
	XML
)

// ParseGeneration maps a configuration value to a Generation.
func ParseGeneration(value string) (Generation, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json", "rest":
		return JSON, nil
	case "xml", "legacy":
		return XML, nil
	default:
		return JSON, fmt.Errorf("unknown UPS API generation %q", value)
	}
}

func (g Generation) String() string {
	if g == XML {
		return "xml"
	}
	return "json"
}

// ContentType is the request content type for the generation.
func (g Generation) ContentType() string {
	if g == XML {
		return "application/xml"
	}
	return "application/json"
}

// DimensionLength is the number of characters UPS accepts for each package
// dimension value.
func (g Generation) DimensionLength() int {
	if g == XML {
		return 9
	}
	return 4
}

// Encoder serializes a named document.
type Encoder interface {
	Encode(name string, root *Node) ([]byte, error)
}

// Encoder returns the serializer for the generation.
func (g Generation) Encoder() Encoder {
	if g == XML {
		return xmlEncoder{}
	}
	return jsonEncoder{}
}
