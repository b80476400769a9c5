package document

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// xmlHeader matches the declaration the legacy endpoints expect.
const xmlHeader = `<?xml version="1.0"?>`

type jsonEncoder struct{}

// Encode wraps root in a single-key object named name.
func (jsonEncoder) Encode(name string, root *Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeJSONString(&buf, name); err != nil {
		return nil, err
	}
	buf.WriteByte(':')
	if err := root.writeJSON(&buf); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the node as an object with keys in insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	if n != nil {
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSONValue(buf, n.values[k]); err != nil {
				return fmt.Errorf("encoding %s: %w", k, err)
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONValue(buf *bytes.Buffer, value any) error {
	switch v := value.(type) {
	case *Node:
		return v.writeJSON(buf)
	case []*Node:
		buf.WriteByte('[')
		for i, child := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := child.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

type xmlEncoder struct{}

// Encode writes root as an XML document whose root element is name.
func (xmlEncoder) Encode(name string, root *Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	enc := xml.NewEncoder(&buf)
	if err := root.encodeXML(enc, name); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encodeXML(enc *xml.Encoder, name string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if n != nil {
		for _, a := range n.attrs {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a[0]}, Value: a[1]})
		}
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n != nil {
		for _, k := range n.keys {
			if err := encodeXMLValue(enc, k, n.values[k]); err != nil {
				return fmt.Errorf("encoding %s: %w", k, err)
			}
		}
	}
	return enc.EncodeToken(start.End())
}

func encodeXMLValue(enc *xml.Encoder, name string, value any) error {
	switch v := value.(type) {
	case *Node:
		return v.encodeXML(enc, name)
	case []*Node:
		for _, child := range v {
			if err := child.encodeXML(enc, name); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, s := range v {
			if err := encodeXMLText(enc, name, s); err != nil {
				return err
			}
		}
		return nil
	case string:
		return encodeXMLText(enc, name, v)
	default:
		return fmt.Errorf("unsupported value %T", value)
	}
}

func encodeXMLText(enc *xml.Encoder, name, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
