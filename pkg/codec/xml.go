package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
)

// MarshalXML writes the element with its leaf payload as JSON text.
func (e *Element) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: e.Tag}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Value != nil {
		payload, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("element %s: %w", e.Tag, err)
		}
		if err := enc.EncodeToken(xml.CharData(payload)); err != nil {
			return err
		}
	}
	for _, child := range e.Children {
		if err := child.MarshalXML(enc, xml.StartElement{}); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// UnmarshalXML reads an element. Text that is not valid JSON is kept as a
// plain string payload.
func (e *Element) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	e.Tag = start.Name.Local
	e.Attrs = e.Attrs[:0]
	for _, a := range start.Attr {
		e.Attrs = append(e.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
	}

	var text []byte
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Element{}
			if err := child.UnmarshalXML(dec, t); err != nil {
				return err
			}
			e.Children = append(e.Children, child)
		case xml.CharData:
			text = append(text, t...)
		case xml.EndElement:
			text = bytes.TrimSpace(text)
			if len(text) > 0 {
				var v any
				if err := json.Unmarshal(text, &v); err != nil {
					v = string(text)
				}
				e.Value = v
			}
			return nil
		}
	}
}

// EncodeXML renders a document with an XML header.
func EncodeXML(root *Element) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// DecodeXML parses a document.
func DecodeXML(data []byte) (*Element, error) {
	var root Element
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &root, nil
}
