package codec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a document serialization format.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "xml", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q", s)
	}
}

// FormatFor picks the format from a file extension, defaulting to XML.
func FormatFor(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatXML
}

// Marshal renders root in the given format.
func Marshal(root *Element, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return EncodeYAML(root)
	case FormatXML, "":
		return EncodeXML(root)
	default:
		return nil, fmt.Errorf("unsupported format: %q", f)
	}
}

// Unmarshal parses data in the given format.
func Unmarshal(data []byte, f Format) (*Element, error) {
	switch f {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatXML, "":
		return DecodeXML(data)
	default:
		return nil, fmt.Errorf("unsupported format: %q", f)
	}
}
