package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlElement struct {
	Tag      string     `yaml:"tag"`
	Attrs    Attrs      `yaml:"attrs,omitempty"`
	Value    any        `yaml:"value,omitempty"`
	Children []*Element `yaml:"children,omitempty"`
}

// MarshalYAML writes the element as a mapping with ordered attributes.
func (e *Element) MarshalYAML() (any, error) {
	return yamlElement(*e), nil
}

// UnmarshalYAML reads an element written by MarshalYAML.
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	var y yamlElement
	if err := node.Decode(&y); err != nil {
		return err
	}
	*e = Element(y)
	return nil
}

// MarshalYAML writes the attributes as a mapping in list order.
func (a Attrs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, attr := range a {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: attr.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: attr.Value},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping of attributes preserving document order.
func (a *Attrs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("attrs: expected mapping, got line %d", node.Line)
	}
	out := make(Attrs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Attr{Name: node.Content[i].Value, Value: node.Content[i+1].Value})
	}
	*a = out
	return nil
}

// EncodeYAML renders a document as YAML.
func EncodeYAML(root *Element) ([]byte, error) {
	return yaml.Marshal(root)
}

// DecodeYAML parses a YAML document.
func DecodeYAML(data []byte) (*Element, error) {
	var root Element
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &root, nil
}
