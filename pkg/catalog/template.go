package catalog

import (
	"errors"
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Port declares one property a template creates.
type Port struct {
	Name  string `yaml:"name" json:"name" mapstructure:"name"`
	Type  string `yaml:"type" json:"type" mapstructure:"type"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty" mapstructure:"value"`
}

// Template describes the node a kind instantiates.
type Template struct {
	Kind        string  `yaml:"kind" json:"kind" mapstructure:"kind"`
	Name        string  `yaml:"name" json:"name" mapstructure:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`
	Width       float64 `yaml:"width,omitempty" json:"width,omitempty" mapstructure:"width"`
	Height      float64 `yaml:"height,omitempty" json:"height,omitempty" mapstructure:"height"`
	Inputs      []Port  `yaml:"inputs,omitempty" json:"inputs,omitempty" mapstructure:"inputs"`
	Outputs     []Port  `yaml:"outputs,omitempty" json:"outputs,omitempty" mapstructure:"outputs"`
}

// ParseTemplates reads templates from YAML. The document may be a single
// template, a list of templates, or a mapping with a "templates" list.
// A nested "size: {width, height}" mapping is accepted as well.
func ParseTemplates(data []byte) ([]Template, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	var items []any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		items = v
	case map[string]any:
		if list, ok := v["templates"].([]any); ok {
			items = list
		} else {
			items = []any{v}
		}
	default:
		return nil, fmt.Errorf("failed to parse templates: unexpected %T at document root", raw)
	}

	out := make([]Template, 0, len(items))
	for i, item := range items {
		t, err := DecodeTemplate(item)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// DecodeTemplate decodes a generic map, as produced by a YAML or JSON
// decoder, into a Template.
func DecodeTemplate(raw any) (Template, error) {
	var t Template
	if m, ok := raw.(map[string]any); ok {
		if size, ok := m["size"].(map[string]any); ok {
			flat := make(map[string]any, len(m)+2)
			for k, v := range m {
				flat[k] = v
			}
			flat["width"] = size["width"]
			flat["height"] = size["height"]
			delete(flat, "size")
			raw = flat
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &t,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return t, err
	}
	if err := dec.Decode(raw); err != nil {
		return t, err
	}
	return t, nil
}

// Validate checks the template's structure. With a non-nil types set it also
// resolves every port type and checks that initial values convert to it.
func (t Template) Validate(types *schema.Types) error {
	var errs []error
	if t.Kind == "" {
		errs = append(errs, &schema.ValidationError{Key: "kind", Reason: "required"})
	}
	if t.Name == "" {
		errs = append(errs, &schema.ValidationError{Key: "name", Reason: "required"})
	}
	errs = append(errs, validatePorts("inputs", t.Inputs, types)...)
	errs = append(errs, validatePorts("outputs", t.Outputs, types)...)
	if len(errs) > 0 {
		return &schema.AggregateError{Errors: errs}
	}
	return nil
}

func validatePorts(section string, ports []Port, types *schema.Types) []error {
	var errs []error
	seen := make(map[string]bool, len(ports))
	s := schema.Schema{}
	values := map[string]any{}
	for i, p := range ports {
		key := fmt.Sprintf("%s[%d]", section, i)
		if p.Name == "" {
			errs = append(errs, &schema.ValidationError{Key: key + ".name", Reason: "required"})
			continue
		}
		key = section + "." + p.Name
		if seen[p.Name] {
			errs = append(errs, &schema.ValidationError{Key: key, Reason: "duplicate port name"})
		}
		seen[p.Name] = true
		if p.Type == "" {
			errs = append(errs, &schema.ValidationError{Key: key + ".type", Reason: "required"})
			continue
		}
		if types == nil {
			continue
		}
		typ, err := types.Parse(p.Type)
		if err != nil {
			errs = append(errs, &schema.ValidationError{Key: key + ".type", Reason: err.Error(), Value: p.Type})
			continue
		}
		if p.Value != nil {
			v, err := typ.Convert(p.Value)
			if err != nil {
				errs = append(errs, &schema.ValidationError{Key: key, Reason: err.Error(), Value: p.Value})
				continue
			}
			s[key] = typ
			values[key] = v
		}
	}
	if len(s) > 0 {
		if err := schema.Validate(s, values); err != nil {
			errs = append(errs, schema.ValidationErrors(err)...)
		}
	}
	return errs
}

// Build creates the node in g. Port types resolve through g's type set.
func (t Template) Build(g *domain.Graph, opts ...domain.NodeOption) (*domain.Node, error) {
	if err := t.Validate(g.Types()); err != nil {
		return nil, fmt.Errorf("template %q: %w", t.Kind, err)
	}
	base := []domain.NodeOption{domain.WithKind(t.Kind)}
	if t.Description != "" {
		base = append(base, domain.WithDescription(t.Description))
	}
	if t.Width > 0 || t.Height > 0 {
		base = append(base, domain.Sized(t.Width, t.Height))
	}
	n := g.NewNode(t.Name, append(base, opts...)...)

	add := func(ports []Port, fn func(string, schema.Type, any, ...domain.PropertyOption) *domain.Property) error {
		for _, p := range ports {
			typ, err := g.Types().Parse(p.Type)
			if err != nil {
				return err
			}
			var initial any
			if p.Value != nil {
				if initial, err = typ.Convert(p.Value); err != nil {
					return fmt.Errorf("port %s: %w", p.Name, err)
				}
			}
			fn(p.Name, typ, initial)
		}
		return nil
	}
	if err := errors.Join(add(t.Inputs, n.AddInput), add(t.Outputs, n.AddOutput)); err != nil {
		g.RemoveNode(n)
		return nil, err
	}
	return n, nil
}
