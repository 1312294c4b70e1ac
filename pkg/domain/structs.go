package domain

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/weft/pkg/schema"
)

// PropertiesFromStruct adds one property per exported field of the struct v,
// in declaration order, with the field's current value as initial value.
//
// The `weft` struct tag renames a field; `weft:"-"` skips it. Field types map
// to the graph's value types: strings, integers, floats and bools to the
// built-ins, registered Go types by name, anything else to an opaque type.
func (n *Node) PropertiesFromStruct(v any, dir Direction) ([]*Property, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("properties from %T: not a struct", v)
	}
	rt := rv.Type()

	var props []*Property
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("weft"); ok {
			if tag == "-" {
				continue
			}
			if tag, _, _ = strings.Cut(tag, ","); tag != "" {
				name = tag
			}
		}
		value := rv.Field(i).Interface()
		typ := n.graph.typeOf(f.Type, value)

		var p *Property
		if dir == Output {
			p = n.AddOutput(name, typ, value)
		} else {
			p = n.AddInput(name, typ, value)
		}
		props = append(props, p)
	}
	return props, nil
}

func (g *Graph) typeOf(rt reflect.Type, value any) schema.Type {
	switch rt.Kind() {
	case reflect.String:
		return schema.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return schema.Int()
	case reflect.Float32, reflect.Float64:
		return schema.Float()
	case reflect.Bool:
		return schema.Bool()
	}
	if name, ok := g.kinds.ValueName(value); ok {
		if typ, ok := g.types.Lookup(name); ok {
			return typ
		}
	}
	return schema.Opaque(rt.String())
}
