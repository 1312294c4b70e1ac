package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// Encoder turns entities into element trees.
type Encoder struct {
	types  *Types
	report Report
}

// NewEncoder creates an encoder over the registered types.
func NewEncoder(types *Types) *Encoder {
	return &Encoder{types: types}
}

// Report returns the problems collected so far.
// Leaf values of unregistered types are skipped and reported.
func (enc *Encoder) Report() *Report {
	return &enc.report
}

// Encode produces the Entity element for e.
func (enc *Encoder) Encode(e Entity) (*Element, error) {
	return enc.encodeEntity(e, "", "")
}

// EncodeAs is Encode with a Name attribute, for entities held by a field.
func (enc *Encoder) EncodeAs(e Entity, name string) (*Element, error) {
	return enc.encodeEntity(e, name, name)
}

func (enc *Encoder) encodeEntity(e Entity, name, path string) (*Element, error) {
	kind, ok := enc.types.KindOf(e)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, e)
	}
	el := NewElement(TagEntity)
	if name != "" {
		el.SetAttr(AttrName, name)
	}
	el.SetAttr(AttrFullType, kind.Name)
	el.SetAttr(AttrGuid, e.ID().String())
	if path == "" {
		path = kind.Name
	}

	for _, f := range kind.Fields {
		fpath := childPath(path, f.Name, -1)
		switch f.Class {
		case LeafClass:
			v := f.get(e)
			if v == nil {
				continue
			}
			typeName, ok := enc.types.ValueName(v)
			if !ok {
				enc.report.Addf(UnknownType, fpath, "no value type registered for %T", v)
				continue
			}
			el.Append(&Element{
				Tag:   TagProperty,
				Attrs: Attrs{{AttrName, f.Name}, {AttrFullType, typeName}},
				Value: v,
			})

		case NestedClass:
			child, _ := f.get(e).(Entity)
			if child == nil {
				continue
			}
			sub, err := enc.encodeEntity(child, f.Name, fpath)
			if err != nil {
				return nil, err
			}
			el.Append(sub)

		case ReferenceClass:
			id := f.get(e).(uuid.UUID)
			if id == uuid.Nil {
				continue
			}
			el.Append(refElement(f.Name, id))

		case CollectionClass:
			for i, child := range f.get(e).([]Entity) {
				sub, err := enc.encodeEntity(child, f.Name, childPath(path, f.Name, i))
				if err != nil {
					return nil, err
				}
				el.Append(sub)
			}

		case ReferencesClass:
			for _, id := range f.get(e).([]uuid.UUID) {
				el.Append(refElement(f.Name, id))
			}
		}
	}
	return el, nil
}

func refElement(name string, id uuid.UUID) *Element {
	return &Element{
		Tag:   TagRef,
		Attrs: Attrs{{AttrName, name}, {AttrGuid, id.String()}},
	}
}
