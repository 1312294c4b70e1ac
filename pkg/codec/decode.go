package codec

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/aretw0/weft/internal/logging"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Decoder rebuilds entities from element trees.
// Identifiers are taken from the document, never generated, except for
// entity elements whose Guid is missing or malformed.
type Decoder struct {
	types  *Types
	logger *slog.Logger
	report Report
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithDecoderLogger logs every reported problem at warn level.
func WithDecoderLogger(logger *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// NewDecoder creates a decoder over the registered types.
func NewDecoder(types *Types, opts ...DecoderOption) *Decoder {
	d := &Decoder{types: types, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Report returns the problems collected so far.
func (d *Decoder) Report() *Report {
	return &d.report
}

// Decode rebuilds the entity described by el.
// Problems below the root are reported and skipped; the root itself must be a
// known entity.
func (d *Decoder) Decode(el *Element) (Entity, error) {
	if el == nil || el.Tag != TagEntity {
		return nil, fmt.Errorf("%w: expected %s element", ErrMalformed, TagEntity)
	}
	fullType, _ := el.Attr(AttrFullType)
	if _, ok := d.types.Kind(fullType); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, fullType)
	}
	guid, _ := el.Attr(AttrGuid)
	if _, err := uuid.Parse(guid); err != nil {
		return nil, fmt.Errorf("%w: identifier %q", ErrMalformed, guid)
	}
	return d.decodeEntity(el, fullType), nil
}

func (d *Decoder) problem(kind ProblemKind, path, format string, args ...any) {
	d.report.Addf(kind, path, format, args...)
	p := d.report.Problems[len(d.report.Problems)-1]
	d.logger.Warn("partial document load", "path", p.Path, "kind", string(p.Kind), "detail", p.Detail)
}

// decodeEntity returns nil when the element's kind is unknown or its
// identifier is malformed.
func (d *Decoder) decodeEntity(el *Element, path string) Entity {
	fullType, _ := el.Attr(AttrFullType)
	kind, ok := d.types.Kind(fullType)
	if !ok {
		d.problem(UnknownType, path, "unknown entity kind %q", fullType)
		return nil
	}

	guid, _ := el.Attr(AttrGuid)
	id, err := uuid.Parse(guid)
	if err != nil {
		d.problem(BadValue, path, "malformed identifier %q, entity skipped", guid)
		return nil
	}
	e := kind.New(id)

	for _, f := range kind.Fields {
		fpath := childPath(path, f.Name, -1)
		var (
			v   any
			ok  bool
			err error
		)
		switch f.Class {
		case LeafClass:
			v, ok = d.decodeLeaf(el.First(f.Name), fpath)
		case NestedClass:
			if child := el.First(f.Name); child != nil {
				if c := d.decodeEntity(child, fpath); c != nil {
					v, ok = c, true
				}
			}
		case ReferenceClass:
			if child := el.First(f.Name); child != nil {
				v, ok = parseRef(child), true
			}
		case CollectionClass:
			items := make([]Entity, 0)
			for i, child := range el.Named(f.Name) {
				if c := d.decodeEntity(child, childPath(path, f.Name, i)); c != nil {
					items = append(items, c)
				}
			}
			v, ok = items, len(items) > 0
		case ReferencesClass:
			children := el.Named(f.Name)
			ids := make([]uuid.UUID, 0, len(children))
			for _, child := range children {
				ids = append(ids, parseRef(child))
			}
			v, ok = ids, len(ids) > 0
		}
		if !ok {
			continue
		}
		if err = f.set(e, v); err != nil {
			d.problem(BadValue, fpath, "%v", err)
		}
	}
	return e
}

// decodeLeaf converts a Property element's payload into its registered type.
func (d *Decoder) decodeLeaf(el *Element, path string) (any, bool) {
	if el == nil {
		return nil, false
	}
	if el.Tag != TagProperty {
		d.problem(BadValue, path, "expected %s element, got %s", TagProperty, el.Tag)
		return nil, false
	}
	typeName, _ := el.Attr(AttrFullType)
	rt, ok := d.types.ValueType(typeName)
	if !ok {
		d.problem(UnknownType, path, "unknown value type %q", typeName)
		return nil, false
	}
	v, err := decodeValue(el.Value, rt)
	if err != nil {
		d.problem(BadValue, path, "%v", err)
		return nil, false
	}
	return v, true
}

func decodeValue(raw any, rt reflect.Type) (any, error) {
	if raw != nil && reflect.TypeOf(raw) == rt {
		return raw, nil
	}
	out := reflect.New(rt)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", rt, err)
	}
	return out.Elem().Interface(), nil
}

// parseRef yields uuid.Nil, the empty reference, for malformed identifiers.
func parseRef(el *Element) uuid.UUID {
	guid, _ := el.Attr(AttrGuid)
	id, err := uuid.Parse(guid)
	if err != nil {
		return uuid.Nil
	}
	return id
}
