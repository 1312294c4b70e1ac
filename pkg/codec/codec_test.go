package codec_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y float64
}

type widget struct {
	id      uuid.UUID
	store   *reactive.Store
	parts   []*widget
	link    uuid.UUID
	peers   []uuid.UUID
	payload any
}

var (
	widgetLabel = reactive.Define[string]("widget", "Label", nil)
	widgetAt    = reactive.Define[point]("widget", "At", nil)
	widgetCount = reactive.Define[int]("widget", "Count", func() int { return 7 })
)

func newWidget(id uuid.UUID) *widget {
	w := &widget{id: id}
	w.store = reactive.NewStore(w, nil)
	return w
}

func (w *widget) ID() uuid.UUID             { return w.id }
func (w *widget) Store() *reactive.Store    { return w.store }
func (w *widget) label() string             { return reactive.Get(w.store, widgetLabel) }
func (w *widget) setLabel(s string) *widget { reactive.Set(w.store, widgetLabel, s); return w }

func newTypes() *codec.Types {
	types := codec.NewTypes()
	codec.RegisterValue[point](types, "point")
	codec.RegisterKind(types, "test.Widget", newWidget,
		codec.Leaf(widgetLabel),
		codec.Leaf(widgetAt),
		codec.Leaf(widgetCount),
		codec.Value("Payload",
			func(w *widget) any { return w.payload },
			func(w *widget, v any) error { w.payload = v; return nil }),
		codec.Reference("Link",
			func(w *widget) uuid.UUID { return w.link },
			func(w *widget, id uuid.UUID) error { w.link = id; return nil }),
		codec.Collection("Parts",
			func(w *widget) []*widget { return w.parts },
			func(w *widget, parts []*widget) error { w.parts = parts; return nil }),
		codec.References("Peers",
			func(w *widget) []uuid.UUID { return w.peers },
			func(w *widget, ids []uuid.UUID) error { w.peers = ids; return nil }),
	)
	return types
}

func sample() *widget {
	root := newWidget(uuid.New()).setLabel("root")
	reactive.Set(root.store, widgetAt, point{X: 1.5, Y: -2})
	root.payload = []any{1.0, 2.0}
	a := newWidget(uuid.New()).setLabel("a")
	b := newWidget(uuid.New()).setLabel("b")
	a.link = b.id // forward reference
	a.payload = 42
	root.parts = []*widget{a, b}
	root.peers = []uuid.UUID{b.id, a.id}
	return root
}

func roundTrip(t *testing.T, format codec.Format) {
	types := newTypes()
	root := sample()

	enc := codec.NewEncoder(types)
	el, err := enc.Encode(root)
	require.NoError(t, err)
	require.True(t, enc.Report().Empty(), enc.Report().String())

	data, err := codec.Marshal(el, format)
	require.NoError(t, err)

	parsed, err := codec.Unmarshal(data, format)
	require.NoError(t, err)

	dec := codec.NewDecoder(types)
	got, err := dec.Decode(parsed)
	require.NoError(t, err)
	assert.True(t, dec.Report().Empty(), dec.Report().String())

	w := got.(*widget)
	assert.Equal(t, root.id, w.id)
	assert.Equal(t, "root", w.label())
	assert.Equal(t, point{X: 1.5, Y: -2}, reactive.Get(w.store, widgetAt))
	assert.Equal(t, []uuid.UUID{root.parts[1].id, root.parts[0].id}, w.peers)

	require.Len(t, w.parts, 2)
	assert.Equal(t, "a", w.parts[0].label())
	assert.Equal(t, "b", w.parts[1].label())
	assert.Equal(t, root.parts[0].id, w.parts[0].id)
	assert.Equal(t, root.parts[1].id, w.parts[0].link)
	assert.Equal(t, 42, w.parts[0].payload)
	assert.Equal(t, uuid.Nil, w.parts[1].link)
}

func TestRoundTrip_XML(t *testing.T) {
	roundTrip(t, codec.FormatXML)
}

func TestRoundTrip_YAML(t *testing.T) {
	roundTrip(t, codec.FormatYAML)
}

func TestEncode_DocumentShape(t *testing.T) {
	root := sample()
	el, err := codec.NewEncoder(newTypes()).Encode(root)
	require.NoError(t, err)

	assert.Equal(t, codec.TagEntity, el.Tag)
	fullType, _ := el.Attr(codec.AttrFullType)
	assert.Equal(t, "test.Widget", fullType)
	guid, _ := el.Attr(codec.AttrGuid)
	assert.Equal(t, root.id.String(), guid)

	label := el.First("Label")
	require.NotNil(t, label)
	assert.Equal(t, codec.TagProperty, label.Tag)
	assert.Equal(t, "root", label.Value)

	parts := el.Named("Parts")
	require.Len(t, parts, 2)
	assert.Equal(t, codec.TagEntity, parts[0].Tag)

	link := parts[0].First("Link")
	require.NotNil(t, link)
	assert.Equal(t, codec.TagRef, link.Tag)
	assert.Empty(t, link.Children, "references carry only the identifier")

	// Materialized defaults are part of the document; untouched fields are too.
	assert.NotNil(t, el.First("Count"))
	assert.Nil(t, parts[1].First("Link"), "empty references are not emitted")
}

func TestEncode_UnregisteredValue(t *testing.T) {
	w := newWidget(uuid.New())
	w.payload = struct{ Secret string }{"x"}

	enc := codec.NewEncoder(newTypes())
	el, err := enc.Encode(w)
	require.NoError(t, err)
	assert.Nil(t, el.First("Payload"))
	assert.Equal(t, 1, enc.Report().Count(codec.UnknownType))
}

func TestEncode_UnknownKind(t *testing.T) {
	_, err := codec.NewEncoder(codec.NewTypes()).Encode(newWidget(uuid.New()))
	assert.ErrorIs(t, err, codec.ErrUnknownKind)
}

const partialXML = `<?xml version="1.0" encoding="UTF-8"?>
<Entity FullType="test.Widget" Guid="8c1b1a4e-9f0e-4f57-9c39-2a1d64d2a0f1">
  <Property Name="Label" FullType="string">"kept"</Property>
  <Property Name="At" FullType="vector3">{"X":1}</Property>
  <Property Name="Count" FullType="int">"many"</Property>
  <Ref Name="Link" Guid="not-a-uuid"/>
  <Entity Name="Parts" FullType="test.Gadget" Guid="4b0c3fd2-1c0a-4f55-8d5e-0d4f5c1a2b3c"/>
  <Entity Name="Parts" FullType="test.Widget" Guid="e2f0a6a4-4a0a-4e0d-9b8e-2b3c4d5e6f70"/>
</Entity>`

func TestDecode_PartialLoad(t *testing.T) {
	root, err := codec.DecodeXML([]byte(partialXML))
	require.NoError(t, err)

	dec := codec.NewDecoder(newTypes())
	got, err := dec.Decode(root)
	require.NoError(t, err)

	w := got.(*widget)
	assert.Equal(t, "kept", w.label())
	assert.False(t, w.store.Has(widgetAt), "unknown value type leaves the field unset")
	assert.Equal(t, 7, reactive.Get(w.store, widgetCount), "bad value falls back to the default")
	assert.Equal(t, uuid.Nil, w.link, "malformed identifier yields the empty reference")
	require.Len(t, w.parts, 1, "unknown kinds are skipped")

	report := dec.Report()
	assert.Equal(t, 2, report.Count(codec.UnknownType))
	assert.Equal(t, 1, report.Count(codec.BadValue))
}

const malformedPartXML = `<?xml version="1.0" encoding="UTF-8"?>
<Entity FullType="test.Widget" Guid="8c1b1a4e-9f0e-4f57-9c39-2a1d64d2a0f1">
  <Entity Name="Parts" FullType="test.Widget" Guid="not-a-uuid"/>
  <Entity Name="Parts" FullType="test.Widget" Guid="e2f0a6a4-4a0a-4e0d-9b8e-2b3c4d5e6f70"/>
</Entity>`

func TestDecode_MalformedIdentifier(t *testing.T) {
	root, err := codec.DecodeXML([]byte(malformedPartXML))
	require.NoError(t, err)

	dec := codec.NewDecoder(newTypes())
	got, err := dec.Decode(root)
	require.NoError(t, err)

	w := got.(*widget)
	require.Len(t, w.parts, 1, "entities without a readable identifier are skipped")
	assert.Equal(t, uuid.MustParse("e2f0a6a4-4a0a-4e0d-9b8e-2b3c4d5e6f70"), w.parts[0].ID())
	assert.Equal(t, 1, dec.Report().Count(codec.BadValue))

	root.SetAttr(codec.AttrGuid, "garbage")
	_, err = codec.NewDecoder(newTypes()).Decode(root)
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestDecode_RejectsUnknownRoot(t *testing.T) {
	dec := codec.NewDecoder(newTypes())

	_, err := dec.Decode(codec.NewElement(codec.TagEntity).SetAttr(codec.AttrFullType, "nope"))
	assert.ErrorIs(t, err, codec.ErrUnknownKind)

	_, err = dec.Decode(codec.NewElement(codec.TagRef))
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, codec.FormatYAML, codec.FormatFor("graph.yml"))
	assert.Equal(t, codec.FormatYAML, codec.FormatFor("graph.YAML"))
	assert.Equal(t, codec.FormatXML, codec.FormatFor("graph.weft"))

	_, err := codec.ParseFormat("json")
	assert.Error(t, err)
}
