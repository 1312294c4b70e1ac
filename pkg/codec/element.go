package codec

// Element tags.
const (
	TagEntity   = "Entity"
	TagRef      = "Ref"
	TagProperty = "Property"
)

// Attribute names.
const (
	AttrName     = "Name"
	AttrFullType = "FullType"
	AttrGuid     = "Guid"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Attrs is an ordered attribute list.
type Attrs []Attr

// Get returns the value of the named attribute.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Element is a node of the document tree.
// Value holds the leaf payload of Property elements.
type Element struct {
	Tag      string
	Attrs    Attrs
	Value    any
	Children []*Element
}

// NewElement creates an element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return e.Attrs.Get(name)
}

// SetAttr sets an attribute, keeping its position when it already exists.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Append adds children in order.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Named returns the children whose Name attribute equals name, in order.
func (e *Element) Named(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if n, _ := c.Attr(AttrName); n == name {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first child named name, or nil.
func (e *Element) First(name string) *Element {
	for _, c := range e.Children {
		if n, _ := c.Attr(AttrName); n == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy of the element tree. Leaf values are shared.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Tag: e.Tag, Value: e.Value}
	if e.Attrs != nil {
		out.Attrs = append(Attrs(nil), e.Attrs...)
	}
	for _, c := range e.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}
