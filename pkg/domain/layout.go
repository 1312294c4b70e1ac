package domain

import "slices"

type listener[T any] struct {
	fn     func(T)
	active bool
}

func addListener[T any](list *[]*listener[T], fn func(T)) func() {
	l := &listener[T]{fn: fn, active: true}
	*list = append(*list, l)
	return func() {
		l.active = false
		if i := slices.Index(*list, l); i >= 0 {
			*list = slices.Delete(*list, i, i+1)
		}
	}
}

func fire[T any](list []*listener[T], v T) {
	for _, l := range slices.Clone(list) {
		if l.active {
			l.fn(v)
		}
	}
}

// OnPositionChanged registers fn to receive the node's position whenever it
// or the position of an ancestor changes. It returns an unsubscribe func.
func (n *Node) OnPositionChanged(fn func(Vector)) func() {
	return addListener(&n.positionSubs, fn)
}

// OnSizeChanged registers fn to receive the node's size whenever it or the
// size of an ancestor changes. It returns an unsubscribe func.
func (n *Node) OnSizeChanged(fn func(Size)) func() {
	return addListener(&n.sizeSubs, fn)
}

// firePosition notifies n's listeners, then its children in list order.
func (n *Node) firePosition() {
	fire(n.positionSubs, n.Position())
	for _, c := range slices.Clone(n.children) {
		c.firePosition()
	}
}

func (n *Node) fireSize() {
	fire(n.sizeSubs, n.Size())
	for _, c := range slices.Clone(n.children) {
		c.fireSize()
	}
}

// RecalculateSize fits the node's box around its children plus padding on
// every side, then does the same for its ancestors.
//
// The node moves to the top-left of the new box and its children shift by
// the opposite amount, so their absolute positions do not change. A node
// without children keeps its own box.
func (n *Node) RecalculateSize(padding float64) {
	if len(n.children) > 0 {
		box := n.children[0].Bounds()
		for _, c := range n.children[1:] {
			box = box.Union(c.Bounds())
		}
		box = box.Inflate(padding)

		delta := box.TopLeft()
		n.SetPosition(n.Position().Add(delta))
		n.SetSize(box.Size())
		for _, c := range n.children {
			c.Move(Vector{}.Sub(delta))
		}
	}
	if p, ok := n.Parent(); ok {
		p.RecalculateSize(padding)
	}
}
