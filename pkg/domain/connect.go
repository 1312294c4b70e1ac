package domain

import (
	"slices"

	"github.com/aretw0/weft/pkg/reactive"
)

// CanConnect checks whether a and b may be linked. It returns nil or a
// *RejectionError; the checks run in a fixed order and the first failure
// wins.
func (g *Graph) CanConnect(a, b *Property) error {
	reject := func(r Reason) error {
		return &RejectionError{From: a, To: b, Reason: r}
	}
	if a == nil || b == nil || a.graph != g || b.graph != g {
		return reject(ReasonMissing)
	}
	if a == b {
		return reject(ReasonSelf)
	}
	if a.Direction() == b.Direction() {
		return reject(ReasonSameDirection)
	}
	na, okA := a.Node()
	nb, okB := b.Node()
	if !okA || !okB {
		return reject(ReasonMissing)
	}
	if na == nb {
		return reject(ReasonSameNode)
	}
	if a.IsConnected(b) {
		return reject(ReasonAlreadyConnected)
	}

	out, in := a, b
	if a.Direction() == Input {
		out, in = b, a
	}
	if !g.rules.Compatible(out.typ, in.typ) {
		return reject(ReasonIncompatibleTypes)
	}
	if !na.accepts(a, b) || !nb.accepts(b, a) {
		return reject(ReasonCustomRule)
	}
	if g.rejectCycles {
		from, _ := out.Node()
		to, _ := in.Node()
		if g.reaches(to, from) {
			return reject(ReasonWouldCycle)
		}
	}
	return nil
}

// Connect links a and b if CanConnect allows it. A rejection leaves the graph
// untouched, fires OnReject and returns false.
func (g *Graph) Connect(a, b *Property) bool {
	if err := g.CanConnect(a, b); err != nil {
		reason, _ := RejectionReason(err)
		g.logger.Debug("connection rejected", "from", a.path(), "to", b.path(), "reason", string(reason))
		g.emitConnection(&ConnectionEvent{Type: EventReject, From: a, To: b, Reason: reason})
		return false
	}
	g.link(a, b)
	return true
}

// link adds the peers and bumps both counts, which triggers propagation.
func (g *Graph) link(a, b *Property) {
	a.peers = append(a.peers, b)
	b.peers = append(b.peers, a)
	a.bumpConnections(1)
	b.bumpConnections(1)
	g.emitConnection(&ConnectionEvent{Type: EventConnect, From: a, To: b})
}

// Disconnect unlinks a and b. It is a no-op returning false when they are
// not connected.
func (g *Graph) Disconnect(a, b *Property) bool {
	if a == nil || b == nil || !a.IsConnected(b) {
		return false
	}
	a.peers = slices.DeleteFunc(a.peers, func(p *Property) bool { return p == b })
	b.peers = slices.DeleteFunc(b.peers, func(p *Property) bool { return p == a })
	a.bumpConnections(-1)
	b.bumpConnections(-1)
	g.emitConnection(&ConnectionEvent{Type: EventDisconnect, From: a, To: b})
	return true
}

// DisconnectAll unlinks p from every peer.
func (g *Graph) DisconnectAll(p *Property) {
	for _, peer := range slices.Clone(p.peers) {
		g.Disconnect(p, peer)
	}
}

func (p *Property) bumpConnections(delta int) {
	reactive.Set(p.store, PropertyConnectionCount, p.ConnectionCount()+delta)
}

// reaches reports whether data can flow from node from to node to through
// existing connections.
func (g *Graph) reaches(from, to *Node) bool {
	seen := map[*Node]bool{from: true}
	queue := []*Node{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			return true
		}
		for _, o := range n.outputs {
			for _, peer := range o.peers {
				next, ok := peer.Node()
				if ok && !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return false
}

// propagate pushes an output's value to its peers, or re-runs the outputs of
// an input's node. A property already propagating maxDepth times further up
// the stack is cut off, as is any push nested deeper than the stack limit.
func (p *Property) propagate() {
	g := p.graph
	if g.inFlight[p] >= g.maxDepth || g.depth >= propagationStackLimit {
		g.logger.Warn("propagation loop detected, dropping push", "property", p.path(), "reentries", g.inFlight[p], "depth", g.depth)
		g.emitCycle(&CycleEvent{Property: p, Depth: g.inFlight[p]})
		return
	}
	if g.inFlight == nil {
		g.inFlight = make(map[*Property]int)
	}
	g.depth++
	g.inFlight[p]++
	defer func() {
		g.depth--
		if g.inFlight[p]--; g.inFlight[p] == 0 {
			delete(g.inFlight, p)
		}
	}()

	if p.Direction() == Output {
		for _, peer := range slices.Clone(p.peers) {
			peer.receive(p)
		}
		return
	}
	n, ok := p.Node()
	if !ok {
		return
	}
	for _, o := range slices.Clone(n.outputs) {
		o.SetValue(o.Value())
	}
}

// receive writes the value of output from into p, converting between value
// types when they differ.
func (p *Property) receive(from *Property) {
	v, err := p.graph.rules.Convert(from.Value(), from.typ, p.typ)
	if err != nil {
		p.graph.logger.Warn("cannot convert pushed value", "from", from.path(), "to", p.path(), "error", err)
		return
	}
	p.SetValue(v)
}
