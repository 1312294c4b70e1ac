package domain

// EventType defines the category of an event.
type EventType string

const (
	EventNodeAdded    EventType = "node_added"
	EventNodeRemoved  EventType = "node_removed"
	EventConnect      EventType = "connect"
	EventDisconnect   EventType = "disconnect"
	EventReject       EventType = "reject"
	EventValueChanged EventType = "value_changed"
	EventCycleGuard   EventType = "cycle_guard"
)

// NodeEvent reports a node entering or leaving the graph.
type NodeEvent struct {
	Type EventType
	Node *Node
}

// ConnectionEvent reports a connection change or a rejected attempt.
// Reason is only set for EventReject.
type ConnectionEvent struct {
	Type   EventType
	From   *Property
	To     *Property
	Reason Reason
}

// ValueEvent reports an effective property value write.
type ValueEvent struct {
	Property *Property
	OldValue any
	NewValue any
}

// CycleEvent reports a propagation dropped by the loop guard. Depth is how
// many times Property was already propagating when the push was dropped.
type CycleEvent struct {
	Property *Property
	Depth    int
}

// LifecycleHooks defines callbacks for graph observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnNodeAdded    func(*NodeEvent)
	OnNodeRemoved  func(*NodeEvent)
	OnConnect      func(*ConnectionEvent)
	OnDisconnect   func(*ConnectionEvent)
	OnReject       func(*ConnectionEvent)
	OnValueChanged func(*ValueEvent)
	OnCycleGuard   func(*CycleEvent)
}

func (g *Graph) emitNode(typ EventType, n *Node) {
	ev := &NodeEvent{Type: typ, Node: n}
	for _, h := range g.hooks {
		switch {
		case typ == EventNodeAdded && h.OnNodeAdded != nil:
			h.OnNodeAdded(ev)
		case typ == EventNodeRemoved && h.OnNodeRemoved != nil:
			h.OnNodeRemoved(ev)
		}
	}
}

func (g *Graph) emitConnection(ev *ConnectionEvent) {
	for _, h := range g.hooks {
		var fn func(*ConnectionEvent)
		switch ev.Type {
		case EventConnect:
			fn = h.OnConnect
		case EventDisconnect:
			fn = h.OnDisconnect
		case EventReject:
			fn = h.OnReject
		}
		if fn != nil {
			fn(ev)
		}
	}
}

func (g *Graph) emitValue(ev *ValueEvent) {
	for _, h := range g.hooks {
		if h.OnValueChanged != nil {
			h.OnValueChanged(ev)
		}
	}
}

func (g *Graph) emitCycle(ev *CycleEvent) {
	for _, h := range g.hooks {
		if h.OnCycleGuard != nil {
			h.OnCycleGuard(ev)
		}
	}
}
