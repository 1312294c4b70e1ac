/*
Package domain contains the node graph model of the weft engine.

A Graph is the session context of one editing session or loaded document. It
owns the identity registry, the value-type rules and the entity kinds the codec
uses, so two graphs never share state.

# Key Entities

  - Node: a positioned box owning ordered input and output properties and,
    optionally, child nodes.
  - Property: a typed value slot on a node. Outputs push their value into every
    connected input; inputs re-run the outputs of their own node.
  - Connection: a symmetric link between an output and an input on different
    nodes, validated by Graph.CanConnect.

Every entity keeps its state in a reactive.Store, so any field can be observed:

	g := domain.NewGraph()
	add := g.NewNode("Add", domain.WithKind("math.add"))
	a := add.AddInput("A", schema.Float(), 0.0)
	sum := add.AddOutput("Sum", schema.Float(), 0.0)
	sum.SetTransform(func(any) any { return a.Value().(float64) * 2 })

Propagation is synchronous. Feedback loops are cut once a property re-enters
propagation more often than the graph allows (see WithMaxPropagationDepth).
Acyclic chains of any length propagate fully.
*/
package domain
