/*
Package dsl provides a fluent builder for constructing weft graphs in Go.

Nodes are declared under a label, ports are declared on the node builder and
connections are addressed as "label.port". Nothing touches a graph until
Build, which creates every node, wires every connection and reports the
first problem it finds. This keeps tests and generated graphs declarative.

Example usage:

	b := dsl.New()

	b.Add("src").
		Output("Out", schema.Float(), 2.0)

	b.Add("double").
		Input("In", schema.Float(), 0.0).
		Output("Result", schema.Float(), 0.0).
		Transform("Result", func(n *domain.Node) any {
			in, _ := n.Input("In")
			return in.Value().(float64) * 2
		})

	b.Connect("src.Out", "double.In")

	res, err := b.Build()
	// res.Port("double.Result").Value() == 4.0
*/
package dsl
