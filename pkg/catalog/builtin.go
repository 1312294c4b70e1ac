package catalog

import (
	"fmt"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/spf13/cast"
)

// Built-in kinds.
const (
	KindConstant = "value.constant"
	KindAdd      = "math.add"
	KindMultiply = "math.multiply"
)

var builtinTemplates = []byte(`
templates:
  - kind: value.constant
    name: Constant
    size: {width: 100, height: 40}
    outputs:
      - {name: Value, type: float, value: 0}
  - kind: math.add
    name: Add
    description: Sums its inputs. A new input appears whenever the last one is connected.
    size: {width: 120, height: 60}
    inputs:
      - {name: In, type: float, value: 0}
    outputs:
      - {name: Sum, type: float}
  - kind: math.multiply
    name: Multiply
    size: {width: 120, height: 60}
    inputs:
      - {name: A, type: float, value: 1}
      - {name: B, type: float, value: 1}
    outputs:
      - {name: Product, type: float}
`)

// RegisterBuiltins adds the built-in kinds to r.
func RegisterBuiltins(r *Registry) error {
	templates, err := ParseTemplates(builtinTemplates)
	if err != nil {
		return err
	}
	behaviors := map[string]Behavior{
		KindAdd:      bindAdd,
		KindMultiply: bindMultiply,
	}
	for _, t := range templates {
		if err := r.RegisterTemplate(t, behaviors[t.Kind]); err != nil {
			return err
		}
	}
	return nil
}

func output(n *domain.Node, name string) (*domain.Property, error) {
	p, ok := n.Output(name)
	if !ok {
		return nil, fmt.Errorf("node %s has no output %q", n.Name(), name)
	}
	return p, nil
}

func bindAdd(n *domain.Node) error {
	sum, err := output(n, "Sum")
	if err != nil {
		return err
	}
	sum.SetTransform(func(any) any {
		total := 0.0
		for _, in := range n.Inputs() {
			total += cast.ToFloat64(in.Value())
		}
		return total
	})

	// Connecting the last input grows a fresh one.
	var grow func(p *domain.Property)
	grow = func(p *domain.Property) {
		reactive.Subscribe(p.Store(), domain.PropertyConnectionCount, func(c reactive.ChangeOf[int]) {
			last, err := n.InputAt(n.InputCount() - 1)
			if err == nil && c.NewValue > 0 && last == p {
				grow(n.AddInput("In", p.Type(), 0.0))
			}
		})
	}
	for _, in := range n.Inputs() {
		grow(in)
	}
	if last, err := n.InputAt(n.InputCount() - 1); err == nil && last.ConnectionCount() > 0 {
		grow(n.AddInput("In", last.Type(), 0.0))
	}

	sum.SetValue(nil)
	return nil
}

func bindMultiply(n *domain.Node) error {
	product, err := output(n, "Product")
	if err != nil {
		return err
	}
	a, okA := n.Input("A")
	b, okB := n.Input("B")
	if !okA || !okB {
		return fmt.Errorf("node %s needs inputs A and B", n.Name())
	}
	product.SetTransform(func(any) any {
		return cast.ToFloat64(a.Value()) * cast.ToFloat64(b.Value())
	})
	product.SetValue(nil)
	return nil
}
