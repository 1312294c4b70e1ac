package domain_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/reactive"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doubler returns a node whose Result output is twice its In input.
func doubler(g *domain.Graph) (in, result *domain.Property) {
	n := g.NewNode("Double")
	in = n.AddInput("In", schema.Float(), 0.0)
	result = n.AddOutput("Result", schema.Float(), 0.0)
	result.SetTransform(func(any) any { return in.Value().(float64) * 2 })
	return in, result
}

func TestConnect_PropagationDirection(t *testing.T) {
	g := domain.NewGraph()
	out := g.NewNode("Source").AddOutput("Out", schema.Float(), 2.0)
	in, result := doubler(g)

	require.True(t, g.Connect(out, in))
	assert.Equal(t, 2.0, in.Value(), "connecting pushes the output value")
	assert.Equal(t, 4.0, result.Value(), "the input re-runs its node's outputs")

	out.SetValue(5.0)
	assert.Equal(t, 5.0, in.Value())
	assert.Equal(t, 10.0, result.Value())

	in.SetValue(1.0)
	assert.Equal(t, 5.0, out.Value(), "writing an input never writes the output feeding it")
	assert.Equal(t, 2.0, result.Value())
}

func TestConnect_Symmetry(t *testing.T) {
	g := domain.NewGraph()
	out := g.NewNode("A").AddOutput("Out", schema.Int(), 1)
	in := g.NewNode("B").AddInput("In", schema.Int(), 0)

	require.True(t, g.Connect(in, out), "argument order does not matter")
	assert.Equal(t, []*domain.Property{in}, out.Peers())
	assert.Equal(t, []*domain.Property{out}, in.Peers())
	assert.Equal(t, 1, out.ConnectionCount())
	assert.Equal(t, 1, in.ConnectionCount())
	assert.Equal(t, 1, in.Value())

	require.True(t, g.Disconnect(in, out))
	assert.Empty(t, out.Peers())
	assert.Empty(t, in.Peers())
	assert.Equal(t, 0, out.ConnectionCount())
	assert.Equal(t, 0, in.ConnectionCount())

	assert.False(t, g.Disconnect(out, in), "disconnecting twice is a no-op")
	assert.Equal(t, 0, in.ConnectionCount())
}

func TestConnect_Rejections(t *testing.T) {
	g := domain.NewGraph(domain.WithCycleRejection())

	a := g.NewNode("A")
	aIn := a.AddInput("In", schema.Float(), 0.0)
	aOut := a.AddOutput("Out", schema.Float(), 0.0)
	aFlag := a.AddOutput("Flag", schema.Bool(), false)

	b := g.NewNode("B")
	bIn := b.AddInput("In", schema.Float(), 0.0)
	bOut := b.AddOutput("Out", schema.Float(), 0.0)
	bText := b.AddInput("Text", schema.String(), "")
	bCount := b.AddInput("Count", schema.Int(), 0)

	c := g.NewNode("C")
	cIn := c.AddInput("In", schema.Float(), 0.0)
	c.SetValidator(func(own, other *domain.Property) bool { return other.Name() != "Out" })

	require.True(t, g.Connect(aOut, bIn))

	tests := []struct {
		name string
		a, b *domain.Property
		want domain.Reason
	}{
		{"self", aOut, aOut, domain.ReasonSelf},
		{"two inputs", aIn, bIn, domain.ReasonSameDirection},
		{"same node", aOut, aIn, domain.ReasonSameNode},
		{"already connected", bIn, aOut, domain.ReasonAlreadyConnected},
		{"bool to string", aFlag, bText, domain.ReasonIncompatibleTypes},
		{"float to int", aOut, bCount, domain.ReasonIncompatibleTypes},
		{"custom rule", aOut, cIn, domain.ReasonCustomRule},
		{"feedback loop", bOut, aIn, domain.ReasonWouldCycle},
		{"nil", aOut, nil, domain.ReasonMissing},
	}

	var rejected []domain.Reason
	g.Observe(domain.LifecycleHooks{
		OnReject: func(ev *domain.ConnectionEvent) { rejected = append(rejected, ev.Reason) },
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := g.Connections()

			reason, ok := domain.RejectionReason(g.CanConnect(tt.a, tt.b))
			require.True(t, ok)
			assert.Equal(t, tt.want, reason)

			assert.False(t, g.Connect(tt.a, tt.b))
			assert.Equal(t, before, g.Connections(), "a rejected connection changes nothing")
		})
	}
	assert.Len(t, rejected, len(tests))
}

func TestConnect_Conversion(t *testing.T) {
	g := domain.NewGraph(domain.WithRules(schema.DefaultRules().Convertible("bool", "string")))
	count := g.NewNode("Counter").AddOutput("Count", schema.Int(), 3)
	flag := g.NewNode("Flag").AddOutput("On", schema.Bool(), true)
	sink := g.NewNode("Sink")
	gain := sink.AddInput("Gain", schema.Float(), 0.0)
	label := sink.AddInput("Label", schema.String(), "")

	require.True(t, g.Connect(count, gain), "int widens to float")
	assert.Equal(t, 3.0, gain.Value())

	require.True(t, g.Connect(flag, label), "declared convertible pair")
	assert.Equal(t, "true", label.Value())
}

func TestSetValue_EqualWriteSuppressed(t *testing.T) {
	var events []*domain.ValueEvent
	g := domain.NewGraph(domain.WithHooks(domain.LifecycleHooks{
		OnValueChanged: func(ev *domain.ValueEvent) { events = append(events, ev) },
	}))
	out := g.NewNode("A").AddOutput("Out", schema.Float(), 1.0)
	in, _ := doubler(g)
	require.True(t, g.Connect(out, in))

	events = nil
	assert.False(t, out.SetValue(1.0))
	assert.Empty(t, events, "equal writes fire nothing and propagate nothing")

	assert.True(t, out.SetValue(1.5))
	require.Len(t, events, 3) // Out, In, Result
	assert.Same(t, out, events[0].Property)
	assert.Equal(t, 1.0, events[0].OldValue)
	assert.Equal(t, 1.5, events[0].NewValue)
}

func TestSetValue_TypeMismatch(t *testing.T) {
	g := domain.NewGraph()
	n := g.NewNode("A")
	gain := n.AddInput("Gain", schema.Float(), 0.5)
	label := n.AddInput("Label", schema.String(), "")

	assert.False(t, gain.SetValue("loud"))
	assert.Equal(t, 0.5, gain.Value(), "mismatched writes leave the previous value")

	assert.True(t, gain.SetValue(2), "ints fit float slots")
	assert.Equal(t, 2.0, gain.Value())

	assert.True(t, label.SetValue(42), "string slots take the string form of anything")
	assert.Equal(t, "42", label.Value())
}

func TestPropagation_CycleGuard(t *testing.T) {
	var guarded int
	g := domain.NewGraph(
		domain.WithMaxPropagationDepth(16),
		domain.WithHooks(domain.LifecycleHooks{
			OnCycleGuard: func(ev *domain.CycleEvent) {
				guarded++
				assert.Equal(t, 16, ev.Depth)
			},
		}),
	)

	increment := func(name string) (in, out *domain.Property) {
		n := g.NewNode(name)
		in = n.AddInput("In", schema.Float(), 0.0)
		out = n.AddOutput("Out", schema.Float(), 0.0)
		out.SetTransform(func(any) any { return in.Value().(float64) + 1 })
		return in, out
	}
	aIn, aOut := increment("A")
	bIn, bOut := increment("B")

	require.True(t, g.Connect(aOut, bIn))
	require.True(t, g.Connect(bOut, aIn), "feedback loops are allowed by default")

	assert.Positive(t, guarded)
	assert.Less(t, aIn.Value().(float64), 100.0)
}

func TestPropagation_LongAcyclicChain(t *testing.T) {
	var guarded int
	g := domain.NewGraph(domain.WithHooks(domain.LifecycleHooks{
		OnCycleGuard: func(*domain.CycleEvent) { guarded++ },
	}))

	const length = 100
	ins := make([]*domain.Property, length)
	var prev *domain.Property
	for i := 0; i < length; i++ {
		n := g.NewNode(fmt.Sprintf("Pass%d", i))
		in := n.AddInput("In", schema.Float(), 0.0)
		out := n.AddOutput("Out", schema.Float(), 0.0)
		out.SetTransform(func(any) any { return in.Value() })
		if prev != nil {
			require.True(t, g.Connect(prev, in))
		}
		ins[i], prev = in, out
	}

	require.True(t, ins[0].SetValue(7.0))

	assert.Equal(t, 7.0, ins[length-1].Value())
	assert.Equal(t, 7.0, prev.Value())
	assert.Zero(t, guarded, "an acyclic chain never trips the loop guard")
}

func TestConnectionCount_GrowingInputs(t *testing.T) {
	g := domain.NewGraph()
	add := g.NewNode("Add", domain.WithKind("math.add"))
	sum := add.AddOutput("Sum", schema.Float(), 0.0)
	sum.SetTransform(func(any) any {
		total := 0.0
		for _, in := range add.Inputs() {
			total += in.Value().(float64)
		}
		return total
	})

	// A connected last input grows a fresh one.
	var grow func(p *domain.Property)
	grow = func(p *domain.Property) {
		reactive.Subscribe(p.Store(), domain.PropertyConnectionCount, func(c reactive.ChangeOf[int]) {
			last, _ := add.InputAt(add.InputCount() - 1)
			if c.NewValue > 0 && last == p {
				grow(add.AddInput("In", schema.Float(), 0.0))
			}
		})
	}
	grow(add.AddInput("In", schema.Float(), 0.0))

	x := g.NewNode("X").AddOutput("Out", schema.Float(), 3.0)
	y := g.NewNode("Y").AddOutput("Out", schema.Float(), 4.0)

	first, err := add.InputAt(0)
	require.NoError(t, err)
	require.True(t, g.Connect(x, first))
	second, err := add.InputAt(1)
	require.NoError(t, err)
	require.True(t, g.Connect(y, second))

	assert.Equal(t, 3, add.InputCount())
	assert.Equal(t, 7.0, sum.Value())
}

func TestRemoveInput_DisconnectsFirst(t *testing.T) {
	g := domain.NewGraph()
	out := g.NewNode("A").AddOutput("Out", schema.Float(), 0.0)
	n := g.NewNode("B")
	in := n.AddInput("In", schema.Float(), 0.0)
	other := n.AddInput("Other", schema.Float(), 0.0)
	require.True(t, g.Connect(out, in))

	assert.True(t, n.RemoveInput(in))
	assert.Empty(t, out.Peers())
	assert.Equal(t, 0, out.ConnectionCount())
	assert.Equal(t, 1, n.InputCount())
	assert.False(t, n.RemoveInput(in))

	require.NoError(t, n.RemoveInputAt(0))
	assert.Equal(t, 0, n.InputCount())
	assert.NotContains(t, n.Inputs(), other)
	assert.ErrorIs(t, n.RemoveInputAt(0), domain.ErrIndexOutOfRange)
}
