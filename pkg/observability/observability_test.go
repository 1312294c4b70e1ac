package observability_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	g := domain.NewGraph(domain.WithHooks(m.Hooks()))

	src := g.NewNode("Source")
	out := src.AddOutput("Out", schema.Int(), 1)
	in := g.NewNode("Sink").AddInput("In", schema.Int(), 0)
	text := g.NewNode("Label").AddInput("Text", schema.Bool(), false)

	require.True(t, g.Connect(out, in))
	assert.False(t, g.Connect(out, text), "int does not feed bool")
	assert.False(t, g.Connect(out, in), "duplicate")
	out.SetValue(5)
	require.True(t, g.Disconnect(out, in))
	g.RemoveNode(src)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.NodeEvents.WithLabelValues(string(domain.EventNodeAdded))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodeEvents.WithLabelValues(string(domain.EventNodeRemoved))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionEvents.WithLabelValues(string(domain.EventConnect))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionEvents.WithLabelValues(string(domain.EventDisconnect))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(string(domain.ReasonIncompatibleTypes))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(string(domain.ReasonAlreadyConnected))))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.ValueChanges.WithLabelValues("int")), 2.0)
}

func TestMetrics_CycleGuard(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	g := domain.NewGraph(domain.WithHooks(m.Hooks()), domain.WithMaxPropagationDepth(4))

	a := g.NewNode("A")
	aIn := a.AddInput("In", schema.Int(), 0)
	aOut := a.AddOutput("Out", schema.Int(), 0)
	aOut.SetTransform(func(any) any { return aIn.Value().(int) + 1 })
	b := g.NewNode("B")
	bIn := b.AddInput("In", schema.Int(), 0)
	bOut := b.AddOutput("Out", schema.Int(), 0)
	bOut.SetTransform(func(any) any { return bIn.Value().(int) + 1 })

	require.True(t, g.Connect(aOut, bIn))
	require.True(t, g.Connect(bOut, aIn))

	assert.Positive(t, testutil.ToFloat64(m.CycleGuards))
}

func TestMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveRequest(http.MethodGet, "/graphs/{id}", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/graphs/{id}", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/graphs/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/graphs/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &observability.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rec.Status)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := domain.NewGraph(domain.WithHooks(observability.LogHooks(logger)))

	out := g.NewNode("Source").AddOutput("Out", schema.Float(), 1.0)
	in := g.NewNode("Sink").AddInput("In", schema.Float(), 0.0)
	require.True(t, g.Connect(out, in))
	assert.False(t, g.Connect(in, in))

	logs := buf.String()
	assert.Contains(t, logs, "msg=node_added")
	assert.Contains(t, logs, "msg=connect")
	assert.Contains(t, logs, "msg=reject")
	assert.Contains(t, logs, "reason=self")
	assert.Contains(t, logs, "msg=value_changed")
}
