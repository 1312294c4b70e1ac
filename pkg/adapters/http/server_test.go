package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/catalog"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/aretw0/weft/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) (http.Handler, *session.Manager) {
	t.Helper()
	reg := catalog.NewRegistry()
	require.NoError(t, catalog.RegisterBuiltins(reg))
	mgr := session.NewManager(memory.NewStore(), session.WithBinder(reg))
	return NewHandler(mgr, append([]Option{WithCatalog(reg)}, opts...)...), mgr
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func createNode(t *testing.T, h http.Handler, graph, kind string) NodeView {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/graphs/"+graph+"/nodes", CreateNodeRequest{Kind: kind})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[NodeView](t, rr)
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rr)["status"])
}

func TestGetInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/info", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decode[map[string]string](t, rr)
	assert.Equal(t, "weft-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, domain.DocumentV1, resp["document_version"])
}

func TestListKinds(t *testing.T) {
	h, _ := newTestHandler(t)

	rr := do(t, h, http.MethodGet, "/kinds", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	kinds := decode[[]map[string]any](t, rr)
	require.Len(t, kinds, 3)
	assert.Equal(t, catalog.KindAdd, kinds[0]["kind"])
}

func TestGraphLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/graphs/demo/nodes", nil).Code)

	rr := do(t, h, http.MethodPost, "/graphs/demo", nil)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodGet, "/graphs/", nil)
	assert.Equal(t, []string{"demo"}, decode[[]string](t, rr))

	rr = do(t, h, http.MethodDelete, "/graphs/demo", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/graphs/demo", nil).Code)
}

func TestEditing_PropagatesThroughStoredGraph(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/graphs/calc", nil).Code)

	constant := createNode(t, h, "calc", catalog.KindConstant)
	multiply := createNode(t, h, "calc", catalog.KindMultiply)
	require.Len(t, constant.Outputs, 1)
	require.Len(t, multiply.Inputs, 2)

	rr := do(t, h, http.MethodPost, "/graphs/calc/connections", ConnectionRequest{
		From: constant.Outputs[0].ID,
		To:   multiply.Inputs[0].ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPut, "/graphs/calc/properties/"+constant.Outputs[0].ID.String(), SetPropertyRequest{Value: 3})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[SetPropertyResponse](t, rr)
	assert.True(t, resp.Changed)
	assert.EqualValues(t, 3, resp.Property.Value)

	rr = do(t, h, http.MethodGet, "/graphs/calc/nodes", nil)
	nodes := decode[[]NodeView](t, rr)
	require.Len(t, nodes, 2)
	assert.EqualValues(t, 3, nodes[1].Inputs[0].Value)
	assert.EqualValues(t, 3, nodes[1].Outputs[0].Value)

	rr = do(t, h, http.MethodPut, "/graphs/calc/properties/"+constant.Outputs[0].ID.String(), SetPropertyRequest{Value: 3})
	assert.False(t, decode[SetPropertyResponse](t, rr).Changed)
}

func TestConnect_Rejected(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/graphs/g", nil).Code)
	a := createNode(t, h, "g", catalog.KindConstant)
	b := createNode(t, h, "g", catalog.KindConstant)

	rr := do(t, h, http.MethodPost, "/graphs/g/connections", ConnectionRequest{
		From: a.Outputs[0].ID,
		To:   b.Outputs[0].ID,
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, string(domain.ReasonSameDirection), decode[map[string]string](t, rr)["reason"])
}

func TestDisconnectAndDeleteNode(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/graphs/g", nil).Code)
	a := createNode(t, h, "g", catalog.KindConstant)
	m := createNode(t, h, "g", catalog.KindMultiply)
	conn := ConnectionRequest{From: a.Outputs[0].ID, To: m.Inputs[1].ID}

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/graphs/g/connections", conn).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/graphs/g/connections", conn).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/graphs/g/connections", conn).Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/graphs/g/nodes/"+a.ID.String(), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/graphs/g/nodes/"+a.ID.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodDelete, "/graphs/g/nodes/not-a-uuid", nil).Code)
}

func TestCreateNode_BareAndNested(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/graphs/g", nil).Code)

	group := createNode(t, h, "g", "layout.group")
	assert.Equal(t, "layout.group", group.Name)
	assert.Empty(t, group.Inputs)

	rr := do(t, h, http.MethodPost, "/graphs/g/nodes", CreateNodeRequest{Kind: catalog.KindConstant, Name: "Seed", Parent: &group.ID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	nodes := decode[[]NodeView](t, do(t, h, http.MethodGet, "/graphs/g/nodes", nil))
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Children, 1)
	assert.Equal(t, "Seed", nodes[0].Children[0].Name)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/graphs/g/nodes", CreateNodeRequest{}).Code)
}

func TestDocument_PutAndGet(t *testing.T) {
	h, mgr := newTestHandler(t)

	g, err := mgr.NewGraph()
	require.NoError(t, err)
	n := g.NewNode("Source")
	n.AddOutput("Out", schema.Float(), 2.5)
	require.NoError(t, mgr.Save(context.Background(), "tmp", g))

	rr := do(t, h, http.MethodGet, "/graphs/tmp?format=yaml", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodPut, "/graphs/copy", bytes.NewReader(rr.Body.Bytes()))
	req.Header.Set("Content-Type", "application/yaml")
	put := httptest.NewRecorder()
	h.ServeHTTP(put, req)
	require.Equal(t, http.StatusOK, put.Code, put.Body.String())
	assert.Equal(t, 1, decode[ReportView](t, put).Nodes)

	rr = do(t, h, http.MethodGet, "/graphs/copy", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Source")

	req = httptest.NewRequest(http.MethodPut, "/graphs/broken", strings.NewReader("<Graph"))
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/graphs/copy?format=json", nil).Code)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	h, _ := newTestHandler(t, WithMetrics(m, reg))

	do(t, h, http.MethodGet, "/health", nil)
	do(t, h, http.MethodGet, "/graphs/missing/nodes", nil)

	rr := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `weft_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `route="/graphs/{id}/nodes",status="404"`)
}

func TestSubscribeEvents(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/graphs/live", nil).Code)
	c := createNode(t, h, "live", catalog.KindConstant)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/graphs/live/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	readEvent := func() (event, data string) {
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
		return event, data
	}

	event, _ := readEvent()
	require.Equal(t, "ping", event)

	rr := do(t, h, http.MethodPut, "/graphs/live/properties/"+c.Outputs[0].ID.String(), SetPropertyRequest{Value: 7})
	require.Equal(t, http.StatusOK, rr.Code)

	event, data := readEvent()
	require.Equal(t, "changes", event)
	var changes []ChangeView
	require.NoError(t, json.Unmarshal([]byte(data), &changes))
	require.Len(t, changes, 1)
	assert.Equal(t, c.Outputs[0].ID, changes[0].Property)
	assert.EqualValues(t, 7, changes[0].Value)
}
