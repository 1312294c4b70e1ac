package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/catalog"
	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxDocumentBytes caps uploaded documents.
const maxDocumentBytes = 10 << 20

// Server serves graphs held by a session manager.
type Server struct {
	Manager  *session.Manager
	Catalog  *catalog.Registry
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Streams  *StreamManager
	Logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCatalog enables template-based node creation and the /kinds listing.
func WithCatalog(r *catalog.Registry) Option {
	return func(s *Server) {
		s.Catalog = r
	}
}

// WithMetrics instruments every request and serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = m
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Manager: mgr,
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.Logger)

	r := chi.NewRouter()
	if s.Metrics != nil {
		r.Use(s.instrument)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/kinds", s.ListKinds)

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.ListGraphs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Put("/", s.PutDocument)
			r.Post("/", s.CreateGraph)
			r.Delete("/", s.DeleteGraph)
			r.Get("/nodes", s.GetNodes)
			r.Post("/nodes", s.CreateNode)
			r.Delete("/nodes/{nodeID}", s.DeleteNode)
			r.Post("/connections", s.Connect)
			r.Delete("/connections", s.Disconnect)
			r.Put("/properties/{propertyID}", s.SetProperty)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &observability.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.Metrics.ObserveRequest(r.Method, route, rec.Status, time.Since(start))
	})
}

// -- Errors --

// requestError carries a client error status.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &requestError{status: http.StatusNotFound, err: fmt.Errorf(format, args...)}
}

func statusOf(err error) int {
	var reqErr *requestError
	var rejErr *domain.RejectionError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.As(err, &rejErr):
		return http.StatusConflict
	case errors.Is(err, ports.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDanglingReference), errors.Is(err, domain.ErrNotGraphDocument), errors.Is(err, codec.ErrUnknownKind):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	body := map[string]any{"error": err.Error()}
	if reason, ok := domain.RejectionReason(err); ok {
		body["reason"] = reason
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBytes)).Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func parseID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, badRequest("invalid %s: %v", param, err)
	}
	return id, nil
}

// -- Service --

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":              "weft-http",
		"version":          strings.TrimSpace(weft.Version),
		"document_version": domain.DocumentV1,
	})
}

// ListKinds handles GET /kinds.
func (s *Server) ListKinds(w http.ResponseWriter, r *http.Request) {
	out := []catalog.Template{}
	if s.Catalog != nil {
		for _, kind := range s.Catalog.Kinds() {
			if e, ok := s.Catalog.Lookup(kind); ok && e.Template != nil {
				out = append(out, *e.Template)
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// -- Documents --

// ListGraphs handles GET /graphs.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func requestFormat(r *http.Request) (codec.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		format, err := codec.ParseFormat(f)
		if err != nil {
			return "", badRequest("%v", err)
		}
		return format, nil
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") || strings.Contains(r.Header.Get("Accept"), "yaml") {
		return codec.FormatYAML, nil
	}
	return codec.FormatXML, nil
}

func contentType(f codec.Format) string {
	if f == codec.FormatYAML {
		return "application/yaml"
	}
	return "application/xml"
}

// GetDocument handles GET /graphs/{id}, rendering the stored graph as XML
// or, with ?format=yaml or a YAML Accept header, as YAML.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, _, err := s.Manager.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := g.Encode()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := codec.Marshal(doc, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(data)
}

// PutDocument handles PUT /graphs/{id}. The document is loaded before it is
// stored, so what lands in the store is the normalized re-encoding and
// dangling references are dropped.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		s.writeError(w, r, badRequest("failed to read document: %v", err))
		return
	}
	doc, err := codec.Unmarshal(data, format)
	if err != nil {
		s.writeError(w, r, badRequest("malformed document: %v", err))
		return
	}

	g, err := s.Manager.NewGraph()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := g.Load(doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Manager.Save(r.Context(), chi.URLParam(r, "id"), g); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportView(g, report))
}

// CreateGraph handles POST /graphs/{id}, creating an empty graph if absent.
func (s *Server) CreateGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.Manager.OpenOrCreate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, graphView(g))
}

// DeleteGraph handles DELETE /graphs/{id}.
func (s *Server) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.Manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// -- Editing --

// GetNodes handles GET /graphs/{id}/nodes.
func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	g, _, err := s.Manager.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graphView(g))
}

// mutate runs fn inside a locked read-modify-write of the graph and streams
// the value changes it caused to the graph's subscribers.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(g *domain.Graph) (any, error)) {
	id := chi.URLParam(r, "id")
	var (
		result  any
		changes []ChangeView
	)
	err := s.Manager.Update(r.Context(), id, func(g *domain.Graph) error {
		g.Observe(domain.LifecycleHooks{
			OnValueChanged: func(e *domain.ValueEvent) {
				changes = append(changes, ChangeView{
					Property: e.Property.ID(),
					Name:     e.Property.Name(),
					Value:    e.NewValue,
				})
			},
		})
		var err error
		result, err = fn(g)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if len(changes) > 0 {
		if payload, err := json.Marshal(changes); err == nil {
			s.Streams.Broadcast(id, string(payload))
		} else {
			s.Logger.Warn("failed to encode change event", "graph_id", id, "err", err)
		}
	}
	if result == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, result)
}

// CreateNodeRequest is the body of POST /graphs/{id}/nodes.
type CreateNodeRequest struct {
	Kind   string     `json:"kind"`
	Name   string     `json:"name"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Parent *uuid.UUID `json:"parent,omitempty"`
}

// CreateNode handles POST /graphs/{id}/nodes. Kinds the catalog has a
// template for are instantiated from it; anything else creates a bare node.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Kind == "" && req.Name == "" {
		s.writeError(w, r, badRequest("kind or name is required"))
		return
	}

	s.mutate(w, r, http.StatusCreated, func(g *domain.Graph) (any, error) {
		var parent *domain.Node
		if req.Parent != nil {
			p, ok := g.Node(*req.Parent)
			if !ok {
				return nil, notFound("parent node %s not found", req.Parent)
			}
			parent = p
		}

		var n *domain.Node
		if e, ok := s.lookupKind(req.Kind); ok && e.Template != nil {
			var err error
			if n, err = s.Catalog.Instantiate(g, req.Kind, domain.At(req.X, req.Y)); err != nil {
				return nil, err
			}
			if req.Name != "" {
				n.SetName(req.Name)
			}
		} else {
			name := req.Name
			if name == "" {
				name = req.Kind
			}
			n = g.NewNode(name, domain.WithKind(req.Kind), domain.At(req.X, req.Y))
		}
		if parent != nil {
			parent.AddChild(n)
		}
		return nodeView(n), nil
	})
}

func (s *Server) lookupKind(kind string) (catalog.Entry, bool) {
	if s.Catalog == nil || kind == "" {
		return catalog.Entry{}, false
	}
	return s.Catalog.Lookup(kind)
}

// DeleteNode handles DELETE /graphs/{id}/nodes/{nodeID}.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	nodeID, err := parseID(r, "nodeID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusNoContent, func(g *domain.Graph) (any, error) {
		n, ok := g.Node(nodeID)
		if !ok {
			return nil, notFound("node %s not found", nodeID)
		}
		g.RemoveNode(n)
		return nil, nil
	})
}

// ConnectionRequest is the body of the /connections endpoints.
type ConnectionRequest struct {
	From uuid.UUID `json:"from"`
	To   uuid.UUID `json:"to"`
}

func (req ConnectionRequest) resolve(g *domain.Graph) (a, b *domain.Property, err error) {
	a, ok := g.Property(req.From)
	if !ok {
		return nil, nil, notFound("property %s not found", req.From)
	}
	b, ok = g.Property(req.To)
	if !ok {
		return nil, nil, notFound("property %s not found", req.To)
	}
	return a, b, nil
}

// Connect handles POST /graphs/{id}/connections. Rejections answer 409
// with the rejection reason.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusCreated, func(g *domain.Graph) (any, error) {
		a, b, err := req.resolve(g)
		if err != nil {
			return nil, err
		}
		if err := g.CanConnect(a, b); err != nil {
			return nil, err
		}
		g.Connect(a, b)
		return req, nil
	})
}

// Disconnect handles DELETE /graphs/{id}/connections.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusNoContent, func(g *domain.Graph) (any, error) {
		a, b, err := req.resolve(g)
		if err != nil {
			return nil, err
		}
		if !g.Disconnect(a, b) {
			return nil, notFound("properties are not connected")
		}
		return nil, nil
	})
}

// SetPropertyRequest is the body of PUT /graphs/{id}/properties/{propertyID}.
type SetPropertyRequest struct {
	Value any `json:"value"`
}

// SetPropertyResponse reports the stored value after the write.
type SetPropertyResponse struct {
	Changed  bool         `json:"changed"`
	Property PropertyView `json:"property"`
}

// SetProperty handles PUT /graphs/{id}/properties/{propertyID}. Writes the
// property's type rejects leave the value unchanged.
func (s *Server) SetProperty(w http.ResponseWriter, r *http.Request) {
	propID, err := parseID(r, "propertyID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SetPropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(g *domain.Graph) (any, error) {
		p, ok := g.Property(propID)
		if !ok {
			return nil, notFound("property %s not found", propID)
		}
		changed := p.SetValue(req.Value)
		return SetPropertyResponse{Changed: changed, Property: propertyViews([]*domain.Property{p})[0]}, nil
	})
}

// SubscribeEvents handles GET /graphs/{id}/events (SSE). Each event carries
// the value changes caused by one edit.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()
	s.Logger.Info("SSE: subscribed", "graph_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "graph_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: changes\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
