package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans out graph events to SSE subscribers, per graph id.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for graphID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(graphID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[graphID]; !ok {
		sm.subscribers[graphID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[graphID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[graphID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, graphID)
			}
		}
	}
}

// Subscribers counts the channels registered for graphID.
func (sm *StreamManager) Subscribers(graphID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[graphID])
}

// Broadcast sends msg to every subscriber of graphID. Slow clients whose
// buffer is full miss the message.
func (sm *StreamManager) Broadcast(graphID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[graphID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "graph_id", graphID)
		}
	}
}
