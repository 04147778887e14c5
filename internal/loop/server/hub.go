package server

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/discoball/internal/loop/config"
)

// Hub owns the sessions of a multi-user host. Every connection gets its own
// disco ball; the hub only tracks them so they can be drained on shutdown.
type Hub struct {
	tuning config.Tuning
	logger *log.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// NewHub creates a hub that opens sessions with the given tuning.
func NewHub(t config.Tuning, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		tuning:     t,
		logger:     logger,
		sessions:   make(map[string]*Session),
		shutdownCh: make(chan struct{}),
	}
}

// Open creates a session and starts its loop. The loop stops when ctx is
// cancelled or the session is released.
func (h *Hub) Open(ctx context.Context, opts ...Option) (*Session, error) {
	opts = append([]Option{WithLogger(h.logger)}, opts...)
	s, err := NewSession(h.tuning, opts...)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.sessions[s.ID()] = s
	count := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info("session opened", "session", s.ID(), "sessions", count)
	go s.Run(ctx)
	return s, nil
}

// Release closes a session and forgets it. Releasing twice is harmless.
func (h *Hub) Release(s *Session) {
	s.Close()

	h.mu.Lock()
	_, ok := h.sessions[s.ID()]
	delete(h.sessions, s.ID())
	count := len(h.sessions)
	h.mu.Unlock()

	if ok {
		h.logger.Info("session released", "session", s.ID(), "sessions", count)
	}
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// ShuttingDown is closed once Shutdown has been called. Clients watch it to
// show the shutdown screen.
func (h *Hub) ShuttingDown() <-chan struct{} {
	return h.shutdownCh
}

// Shutdown tells clients the host is going away and waits for them to
// release their sessions, up to timeout. Sessions still open afterwards are
// closed.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.shutdownOnce.Do(func() {
		close(h.shutdownCh)
	})

	deadline := time.After(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

wait:
	for h.Len() > 0 {
		select {
		case <-deadline:
			break wait
		case <-ticker.C:
		}
	}

	h.mu.Lock()
	remaining := make([]*Session, 0, len(h.sessions))
	for id, s := range h.sessions {
		remaining = append(remaining, s)
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	for _, s := range remaining {
		s.Close()
	}
	if len(remaining) > 0 {
		h.logger.Warn("closed sessions still open at shutdown", "count", len(remaining))
	}
}
