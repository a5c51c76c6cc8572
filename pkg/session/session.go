// Package session scopes background payment monitors to one browser session.
// Tearing a session down cancels its monitors and waits for them to return.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"voltage_wallet_demo/models"
)

// Tracked is the last thing a session's monitor observed for a payment.
type Tracked struct {
	PaymentID string               `json:"payment_id"`
	Status    models.PaymentStatus `json:"status"`
	Error     string               `json:"error,omitempty"`
	Message   string               `json:"message,omitempty"`
	Done      bool                 `json:"done"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type Session struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu       sync.RWMutex
	closed   bool
	payments map[string]Tracked
	running  int
	lastUsed time.Time
}

func newSession(parent context.Context, id string) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:       id,
		ctx:      ctx,
		cancel:   cancel,
		payments: make(map[string]Tracked),
		lastUsed: time.Now(),
	}
}

// Context is cancelled when the session is closed.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Go runs fn in the session's goroutine group. It reports false, without
// running fn, once the session is closed.
func (s *Session) Go(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.running++
	s.wg.Go(func() {
		defer func() {
			s.mu.Lock()
			s.running--
			s.lastUsed = time.Now()
			s.mu.Unlock()
		}()
		fn(s.ctx)
	})
	return true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// idleSince reports when the session was last used, and false while a
// goroutine is still running in it.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed, s.running == 0
}

// Record stores an observed status. Updates after Close are dropped.
func (s *Session) Record(paymentID string, update models.PaymentStatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	t := s.payments[paymentID]
	t.PaymentID = paymentID
	t.Status = update.Status
	t.Error = update.Error
	t.UpdatedAt = time.Now()
	s.payments[paymentID] = t
}

// Finish marks the monitor of a payment as returned, with a closing message
// for the user.
func (s *Session) Finish(paymentID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	t := s.payments[paymentID]
	t.PaymentID = paymentID
	t.Done = true
	t.Message = message
	t.UpdatedAt = time.Now()
	s.payments[paymentID] = t
}

func (s *Session) Status(paymentID string) (Tracked, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.payments[paymentID]
	return t, ok
}

// Close cancels the session context and waits for its goroutines.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	if r := s.wg.WaitAndRecover(); r != nil {
		logrus.WithField("session_id", s.ID).Errorf("session goroutine panicked: %s", r.String())
	}
}

// Manager keeps the sessions of the running server, keyed by the id the
// front-end sends in X-Session-ID.
type Manager struct {
	parent context.Context

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(parent context.Context) *Manager {
	return &Manager{
		parent:   parent,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session with the given id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.touch(time.Now())
		return s
	}
	s := newSession(m.parent, id)
	m.sessions[id] = s
	logrus.WithField("session_id", id).Info("session opened")
	return s
}

// Close tears one session down. It reports whether the session existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	s.Close()
	logrus.WithField("session_id", id).Info("session closed")
	return true
}

// Reap closes sessions that have no running monitor and were not used for
// idle. It returns how many it closed.
func (m *Manager) Reap(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if last, quiet := s.idleSince(); quiet && last.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
		logrus.WithField("session_id", s.ID).Info("idle session reaped")
	}
	return len(stale)
}

// RunReaper calls Reap every idle/2 until ctx is done. idle <= 0 disables
// reaping.
func (m *Manager) RunReaper(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap(idle)
		}
	}
}

// CloseAll tears every session down, e.g. on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	clear(m.sessions)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
