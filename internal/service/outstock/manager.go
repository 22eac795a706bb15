package outstock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/service/catalog"
)

// SessionManager owns the active out-stock sessions.
type SessionManager struct {
	fetcher  catalog.Fetcher
	issuer   Issuer
	journals []Journal
	opts     SessionOptions
	logger   *zap.Logger
	now      func() time.Time

	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager. Journals may be empty.
func NewSessionManager(fetcher catalog.Fetcher, issuer Issuer, journals []Journal, opts SessionOptions, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		fetcher:  fetcher,
		issuer:   issuer,
		journals: journals,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session and activates it. The session is returned even when
// the catalog load fails; the failure is shown in its message slot.
func (m *SessionManager) Open(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	cache := catalog.New(m.fetcher, m.logger.Named("catalog"))
	sess := newSession(id, cache, m.issuer, m.journals, m.opts, m.logger, m.now)

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	err := sess.Activate(ctx)
	m.logger.Info("session opened", zap.String("session_id", id), zap.Bool("catalog_loaded", err == nil))
	return sess, err
}

// Get retrieves an active session.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, exists := m.sessions[id]; exists {
		return sess, nil
	}
	return nil, ErrSessionNotFound
}

// Close removes a session.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Sweep drops sessions idle for longer than ttl and returns how many were
// removed. Sessions waiting on the server are kept.
func (m *SessionManager) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.busy() || !sess.idleSince().Before(cutoff) {
			continue
		}
		delete(m.sessions, id)
		removed++
	}

	if removed > 0 {
		m.logger.Info("idle sessions swept", zap.Int("removed", removed), zap.Int("remaining", len(m.sessions)))
	}
	return removed
}

// Len returns the number of active sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
