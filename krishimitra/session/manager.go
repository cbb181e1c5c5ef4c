// krishimitra/session/manager.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"krishimitra/krishimitra/utils/logging"
)

// IDProvider generates opaque user/session identifiers. Injectable so tests
// can pin ids.
type IDProvider func() string

// Manager owns every live ChatSession. Sessions are ephemeral: nothing is
// persisted, and idle ones get swept after the configured TTL.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession

	advisory AdvisoryClient
	feedback FeedbackClient
	newID    IDProvider

	ttl      time.Duration
	interval time.Duration
	done     chan struct{}
}

type ManagerOptions struct {
	Advisory AdvisoryClient
	Feedback FeedbackClient
	NewID    IDProvider
	TTL      time.Duration
	// SweepInterval is how often idle sessions are checked for eviction.
	SweepInterval time.Duration
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.TTL == 0 {
		opts.TTL = 2 * time.Hour
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = time.Minute
	}
	m := &Manager{
		sessions: make(map[string]*ChatSession),
		advisory: opts.Advisory,
		feedback: opts.Feedback,
		newID:    opts.NewID,
		ttl:      opts.TTL,
		interval: opts.SweepInterval,
		done:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Create mounts a fresh session with generated ids and a seeded greeting.
// speechAvailable reflects whether the client's platform has a recognizer.
func (m *Manager) Create(language string, speechAvailable bool) *ChatSession {
	var src SpeechSource = NewRemoteSource()
	if !speechAvailable {
		src = NoSpeech{}
	}
	s := New(Options{
		UserID:    "user_" + m.newID(),
		SessionID: "session_" + m.newID(),
		Language:  language,
		Advisory:  m.advisory,
		Feedback:  m.feedback,
		Speech:    src,
	})

	m.mu.Lock()
	m.sessions[s.SessionID()] = s
	m.mu.Unlock()

	logging.AppLogger.Info("session created",
		zap.String("session_id", s.SessionID()), zap.String("language", s.Language()))
	return s
}

func (m *Manager) Get(sessionID string) (*ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) Close() {
	close(m.done)
}

func (m *Manager) sweep() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.ttl)
			m.mu.Lock()
			for id, s := range m.sessions {
				if s.LastActive().Before(cutoff) {
					delete(m.sessions, id)
					logging.AppLogger.Info("session evicted", zap.String("session_id", id))
				}
			}
			m.mu.Unlock()
		}
	}
}
