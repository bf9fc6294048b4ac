package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Phase tracks where a session sits in the stop-resolution dialog.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseAwaitingStop Phase = "awaiting_stop"
	PhaseResolved     Phase = "resolved"
)

var ErrNotFound = errors.New("session not found")

// AttrLastStop caches the most recently resolved stop in the attribute bag.
const AttrLastStop = "last_stop"

// Session correlates the turns of one dialog. The voice platform owns the
// identity; Attributes is the small mutable bag reserved for cross-turn
// extensions like the last-stop cache.
type Session struct {
	ID             string            `json:"session_id"`
	UserID         string            `json:"user_id"`
	Status         Status            `json:"status"`
	Phase          Phase             `json:"phase"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Ensure returns the session with the given platform-supplied id, creating
// it on first sight. An empty id gets a locally generated one.
func (m *Manager) Ensure(sessionID, userID string) *Session {
	now := time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	if sessionID != "" {
		if s, ok := m.sessions[sessionID]; ok && s.Status == StatusActive {
			s.LastActivityAt = now
			return clone(s)
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s := &Session{
		ID:             sessionID,
		UserID:         userID,
		Status:         StatusActive,
		Phase:          PhaseIdle,
		StartedAt:      now,
		LastActivityAt: now,
	}
	m.sessions[s.ID] = s
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Manager) SetPhase(sessionID string, phase Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.Phase = phase
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) SetAttribute(sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	s.Attributes[key] = value
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.Phase = PhaseResolved
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status == StatusActive {
			if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
				continue
			}
			s.Status = StatusEnded
			s.LastActivityAt = now
			expired = append(expired, clone(s))
			continue
		}
		// Ended sessions linger one timeout window for diagnostics, then go.
		if now.Sub(s.LastActivityAt) >= m.inactivityTimeout {
			delete(m.sessions, id)
		}
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	if s.Attributes != nil {
		c.Attributes = make(map[string]string, len(s.Attributes))
		for k, v := range s.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}
