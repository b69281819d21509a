package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmailNotAllowed is returned when the address misses the allowed
// domain suffix. A soft allow-list, not a security mechanism.
var ErrEmailNotAllowed = errors.New("email not in allowed domain")

type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager holds the logged-in sessions in memory, keyed by bearer
// token. Init = unauthenticated; logout clears the session.
type Manager struct {
	domain string

	mu       sync.Mutex
	sessions map[string]Session
}

func NewManager(domainSuffix string) *Manager {
	return &Manager{
		domain:   domainSuffix,
		sessions: make(map[string]Session),
	}
}

func (m *Manager) Login(email string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.HasSuffix(email, m.domain) {
		return Session{}, ErrEmailNotAllowed
	}
	s := Session{
		Token:     uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

func (m *Manager) Lookup(token string) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	return s, ok
}
