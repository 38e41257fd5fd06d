// Package session owns all live session state. Sessions are created on
// authenticate and destroyed on logout; every gated operation receives the
// session explicitly instead of reading ambient process-wide state.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"health-metrics/internal/domain"
)

// Session is the ephemeral association between requests and an
// authenticated user: identity, role and a snapshot of the first-login
// flag taken at login time.
type Session struct {
	ID         string
	UserID     int64
	Name       string
	Role       domain.Role
	FirstLogin bool
	CreatedAt  time.Time

	mu sync.Mutex
}

// PendingPasswordChange reports whether the session is parked in the
// forced first-login password change. Only patients are forced through
// the change; technicians proceed regardless of their stored flag.
func (s *Session) PendingPasswordChange() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Role == domain.RolePatient && s.FirstLogin
}

// ClearFirstLogin updates the session's cached flag after a successful
// password change.
func (s *Session) ClearFirstLogin() {
	s.mu.Lock()
	s.FirstLogin = false
	s.mu.Unlock()
}

// RequireRole gates an operation on the session's role. It fails closed:
// a nil session, a mismatched role, or a session still pending its first
// password change all deny access.
func (s *Session) RequireRole(role domain.Role) error {
	if s == nil {
		return domain.ErrNotAuthenticated
	}
	if s.PendingPasswordChange() {
		return domain.ErrAccessDenied
	}
	if s.Role != role {
		return domain.ErrAccessDenied
	}
	return nil
}

// Manager issues and resolves sessions. Tokens are HS256 JWTs whose jti
// must still map to a live in-process session record, so logout revokes
// access immediately even though the token itself is stateless.
type Manager struct {
	secret []byte
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// ErrSessionExpired is returned when a token is syntactically valid but
// no longer maps to a live session.
var ErrSessionExpired = errors.New("session expired or logged out")

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create establishes a session for the user and returns it with a signed
// bearer token.
func (m *Manager) Create(user *domain.User) (*Session, string, error) {
	sess := &Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Name:       user.Name,
		Role:       user.Role,
		FirstLogin: user.FirstLogin,
		CreatedAt:  time.Now().UTC(),
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess, signed, nil
}

// Lookup resolves a bearer token to its live session. It fails closed on
// any signature, expiry or revocation problem.
func (m *Manager) Lookup(token string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrNotAuthenticated
	}

	m.mu.RLock()
	sess, ok := m.sessions[claims.ID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Logout invalidates the token's session. It is idempotent and succeeds
// even when no live session exists.
func (m *Manager) Logout(token string) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return
	}

	m.mu.Lock()
	delete(m.sessions, claims.ID)
	m.mu.Unlock()
}

// Active reports the number of live sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
