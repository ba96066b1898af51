// Package sessions holds the server-side record of whether a client has
// proven admin identity. The cookie carries an opaque, HMAC-signed session id;
// all state lives behind the Store interface so the backend can be swapped
// without touching the auth gate.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNoSession is returned when a session id does not resolve to a live session.
var ErrNoSession = errors.New("session not found")

// Session is the authenticated-admin record kept server side.
type Session struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the fixed session lifetime has passed.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store abstracts session persistence. Implementations must treat Delete of
// an unknown id as success so logout stays idempotent.
type Store interface {
	Create(ctx context.Context, id string, sess Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager issues, resolves, and revokes sessions, pairing a Store with the
// signed-cookie codec.
type Manager struct {
	store Store
	codec Codec
	ttl   time.Duration
}

// NewManager creates a Manager. An empty secret gets a random one, which is
// fine for a single process but invalidates cookies across restarts.
func NewManager(secret string, ttl time.Duration, store Store) *Manager {
	if secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, codec: NewCodec(secret), ttl: ttl}
}

// TTL returns the fixed session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a session for username and returns the signed cookie value.
func (m *Manager) Issue(ctx context.Context, username string) (string, error) {
	id := newSessionID()
	sess := Session{Username: username, ExpiresAt: time.Now().Add(m.ttl)}
	if err := m.store.Create(ctx, id, sess); err != nil {
		return "", err
	}
	return m.codec.Encode(id), nil
}

// Resolve validates the cookie value and returns the live session, or
// ErrNoSession when the signature, the lookup, or the lifetime check fails.
func (m *Manager) Resolve(ctx context.Context, cookieValue string) (*Session, error) {
	id, err := m.codec.Decode(cookieValue)
	if err != nil {
		return nil, ErrNoSession
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired() {
		_ = m.store.Delete(ctx, id)
		return nil, ErrNoSession
	}
	return sess, nil
}

// Revoke invalidates the session behind the cookie value. Unknown or
// malformed values are a no-op success.
func (m *Manager) Revoke(ctx context.Context, cookieValue string) error {
	id, err := m.codec.Decode(cookieValue)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func newSessionID() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
