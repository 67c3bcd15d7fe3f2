package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// TokenStore keeps the sessions behind opaque tokens. Get extends the expiry of the
// token it returns and yields domain.ErrNotFound once a token is gone. Peek is Get
// without the extension.
type TokenStore interface {
	Save(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Peek(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// MemoryTokenStore is used when no redis address is configured. Sessions do not
// survive a restart.
type MemoryTokenStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewMemoryTokenStore(ttl time.Duration) *MemoryTokenStore {
	return &MemoryTokenStore{
		ttl:      ttl,
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (m *MemoryTokenStore) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *s
	stored.ExpiresAt = m.now().Add(m.ttl)
	m.sessions[s.Token] = stored
	s.ExpiresAt = stored.ExpiresAt
	return nil
}

func (m *MemoryTokenStore) Get(_ context.Context, token string) (*domain.Session, error) {
	return m.lookup(token, true)
}

func (m *MemoryTokenStore) Peek(_ context.Context, token string) (*domain.Session, error) {
	return m.lookup(token, false)
}

func (m *MemoryTokenStore) lookup(token string, extend bool) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	now := m.now()
	if !now.Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil, domain.ErrNotFound
	}
	if extend {
		s.ExpiresAt = now.Add(m.ttl)
		m.sessions[token] = s
	}
	return &s, nil
}

func (m *MemoryTokenStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemoryTokenStore) TTL() time.Duration {
	return m.ttl
}
