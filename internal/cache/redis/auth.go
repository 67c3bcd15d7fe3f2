package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type TokenStore struct {
	rdb         *redis.Client
	tokenExpiry time.Duration
}

type storedSession struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (t *TokenStore) Save(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(storedSession{UserID: s.UserID, Email: s.Email})
	if err != nil {
		return err
	}
	if err := t.rdb.Set(ctx, keyPrefix+s.Token, data, t.tokenExpiry).Err(); err != nil {
		return err
	}
	s.ExpiresAt = time.Now().Add(t.tokenExpiry)
	return nil
}

// Get returns the session for token and pushes its expiry forward.
func (t *TokenStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := t.rdb.GetEx(ctx, keyPrefix+token, t.tokenExpiry).Bytes()
	if err != nil {
		return nil, notFound(err)
	}
	return decodeSession(token, data, time.Now().Add(t.tokenExpiry))
}

// Peek reads the session for token and leaves its expiry alone.
func (t *TokenStore) Peek(ctx context.Context, token string) (*domain.Session, error) {
	data, err := t.rdb.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		return nil, notFound(err)
	}
	ttl, err := t.rdb.PTTL(ctx, keyPrefix+token).Result()
	if err != nil {
		return nil, err
	}
	if ttl < 0 {
		return nil, domain.ErrNotFound
	}
	return decodeSession(token, data, time.Now().Add(ttl))
}

func notFound(err error) error {
	if errors.Is(err, redis.Nil) {
		return domain.ErrNotFound
	}
	return err
}

func decodeSession(token string, data []byte, expiresAt time.Time) (*domain.Session, error) {
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisBadValue, err)
	}
	return &domain.Session{
		Token:     token,
		UserID:    stored.UserID,
		Email:     stored.Email,
		ExpiresAt: expiresAt,
	}, nil
}

func (t *TokenStore) Delete(ctx context.Context, token string) error {
	return t.rdb.Del(ctx, keyPrefix+token).Err()
}

func (t *TokenStore) TTL() time.Duration {
	return t.tokenExpiry
}

func NewTokenStore(rdb *redis.Client, tokenExpiry time.Duration) *TokenStore {
	return &TokenStore{
		rdb:         rdb,
		tokenExpiry: tokenExpiry,
	}
}
