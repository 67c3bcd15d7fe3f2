// Package visits records page views without keeping client addresses. Addresses are
// hashed with a per-process salt, Do Not Track is honoured upstream and records older
// than the retention period are purged.
package visits

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

const (
	recentVisits = 10
	maxUserAgent = 300
	writeTimeout = 5 * time.Second
)

// Hasher turns client addresses into stable, salted identifiers.
type Hasher struct {
	salt string
}

func NewHasher() (*Hasher, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return &Hasher{salt: hex.EncodeToString(b)}, nil
}

// Hash is consistent per address for the life of the process.
func (h *Hasher) Hash(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + h.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

type Tracker struct {
	repo      domain.VisitRepository
	hasher    *Hasher
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewTracker(repo domain.VisitRepository, hasher *Hasher, retention time.Duration, log *slog.Logger) *Tracker {
	return &Tracker{
		repo:      repo,
		hasher:    hasher,
		retention: retention,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (t *Tracker) Hasher() *Hasher {
	return t.hasher
}

// Track records a visit in the background; the request does not wait for the write.
func (t *Tracker) Track(ip, userAgent, path string) {
	if len(userAgent) > maxUserAgent {
		userAgent = userAgent[:maxUserAgent]
	}
	v := &domain.Visit{
		HashedIP:  t.hasher.Hash(ip),
		UserAgent: userAgent,
		Path:      path,
		VisitedAt: t.now(),
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := t.repo.Record(ctx, v); err != nil {
			t.log.Error("error recording visitor", "error", err)
		}
	}()
}

// Wait blocks until every pending write has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) Stats(ctx context.Context) (*domain.VisitStats, error) {
	stats, err := t.repo.Stats(ctx, t.now(), recentVisits)
	if err != nil {
		return nil, &domain.GatewayError{Op: "rows.stats", Err: err}
	}
	return stats, nil
}

// Cleanup deletes visits older than the retention period.
func (t *Tracker) Cleanup(ctx context.Context) (int64, error) {
	n, err := t.repo.DeleteBefore(ctx, t.now().Add(-t.retention))
	if err != nil {
		return 0, &domain.GatewayError{Op: "rows.delete", Err: err}
	}
	if n > 0 {
		t.log.Info("privacy cleanup removed old visitor records", "rows", n, "retention", t.retention.String())
	}
	return n, nil
}

// RunCleanup purges once immediately and then every interval until ctx is done.
func (t *Tracker) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := t.Cleanup(ctx); err != nil && ctx.Err() == nil {
			t.log.Error("error cleaning up old visitor data", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
