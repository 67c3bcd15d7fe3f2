package visits

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/design-portfolio/internal/domain"
	"github.com/Zachkp/design-portfolio/internal/repository/sqlite"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	db, err := sqlite.Open("file:" + filepath.Join(t.TempDir(), "visits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	hasher, err := NewHasher()
	require.NoError(t, err)
	return NewTracker(sqlite.NewVisitRepository(db), hasher, 365*24*time.Hour, discard)
}

func TestHasherIsStableAndSalted(t *testing.T) {
	a, err := NewHasher()
	require.NoError(t, err)
	b, err := NewHasher()
	require.NoError(t, err)

	assert.Equal(t, a.Hash("203.0.113.7"), a.Hash("203.0.113.7"))
	assert.NotEqual(t, a.Hash("203.0.113.7"), a.Hash("203.0.113.8"))
	assert.NotEqual(t, a.Hash("203.0.113.7"), b.Hash("203.0.113.7"))
	assert.Len(t, a.Hash("203.0.113.7"), 16)
}

func TestTrackNeverStoresRawAddress(t *testing.T) {
	tracker := newTracker(t)

	tracker.Track("203.0.113.7", "Mozilla/5.0", "/")
	tracker.Track("203.0.113.7", strings.Repeat("x", 1000), "/")
	tracker.Track("198.51.100.1", "Mozilla/5.0", "/projects")
	tracker.Wait()

	stats, err := tracker.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Unique)
	assert.Equal(t, int64(3), stats.Today)
	for _, v := range stats.Recent {
		assert.NotContains(t, v.HashedIP, "203.0.113.7")
		assert.LessOrEqual(t, len(v.UserAgent), maxUserAgent)
	}
}

func TestCleanupHonoursRetention(t *testing.T) {
	tracker := newTracker(t)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now.AddDate(-2, 0, 0) }
	tracker.Track("203.0.113.7", "", "/")
	tracker.Wait()
	tracker.now = func() time.Time { return now }
	tracker.Track("203.0.113.7", "", "/")
	tracker.Wait()

	n, err := tracker.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tracker.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunCleanupStopsWithContext(t *testing.T) {
	tracker := newTracker(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.RunCleanup(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

type brokenRepo struct {
	domain.VisitRepository
}

func (brokenRepo) Stats(context.Context, time.Time, int) (*domain.VisitStats, error) {
	return nil, errors.New("disk I/O error")
}

func TestStatsWrapsGatewayErrors(t *testing.T) {
	hasher, err := NewHasher()
	require.NoError(t, err)
	tracker := NewTracker(brokenRepo{}, hasher, time.Hour, discard)

	_, err = tracker.Stats(context.Background())

	var gerr *domain.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "rows.stats", gerr.Op)
}
