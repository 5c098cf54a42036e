package viewtrack

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/store"
	"go.uber.org/zap"
)

type mockUpdater struct {
	mu      sync.Mutex
	views   map[string]int
	getErr  error
	updErr  error
	updates []map[string]any
}

func (m *mockUpdater) Get(ctx context.Context, id string) (*market.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.views[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &market.Listing{ID: id, Views: v}, nil
}

func (m *mockUpdater) Update(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updErr != nil {
		return m.updErr
	}
	m.updates = append(m.updates, fields)
	if v, ok := fields["views"].(int); ok {
		m.views[id] = v
	}
	return nil
}

func testTracker(t *testing.T, u ListingUpdater) (*Tracker, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db, u, bus.New(), zap.NewNop()), db
}

func TestRecordQueuesWithoutNetwork(t *testing.T) {
	u := &mockUpdater{views: map[string]int{}, getErr: entity.ErrUnavailable}
	tr, db := testTracker(t, u)

	tr.Record("l1")
	tr.Record("l2")

	pending, err := db.PendingViews()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
}

func TestProcessPendingIncrementsViews(t *testing.T) {
	u := &mockUpdater{views: map[string]int{"l1": 6}}
	tr, db := testTracker(t, u)

	tr.Record("l1")
	tr.processPending(context.Background())

	if u.views["l1"] != 7 {
		t.Errorf("views = %d, want 7", u.views["l1"])
	}
	pending, _ := db.PendingViews()
	if len(pending) != 0 {
		t.Errorf("still pending: %+v", pending)
	}
}

func TestTransientFailureRequeues(t *testing.T) {
	u := &mockUpdater{views: map[string]int{"l1": 0}, updErr: entity.ErrUnavailable}
	tr, db := testTracker(t, u)

	tr.Record("l1")
	tr.processPending(context.Background())

	pending, _ := db.PendingViews()
	if len(pending) != 1 || pending[0].Attempts != 1 {
		t.Fatalf("after first failure: %+v", pending)
	}

	// Service recovers, the retry drains the queue.
	u.mu.Lock()
	u.updErr = nil
	u.mu.Unlock()
	tr.processPending(context.Background())

	pending, _ = db.PendingViews()
	if len(pending) != 0 {
		t.Errorf("still pending after recovery: %+v", pending)
	}
	if u.views["l1"] != 1 {
		t.Errorf("views = %d, want 1", u.views["l1"])
	}
}

func TestUnknownListingFailsPermanently(t *testing.T) {
	u := &mockUpdater{views: map[string]int{}}
	tr, db := testTracker(t, u)

	tr.Record("ghost")
	tr.processPending(context.Background())
	tr.processPending(context.Background())

	pending, _ := db.PendingViews()
	if len(pending) != 0 {
		t.Errorf("not-found event still queued: %+v", pending)
	}
	if len(u.updates) != 0 {
		t.Errorf("update issued for unknown listing: %v", u.updates)
	}
}

func TestPruneRemovesOldDeliveredViews(t *testing.T) {
	u := &mockUpdater{views: map[string]int{"l1": 0}}
	tr, db := testTracker(t, u)

	tr.Record("l1")
	tr.processPending(context.Background())

	// Age the delivered event past the retention window.
	cutoff := time.Now().Add(-2 * pruneAge).UnixMilli()
	if _, err := db.Exec(`UPDATE view_events SET updated_at = ?`, cutoff); err != nil {
		t.Fatal(err)
	}

	tr.prune()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM view_events`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("delivered events remaining = %d, want 0", n)
	}
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	u := &mockUpdater{views: map[string]int{"l1": 0}, updErr: entity.ErrUnavailable}
	tr, db := testTracker(t, u)

	tr.Record("l1")
	for i := 0; i < maxAttempts+2; i++ {
		tr.processPending(context.Background())
	}

	pending, _ := db.PendingViews()
	if len(pending) != 0 {
		t.Errorf("event still retrying past max attempts: %+v", pending)
	}
}
