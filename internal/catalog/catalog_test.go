package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/market"
	"go.uber.org/zap"
)

type fakeLister struct {
	listings []market.Listing
	err      error

	filterSpec  entity.FilterSpec
	filterSort  string
	filterLimit int
}

func (f *fakeLister) List(ctx context.Context) ([]market.Listing, error) {
	return f.listings, f.err
}

func (f *fakeLister) Filter(ctx context.Context, spec entity.FilterSpec, sort string, limit int) ([]market.Listing, error) {
	f.filterSpec, f.filterSort, f.filterLimit = spec, sort, limit
	return f.listings, f.err
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	lister := &fakeLister{listings: []market.Listing{{ID: "l1"}, {ID: "l2"}}}
	b := bus.New()
	events, unsub := b.Subscribe("listing.", 8)
	defer unsub()

	c := New(lister, b, zap.NewNop())
	if len(c.Snapshot()) != 0 {
		t.Fatal("snapshot not empty before first refresh")
	}

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(c.Snapshot()) != 2 {
		t.Errorf("snapshot = %d listings, want 2", len(c.Snapshot()))
	}

	evt := <-events
	if evt.Kind != bus.KindListingRefreshed {
		t.Errorf("event kind = %q", evt.Kind)
	}
	if when, err := c.RefreshedAt(); when.IsZero() || err != nil {
		t.Errorf("RefreshedAt = %v, %v", when, err)
	}
}

func TestFailedRefreshKeepsOldSnapshot(t *testing.T) {
	lister := &fakeLister{listings: []market.Listing{{ID: "l1"}}}
	c := New(lister, bus.New(), zap.NewNop())

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	lister.err = errors.New("service down")
	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if len(c.Snapshot()) != 1 {
		t.Error("failed refresh clobbered the snapshot")
	}
	if _, err := c.RefreshedAt(); err == nil {
		t.Error("last refresh error not surfaced")
	}
}

func TestRecentAsksServerForNewestActive(t *testing.T) {
	lister := &fakeLister{listings: []market.Listing{{ID: "l1"}}}
	c := New(lister, bus.New(), zap.NewNop())

	got, err := c.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d listings", len(got))
	}
	if lister.filterSpec.Status != market.StatusActive {
		t.Errorf("status = %q", lister.filterSpec.Status)
	}
	if lister.filterSort != "-created_date" || lister.filterLimit != 5 {
		t.Errorf("sort=%q limit=%d", lister.filterSort, lister.filterLimit)
	}
}
