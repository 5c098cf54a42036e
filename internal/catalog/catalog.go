// Package catalog holds the in-memory listing snapshot the browse views
// filter against. The service is the source of truth; the snapshot is
// refreshed on demand and on a background interval, never persisted.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/market"
	"go.uber.org/zap"
)

// Lister is the subset of the entity client the catalog needs.
type Lister interface {
	List(ctx context.Context) ([]market.Listing, error)
	Filter(ctx context.Context, spec entity.FilterSpec, sort string, limit int) ([]market.Listing, error)
}

// Catalog maintains the current listing snapshot.
type Catalog struct {
	lister Lister
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc

	mu        sync.RWMutex
	listings  []market.Listing
	refreshed time.Time
	lastErr   error
}

// New creates a catalog with an empty snapshot.
func New(lister Lister, b *bus.Bus, logger *zap.Logger) *Catalog {
	return &Catalog{
		lister: lister,
		bus:    b,
		logger: logger,
	}
}

// Refresh replaces the snapshot with the service's current listings. The
// old snapshot is kept on failure so the UI never blanks out.
func (c *Catalog) Refresh(ctx context.Context) error {
	listings, err := c.lister.List(ctx)
	if err != nil {
		c.logger.Warn("catalog refresh failed", zap.Error(err))
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.listings = listings
	c.refreshed = time.Now()
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("catalog refreshed", zap.Int("listings", len(listings)))
	c.bus.Emit(bus.KindListingRefreshed, len(listings))
	return nil
}

// Snapshot returns the current listings. The returned slice is shared;
// callers must not mutate it.
func (c *Catalog) Snapshot() []market.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listings
}

// RefreshedAt returns when the snapshot was last replaced, and the error
// from the most recent refresh attempt.
func (c *Catalog) RefreshedAt() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshed, c.lastErr
}

// Recent fetches the n newest active listings server-side, bypassing the
// snapshot. Used by the dashboard.
func (c *Catalog) Recent(ctx context.Context, n int) ([]market.Listing, error) {
	return c.lister.Filter(ctx, entity.FilterSpec{Status: market.StatusActive}, "-created_date", n)
}

// Start refreshes the snapshot on the given interval until Stop or ctx
// cancellation.
func (c *Catalog) Start(ctx context.Context, interval time.Duration) {
	ctx, c.cancel = context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = c.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the background refresh.
func (c *Catalog) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}
