// Package model holds the UI-facing state: the active filter criteria,
// the filtered listing slice the tables render from, and transient
// notifications. All filtering happens here, against the catalog
// snapshot, never on the service.
package model

import (
	"context"
	"sync"

	"github.com/boilerex/bx/internal/browse"
	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/catalog"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/store"
	"go.uber.org/zap"
)

// ViewModel caches derived state for the views and signals UI refreshes.
type ViewModel struct {
	mu sync.RWMutex

	catalog  *catalog.Catalog
	db       *store.DB
	events   *bus.Bus
	logger   *zap.Logger
	criteria browse.Criteria
	filtered []market.Listing
	excluded int
	selected *market.Listing

	voiceQuery   string
	voiceResults []market.ListingSummary

	Flash Flash

	refreshCh chan struct{}
}

// NewViewModel creates a view model over the catalog and profile store.
func NewViewModel(c *catalog.Catalog, db *store.DB, b *bus.Bus, logger *zap.Logger) *ViewModel {
	return &ViewModel{
		catalog:   c,
		db:        db,
		events:    b,
		logger:    logger,
		criteria:  browse.DefaultCriteria(),
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshCh returns the channel that signals UI refresh.
func (vm *ViewModel) RefreshCh() <-chan struct{} {
	return vm.refreshCh
}

func (vm *ViewModel) signalRefresh() {
	select {
	case vm.refreshCh <- struct{}{}:
	default:
	}
}

// Reload refreshes the catalog snapshot from the service, then re-applies
// the current criteria.
func (vm *ViewModel) Reload(ctx context.Context) error {
	if err := vm.catalog.Refresh(ctx); err != nil {
		return err
	}
	vm.ApplyFilters()
	return nil
}

// Recent fetches the n newest active listings for the dashboard.
func (vm *ViewModel) Recent(ctx context.Context, n int) ([]market.Listing, error) {
	return vm.catalog.Recent(ctx, n)
}

// ApplyFilters recomputes the filtered slice from the current snapshot
// and criteria.
func (vm *ViewModel) ApplyFilters() {
	snapshot := vm.catalog.Snapshot()

	vm.mu.Lock()
	result := browse.Apply(snapshot, vm.criteria)
	vm.filtered = result.Listings
	vm.excluded = len(result.Excluded)
	vm.mu.Unlock()

	if len(result.Excluded) > 0 {
		ids := make([]string, len(result.Excluded))
		for i, l := range result.Excluded {
			ids[i] = l.ID
		}
		vm.logger.Warn("excluded malformed listings", zap.Strings("listing_ids", ids))
	}
	vm.signalRefresh()
}

// Criteria returns a copy of the active filter criteria.
func (vm *ViewModel) Criteria() browse.Criteria {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.criteria
}

// UpdateCriteria mutates the criteria and re-filters.
func (vm *ViewModel) UpdateCriteria(mutate func(*browse.Criteria)) {
	vm.mu.Lock()
	mutate(&vm.criteria)
	vm.mu.Unlock()
	vm.ApplyFilters()
}

// ResetCriteria restores the default criteria and re-filters.
func (vm *ViewModel) ResetCriteria() {
	vm.mu.Lock()
	vm.criteria = browse.DefaultCriteria()
	vm.mu.Unlock()
	vm.ApplyFilters()
}

// Listings returns the current filtered listings.
func (vm *ViewModel) Listings() []market.Listing {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filtered
}

// ExcludedCount reports how many listings the last filter pass dropped as
// malformed.
func (vm *ViewModel) ExcludedCount() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.excluded
}

// Select marks a listing as the one open in the detail view.
func (vm *ViewModel) Select(l *market.Listing) {
	vm.mu.Lock()
	vm.selected = l
	vm.mu.Unlock()
	vm.events.Emit(bus.KindListingOpened, map[string]string{"listing_id": l.ID})
	vm.signalRefresh()
}

// Selected returns the listing open in the detail view, if any.
func (vm *ViewModel) Selected() *market.Listing {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.selected
}

// SetVoiceResults stores the outcome of a voice search for the results view.
func (vm *ViewModel) SetVoiceResults(query string, results []market.ListingSummary) {
	vm.mu.Lock()
	vm.voiceQuery = query
	vm.voiceResults = results
	vm.mu.Unlock()
	vm.signalRefresh()
}

// VoiceResults returns the last voice search query and its results.
func (vm *ViewModel) VoiceResults() (string, []market.ListingSummary) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.voiceQuery, vm.voiceResults
}

// ToggleFavorite stars or unstars the listing, returning the new state.
func (vm *ViewModel) ToggleFavorite(l *market.Listing) (bool, error) {
	fav, err := vm.db.IsFavorite(l.ID)
	if err != nil {
		return false, err
	}
	if fav {
		return false, vm.db.RemoveFavorite(l.ID)
	}
	return true, vm.db.AddFavorite(l.ID, l.Title, l.Price, l.Category)
}

// Favorites returns the starred listings, newest first.
func (vm *ViewModel) Favorites() ([]store.Favorite, error) {
	return vm.db.Favorites()
}

// RecordSearch appends a query to the search history.
func (vm *ViewModel) RecordSearch(query, source string) {
	_ = vm.db.RecordSearch(query, source)
}

// RecentSearches returns up to limit past searches, newest first.
func (vm *ViewModel) RecentSearches(limit int) ([]store.RecentSearch, error) {
	return vm.db.RecentSearches(limit)
}
