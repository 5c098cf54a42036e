// Package viewtrack delivers queued view-count increments to the
// marketplace service. Views are recorded locally first so a flaky
// connection never blocks opening a listing; delivery is best effort and
// a delivery failure is invisible in the UI.
package viewtrack

import (
	"context"
	"errors"
	"time"

	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxAttempts is how many delivery tries an event gets before it is
// marked failed for good.
const maxAttempts = 3

// Delivered events stay around for a day so recent activity is still
// inspectable, then get pruned.
const (
	pruneAge      = 24 * time.Hour
	pruneInterval = time.Hour
)

// ListingUpdater is the subset of the entity client the sender needs.
type ListingUpdater interface {
	Get(ctx context.Context, id string) (*market.Listing, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// Tracker queues views and drains them to the service in the background.
type Tracker struct {
	db      *store.DB
	updater ListingUpdater
	bus     *bus.Bus
	logger  *zap.Logger
	cancel  context.CancelFunc
}

// New creates a view tracker.
func New(db *store.DB, updater ListingUpdater, b *bus.Bus, logger *zap.Logger) *Tracker {
	return &Tracker{
		db:      db,
		updater: updater,
		bus:     b,
		logger:  logger,
	}
}

// Record queues a view for the listing. It never blocks on the network.
func (t *Tracker) Record(listingID string) {
	eventID := uuid.NewString()
	if err := t.db.QueueView(eventID, listingID); err != nil {
		t.logger.Warn("failed to queue view", zap.String("listing_id", listingID), zap.Error(err))
		return
	}
	t.bus.Emit(bus.KindViewQueued, map[string]string{"listing_id": listingID, "event_id": eventID})
}

// Start begins polling for queued views.
func (t *Tracker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	go t.loop(ctx)
}

// Stop stops the delivery loop.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
}

func (t *Tracker) loop(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	pruner := time.NewTicker(pruneInterval)
	defer pruner.Stop()

	t.prune()
	for {
		select {
		case <-ticker.C:
			t.processPending(ctx)
		case <-pruner.C:
			t.prune()
		case <-ctx.Done():
			return
		}
	}
}

func (t *Tracker) prune() {
	n, err := t.db.PruneSentViews(pruneAge)
	if err != nil {
		t.logger.Warn("failed to prune delivered views", zap.Error(err))
		return
	}
	if n > 0 {
		t.logger.Debug("pruned delivered views", zap.Int64("count", n))
	}
}

func (t *Tracker) processPending(ctx context.Context) {
	pending, err := t.db.PendingViews()
	if err != nil {
		t.logger.Error("failed to read view queue", zap.Error(err))
		return
	}

	for _, ev := range pending {
		if ctx.Err() != nil {
			return
		}
		if err := t.db.MarkViewSending(ev.EventID); err != nil {
			t.logger.Error("failed to mark view sending", zap.Error(err), zap.String("event_id", ev.EventID))
			continue
		}

		if err := t.deliver(ctx, ev.ListingID); err != nil {
			t.logger.Warn("view delivery failed",
				zap.String("event_id", ev.EventID),
				zap.String("listing_id", ev.ListingID),
				zap.Int("attempts", ev.Attempts+1),
				zap.Error(err))
			if errors.Is(err, entity.ErrNotFound) || ev.Attempts+1 >= maxAttempts {
				_ = t.db.MarkViewFailed(ev.EventID, err.Error())
				t.bus.Emit(bus.KindViewFailed, map[string]string{"event_id": ev.EventID, "error": err.Error()})
			} else {
				_ = t.db.MarkViewFailed(ev.EventID, err.Error())
				_ = t.db.RequeueView(ev.EventID)
			}
			continue
		}

		if err := t.db.MarkViewSent(ev.EventID); err != nil {
			t.logger.Error("failed to mark view sent", zap.Error(err), zap.String("event_id", ev.EventID))
		}
		t.bus.Emit(bus.KindViewSent, map[string]string{"event_id": ev.EventID, "listing_id": ev.ListingID})
	}
}

// deliver increments the listing's view count with a read-modify-write.
// The counter is advisory; a lost increment under concurrent viewers is
// acceptable.
func (t *Tracker) deliver(ctx context.Context, listingID string) error {
	l, err := t.updater.Get(ctx, listingID)
	if err != nil {
		return err
	}
	return t.updater.Update(ctx, listingID, map[string]any{"views": l.Views + 1})
}
