// Package app composes the client: config, logging, profile lock, store,
// entity client, catalog, voice assistant, view tracker, and the TUI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/boilerex/bx/internal/bus"
	"github.com/boilerex/bx/internal/catalog"
	"github.com/boilerex/bx/internal/config"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/lock"
	"github.com/boilerex/bx/internal/logging"
	"github.com/boilerex/bx/internal/session"
	"github.com/boilerex/bx/internal/speech"
	"github.com/boilerex/bx/internal/store"
	"github.com/boilerex/bx/internal/tui"
	"github.com/boilerex/bx/internal/tui/model"
	"github.com/boilerex/bx/internal/viewtrack"
	"github.com/boilerex/bx/internal/voice"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	ProfileName string
	OpenListing string // open this listing ID on startup; optional
}

// Module returns the fx module for the client, composing all providers
// and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("bx",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideEntityClient,
			provideCatalog,
			provideTracker,
			provideAssistant,
			provideViewModel,
			provideApp,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() *config.Config {
	return config.LoadOrDefault(session.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	// The TUI owns the terminal; logs go to the profile log file only.
	return logging.NewFileOnly(session.LogPath(p.ProfileName), p.ProfileName)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := session.EnsureDir(p.ProfileName); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.ProfileName))
	l, err := lock.Acquire(session.Dir(p.ProfileName))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.DBPath(p.ProfileName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideEntityClient(cfg *config.Config, logger *zap.Logger) *entity.Client {
	return entity.New(cfg.Backend.BaseURL, cfg.Backend.AppID, cfg.Backend.APIToken, logger)
}

func provideCatalog(c *entity.Client, b *bus.Bus, logger *zap.Logger) *catalog.Catalog {
	return catalog.New(c, b, logger)
}

func provideTracker(db *store.DB, c *entity.Client, b *bus.Bus, logger *zap.Logger) *viewtrack.Tracker {
	return viewtrack.New(db, c, b, logger)
}

func provideAssistant(cfg *config.Config, c *entity.Client, b *bus.Bus, logger *zap.Logger) *voice.Assistant {
	wcfg := speech.WhisperConfig{
		RecorderCommand: cfg.Voice.RecorderCommand,
		ModelPath:       cfg.Voice.ModelPath,
		Language:        cfg.Voice.Language,
	}
	cap := speech.Probe(wcfg)
	if !cap.OK {
		logger.Info("voice capture unavailable", zap.String("reason", cap.Reason))
	}
	engines := func() speech.Engine { return speech.NewWhisper(wcfg, logger) }
	opts := voice.Options{
		ActivationDelay: time.Duration(cfg.Voice.ActivationDelayMs) * time.Millisecond,
		ListenTimeout:   time.Duration(cfg.Voice.ListenTimeoutSec) * time.Second,
	}
	return voice.New(cap, engines, c, b, logger, opts, voice.Callbacks{})
}

func provideViewModel(c *catalog.Catalog, db *store.DB, b *bus.Bus, logger *zap.Logger) *model.ViewModel {
	return model.NewViewModel(c, db, b, logger)
}

func provideApp(p Params, vm *model.ViewModel, assistant *voice.Assistant, tracker *viewtrack.Tracker, c *entity.Client, cfg *config.Config, logger *zap.Logger) *tui.App {
	share := func(listingID string) string {
		return fmt.Sprintf("%s/listing/%s", cfg.Backend.ShareBaseURL, listingID)
	}
	return tui.NewApp(vm, assistant, tracker, c, logger, tui.Config{
		ProfileName:  p.ProfileName,
		ShareURL:     share,
		OpenListing:  p.OpenListing,
		PriceCeiling: cfg.Browse.PriceCeiling,
	})
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, cat *catalog.Catalog, tracker *viewtrack.Tracker, assistant *voice.Assistant, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			interval := time.Duration(cfg.Browse.RefreshIntervalSec) * time.Second
			if interval <= 0 {
				interval = time.Minute
			}
			cat.Start(context.Background(), interval)
			tracker.Start(context.Background())
			return nil
		},
		OnStop: func(_ context.Context) error {
			assistant.Stop()
			tracker.Stop()
			cat.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			return nil
		},
	})
}
