package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/otter/internal/autostart"
	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/homeassistant"
	"github.com/five82/otter/internal/notify"
	"github.com/five82/otter/internal/settings"
	"github.com/five82/otter/internal/state"
)

// ToggleSettleDelay is how long ToggleEntity waits before refreshing, giving
// Home Assistant time to apply the change.
const ToggleSettleDelay = 500 * time.Millisecond

// ClientFactory builds an API client for a base URL and token.
type ClientFactory func(baseURL, token string) (homeassistant.API, error)

// DefaultClientFactory returns the real HTTP client.
func DefaultClientFactory(baseURL, token string) (homeassistant.API, error) {
	return homeassistant.NewClient(baseURL, token)
}

// Options configure an Engine. Settings is required.
type Options struct {
	Settings  *settings.Settings
	Store     *state.Store        // nil allocates a new store
	Notifier  notify.Notifier     // nil drops notifications
	LoginItem autostart.LoginItem // nil disables launch-at-login
	Log       *zap.Logger
	NewClient ClientFactory // nil uses DefaultClientFactory
}

// Engine owns the refresh cycle, health transitions and commands.
type Engine struct {
	settings  *settings.Settings
	store     *state.Store
	notifier  notify.Notifier
	loginItem autostart.LoginItem
	log       *zap.Logger
	newClient ClientFactory

	now          func() time.Time
	settleDelay  time.Duration
	intervalUnit time.Duration

	checkMu    sync.Mutex
	prevHealth health.Status
	prevUpdate bool

	autoMu     sync.Mutex
	autoParent context.Context
	autoStop   context.CancelFunc
}

// New builds an engine.
func New(opts Options) *Engine {
	e := &Engine{
		settings:     opts.Settings,
		store:        opts.Store,
		notifier:     opts.Notifier,
		loginItem:    opts.LoginItem,
		log:          opts.Log,
		newClient:    opts.NewClient,
		now:          time.Now,
		settleDelay:  ToggleSettleDelay,
		intervalUnit: time.Second,
		prevHealth:   health.Unknown,
	}
	if e.store == nil {
		e.store = &state.Store{}
	}
	if e.notifier == nil {
		e.notifier = discard{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.newClient == nil {
		e.newClient = DefaultClientFactory
	}
	return e
}

// Store exposes the snapshot store for subscribers.
func (e *Engine) Store() *state.Store {
	return e.store
}

// Snapshot returns a copy of the current snapshot.
func (e *Engine) Snapshot() state.Snapshot {
	return e.store.Snapshot()
}

// Settings returns a read-only copy of the settings. Changes go through the
// engine's setters.
func (e *Engine) Settings() settings.Values {
	return e.settings.Values()
}

// Refresh fetches config and states concurrently and applies them. Failures
// become an error connection status; the previous data is kept. Refresh never
// returns an error to the caller.
func (e *Engine) Refresh(ctx context.Context) {
	if !e.settings.IsConfigured() {
		e.store.SetDisconnected()
		return
	}
	e.store.SetConnecting()

	client, err := e.newClient(e.settings.BaseURL(), e.settings.Token())
	if err != nil {
		e.fail(err)
		return
	}

	var (
		cfg    *entity.ServerConfig
		states []entity.State
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = client.FetchConfig(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		states, err = client.FetchStates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		e.fail(err)
		return
	}

	readings := health.Resolve(states, e.settings.Mapping())
	e.store.Apply(*cfg, states, readings, e.now())
	e.log.Debug("refresh complete",
		zap.Int("entities", len(states)),
		zap.String("version", cfg.Version),
	)

	e.checkHealth(readings)
	e.checkUpdate(states)
}

func (e *Engine) fail(err error) {
	e.log.Warn("refresh failed", zap.Error(err))
	e.store.SetError(err.Error())
}

func (e *Engine) checkHealth(readings []health.Reading) {
	thresholds := e.settings.Thresholds()
	current := health.Evaluate(readings, thresholds)

	e.checkMu.Lock()
	previous := e.prevHealth
	e.prevHealth = current
	e.checkMu.Unlock()

	if !health.ShouldNotify(previous, current) {
		return
	}
	details := health.Details(readings, thresholds)
	e.log.Info("health changed",
		zap.Stringer("from", previous),
		zap.Stringer("to", current),
		zap.String("details", details),
	)
	e.notifier.HealthAlert(current, details)
}

func (e *Engine) checkUpdate(states []entity.State) {
	update, found := entity.Find(states, entity.CoreUpdateID)
	available := found && update.State == "on"

	e.checkMu.Lock()
	previous := e.prevUpdate
	e.prevUpdate = available
	e.checkMu.Unlock()

	if !available || previous {
		return
	}
	version := update.Attributes.LatestVersion
	if version == "" {
		return
	}
	e.log.Info("update available", zap.String("version", version))
	e.notifier.UpdateAvailable(version)
}

type discard struct{}

func (discard) HealthAlert(health.Status, string) {}
func (discard) UpdateAvailable(string)            {}
