package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/five82/otter/internal/api"
	"github.com/five82/otter/internal/autostart"
	"github.com/five82/otter/internal/config"
	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/logging"
	"github.com/five82/otter/internal/notify"
	"github.com/five82/otter/internal/prefs"
	"github.com/five82/otter/internal/settings"
	"github.com/five82/otter/internal/ui"
)

// notificationBuffer is how many notifications the TUI may fall behind by
// before new ones are dropped.
const notificationBuffer = 16

// Options configure the Otter application.
type Options struct {
	ConfigPath string
	Theme      string // overrides the configured theme
	LogLevel   string // overrides the configured level
	Console    bool   // log to stderr instead of the log file
}

// Runtime holds the wired components shared by every command.
type Runtime struct {
	Config   config.Config
	Log      *zap.Logger
	Settings *settings.Settings
	Engine   *engine.Engine
	// Notifications receives every delivered notification.
	Notifications <-chan notify.Notification

	store     prefs.Store
	gate      *notify.Gate
	publisher *notify.Publisher
}

// Open loads configuration and builds the engine. Callers must Close the
// runtime.
func Open(opts Options) (*Runtime, error) {
	return open(opts, nil)
}

func open(opts Options, newClient engine.ClientFactory) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Theme != "" {
		cfg.Theme = opts.Theme
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	var log *zap.Logger
	if opts.Console {
		log, err = logging.NewConsole(cfg.LogLevel)
	} else {
		log, err = logging.New(cfg.LogLevel, cfg.LogFile)
	}
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	store, err := prefs.Open(cfg.SettingsBackend, cfg.SettingsPath)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open settings: %w", err)
	}
	if fs, ok := store.(*prefs.FileStore); ok && fs.Quarantined() != "" {
		log.Warn("settings file could not be parsed; starting with defaults",
			zap.String("moved_to", fs.Quarantined()),
		)
	}
	set := settings.New(store)

	rt := &Runtime{
		Config:   cfg,
		Log:      log,
		Settings: set,
		store:    store,
	}

	channel := notify.NewChannel(notificationBuffer)
	rt.Notifications = channel.C
	sinks := []notify.Sink{notify.LogSink{Log: log.Named("notify")}, channel}
	if cfg.NATSURL != "" {
		pub, err := notify.NewPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			// The bus is optional; the other sinks still work.
			log.Warn("nats publisher disabled", zap.Error(err))
		} else {
			rt.publisher = pub
			sinks = append(sinks, pub)
			log.Info("publishing notifications", zap.String("subject", pub.Subject))
		}
	}
	rt.gate = notify.NewGate(set.NotificationsEnabled, cfg.NotifyDedupe, log.Named("notify"), sinks...)

	engOpts := engine.Options{
		Settings:  set,
		Notifier:  rt.gate,
		Log:       log.Named("engine"),
		NewClient: newClient,
	}
	if item := loginItem(log); item != nil {
		engOpts.LoginItem = item
	}
	rt.Engine = engine.New(engOpts)
	rt.Engine.SyncLaunchAtLogin()

	log.Info("otter started",
		zap.String("settings_backend", cfg.SettingsBackend),
		zap.Bool("configured", set.IsConfigured()),
	)
	return rt, nil
}

func loginItem(log *zap.Logger) *autostart.File {
	exe, err := os.Executable()
	if err != nil {
		log.Warn("launch at login unavailable", zap.Error(err))
		return nil
	}
	item, err := autostart.New(exe)
	if err != nil {
		log.Warn("launch at login unavailable", zap.Error(err))
		return nil
	}
	return item
}

// Close stops background work and releases resources.
func (r *Runtime) Close() error {
	r.Engine.StopAutoRefresh()
	var errs []error
	if err := r.gate.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close notifications: %w", err))
	}
	if r.publisher != nil {
		r.publisher.Close()
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close settings: %w", err))
	}
	_ = r.Log.Sync()
	return errors.Join(errs...)
}

// Start runs the first refresh and starts auto refresh.
func (r *Runtime) Start(ctx context.Context) {
	r.Engine.Refresh(ctx)
	r.Engine.StartAutoRefresh(ctx)
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := Open(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Start(ctx)
	return ui.Run(ui.Options{
		Context:       ctx,
		Engine:        rt.Engine,
		Notifications: rt.Notifications,
		ThemeName:     rt.Config.Theme,
		LogPath:       rt.Config.LogFile,
	})
}

// Serve runs the engine headless behind the local HTTP API. An empty addr
// uses the configured one.
func Serve(ctx context.Context, opts Options, addr string) error {
	rt, err := Open(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if addr == "" {
		addr = rt.Config.APIAddr
	}
	rt.Start(ctx)
	go rt.drainNotifications(ctx)
	return api.New(rt.Engine, rt.Log.Named("api")).Serve(ctx, addr)
}

// drainNotifications empties the in-process channel when no TUI reads it.
// The log and NATS sinks have already seen each notification.
func (r *Runtime) drainNotifications(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.Notifications:
		}
	}
}
