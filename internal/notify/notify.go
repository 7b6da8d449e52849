// Package notify delivers health and update notifications to one or more
// sinks.
package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v2"
	"go.uber.org/zap"

	"github.com/five82/otter/internal/health"
)

// UpdateAvailableID is the fixed id of the update notification. Re-sending
// replaces the previous one on sinks that key by id.
const UpdateAvailableID = "ha-update-available"

// Kind distinguishes notification types.
type Kind string

const (
	KindHealthAlert     Kind = "health_alert"
	KindUpdateAvailable Kind = "update_available"
)

// Notification is one delivered message.
type Notification struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Severity string    `json:"severity,omitempty"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Version  string    `json:"version,omitempty"`
	Time     time.Time `json:"time"`
}

// Notifier is what the sync engine calls on transitions.
type Notifier interface {
	HealthAlert(status health.Status, details string)
	UpdateAvailable(version string)
}

// Sink delivers a notification somewhere.
type Sink interface {
	Deliver(n Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification) error

// Deliver calls f.
func (f SinkFunc) Deliver(n Notification) error { return f(n) }

// Gate checks the notifications setting, drops repeated update announcements
// inside a window and fans out to sinks. Health alerts are never deduped:
// every qualifying transition is delivered.
type Gate struct {
	enabled func() bool
	sinks   []Sink
	log     *zap.Logger
	now     func() time.Time

	mu   sync.Mutex
	seen *ttlcache.Cache
}

// NewGate builds a gate. enabled is consulted on every notification. A
// dedupe window of zero disables update repeat suppression.
func NewGate(enabled func() bool, dedupe time.Duration, log *zap.Logger, sinks ...Sink) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gate{
		enabled: enabled,
		sinks:   sinks,
		log:     log,
		now:     time.Now,
	}
	if dedupe > 0 {
		g.seen = ttlcache.NewCache()
		_ = g.seen.SetTTL(dedupe)
	}
	return g
}

// HealthAlert sends a warning or critical alert. Other statuses are ignored.
func (g *Gate) HealthAlert(status health.Status, details string) {
	var body string
	switch status {
	case health.Warning:
		body = "Warning: " + details
	case health.Critical:
		body = "Critical: " + details
	default:
		return
	}
	g.deliver(Notification{
		ID:       "health-alert-" + uuid.NewString(),
		Kind:     KindHealthAlert,
		Severity: status.String(),
		Title:    "Otter Health Alert",
		Body:     body,
	})
}

// UpdateAvailable announces a new Home Assistant version.
func (g *Gate) UpdateAvailable(version string) {
	g.deliver(Notification{
		ID:      UpdateAvailableID,
		Kind:    KindUpdateAvailable,
		Title:   "Home Assistant Update Available",
		Body:    "Version " + version + " is now available!",
		Version: version,
	})
}

// Close releases the dedupe cache.
func (g *Gate) Close() error {
	if g.seen == nil {
		return nil
	}
	return g.seen.Close()
}

func (g *Gate) deliver(n Notification) {
	if g.enabled != nil && !g.enabled() {
		g.log.Debug("notification suppressed: disabled", zap.String("kind", string(n.Kind)))
		return
	}
	if n.Kind == KindUpdateAvailable && g.repeat(n.Version) {
		g.log.Debug("notification suppressed: repeat", zap.String("kind", string(n.Kind)))
		return
	}
	n.Time = g.now()

	var errs []error
	for _, sink := range g.sinks {
		if err := sink.Deliver(n); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		g.log.Warn("notification delivery failed", zap.String("id", n.ID), zap.Error(err))
	}
}

func (g *Gate) repeat(key string) bool {
	if g.seen == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.seen.Get(key); err == nil {
		return true
	}
	_ = g.seen.Set(key, struct{}{})
	return false
}
