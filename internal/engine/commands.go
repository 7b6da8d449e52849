package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/settings"
	"github.com/five82/otter/internal/state"
)

// ToggleEntity toggles entityID, waits for the change to settle and then
// refreshes. There is no optimistic update. Failures are logged and the
// connection status is left alone.
func (e *Engine) ToggleEntity(ctx context.Context, entityID string) {
	if domain, _, ok := strings.Cut(entityID, "."); !ok || domain == "" {
		e.log.Warn("toggle skipped: entity id has no domain", zap.String("entity_id", entityID))
		return
	}
	client, err := e.newClient(e.settings.BaseURL(), e.settings.Token())
	if err != nil {
		e.log.Warn("toggle failed", zap.String("entity_id", entityID), zap.Error(err))
		return
	}
	if err := client.Toggle(ctx, entityID); err != nil {
		e.log.Warn("toggle failed", zap.String("entity_id", entityID), zap.Error(err))
		return
	}
	e.log.Info("toggled entity", zap.String("entity_id", entityID))

	timer := time.NewTimer(e.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	e.Refresh(ctx)
}

// AddToDashboard pins entityID. Pinning twice is a no-op.
func (e *Engine) AddToDashboard(entityID string) error {
	if err := e.settings.AddToDashboard(entityID); err != nil {
		return fmt.Errorf("pin %s: %w", entityID, err)
	}
	return nil
}

// RemoveFromDashboard unpins entityID. Unpinning an absent id is a no-op.
func (e *Engine) RemoveFromDashboard(entityID string) error {
	if err := e.settings.RemoveFromDashboard(entityID); err != nil {
		return fmt.Errorf("unpin %s: %w", entityID, err)
	}
	return nil
}

// IsInDashboard reports whether entityID is pinned.
func (e *Engine) IsInDashboard(entityID string) bool {
	return e.settings.IsInDashboard(entityID)
}

// TestConnection applies url and token and refreshes. On success the new
// values are kept and a summary of the server is returned; otherwise the
// previous values are restored.
func (e *Engine) TestConnection(ctx context.Context, url, token string) (string, error) {
	prevURL, prevToken := e.settings.BaseURL(), e.settings.Token()
	if err := e.setCredentials(strings.TrimSpace(url), strings.TrimSpace(token)); err != nil {
		return "", err
	}

	e.Refresh(ctx)
	snap := e.store.Snapshot()
	if snap.Connection.Kind == state.Connected {
		if snap.Config != nil {
			return fmt.Sprintf("Connected to %s (HA %s)", snap.Config.LocationName, snap.Config.Version), nil
		}
		return "Connected successfully!", nil
	}

	msg := "Connection failed"
	if snap.Connection.IsError() {
		msg = snap.Connection.Message
	}
	if err := e.setCredentials(prevURL, prevToken); err != nil {
		e.log.Warn("restore previous connection settings", zap.Error(err))
	}
	return "", errors.New(msg)
}

// StoredToken returns the saved access token so a form can re-test a new URL
// without retyping it. Callers must not log it.
func (e *Engine) StoredToken() string {
	return e.settings.Token()
}

func (e *Engine) setCredentials(url, token string) error {
	if err := e.settings.SetBaseURL(url); err != nil {
		return fmt.Errorf("save url: %w", err)
	}
	if err := e.settings.SetToken(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// SetRefreshInterval stores the interval and, when auto refresh is running,
// reinstalls the timer so the new value applies.
func (e *Engine) SetRefreshInterval(seconds int) (int, error) {
	stored, err := e.settings.SetRefreshInterval(seconds)
	if err != nil {
		return stored, fmt.Errorf("save refresh interval: %w", err)
	}
	e.restartIfRunning()
	return stored, nil
}

// SetWarningThreshold stores the warning threshold, adjusting critical.
func (e *Engine) SetWarningThreshold(value int) (settings.Thresholds, error) {
	return e.settings.SetWarningThreshold(value)
}

// SetCriticalThreshold stores the critical threshold, adjusting warning.
func (e *Engine) SetCriticalThreshold(value int) (settings.Thresholds, error) {
	return e.settings.SetCriticalThreshold(value)
}

// SetMetricEntity maps a metric to an entity id. Empty restores
// auto-detection.
func (e *Engine) SetMetricEntity(metric entity.Metric, entityID string) error {
	return e.settings.SetMetricEntity(metric, strings.TrimSpace(entityID))
}

// SetAppearance stores the appearance mode.
func (e *Engine) SetAppearance(a settings.Appearance) error {
	return e.settings.SetAppearance(a)
}

// SetNotificationsEnabled stores the notification toggle.
func (e *Engine) SetNotificationsEnabled(enabled bool) error {
	return e.settings.SetNotificationsEnabled(enabled)
}

// AddMenuBarSensor appends a sensor to the menu bar list.
func (e *Engine) AddMenuBarSensor(entityID string) (bool, error) {
	return e.settings.AddMenuBarSensor(entityID)
}

// RemoveMenuBarSensor drops a sensor from the menu bar list.
func (e *Engine) RemoveMenuBarSensor(entityID string) (bool, error) {
	return e.settings.RemoveMenuBarSensor(entityID)
}

// MoveMenuBarSensorUp swaps the sensor at index with its left neighbour.
func (e *Engine) MoveMenuBarSensorUp(index int) (bool, error) {
	return e.settings.MoveMenuBarSensorUp(index)
}

// MoveMenuBarSensorDown swaps the sensor at index with its right neighbour.
func (e *Engine) MoveMenuBarSensorDown(index int) (bool, error) {
	return e.settings.MoveMenuBarSensorDown(index)
}

// SyncLaunchAtLogin copies the real login item state into settings.
func (e *Engine) SyncLaunchAtLogin() {
	if e.loginItem == nil {
		return
	}
	enabled, err := e.loginItem.Enabled()
	if err != nil {
		e.log.Warn("read login item", zap.Error(err))
		return
	}
	if err := e.settings.SetLaunchAtLogin(enabled); err != nil {
		e.log.Warn("save launch at login", zap.Error(err))
	}
}

// SetLaunchAtLogin stores the flag and registers or removes the login item.
func (e *Engine) SetLaunchAtLogin(enabled bool) error {
	if err := e.settings.SetLaunchAtLogin(enabled); err != nil {
		return fmt.Errorf("save launch at login: %w", err)
	}
	if e.loginItem == nil {
		return nil
	}
	if err := e.loginItem.SetEnabled(enabled); err != nil {
		e.log.Warn("update login item", zap.Bool("enabled", enabled), zap.Error(err))
		return fmt.Errorf("update login item: %w", err)
	}
	return nil
}
