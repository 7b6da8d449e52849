package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartAutoRefresh calls Refresh every refresh interval until ctx is
// cancelled or StopAutoRefresh is called. Calling it again replaces the
// running timer; at most one is active.
func (e *Engine) StartAutoRefresh(ctx context.Context) {
	e.autoMu.Lock()
	defer e.autoMu.Unlock()
	e.startLocked(ctx)
}

// StopAutoRefresh cancels the timer. A Refresh already in flight runs to
// completion on the context given to StartAutoRefresh; no further ticks fire.
func (e *Engine) StopAutoRefresh() {
	e.autoMu.Lock()
	defer e.autoMu.Unlock()
	e.stopLocked()
	e.autoParent = nil
}

// AutoRefreshRunning reports whether a timer is installed.
func (e *Engine) AutoRefreshRunning() bool {
	e.autoMu.Lock()
	defer e.autoMu.Unlock()
	return e.autoStop != nil
}

func (e *Engine) startLocked(parent context.Context) {
	e.stopLocked()

	interval := time.Duration(e.settings.RefreshInterval()) * e.intervalUnit
	ctx, cancel := context.WithCancel(parent)
	e.autoParent = parent
	e.autoStop = cancel

	e.log.Debug("auto refresh started", zap.Duration("interval", interval))
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if ctx.Err() != nil {
				return
			}
			// The timer context only gates ticks. Refresh uses the parent so
			// an interval change never cuts a fetch short.
			e.Refresh(parent)
		}
	}()
}

func (e *Engine) stopLocked() {
	if e.autoStop == nil {
		return
	}
	e.autoStop()
	e.autoStop = nil
}

// restartIfRunning reinstalls the timer with the current interval.
func (e *Engine) restartIfRunning() {
	e.autoMu.Lock()
	defer e.autoMu.Unlock()
	if e.autoStop == nil || e.autoParent == nil {
		return
	}
	e.startLocked(e.autoParent)
}
