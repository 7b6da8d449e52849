package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/otter/internal/health"
)

type recorder struct {
	got []Notification
}

func (r *recorder) Deliver(n Notification) error {
	r.got = append(r.got, n)
	return nil
}

func TestGate_HealthAlertBodies(t *testing.T) {
	rec := &recorder{}
	g := NewGate(func() bool { return true }, 0, zap.NewNop(), rec)
	t.Cleanup(func() { _ = g.Close() })

	g.HealthAlert(health.Warning, "Memory: 80%")
	g.HealthAlert(health.Critical, "CPU: 96%")
	g.HealthAlert(health.Healthy, "ignored")
	g.HealthAlert(health.Unknown, "ignored")

	if len(rec.got) != 2 {
		t.Fatalf("delivered %d notifications, want 2", len(rec.got))
	}
	if rec.got[0].Body != "Warning: Memory: 80%" || rec.got[0].Severity != "warning" {
		t.Fatalf("warning notification = %#v", rec.got[0])
	}
	if rec.got[1].Body != "Critical: CPU: 96%" || rec.got[1].Kind != KindHealthAlert {
		t.Fatalf("critical notification = %#v", rec.got[1])
	}
	if !strings.HasPrefix(rec.got[0].ID, "health-alert-") || rec.got[0].ID == rec.got[1].ID {
		t.Fatalf("ids = %q, %q, want unique health-alert-*", rec.got[0].ID, rec.got[1].ID)
	}
	if rec.got[0].Time.IsZero() {
		t.Fatalf("notification time not set")
	}
}

func TestGate_UpdateAvailable(t *testing.T) {
	rec := &recorder{}
	g := NewGate(nil, 0, nil, rec)

	g.UpdateAvailable("2025.3.0")
	if len(rec.got) != 1 {
		t.Fatalf("delivered %d notifications, want 1", len(rec.got))
	}
	n := rec.got[0]
	if n.ID != UpdateAvailableID || n.Version != "2025.3.0" || !strings.Contains(n.Body, "2025.3.0") {
		t.Fatalf("update notification = %#v", n)
	}
}

func TestGate_RespectsEnabledSetting(t *testing.T) {
	rec := &recorder{}
	enabled := false
	g := NewGate(func() bool { return enabled }, 0, zap.NewNop(), rec)

	g.HealthAlert(health.Critical, "CPU: 99%")
	if len(rec.got) != 0 {
		t.Fatalf("delivered while disabled")
	}
	enabled = true
	g.HealthAlert(health.Critical, "CPU: 99%")
	if len(rec.got) != 1 {
		t.Fatalf("delivered %d notifications after enabling, want 1", len(rec.got))
	}
}

func TestGate_DedupesUpdateInsideWindow(t *testing.T) {
	rec := &recorder{}
	g := NewGate(func() bool { return true }, time.Minute, zap.NewNop(), rec)
	t.Cleanup(func() { _ = g.Close() })

	g.UpdateAvailable("2025.3.0")
	g.UpdateAvailable("2025.3.0")
	g.UpdateAvailable("2025.3.1")

	if len(rec.got) != 2 {
		t.Fatalf("delivered %d notifications, want 2", len(rec.got))
	}
}

func TestGate_RepeatedHealthTransitionsAllDeliver(t *testing.T) {
	rec := &recorder{}
	g := NewGate(func() bool { return true }, time.Minute, zap.NewNop(), rec)
	t.Cleanup(func() { _ = g.Close() })

	// healthy -> warning -> healthy -> warning with the same reading.
	g.HealthAlert(health.Warning, "CPU: 80%")
	g.HealthAlert(health.Warning, "CPU: 80%")

	if len(rec.got) != 2 {
		t.Fatalf("delivered %d health alerts, want 2", len(rec.got))
	}
}

func TestGate_SinkErrorsDoNotStopFanOut(t *testing.T) {
	rec := &recorder{}
	failing := SinkFunc(func(Notification) error { return errors.New("offline") })
	g := NewGate(nil, 0, zap.NewNop(), failing, rec)

	g.UpdateAvailable("2025.3.0")
	if len(rec.got) != 1 {
		t.Fatalf("second sink got %d notifications, want 1", len(rec.got))
	}
}

func TestChannel_DropsWhenFull(t *testing.T) {
	c := NewChannel(1)
	if err := c.Deliver(Notification{ID: "a"}); err != nil {
		t.Fatalf("first Deliver returned error: %v", err)
	}
	if err := c.Deliver(Notification{ID: "b"}); err == nil {
		t.Fatalf("Deliver on full channel returned nil error")
	}
	if n := <-c.C; n.ID != "a" {
		t.Fatalf("received %q, want a", n.ID)
	}
}
