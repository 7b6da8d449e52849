package notify

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DefaultSubject is the NATS subject used when none is configured.
const DefaultSubject = "otter.notifications"

// LogSink writes notifications to the structured log.
type LogSink struct {
	Log *zap.Logger
}

// Deliver logs n at warn level for critical alerts and info otherwise.
func (s LogSink) Deliver(n Notification) error {
	fields := []zap.Field{
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	}
	if n.Severity == "critical" {
		s.Log.Warn("notification", fields...)
		return nil
	}
	s.Log.Info("notification", fields...)
	return nil
}

// Publisher sends notifications as JSON to a NATS subject.
type Publisher struct {
	Conn    *nats.Conn
	Subject string
}

// NewPublisher connects to url. An empty subject uses DefaultSubject.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("otter"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{Conn: conn, Subject: subject}, nil
}

// Deliver publishes n.
func (p *Publisher) Deliver(n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := p.Conn.Publish(p.Subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.Subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if p.Conn != nil {
		_ = p.Conn.Drain()
		p.Conn.Close()
	}
}

// Channel hands notifications to an in-process consumer such as the TUI.
// Deliveries never block; when the buffer is full the notification is
// dropped and an error returned.
type Channel struct {
	C chan Notification
}

// NewChannel returns a channel sink with the given buffer.
func NewChannel(size int) *Channel {
	return &Channel{C: make(chan Notification, size)}
}

// Deliver queues n.
func (c *Channel) Deliver(n Notification) error {
	select {
	case c.C <- n:
		return nil
	default:
		return fmt.Errorf("notification channel full, dropped %s", n.ID)
	}
}
