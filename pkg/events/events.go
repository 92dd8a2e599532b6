package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/manhattanmint/mint-bookings/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopEventBus is used when NATS is not reachable; the funnel must keep
// working without analytics.
type NoopEventBus struct{}

func (NoopEventBus) Publish(ctx context.Context, subject string, data interface{}) error { return nil }
func (NoopEventBus) Subscribe(subject string, handler func(msg *Message)) error          { return nil }
func (NoopEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	return nil
}
func (NoopEventBus) Close() error { return nil }

// Event subjects
const (
	// Funnel events
	QuoteStarted      = "quote.started"
	QuotePriced       = "quote.priced"
	HandoffDispatched = "handoff.dispatched"
	LeadCaptured      = "lead.captured"

	// Notification events
	NotifySend = "notify.send"
)

// Event payloads
type QuoteStartedEvent struct {
	SessionID string    `json:"session_id"`
	Zip       string    `json:"zip"`
	Style     string    `json:"style"`
	Date      string    `json:"date"`
	StartedAt time.Time `json:"started_at"`
}

type QuotePricedEvent struct {
	SessionID  string    `json:"session_id"`
	Style      string    `json:"style"`
	Recurrence string    `json:"recurrence"`
	Subtotal   int       `json:"subtotal"`
	Total      int       `json:"total"`
	PricedAt   time.Time `json:"priced_at"`
}

type HandoffDispatchedEvent struct {
	SessionID    string    `json:"session_id"`
	Provider     string    `json:"provider"`
	Email        string    `json:"email"`
	Service      string    `json:"service"`
	Date         string    `json:"date"`
	Total        int       `json:"total"`
	DispatchedAt time.Time `json:"dispatched_at"`
}

type LeadCapturedEvent struct {
	SessionID  string    `json:"session_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Zip        string    `json:"zip"`
	CapturedAt time.Time `json:"captured_at"`
}

type NotificationEvent struct {
	Type      string                 `json:"type"`
	Recipient string                 `json:"recipient"`
	Subject   string                 `json:"subject"`
	Template  string                 `json:"template"`
	Data      map[string]interface{} `json:"data"`
}
