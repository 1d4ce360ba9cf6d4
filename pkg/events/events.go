package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/qualityveda/attendance-hub/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
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
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopBus discards every event. Used when no NATS URL is configured and in tests.
type NoopBus struct{}

func (NoopBus) Publish(context.Context, string, interface{}) error { return nil }
func (NoopBus) Subscribe(string, func(msg *Message)) error         { return nil }
func (NoopBus) Close() error                                       { return nil }

// Event subjects
const (
	UserAuthenticated  = "auth.authenticated"
	UserRegistered     = "auth.registered"
	AttendanceRecorded = "attendance.recorded"
	LabCreated         = "catalog.lab.created"
	LabUpdated         = "catalog.lab.updated"
	LabDeleted         = "catalog.lab.deleted"
	TrainingCreated    = "catalog.training.created"
	TrainingUpdated    = "catalog.training.updated"
	TrainingDeleted    = "catalog.training.deleted"
)

// Event payloads
type UserAuthenticatedEvent struct {
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	IsAdmin         bool      `json:"is_admin"`
	Returning       bool      `json:"returning"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}

type AttendanceRecordedEvent struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Lab        string    `json:"lab"`
	Training   string    `json:"training"`
	Date       string    `json:"date"`
	RecordedAt time.Time `json:"recorded_at"`
}

type CatalogChangedEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ChangedAt time.Time `json:"changed_at"`
}
