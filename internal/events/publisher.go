// Package events carries NATS traffic: reconciled transactions out,
// ingestion requests in.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// EventTypeReconciled marks a record that has been parsed, reconciled and stored.
const EventTypeReconciled = "transaction.reconciled"

// Event is the JSON payload of every published message.
type Event struct {
	Type        string                   `json:"type"`
	PublishedAt time.Time                `json:"published_at"`
	Record      domain.TransactionRecord `json:"record"`
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

// NATSPublisher implements pipeline.EventPublisher.
type NATSPublisher struct {
	conn    Conn
	subject string
	now     func() time.Time
}

// NewNATSPublisher publishes on subject through conn.
func NewNATSPublisher(conn Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, now: time.Now}
}

// Connect dials url and returns a publisher plus the connection so the
// caller can drain it on shutdown.
func Connect(url, subject string) (*NATSPublisher, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("momo-ingest"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, nil, fmt.Errorf("Connect: %w", err)
	}
	return NewNATSPublisher(nc, subject), nc, nil
}

// PublishRecords sends one message per record and flushes. The transaction
// id goes in the Nats-Msg-Id header so JetStream streams drop replays.
func (p *NATSPublisher) PublishRecords(ctx context.Context, records []domain.TransactionRecord) error {
	for _, r := range records {
		data, err := json.Marshal(Event{
			Type:        EventTypeReconciled,
			PublishedAt: p.now().UTC(),
			Record:      r,
		})
		if err != nil {
			return fmt.Errorf("PublishRecords: marshal %s: %w", r.TransactionID, err)
		}

		msg := nats.NewMsg(p.subject)
		msg.Data = data
		msg.Header.Set(nats.MsgIdHdr, r.TransactionID)
		if err := p.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("PublishRecords: publish %s: %w", r.TransactionID, err)
		}
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("PublishRecords: flush: %w", err)
	}
	return nil
}
