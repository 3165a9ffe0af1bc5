package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"emwin_parser/internal/storage"
)

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL string `yaml:"url"`
	// Prefix is the first subject token. Defaults to "emwin".
	Prefix string `yaml:"prefix"`
}

// NATS publishes each record on a subject derived from its type and origin.
type NATS struct {
	conn   *nats.Conn
	prefix string
}

// NewNATS connects to the configured server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("emwin_parser"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "emwin"
	}
	return &NATS{conn: conn, prefix: prefix}, nil
}

func (n *NATS) StoreReport(_ context.Context, r storage.Record) error {
	data, err := encodeReport(r)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(ReportSubject(n.prefix, r))
	msg.Data = data
	msg.Header.Set("Bulletin-Id", r.BulletinID.String())
	msg.Header.Set("Report-Type", r.ReportType)
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

func (n *NATS) StoreImage(_ context.Context, r storage.ImageRecord) error {
	data, err := encodeImage(r)
	if err != nil {
		return err
	}
	subject := ImageSubject(n.prefix, r)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	return n.conn.Drain()
}
