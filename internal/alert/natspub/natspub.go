// Package natspub delivers findings to a NATS subject, one message per
// finding, for downstream correlation.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/OskariKosonen/hunajapannu/internal/model"
)

// Sink publishes findings over an existing NATS connection. The connection
// is owned by the caller; Close only flushes pending publishes.
type Sink struct {
	conn    *nats.Conn
	subject string
}

// New creates a NATS sink publishing to the given subject.
func New(conn *nats.Conn, subject string) *Sink {
	return &Sink{conn: conn, subject: subject}
}

// Connect dials a NATS server and returns a sink over the new connection.
// The connection retries forever with the client's default backoff.
func Connect(url, subject string) (*Sink, *nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("hunajapannu"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("natspub: connect %s: %w", url, err)
	}
	return New(conn, subject), conn, nil
}

// Deliver publishes one finding. Each message carries routing headers so
// consumers can filter without decoding the body.
func (s *Sink) Deliver(_ context.Context, finding model.Finding) error {
	if s.conn == nil || !s.conn.IsConnected() {
		return fmt.Errorf("natspub: connection not available")
	}

	data, err := json.Marshal(finding)
	if err != nil {
		return fmt.Errorf("natspub: marshal: %w", err)
	}

	headers := nats.Header{}
	headers.Set("x-finding-id", uuid.NewString())
	headers.Set("x-detector", finding.Detector)
	headers.Set("x-src-ip", finding.IP)
	headers.Set("x-timestamp", finding.Timestamp.Format(time.RFC3339))

	msg := &nats.Msg{Subject: s.subject, Data: data, Header: headers}
	if err := s.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("natspub: publish: %w", err)
	}
	return nil
}

// Close flushes buffered publishes to the server.
func (s *Sink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Flush()
}
