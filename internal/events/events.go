// Package events publishes domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stwalsh4118/homefinder/api/internal/config"
	"github.com/stwalsh4118/homefinder/api/internal/logger"
)

// Subjects published by the API.
const (
	PropertyCreated = "property.created"
	PropertyUpdated = "property.updated"
	PropertyDeleted = "property.deleted"
	FavoriteCreated = "favorite.created"
	ReviewCreated   = "review.created"
	UserRegistered  = "user.registered"
)

const (
	connectTimeout = 5 * time.Second
	maxReconnects  = 5
	reconnectWait  = 2 * time.Second
)

// Publisher sends a payload on a subject. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// Envelope wraps every payload on the wire.
type Envelope struct {
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Encode marshals payload inside an Envelope stamped with at.
func Encode(subject string, payload any, at time.Time) ([]byte, error) {
	data, err := json.Marshal(Envelope{Subject: subject, OccurredAt: at.UTC(), Data: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", subject, err)
	}
	return data, nil
}

// NATSPublisher publishes JSON envelopes over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
	log  *logger.Logger
}

// NewNATSPublisher connects to cfg.URL with bounded reconnects.
func NewNATSPublisher(cfg config.NATSConfig, log *logger.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("homefinder-api"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", map[string]interface{}{"error": err.Error()})
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", map[string]interface{}{"url": nc.ConnectedUrl()})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

// Publish encodes payload and hands it to the connection's outbound buffer.
func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := Encode(subject, payload, time.Now())
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("NATS drain failed", map[string]interface{}{"error": err.Error()})
		p.conn.Close()
	}
}

// NopPublisher drops every event. Used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                      {}
