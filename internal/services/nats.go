package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher sends document lifecycle events to NATS. A nil Publisher is a
// valid no-op, used when no NATS URL is configured.
type Publisher struct {
	nc *nats.Conn
}

// ConnectNATS initializes the NATS connection.
func ConnectNATS(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("document-service"),
		nats.MaxReconnects(-1), // retry forever
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[NATS] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Println("Connected to NATS at", url)
	return &Publisher{nc: nc}, nil
}

// Publish marshals the event as JSON and sends it. Failures are logged,
// not returned: event delivery is best effort and never blocks a request.
func (p *Publisher) Publish(subject string, event interface{}) {
	if p == nil || p.nc == nil || !p.nc.IsConnected() {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("warning: failed to marshal %s event: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Printf("warning: failed to publish %s event: %v", subject, err)
	}
}

// Close closes the connection.
func (p *Publisher) Close() {
	if p != nil && p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
