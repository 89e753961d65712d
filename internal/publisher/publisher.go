// Package publisher republishes a metric snapshot to an MQTT broker using
// the Home Assistant discovery convention: one retained state message and
// one retained discovery config per metric, then an availability flag.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/larrywright/pi-homeassistant-reporter/internal/models"
)

// availabilityPayload is published after every successful cycle.
const availabilityPayload = "online"

// Broker opens sessions with the message broker.
type Broker interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is one open broker connection.
type Session interface {
	Publish(ctx context.Context, topic string, payload []byte, retain bool) error
	Close()
}

// Report summarizes one successful publish cycle.
type Report struct {
	Device            string
	StateMessages     int
	DiscoveryMessages int
	Availability      bool
}

// Messages returns the total number of messages published.
func (r Report) Messages() int {
	n := r.StateMessages + r.DiscoveryMessages
	if r.Availability {
		n++
	}
	return n
}

// PublishError reports a failed connect or publish. It aborts the cycle.
type PublishError struct {
	// Topic is empty when the connection itself failed.
	Topic string
	Err   error
}

func (e *PublishError) Error() string {
	if e.Topic == "" {
		return fmt.Sprintf("connect to broker: %v", e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.Topic, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Publisher maps snapshots to state and discovery messages.
type Publisher struct {
	broker Broker
	prefix string
	logger *zap.Logger
}

// New creates a Publisher that announces sensors under the discovery prefix.
func New(broker Broker, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		broker: broker,
		prefix: prefix,
		logger: logger,
	}
}

// Publish sends every metric in snap for device. The first connect or
// publish error aborts the rest of the cycle; the session is always closed.
func (p *Publisher) Publish(ctx context.Context, snap models.Snapshot, device string) (Report, error) {
	report := Report{Device: device}

	session, err := p.broker.Connect(ctx)
	if err != nil {
		return report, &PublishError{Err: err}
	}
	defer session.Close()

	for _, key := range snap.Keys() {
		value := snap[key]

		stateTopic := StateTopic(device, key)
		if err := session.Publish(ctx, stateTopic, []byte(value.String()), true); err != nil {
			return report, &PublishError{Topic: stateTopic, Err: err}
		}
		report.StateMessages++

		payload, err := json.Marshal(NewDescriptor(device, key))
		if err != nil {
			return report, fmt.Errorf("marshal descriptor for %s: %w", key, err)
		}
		discoveryTopic := DiscoveryTopic(p.prefix, device, key)
		if err := session.Publish(ctx, discoveryTopic, payload, true); err != nil {
			return report, &PublishError{Topic: discoveryTopic, Err: err}
		}
		report.DiscoveryMessages++

		p.logger.Debug("Published metric",
			zap.String("key", string(key)),
			zap.String("value", value.String()))
	}

	availabilityTopic := AvailabilityTopic(device)
	if err := session.Publish(ctx, availabilityTopic, []byte(availabilityPayload), true); err != nil {
		return report, &PublishError{Topic: availabilityTopic, Err: err}
	}
	report.Availability = true

	p.logger.Info("Published metrics to MQTT",
		zap.String("device", device),
		zap.Int("metrics", report.StateMessages))
	return report, nil
}
