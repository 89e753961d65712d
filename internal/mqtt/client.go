// Package mqtt implements the publisher's broker over Eclipse Paho.
// Every Connect opens a fresh clean session; the caller closes it at the end
// of the cycle.
package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/larrywright/pi-homeassistant-reporter/internal/config"
	"github.com/larrywright/pi-homeassistant-reporter/internal/publisher"
)

const (
	// keepAlive matches the interval the reporter has always connected with.
	keepAlive = 60 * time.Second

	// disconnectQuiesce is how long Disconnect waits for in-flight work, in ms.
	disconnectQuiesce = 250

	// qos 0: each cycle republishes everything anyway.
	qos = 0
)

// Broker connects to the configured MQTT broker.
type Broker struct {
	cfg      config.MQTTConfig
	clientID string
	logger   *zap.Logger
}

// NewBroker creates a broker for cfg. An empty cfg.ClientID defaults to
// "pi-monitor-<device>".
func NewBroker(cfg config.MQTTConfig, device string, logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "pi-monitor-" + device
	}
	return &Broker{
		cfg:      cfg,
		clientID: clientID,
		logger:   logger,
	}
}

// clientOptions builds the Paho options for one session.
func (b *Broker) clientOptions() *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(b.cfg.Address()).
		SetClientID(b.clientID).
		SetKeepAlive(keepAlive).
		SetConnectTimeout(b.cfg.Timeout.Duration).
		SetWriteTimeout(b.cfg.Timeout.Duration).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false)
	if b.cfg.HasCredentials() {
		opts.SetUsername(b.cfg.Username)
		opts.SetPassword(b.cfg.Password)
	}
	return opts
}

// Connect opens a session. On failure the client is torn down before
// returning.
func (b *Broker) Connect(ctx context.Context) (publisher.Session, error) {
	client := paho.NewClient(b.clientOptions())

	b.logger.Debug("Connecting to MQTT broker",
		zap.String("broker", b.cfg.Address()),
		zap.String("client_id", b.clientID))

	if err := wait(ctx, client.Connect(), b.cfg.Timeout.Duration); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("%s: %w", b.cfg.Address(), err)
	}

	return &session{
		client:  client,
		timeout: b.cfg.Timeout.Duration,
		logger:  b.logger,
	}, nil
}

type session struct {
	client  paho.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Publish sends one message and waits for the client to hand it off.
func (s *session) Publish(ctx context.Context, topic string, payload []byte, retain bool) error {
	return wait(ctx, s.client.Publish(topic, qos, retain, payload), s.timeout)
}

// Close disconnects the client.
func (s *session) Close() {
	s.client.Disconnect(disconnectQuiesce)
	s.logger.Debug("Disconnected from MQTT broker")
}

// wait blocks until the token completes, the context ends or timeout elapses.
func wait(ctx context.Context, token paho.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	}
}
