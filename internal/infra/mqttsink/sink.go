// Package mqttsink publishes every window outcome as JSON to an MQTT broker.
package mqttsink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	quiesceMillis  = 250
)

// publisher is the part of mqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type Sink struct {
	client publisher
	topic  string
	qos    byte
	log    *slog.Logger
}

var _ ports.ResultSink = (*Sink)(nil)

// Dial connects to cfg.Broker. The {device} placeholder in cfg.Topic is replaced
// with a topic-safe form of device.
func Dial(cfg domain.MQTTConfig, device string, log *slog.Logger) (*Sink, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, &domain.OpError{Op: "mqtt.dial", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("publish.mqtt.broker is empty: %w", domain.ErrInvalidConfig)}
	}
	if err := checkQoS(cfg.QoS); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("mqtt.connection.lost", "broker", cfg.Broker, "err", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, &domain.OpError{Op: "mqtt.dial", Kind: domain.KindConnection, Path: cfg.Broker, Err: fmt.Errorf("%w: connect timed out", domain.ErrConnection)}
	}
	if err := token.Error(); err != nil {
		return nil, &domain.OpError{Op: "mqtt.dial", Kind: domain.KindConnection, Path: cfg.Broker, Err: fmt.Errorf("%w: %v", domain.ErrConnection, err)}
	}
	log.Info("mqtt.connected", "broker", cfg.Broker, "client_id", cfg.ClientID)

	sink, err := newSink(client, cfg, device, log)
	if err != nil {
		client.Disconnect(quiesceMillis)
		return nil, err
	}
	return sink, nil
}

func checkQoS(qos int) error {
	if qos < 0 || qos > 2 {
		return &domain.OpError{Op: "mqtt.dial", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("publish.mqtt.qos must be 0, 1 or 2: %w", domain.ErrInvalidConfig)}
	}
	return nil
}

func newSink(client publisher, cfg domain.MQTTConfig, device string, log *slog.Logger) (*Sink, error) {
	if err := checkQoS(cfg.QoS); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sink{
		client: client,
		topic:  Topic(cfg.Topic, device),
		qos:    byte(cfg.QoS),
		log:    log,
	}, nil
}

// Topic expands {device} in pattern. Characters MQTT treats specially are replaced.
func Topic(pattern, device string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = "ecgwatch/{device}/diagnosis"
	}
	safe := strings.NewReplacer("/", "_", "\\", "_", "+", "_", "#", "_", " ", "_").Replace(strings.TrimLeft(device, "/"))
	if safe == "" {
		safe = "unknown"
	}
	return strings.ReplaceAll(pattern, "{device}", safe)
}

// Publish sends out as JSON and waits for the broker acknowledgement (QoS > 0)
// or until ctx is done.
func (s *Sink) Publish(ctx context.Context, out domain.WindowOutcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return &domain.OpError{Op: "mqtt.publish", Kind: domain.KindExecution, Path: s.topic, Err: err}
	}

	token := s.client.Publish(s.topic, s.qos, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return &domain.OpError{Op: "mqtt.publish", Kind: domain.KindExecution, Path: s.topic, Err: fmt.Errorf("publish timed out after %s", publishTimeout)}
	}
	if err := token.Error(); err != nil {
		return &domain.OpError{Op: "mqtt.publish", Kind: domain.KindExecution, Path: s.topic, Err: err}
	}
	s.log.Debug("mqtt.published", "topic", s.topic, "window_id", out.WindowID)
	return nil
}

func (s *Sink) Close() error {
	s.client.Disconnect(quiesceMillis)
	return nil
}
