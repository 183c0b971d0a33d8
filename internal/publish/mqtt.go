package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// message in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTTConfig configures the MQTT sink.
type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
	Timeout  time.Duration
}

// DefaultMQTTConfig returns settings for a local broker.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:  "tcp://localhost:1883",
		Topic:   "mudra",
		Timeout: 2 * time.Second,
	}
}

// Validate checks that the broker and topic are usable.
func (c MQTTConfig) Validate() error {
	if c.Broker == "" {
		return errors.New("mqtt broker is required")
	}
	if c.Topic == "" || strings.ContainsAny(c.Topic, "+#") {
		return fmt.Errorf("invalid mqtt topic %q", c.Topic)
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2, got %d", c.QoS)
	}
	return nil
}

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes JSON messages to <topic>/<kind>.
type MQTTSink struct {
	config MQTTConfig
	client publisher
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(config MQTTConfig) (*MQTTSink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.ClientID == "" {
		config.ClientID = "mudra-" + uuid.New().String()
	}

	log.Printf("connecting to mqtt %s as %s", config.Broker, config.ClientID)
	opts := mqtt.NewClientOptions().AddBroker(config.Broker).SetClientID(config.ClientID)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", config.Broker, token.Error())
	}
	return newMQTTSink(config, client), nil
}

func newMQTTSink(config MQTTConfig, client publisher) *MQTTSink {
	if config.Timeout <= 0 {
		config.Timeout = DefaultMQTTConfig().Timeout
	}
	return &MQTTSink{config: config, client: client}
}

// Topic returns the topic messages of kind are published to.
func (s *MQTTSink) Topic(kind string) string {
	return strings.TrimSuffix(s.config.Topic, "/") + "/" + kind
}

// Publish encodes v as JSON and waits for the broker.
func (s *MQTTSink) Publish(kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	topic := s.Topic(kind)
	token := s.client.Publish(topic, s.config.QoS, false, payload)
	if !token.WaitTimeout(s.config.Timeout) {
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
