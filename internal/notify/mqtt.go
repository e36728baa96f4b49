package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Message is one outgoing MQTT message.
type Message struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// Publisher sends messages to a broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Options configures the broker connection.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// MQTTPublisher publishes through a paho client.
type MQTTPublisher struct {
	client mqtt.Client
	logger *slog.Logger
}

// BrokerURL turns a bare host into tcp://host:1883. Values with a scheme
// are used as given.
func BrokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	if strings.Contains(broker, ":") {
		return "tcp://" + broker
	}
	return fmt.Sprintf("tcp://%s:1883", broker)
}

// Connect dials the broker and waits up to timeout for the first
// connection. The client reconnects on its own afterwards.
func Connect(o Options, timeout time.Duration, logger *slog.Logger) (*MQTTPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if o.ClientID == "" {
		o.ClientID = "energy_report"
	}
	url := BrokerURL(o.Broker)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(o.ClientID)
	opts.SetUsername(o.Username)
	opts.SetPassword(o.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "err", err)
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("connected to mqtt broker", "broker", url)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connecting to mqtt broker %s: timed out after %s", url, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", url, err)
	}
	return &MQTTPublisher{client: client, logger: logger}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, msg Message) error {
	token := p.client.Publish(msg.Topic, msg.QoS, msg.Retain, msg.Payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", msg.Topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Info("disconnected from mqtt broker")
	}
}
