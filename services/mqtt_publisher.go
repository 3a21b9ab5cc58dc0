package services

import (
	"context"
	"encoding/json"
	"time"

	"restroom-cleanliness-api/config"
	"restroom-cleanliness-api/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQuiesceMillis  = 250
)

// mqttClient is the subset of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes score events to an MQTT topic at QoS 0.
type MQTTPublisher struct {
	client  mqttClient
	topic   string
	timeout time.Duration
}

func newMQTTPublisher(client mqttClient, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, timeout: mqttPublishTimeout}
}

func NewMQTTPublisher(cfg config.MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.URL)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", cfg.URL), zap.String("topic", cfg.Topic))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, errors.Errorf("mqtt connect to %s timed out", cfg.URL)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrap(err, "mqtt connect failed")
	}

	return newMQTTPublisher(client, cfg.Topic), nil
}

func (p *MQTTPublisher) Name() string {
	return "mqtt"
}

func (p *MQTTPublisher) Publish(ctx context.Context, event models.ScoreEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal score event")
	}

	token := p.client.Publish(p.topic, 0, false, data)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return errors.Errorf("mqtt publish to %s timed out", p.topic)
	}
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(mqttQuiesceMillis)
	return nil
}
