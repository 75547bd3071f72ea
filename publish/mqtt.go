package publish

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/uyouii/eco-indicator/config"
	"github.com/uyouii/eco-indicator/stats"
	"github.com/uyouii/eco-indicator/utils"
	"go.uber.org/zap"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Message is the payload published after each display update.
type Message struct {
	Mode    string         `json:"mode"`
	Region  string         `json:"region"`
	Summary *stats.Summary `json:"summary"`
	Sent    time.Time      `json:"sent"`
}

type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher wraps an already configured client, see Connect for the usual way in.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Connect dials the broker named in cfg.
func Connect(ctx context.Context, cfg *config.MQTT) (*Publisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "eco-indicator"
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.Errorf("MQTT connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrapf(err, "MQTT connect to %s", cfg.Broker)
	}
	utils.GetLogger(ctx).Info("connected to MQTT broker", zap.String("broker", cfg.Broker))
	return NewPublisher(client, cfg.Topic), nil
}

// Publish sends the summary with QoS 0, not retained.
func (p *Publisher) Publish(ctx context.Context, msg *Message) error {
	logger := utils.GetLogger(ctx)

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal summary")
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("MQTT publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		logger.Error("MQTT publish failed", zap.Error(err), zap.String("topic", p.topic))
		return errors.Wrap(err, "MQTT publish")
	}
	logger.Info("published summary", zap.String("topic", p.topic), zap.Int("bytes", len(payload)))
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
