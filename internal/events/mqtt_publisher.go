package events

import (
	"context"
	"fmt"
	"strings"

	"seyyar/internal/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Transport is the part of pkg/mqtt.Client the publisher needs.
type Transport interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher publishes each event as JSON on <prefix>/<event type>.
type MQTTPublisher struct {
	transport Transport
	prefix    string
	qos       byte
}

func NewMQTTPublisher(transport Transport, topicPrefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		transport: transport,
		prefix:    strings.TrimRight(topicPrefix, "/"),
		qos:       qos,
	}
}

func (p *MQTTPublisher) Topic(t Type) string {
	return p.prefix + "/" + string(t)
}

func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.transport.Publish(ctx, p.Topic(event.Type), p.qos, false, payload); err != nil {
		return err
	}

	logger.Debug("Event published",
		zap.String("topic", p.Topic(event.Type)),
		zap.String("event_id", event.ID.String()),
	)
	return nil
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	logger.Info("Event recorded",
		zap.String("event", string(event.Type)),
		zap.String("event_id", event.ID.String()),
		zap.String("car_id", event.CarID.String()),
		zap.String("actor_id", event.ActorID.String()),
	)
	return nil
}
