// Package events publishes order lifecycle events to Kafka when brokers
// are configured. With no brokers the publisher is a no-op.
package events

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/suz-ana-j/eCommerceApp-RestApi/models"
)

const defaultOrdersTopic = "orders.completed"

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisherFromEnv reads KAFKA_BROKERS (comma separated) and
// KAFKA_ORDERS_TOPIC.
func NewPublisherFromEnv() *Publisher {
	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}

	topic := os.Getenv("KAFKA_ORDERS_TOPIC")
	if topic == "" {
		topic = defaultOrdersTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool { return p != nil && p.writer != nil }

// OrderCompleted emits the order keyed by its reference.
func (p *Publisher) OrderCompleted(ctx context.Context, order models.Order) error {
	if !p.Enabled() {
		return nil
	}
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.Ref),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
