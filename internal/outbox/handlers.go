package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"

	"cosmetica/internal/domain"
	applog "cosmetica/internal/log"
)

// LoggingHandler writes each event to the application log. Used when no
// broker is configured.
type LoggingHandler struct{}

func (LoggingHandler) HandleMessage(_ context.Context, msg *domain.OutboxMessage) error {
	var ev domain.OrderEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("decode outbox payload: %w", err)
	}
	applog.Info(nil, "outbox.event", map[string]any{
		"event":    msg.EventType,
		"event_id": ev.EventID,
		"order_id": msg.AggregateID,
	})
	return nil
}

// NewKafkaProducer builds a synchronous producer that waits for all replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 10
	cfg.Producer.Return.Successes = true
	cfg.Producer.Timeout = 5 * time.Second
	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

// KafkaHandler publishes the payload keyed by order id, so every event of
// one order lands on the same partition.
type KafkaHandler struct {
	Producer sarama.SyncProducer
	Topic    string
}

func (h *KafkaHandler) HandleMessage(_ context.Context, msg *domain.OutboxMessage) error {
	partition, offset, err := h.Producer.SendMessage(&sarama.ProducerMessage{
		Topic: h.Topic,
		Key:   sarama.StringEncoder(msg.AggregateID),
		Value: sarama.ByteEncoder(msg.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(msg.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", msg.EventType, err)
	}
	applog.Info(nil, "outbox.published", map[string]any{
		"topic": h.Topic, "partition": partition, "offset": offset, "order_id": msg.AggregateID,
	})
	return nil
}
