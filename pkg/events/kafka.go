package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type Config struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes domain events to a Kafka topic. A nil Producer, or one
// built without brokers, drops events.
type Producer struct {
	writer messageWriter
}

func NewProducer(cfg Config) *Producer {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Log.Info("Kafka not configured, domain events disabled")
		return &Producer{}
	}

	transport := &kafka.Transport{}
	if cfg.Username != "" {
		transport.SASL = plain.Mechanism{
			Username: cfg.Username,
			Password: cfg.Password,
		}
		transport.TLS = &tls.Config{}
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			Transport:    transport,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// newProducerWithWriter is used by tests
func newProducerWithWriter(w messageWriter) *Producer {
	return &Producer{writer: w}
}

// Publish writes event keyed by its subject so one profile's events keep their order
func (p *Producer) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.writer == nil {
		logger.Log.Debug("Kafka producer not ready, skip publish", "type", event.Type)
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Subject),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
