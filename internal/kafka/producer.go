package kafka

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/flappyjet-backend/internal/config"
	"github.com/flappyjet-backend/internal/domain"
)

// Producer publishes analytics events to Kafka, keeping the database
// write off the request path.
type Producer struct {
	topic    string
	producer sarama.AsyncProducer
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewProducer creates a new analytics event producer
func NewProducer(cfg *config.KafkaConfig, logger *slog.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Flush.Messages = 100
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating producer: %w", err)
	}

	p := &Producer{
		topic:    cfg.Topic,
		producer: producer,
		logger:   logger,
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for err := range producer.Errors() {
			p.logger.Error("failed to deliver analytics event", "error", err)
		}
	}()

	return p, nil
}

// Publish enqueues an analytics event, keyed by player id so one
// player's events stay ordered within a partition.
func (p *Producer) Publish(event domain.AnalyticsEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling analytics event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(data),
	}
	if event.PlayerID != "" {
		msg.Key = sarama.StringEncoder(event.PlayerID)
	}

	p.producer.Input() <- msg
	return nil
}

// Close flushes pending events and shuts the producer down
func (p *Producer) Close() error {
	p.producer.AsyncClose()
	p.wg.Wait()
	return nil
}
