package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/yourorg/market-gateway/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the subset of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles producing messages to Kafka topics
type Producer struct {
	writers      map[string]messageWriter
	brokers      []string
	clientID     string
	defaultTopic string
	newWriter    func(topic string) messageWriter
	logger       *zap.Logger
	mu           sync.Mutex
}

// Message represents a Kafka message to be sent
type Message struct {
	Key     string
	Value   interface{}
	Headers []kafka.Header
}

// NewProducer creates a new Kafka producer. Fallback events go to defaultTopic.
func NewProducer(brokers []string, clientID, defaultTopic string, logger *zap.Logger) *Producer {
	p := &Producer{
		writers:      make(map[string]messageWriter),
		brokers:      brokers,
		clientID:     clientID,
		defaultTopic: defaultTopic,
		logger:       logger,
	}
	p.newWriter = p.kafkaWriter
	return p
}

// kafkaWriter builds an async writer so publishing never delays a response
func (p *Producer) kafkaWriter(topic string) messageWriter {
	return &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Error("Failed to deliver messages",
					zap.String("topic", topic),
					zap.Int("count", len(messages)),
					zap.Error(err))
			}
		},
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}
}

// getWriter returns a Kafka writer for the specified topic
func (p *Producer) getWriter(topic string) messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := p.newWriter(topic)
	p.writers[topic] = writer
	return writer
}

// Publish sends a message to a Kafka topic
func (p *Producer) Publish(ctx context.Context, topic string, msg Message) error {
	// Get or create Kafka writer for the topic
	writer := p.getWriter(topic)

	// Marshal the message value to JSON
	jsonValue, err := json.Marshal(msg.Value)
	if err != nil {
		p.logger.Error("Failed to marshal message",
			zap.String("topic", topic),
			zap.Error(err))
		return err
	}

	kafkaMsg := kafka.Message{
		Key:     []byte(msg.Key),
		Value:   jsonValue,
		Headers: msg.Headers,
		Time:    time.Now(),
	}

	if err := writer.WriteMessages(ctx, kafkaMsg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", msg.Key),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Message published",
		zap.String("topic", topic),
		zap.String("key", msg.Key))

	return nil
}

// PublishFallback records that a synthetic response was served. Events are
// keyed by symbol so one symbol's events stay ordered.
func (p *Producer) PublishFallback(ctx context.Context, event model.FallbackEvent) error {
	key := event.Symbol
	if key == "" {
		key = event.Endpoint
	}

	return p.Publish(ctx, p.defaultTopic, Message{
		Key:   key,
		Value: event,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("fallback")},
			{Key: "endpoint", Value: []byte(event.Endpoint)},
		},
	})
}

// Close closes all Kafka writers, flushing pending async messages
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.Error("Failed to close Kafka writer",
				zap.String("topic", topic),
				zap.Error(err))
		}
	}
	return nil
}
