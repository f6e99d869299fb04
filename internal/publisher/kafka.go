package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// KafkaPublisher publishes schedule updates to a Kafka topic, keyed by league
type KafkaPublisher struct {
	writer kafkaWriter
	logger zerolog.Logger
}

// kafkaWriter interface for Kafka writer abstraction
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaPublisher creates a new Kafka publisher
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // one partition per league keeps updates ordered
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Compression:  kafka.Snappy,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "kafka_publisher").Logger(),
	}
}

// PublishSnapshot publishes one schedule update
func (p *KafkaPublisher) PublishSnapshot(ctx context.Context, snap models.ScheduleSnapshot) error {
	msg := ScheduleMessage{
		League:    snap.League,
		Date:      snap.Date,
		Games:     snap.Games,
		FetchedAt: snap.FetchedAt,
		BatchID:   uuid.New().String(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(snap.League),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "batch_id", Value: []byte(msg.BatchID)},
			{Key: "date", Value: []byte(snap.Date)},
			{Key: "fetched_at", Value: []byte(snap.FetchedAt.UTC().Format(time.RFC3339))},
			{Key: "count", Value: []byte(strconv.Itoa(len(snap.Games)))},
		},
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to write to Kafka: %w", err)
	}

	p.logger.Debug().
		Str("league", snap.League).
		Str("date", snap.Date).
		Int("count", len(snap.Games)).
		Str("batch_id", msg.BatchID).
		Msg("published schedule update")

	return nil
}

// Close closes the Kafka writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
