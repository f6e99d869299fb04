package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// mockKafkaWriter is a mock implementation of kafka.Writer for testing
type mockKafkaWriter struct {
	messages    []kafka.Message
	shouldError bool
	closed      bool
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.shouldError {
		return assert.AnError
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed = true
	return nil
}

func testSnapshot() models.ScheduleSnapshot {
	return models.ScheduleSnapshot{
		League:      "icehockey_nhl",
		DisplayName: "NHL",
		Date:        "2026-10-16",
		Games: []models.CanonicalGame{
			{ID: "g1", AwayAbbr: "BOS", HomeAbbr: "NYR", Status: models.StatusScheduled},
		},
		FetchedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_PublishSnapshot(t *testing.T) {
	writer := &mockKafkaWriter{}
	p := &KafkaPublisher{writer: writer, logger: zerolog.Nop()}

	require.NoError(t, p.PublishSnapshot(context.Background(), testSnapshot()))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "icehockey_nhl", string(msg.Key))

	var decoded ScheduleMessage
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "2026-10-16", decoded.Date)
	require.Len(t, decoded.Games, 1)
	assert.Equal(t, "g1", decoded.Games[0].ID)
	assert.NotEmpty(t, decoded.BatchID)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, decoded.BatchID, headers["batch_id"])
	assert.Equal(t, "1", headers["count"])
	assert.Equal(t, "2026-10-16T12:00:00Z", headers["fetched_at"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &mockKafkaWriter{shouldError: true}, logger: zerolog.Nop()}

	err := p.PublishSnapshot(context.Background(), testSnapshot())

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockKafkaWriter{}
	p := &KafkaPublisher{writer: writer, logger: zerolog.Nop()}

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "schedule.updates", zerolog.Nop())

	assert.NotNil(t, p.writer)
}

func TestStreamPublisher_PublishSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	p := NewStreamPublisher(client)
	ctx := context.Background()

	require.NoError(t, p.PublishSnapshot(ctx, testSnapshot()))

	entries, err := client.XRange(ctx, StreamKey("icehockey_nhl"), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, "2026-10-16", values["date"])
	assert.Equal(t, "1", values["count"])

	var decoded ScheduleMessage
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &decoded))
	assert.Equal(t, "icehockey_nhl", decoded.League)
	assert.Equal(t, values["batch_id"], decoded.BatchID)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}

	assert.NoError(t, p.PublishSnapshot(context.Background(), testSnapshot()))
	assert.NoError(t, p.Close())
}
