package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// StreamMaxLen caps each league stream; older entries are trimmed approximately
const StreamMaxLen = 1000

// StreamPublisher publishes schedule updates to Redis streams
type StreamPublisher struct {
	client *redis.Client
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{
		client: client,
	}
}

// StreamKey returns the league-specific stream name
func StreamKey(league string) string {
	return fmt.Sprintf("schedule.updates.%s", league)
}

// PublishSnapshot publishes a schedule update to the league stream
func (p *StreamPublisher) PublishSnapshot(ctx context.Context, snap models.ScheduleSnapshot) error {
	msg := ScheduleMessage{
		League:    snap.League,
		Date:      snap.Date,
		Games:     snap.Games,
		FetchedAt: snap.FetchedAt,
		BatchID:   uuid.New().String(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling schedule update: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(snap.League),
		MaxLen: StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":     string(data),
			"date":     snap.Date,
			"count":    len(snap.Games),
			"batch_id": msg.BatchID,
		},
	}).Err()
}

// Close is a no-op; the Redis client is owned by the caller
func (p *StreamPublisher) Close() error {
	return nil
}
