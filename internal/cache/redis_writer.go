package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// TTL constants
const (
	ScheduleTTL   = 24 * time.Hour
	ContextTTL    = 24 * time.Hour
	LiveStatusTTL = 2 * time.Hour
	FinalTTL      = 6 * time.Hour
)

// RedisWriter mirrors fetched schedules into Redis for other services.
// The schedule service never reads these keys back.
type RedisWriter struct {
	client *redis.Client
}

// NewRedisWriter creates a new Redis writer
func NewRedisWriter(client *redis.Client) *RedisWriter {
	return &RedisWriter{
		client: client,
	}
}

func scheduleKey(league, date string) string {
	return fmt.Sprintf("schedule:%s:%s", league, date)
}

func gameIDsKey(league, date string) string {
	return fmt.Sprintf("schedule:%s:%s:ids", league, date)
}

func contextKey(league string) string {
	return fmt.Sprintf("schedule:%s:context", league)
}

func statusKey(gameID string) string {
	return fmt.Sprintf("game:%s:status", gameID)
}

// PublishSnapshot writes the schedule, its game ID list, the league context
// and each game's status in one pipeline
func (w *RedisWriter) PublishSnapshot(ctx context.Context, snap models.ScheduleSnapshot) error {
	data, err := json.Marshal(snap.Games)
	if err != nil {
		return fmt.Errorf("marshaling schedule: %w", err)
	}

	ids := make([]interface{}, len(snap.Games))
	for i, g := range snap.Games {
		ids[i] = g.ID
	}

	idsKey := gameIDsKey(snap.League, snap.Date)

	pipe := w.client.TxPipeline()
	pipe.Set(ctx, scheduleKey(snap.League, snap.Date), data, ScheduleTTL)
	pipe.Del(ctx, idsKey) // Clear old list
	if len(ids) > 0 {
		pipe.RPush(ctx, idsKey, ids...)
		pipe.Expire(ctx, idsKey, ScheduleTTL)
	}
	pipe.Set(ctx, contextKey(snap.League), snap.Context, ContextTTL)
	for _, g := range snap.Games {
		pipe.Set(ctx, statusKey(g.ID), string(g.Status), ttlForStatus(g.Status))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing schedule snapshot: %w", err)
	}
	return nil
}

// ttlForStatus keeps settled games around longer than ones still moving
func ttlForStatus(status models.GameStatus) time.Duration {
	switch status {
	case models.StatusFinal, models.StatusPostponed, models.StatusCanceled:
		return FinalTTL
	default:
		return LiveStatusTTL
	}
}
