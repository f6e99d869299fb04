package publisher

import (
	"context"
	"time"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// Publisher pushes fetched schedules to downstream consumers
type Publisher interface {
	PublishSnapshot(ctx context.Context, snap models.ScheduleSnapshot) error
	Close() error
}

// ScheduleMessage is the payload written by every publisher
type ScheduleMessage struct {
	League    string                 `json:"league"`
	Date      string                 `json:"date"`
	Games     []models.CanonicalGame `json:"games"`
	FetchedAt time.Time              `json:"fetched_at"`
	BatchID   string                 `json:"batch_id"`
}

// Noop discards every snapshot
type Noop struct{}

func (Noop) PublishSnapshot(context.Context, models.ScheduleSnapshot) error { return nil }
func (Noop) Close() error                                                   { return nil }
