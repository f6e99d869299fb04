package hub

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/client"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// ErrBufferFull is returned when the hub cannot queue another update
var ErrBufferFull = errors.New("hub update buffer full")

const updateBufferSize = 64

// Hub fans freshly fetched boards out to websocket viewers and remembers the
// newest board per league and day for viewers that subscribe later
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*client.Client]struct{}

	boardsMu sync.RWMutex
	boards   map[string]models.ScheduleSnapshot // league:date

	updates    chan models.ScheduleSnapshot
	register   chan *client.Client
	unregister chan *client.Client
	done       chan struct{}

	logger zerolog.Logger
}

// Stats is a point-in-time view of the hub
type Stats struct {
	Clients int // connected viewers
	Boards  int // league/day boards available for replay
	Queued  int // updates waiting for the run loop
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client.Client]struct{}),
		boards:     make(map[string]models.ScheduleSnapshot),
		updates:    make(chan models.ScheduleSnapshot, updateBufferSize),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Run owns client membership and delivery until ctx is cancelled, then
// closes every client
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.addClient(c)

		case c := <-h.unregister:
			h.removeClient(c, "disconnected")

		case snap := <-h.updates:
			h.fanOut(snap)
		}
	}
}

// Register adds a client. After shutdown the client is closed instead.
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// Unregister removes a client. It never blocks once the hub has stopped.
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// PublishSnapshot records snap as the newest board for its league and day
// and queues it for connected viewers. It never blocks the fetch cycle; when
// the queue is full the board is still kept for replay.
func (h *Hub) PublishSnapshot(ctx context.Context, snap models.ScheduleSnapshot) error {
	key := snap.League + ":" + snap.Date

	h.boardsMu.Lock()
	if prev, ok := h.boards[key]; !ok || !snap.FetchedAt.Before(prev.FetchedAt) {
		h.boards[key] = snap
	}
	h.boardsMu.Unlock()

	select {
	case h.updates <- snap:
		return nil
	default:
		metrics.WSDropped.Inc()
		return ErrBufferFull
	}
}

// Latest returns the newest board for every league and day the filter
// selects, ordered by league then day
func (h *Hub) Latest(filter models.SubscriptionFilter) []models.ScheduleSnapshot {
	h.boardsMu.RLock()
	out := make([]models.ScheduleSnapshot, 0, len(h.boards))
	for _, snap := range h.boards {
		if filter.Matches(snap.League, snap.Date) {
			out = append(out, snap)
		}
	}
	h.boardsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].League != out[j].League {
			return out[i].League < out[j].League
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// GetClientCount returns the number of connected viewers
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Stats returns current hub sizes
func (h *Hub) Stats() Stats {
	h.boardsMu.RLock()
	boards := len(h.boards)
	h.boardsMu.RUnlock()

	return Stats{
		Clients: h.GetClientCount(),
		Boards:  boards,
		Queued:  len(h.updates),
	}
}

func (h *Hub) addClient(c *client.Client) {
	h.clientsMu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.clientsMu.Unlock()

	metrics.WSClients.Set(float64(n))
	h.logger.Info().Str("client_id", c.ID).Int("clients", n).Msg("viewer connected")
}

func (h *Hub) removeClient(c *client.Client, reason string) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.clientsMu.Unlock()

	if !ok {
		return
	}
	c.Close()
	metrics.WSClients.Set(float64(n))
	h.logger.Info().Str("client_id", c.ID).Str("reason", reason).Int("clients", n).Msg("viewer removed")
}

// fanOut delivers one board. Viewers whose buffer is full are dropped; they
// get the newest boards replayed when they reconnect and subscribe.
func (h *Hub) fanOut(snap models.ScheduleSnapshot) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	for _, c := range clients {
		ok, err := c.Deliver(snap)
		if err != nil {
			metrics.WSDropped.Inc()
			h.removeClient(c, "slow")
			continue
		}
		if ok {
			sent++
		}
	}

	h.logger.Debug().
		Str("league", snap.League).
		Str("date", snap.Date).
		Int("games", len(snap.Games)).
		Int("viewers", sent).
		Msg("board sent")
}

func (h *Hub) shutdown() {
	close(h.done)

	h.clientsMu.Lock()
	clients := h.clients
	h.clients = make(map[*client.Client]struct{})
	h.clientsMu.Unlock()

	h.logger.Info().Int("clients", len(clients)).Msg("shutting down hub")
	for c := range clients {
		c.Close()
	}
	metrics.WSClients.Set(0)
}
