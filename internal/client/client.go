package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxRequestSize = 1024

	// boards are large and arrive at most once per fetch cycle per league
	sendBufferSize = 32
)

// ErrSlowClient is returned by Deliver when the send buffer is full
var ErrSlowClient = errors.New("client send buffer full")

// Hub is the part of the broadcast hub a client talks back to
type Hub interface {
	Unregister(c *Client)
	Latest(filter models.SubscriptionFilter) []models.ScheduleSnapshot
}

// Client is one board viewer on /ws. It is sent each league/day board it
// follows at most once per fetch.
type Client struct {
	ID     string
	Send   chan models.ServerMessage // drained by WritePump, closed through Close
	conn   *websocket.Conn
	hub    Hub
	logger zerolog.Logger

	mu         sync.Mutex
	closed     bool
	subscribed bool
	filter     models.SubscriptionFilter
	delivered  map[string]models.DeliveredBoard // league:date
}

// NewClient creates a client following every league and day until it
// subscribes to something narrower
func NewClient(id string, conn *websocket.Conn, hub Hub, logger zerolog.Logger) *Client {
	return &Client{
		ID:         id,
		Send:       make(chan models.ServerMessage, sendBufferSize),
		conn:       conn,
		hub:        hub,
		logger:     logger.With().Str("client_id", id).Logger(),
		subscribed: true,
		delivered:  make(map[string]models.DeliveredBoard),
	}
}

// Deliver queues snap when the client follows its league and day and has not
// yet been sent this fetch or a newer one. It reports whether a message was
// queued.
func (c *Client) Deliver(snap models.ScheduleSnapshot) (bool, error) {
	key := snap.League + ":" + snap.Date

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.subscribed || !c.filter.Matches(snap.League, snap.Date) {
		return false, nil
	}
	if prev, ok := c.delivered[key]; ok && !snap.FetchedAt.After(prev.FetchedAt) {
		return false, nil
	}

	msg := models.ServerMessage{
		Type:      models.MessageTypeScheduleUpdate,
		Payload:   snap,
		Timestamp: time.Now(),
	}
	select {
	case c.Send <- msg:
	default:
		return false, ErrSlowClient
	}

	c.delivered[key] = models.DeliveredBoard{
		League:    snap.League,
		Date:      snap.Date,
		Games:     len(snap.Games),
		FetchedAt: snap.FetchedAt,
	}
	return true, nil
}

// Subscribe replaces what the client follows
func (c *Client) Subscribe(filter models.SubscriptionFilter) {
	c.mu.Lock()
	c.subscribed = true
	c.filter = filter
	c.mu.Unlock()
}

// Close stops delivery and closes Send. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Status reports the subscription and the newest board sent per league/day
func (c *Client) Status() models.BoardStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	boards := make([]models.DeliveredBoard, 0, len(c.delivered))
	for _, b := range c.delivered {
		boards = append(boards, b)
	}
	models.SortBoards(boards)

	return models.BoardStatus{
		ClientID:     c.ID,
		Subscribed:   c.subscribed,
		Subscription: c.filter,
		Delivered:    boards,
	}
}

// ReadPump serves client requests until the connection or ctx ends, then
// unregisters the client
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	c.conn.SetReadLimit(maxRequestSize)
	extend("")
	c.conn.SetPongHandler(extend)

	for ctx.Err() == nil {
		var msg models.ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("connection dropped")
			}
			return
		}
		c.handle(msg)
	}
}

// WritePump writes queued boards and keepalive pings until Send is closed
// or ctx ends
func (c *Client) WritePump(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.writeClose(websocket.CloseGoingAway, "server shutting down")
			return

		case msg, ok := <-c.Send:
			if !ok {
				c.writeClose(websocket.CloseNormalClosure, "")
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug().Err(err).Str("type", msg.Type).Msg("write failed")
				return
			}

		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeClose(code int, reason string) {
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}

func (c *Client) handle(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeSubscribe:
		c.handleSubscribe(msg)
	case models.MessageTypeUnsubscribe:
		c.mu.Lock()
		c.subscribed = false
		c.mu.Unlock()
	case models.MessageTypeStatus:
		c.reply(models.MessageTypeStatus, c.Status())
	default:
		c.replyError("unknown_message_type", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// handleSubscribe applies the new filter and replays the cached boards it
// selects, so a viewer does not wait for the next fetch cycle
func (c *Client) handleSubscribe(msg models.ClientMessage) {
	for _, d := range msg.Dates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			c.replyError("invalid_filter", fmt.Sprintf("date %q is not YYYY-MM-DD", d))
			return
		}
	}

	filter := models.SubscriptionFilter{Leagues: msg.Leagues, Dates: msg.Dates}
	c.Subscribe(filter)

	replayed := 0
	for _, snap := range c.hub.Latest(filter) {
		sent, err := c.Deliver(snap)
		if err != nil {
			c.logger.Warn().Err(err).Str("league", snap.League).Str("date", snap.Date).Msg("replay stopped")
			break
		}
		if sent {
			replayed++
		}
	}

	c.logger.Debug().
		Strs("leagues", filter.Leagues).
		Strs("dates", filter.Dates).
		Int("replayed", replayed).
		Msg("subscribed")
}

func (c *Client) reply(msgType string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- models.ServerMessage{Type: msgType, Payload: payload, Timestamp: time.Now()}:
	default:
	}
}

func (c *Client) replyError(code, message string) {
	c.reply(models.MessageTypeError, models.ErrorMessage{Code: code, Message: message})
}
