package models

import (
	"sort"
	"time"
)

// Message types on the /ws connection
const (
	MessageTypeScheduleUpdate = "schedule_update" // server: one league's board for one day
	MessageTypeSubscribe      = "subscribe"       // client: follow leagues/dates, replays cached boards
	MessageTypeUnsubscribe    = "unsubscribe"     // client: stop receiving boards
	MessageTypeStatus         = "status"          // client asks, server answers with BoardStatus
	MessageTypeError          = "error"
)

// ClientMessage is a request from a board viewer. Leagues and Dates are only
// read for subscribe.
type ClientMessage struct {
	Type    string   `json:"type"`
	Leagues []string `json:"leagues,omitempty"`
	Dates   []string `json:"dates,omitempty"`
}

// ServerMessage is the envelope of everything the server pushes
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SubscriptionFilter selects boards by sport key and YYYY-MM-DD day. An
// empty list matches everything on that axis.
type SubscriptionFilter struct {
	Leagues []string `json:"leagues,omitempty"`
	Dates   []string `json:"dates,omitempty"`
}

// Matches reports whether the board for league on date passes the filter
func (f SubscriptionFilter) Matches(league, date string) bool {
	return matchesAny(f.Leagues, league) && matchesAny(f.Dates, date)
}

func matchesAny(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// DeliveredBoard is the newest board a client was sent for one league and day
type DeliveredBoard struct {
	League    string    `json:"league"`
	Date      string    `json:"date"`
	Games     int       `json:"games"`
	FetchedAt time.Time `json:"fetched_at"`
}

// BoardStatus answers a status request
type BoardStatus struct {
	ClientID     string             `json:"client_id"`
	Subscribed   bool               `json:"subscribed"`
	Subscription SubscriptionFilter `json:"subscription"`
	Delivered    []DeliveredBoard   `json:"delivered"`
}

// SortBoards orders boards by league, then day
func SortBoards(boards []DeliveredBoard) {
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].League != boards[j].League {
			return boards[i].League < boards[j].League
		}
		return boards[i].Date < boards[j].Date
	})
}

// ErrorMessage is the payload of an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
