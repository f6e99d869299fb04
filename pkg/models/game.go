package models

import "time"

// GameStatus represents the current state of a game
type GameStatus string

const (
	StatusScheduled GameStatus = "Scheduled"
	StatusLive      GameStatus = "Live"
	StatusFinal     GameStatus = "Final"
	StatusPostponed GameStatus = "Postponed"
	StatusCanceled  GameStatus = "Canceled"
)

// GenericBook is the quote key for the first bookmaker in feed order.
// The dashboard falls back to it when the selected book has no data.
const GenericBook = "generic"

// NoLine marks a price or line that is not available
const NoLine = "-"

// CanonicalGame is the merged view of one contest across the odds, scores and
// standings feeds. Built fresh every fetch cycle and never mutated afterwards.
type CanonicalGame struct {
	ID           string                 `json:"id"`
	League       string                 `json:"league"`      // "NHL"
	AwayTeam     string                 `json:"away_team"`   // Full team name
	HomeTeam     string                 `json:"home_team"`   // Full team name
	AwayAbbr     string                 `json:"away_abbr"`   // "BOS"
	HomeAbbr     string                 `json:"home_abbr"`   // "NYR"
	AwayRecord   string                 `json:"away_record"` // "10-5-2", may be empty
	HomeRecord   string                 `json:"home_record"`
	KickoffLocal string                 `json:"kickoff_local"` // "7:00 PM"
	CommenceTime time.Time              `json:"commence_time"`
	Timestamp    int64                  `json:"timestamp"` // Unix millis, used for ordering
	Status       GameStatus             `json:"status"`
	AwayScore    string                 `json:"away_score"` // empty until known
	HomeScore    string                 `json:"home_score"`
	Quotes       map[string]MarketQuote `json:"quotes"` // book key -> quote, plus GenericBook
}

// MarketQuote is one bookmaker's prices in a fixed display shape
type MarketQuote struct {
	AwayML     string `json:"away_ml"` // "+130", "-150" or "-"
	HomeML     string `json:"home_ml"`
	AwaySpread string `json:"away_spread"` // "+1.5 (-110)" or "-"
	HomeSpread string `json:"home_spread"`
	Total      string `json:"total"`      // "6.5" or "-"
	OverPrice  string `json:"over_price"` // "-110", empty when absent
	UnderPrice string `json:"under_price"`
}

// HasMoneyline reports whether the quote carries a moneyline for either side
func (q MarketQuote) HasMoneyline() bool {
	return (q.AwayML != "" && q.AwayML != NoLine) || (q.HomeML != "" && q.HomeML != NoLine)
}
