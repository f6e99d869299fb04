package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market keys used by the odds feed
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// Outcome names used by the totals market
const (
	OutcomeOver  = "Over"
	OutcomeUnder = "Under"
)

// RawOddsEvent is one event from the odds feed
type RawOddsEvent struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	CommenceTime time.Time      `json:"commence_time"`
	Bookmakers   []RawBookmaker `json:"bookmakers,omitempty"`
}

// RawBookmaker holds one sportsbook's markets for an event
type RawBookmaker struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	LastUpdate time.Time   `json:"last_update"`
	Markets    []RawMarket `json:"markets"`
}

// RawMarket is a single market (h2h, spreads, totals)
type RawMarket struct {
	Key      string       `json:"key"`
	Outcomes []RawOutcome `json:"outcomes"`
}

// RawOutcome is a named selection with an American price.
// Point is set for spreads and totals only.
type RawOutcome struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	Point *decimal.Decimal `json:"point,omitempty"`
}

// RawScoreEvent is one event from the scores feed. It shares the identifier
// space with RawOddsEvent. Participants and commence time are optional and only
// used when the odds feed has no entry for the same ID.
type RawScoreEvent struct {
	ID           string     `json:"id"`
	SportKey     string     `json:"sport_key"`
	HomeTeam     string     `json:"home_team,omitempty"`
	AwayTeam     string     `json:"away_team,omitempty"`
	CommenceTime time.Time  `json:"commence_time"`
	Completed    bool       `json:"completed"`
	Scores       []RawScore `json:"scores,omitempty"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}

// RawScore is a participant's running score
type RawScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// Market returns the market with the given key, or nil
func (b *RawBookmaker) Market(key string) *RawMarket {
	if b == nil {
		return nil
	}
	for i := range b.Markets {
		if b.Markets[i].Key == key {
			return &b.Markets[i]
		}
	}
	return nil
}

// Outcome returns the outcome with the given name, or nil
func (m *RawMarket) Outcome(name string) *RawOutcome {
	if m == nil {
		return nil
	}
	for i := range m.Outcomes {
		if m.Outcomes[i].Name == name {
			return &m.Outcomes[i]
		}
	}
	return nil
}
