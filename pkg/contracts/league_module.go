package contracts

import "time"

// LeagueModule is the pluggable interface for adding new leagues
// Mirrors the SportModule pattern used by the stats poller
type LeagueModule interface {
	// Identification
	GetSportKey() string      // "icehockey_nhl", "americanfootball_nfl"
	GetDisplayName() string   // "NHL", "NFL"
	GetSpreadLabel() string   // "Puck Line", "Spread"
	GetStandingsPath() string // "hockey/nhl"; empty when standings are not supported

	// Configuration
	GetPollingConfig() PollingConfig
	IsEnabled() bool

	// Team normalization (odds feed names -> abbreviations)
	GetTeamAbbreviation(fullName string) string
}

// PollingConfig defines league-specific refresh behavior
type PollingConfig struct {
	Interval time.Duration // how often today's board is refreshed
	Enabled  bool          // Feature flag per league
}
