package americanfootball_nfl

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
)

// NFLModule implements LeagueModule for NFL football
type NFLModule struct {
	enabled bool
}

// New creates a new NFL league module
func New() *NFLModule {
	return &NFLModule{enabled: true}
}

func (m *NFLModule) GetSportKey() string {
	return "americanfootball_nfl"
}

func (m *NFLModule) GetDisplayName() string {
	return "NFL"
}

func (m *NFLModule) GetSpreadLabel() string {
	return "Spread"
}

// GetStandingsPath is empty: records are not wired for the NFL yet and the
// board shows games without them.
func (m *NFLModule) GetStandingsPath() string {
	return ""
}

func (m *NFLModule) GetPollingConfig() contracts.PollingConfig {
	return contracts.PollingConfig{
		Interval: 2 * time.Minute,
		Enabled:  m.enabled,
	}
}

func (m *NFLModule) IsEnabled() bool {
	return m.enabled
}

func (m *NFLModule) GetTeamAbbreviation(fullName string) string {
	return GetTeamAbbreviation(fullName)
}
