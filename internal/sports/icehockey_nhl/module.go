package icehockey_nhl

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
)

// NHLModule implements LeagueModule for NHL hockey
type NHLModule struct {
	enabled bool
}

// New creates a new NHL league module
func New() *NHLModule {
	return &NHLModule{enabled: true}
}

func (m *NHLModule) GetSportKey() string {
	return "icehockey_nhl"
}

func (m *NHLModule) GetDisplayName() string {
	return "NHL"
}

func (m *NHLModule) GetSpreadLabel() string {
	return "Puck Line"
}

func (m *NHLModule) GetStandingsPath() string {
	return "hockey/nhl"
}

func (m *NHLModule) GetPollingConfig() contracts.PollingConfig {
	return contracts.PollingConfig{
		Interval: 1 * time.Minute,
		Enabled:  m.enabled,
	}
}

func (m *NHLModule) IsEnabled() bool {
	return m.enabled
}

// GetTeamAbbreviation returns team abbreviation for full name
func (m *NHLModule) GetTeamAbbreviation(fullName string) string {
	return GetTeamAbbreviation(fullName)
}
