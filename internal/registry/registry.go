package registry

import (
	"fmt"
	"sort"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/sports/americanfootball_nfl"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/sports/icehockey_nhl"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
)

// Registry manages available league modules
type Registry struct {
	modules map[string]contracts.LeagueModule
	enabled map[string]bool
}

// New creates a registry with every known league. Only the sport keys listed
// in enabled are served; an empty list enables all of them.
func New(enabled ...string) *Registry {
	r := &Registry{
		modules: make(map[string]contracts.LeagueModule),
		enabled: make(map[string]bool),
	}

	r.Register(icehockey_nhl.New())
	r.Register(americanfootball_nfl.New())

	for _, key := range enabled {
		r.enabled[key] = true
	}

	return r
}

// Register adds a league module to the registry
func (r *Registry) Register(module contracts.LeagueModule) {
	r.modules[module.GetSportKey()] = module
}

// GetModule retrieves an enabled league module by sport key
func (r *Registry) GetModule(sportKey string) (contracts.LeagueModule, error) {
	module, ok := r.modules[sportKey]
	if !ok || !r.isEnabled(module) {
		return nil, fmt.Errorf("league module not found: %s", sportKey)
	}
	return module, nil
}

// EnabledLeagues returns all enabled league modules, ordered by sport key
func (r *Registry) EnabledLeagues() []contracts.LeagueModule {
	var enabled []contracts.LeagueModule
	for _, m := range r.modules {
		if r.isEnabled(m) {
			enabled = append(enabled, m)
		}
	}
	sort.Slice(enabled, func(i, j int) bool {
		return enabled[i].GetSportKey() < enabled[j].GetSportKey()
	})
	return enabled
}

func (r *Registry) isEnabled(m contracts.LeagueModule) bool {
	if !m.IsEnabled() {
		return false
	}
	return len(r.enabled) == 0 || r.enabled[m.GetSportKey()]
}
