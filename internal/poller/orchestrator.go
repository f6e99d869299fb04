package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
)

// Leagues lists the leagues to poll
type Leagues interface {
	EnabledLeagues() []contracts.LeagueModule
}

// Orchestrator manages pollers for all enabled leagues
type Orchestrator struct {
	leagues  Leagues
	fetcher  Fetcher
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	pollers map[string]*LeaguePoller
}

// NewOrchestrator creates a new polling orchestrator
func NewOrchestrator(leagues Leagues, fetcher Fetcher, interval time.Duration, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		leagues:  leagues,
		fetcher:  fetcher,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
		pollers:  make(map[string]*LeaguePoller),
	}
}

// Start launches a poller per enabled league and blocks until they all stop
func (o *Orchestrator) Start(ctx context.Context) {
	var wg sync.WaitGroup

	enabled := o.leagues.EnabledLeagues()
	o.logger.Info().Int("leagues", len(enabled)).Msg("starting pollers")

	for _, module := range enabled {
		if !module.GetPollingConfig().Enabled {
			o.logger.Info().Str("league", module.GetSportKey()).Msg("polling disabled")
			continue
		}

		p := NewLeaguePoller(module, o.fetcher, o.interval, o.logger)

		o.mu.Lock()
		o.pollers[module.GetSportKey()] = p
		o.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx)
		}()
	}

	wg.Wait()
	o.logger.Info().Msg("all pollers stopped")
}

// Pollers returns the sport keys currently being polled
func (o *Orchestrator) Pollers() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := make([]string, 0, len(o.pollers))
	for k := range o.pollers {
		keys = append(keys, k)
	}
	return keys
}
