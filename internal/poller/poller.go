package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/schedule"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
)

// Fetcher is the part of the schedule service a poller drives
type Fetcher interface {
	FetchSchedule(ctx context.Context, league string, target time.Time) schedule.Result
	Location() *time.Location
}

// LeaguePoller keeps today's board warm for one league
type LeaguePoller struct {
	module   contracts.LeagueModule
	fetcher  Fetcher
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewLeaguePoller creates a poller. A zero interval falls back to the
// module's polling config.
func NewLeaguePoller(module contracts.LeagueModule, fetcher Fetcher, interval time.Duration, logger zerolog.Logger) *LeaguePoller {
	if interval <= 0 {
		interval = module.GetPollingConfig().Interval
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &LeaguePoller{
		module:   module,
		fetcher:  fetcher,
		interval: interval,
		now:      time.Now,
		logger:   logger.With().Str("league", module.GetSportKey()).Logger(),
	}
}

// Interval returns the refresh period
func (p *LeaguePoller) Interval() time.Duration {
	return p.interval
}

// Run polls until ctx is cancelled
func (p *LeaguePoller) Run(ctx context.Context) {
	p.logger.Info().Dur("interval", p.interval).Msg("starting poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do initial poll
	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("stopping poller")
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

// pollOnce refreshes today's schedule. Past days are never polled.
func (p *LeaguePoller) pollOnce(ctx context.Context) schedule.Result {
	today := p.now().In(p.fetcher.Location())
	res := p.fetcher.FetchSchedule(ctx, p.module.GetSportKey(), today)

	event := p.logger.Debug()
	if res.Source == schedule.SourceFailed || res.Source == schedule.SourceStale {
		event = p.logger.Warn()
	}
	event.
		Str("date", res.Date).
		Str("source", string(res.Source)).
		Int("games", len(res.Games)).
		Msg("poll complete")

	return res
}
