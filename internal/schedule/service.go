package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/digest"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/merger"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/quotes"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// Source says where a Result's games came from
type Source string

const (
	SourceFresh  Source = "fresh"  // fetched this call
	SourceCache  Source = "cache"  // fresh cache hit, no request made
	SourceStale  Source = "stale"  // both feeds failed, older entry served
	SourceFailed Source = "failed" // both feeds failed, nothing cached
)

// Result is the outcome of FetchSchedule. An empty Games with SourceFresh
// means no games that day; with SourceFailed it means the fetch broke.
type Result struct {
	League    string
	Date      string
	Games     []models.CanonicalGame
	Source    Source
	FetchedAt time.Time
}

// OddsFeed is the odds and scores upstream
type OddsFeed interface {
	FetchOdds(ctx context.Context, sportKey string) ([]models.RawOddsEvent, error)
	FetchScores(ctx context.Context, sportKey string, daysFrom int) ([]models.RawScoreEvent, error)
}

// StandingsFeed returns team records keyed by team name or abbreviation
type StandingsFeed interface {
	FetchStandings(ctx context.Context, sportPath string) (map[string]string, error)
}

// Leagues resolves a sport key to its league module
type Leagues interface {
	GetModule(sportKey string) (contracts.LeagueModule, error)
}

// Sink receives every freshly fetched schedule
type Sink interface {
	PublishSnapshot(ctx context.Context, snap models.ScheduleSnapshot) error
}

// Config holds the service settings
type Config struct {
	Books        []string       // bookmaker keys quoted for every game
	PrimaryBook  string         // book whose spread appears in the context
	TTL          time.Duration  // freshness window, DefaultTTL when zero
	Location     *time.Location // calendar day boundaries, time.Local when nil
	CycleTimeout time.Duration  // bound on one fetch cycle
	Now          func() time.Time
}

// Service fetches, merges and caches league schedules and keeps the chat
// context in sync with the latest result
type Service struct {
	odds      OddsFeed
	standings StandingsFeed
	leagues   Leagues
	sinks     []Sink
	cfg       Config
	cache     *Cache
	flight    singleflight.Group
	logger    zerolog.Logger

	contextMu     sync.RWMutex
	lastContext   string
	leagueContext map[string]string
}

// NewService creates a schedule service
func NewService(odds OddsFeed, standings StandingsFeed, leagues Leagues, cfg Config, logger zerolog.Logger, sinks ...Sink) *Service {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CycleTimeout == 0 {
		cfg.CycleTimeout = 45 * time.Second
	}
	if cfg.PrimaryBook == "" && len(cfg.Books) > 0 {
		cfg.PrimaryBook = cfg.Books[0]
	}

	return &Service{
		odds:          odds,
		standings:     standings,
		leagues:       leagues,
		sinks:         sinks,
		cfg:           cfg,
		cache:         NewCache(cfg.TTL, cfg.Now),
		logger:        logger.With().Str("component", "schedule").Logger(),
		leagueContext: make(map[string]string),
	}
}

// Location returns the time zone calendar days are computed in
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// FetchSchedule returns the games of league on target's calendar day, from
// cache while fresh. Concurrent calls for the same league and day share one
// fetch. Feed failures never surface as errors; check Result.Source.
func (s *Service) FetchSchedule(ctx context.Context, league string, target time.Time) Result {
	key := Key(league, target, s.cfg.Location)
	date := target.In(s.cfg.Location).Format("2006-01-02")

	module, err := s.leagues.GetModule(league)
	if err != nil {
		s.logger.Warn().Err(err).Str("league", league).Msg("schedule requested for unknown league")
		return Result{League: league, Date: date, Games: []models.CanonicalGame{}, Source: SourceFailed}
	}

	if entry, fresh, ok := s.cache.Get(key); ok && fresh {
		s.setContext(league, s.render(module, entry.Games))
		metrics.FetchCycles.WithLabelValues(league, string(SourceCache)).Inc()
		return Result{League: league, Date: date, Games: copyGames(entry.Games), Source: SourceCache, FetchedAt: entry.CapturedAt}
	}

	// the flight is shared, so one caller's cancellation must not fail the others
	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CycleTimeout)
		defer cancel()
		return s.refresh(cycleCtx, module, key, date, target), nil
	})

	res := v.(Result)
	res.Games = copyGames(res.Games)
	metrics.FetchCycles.WithLabelValues(league, string(res.Source)).Inc()
	return res
}

// Context returns the digest written by the most recent fetch of any league
func (s *Service) Context() string {
	s.contextMu.RLock()
	defer s.contextMu.RUnlock()
	return s.lastContext
}

// ContextFor returns the most recent digest for one league
func (s *Service) ContextFor(league string) string {
	s.contextMu.RLock()
	defer s.contextMu.RUnlock()
	return s.leagueContext[league]
}

// refresh runs one fetch cycle: odds, scores and standings in parallel, then
// merge, filter, quote and sort
func (s *Service) refresh(ctx context.Context, module contracts.LeagueModule, key, date string, target time.Time) Result {
	league := module.GetSportKey()
	log := s.logger.With().Str("league", league).Str("date", date).Logger()

	daysFrom := scoresLookback(target, s.cfg.Now(), s.cfg.Location)

	var (
		wg           sync.WaitGroup
		odds         []models.RawOddsEvent
		scores       []models.RawScoreEvent
		standings    map[string]string
		oddsErr      error
		scoresErr    error
		standingsErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		odds, oddsErr = s.odds.FetchOdds(ctx, league)
	}()
	go func() {
		defer wg.Done()
		scores, scoresErr = s.odds.FetchScores(ctx, league, daysFrom)
	}()
	go func() {
		defer wg.Done()
		standings, standingsErr = s.standings.FetchStandings(ctx, module.GetStandingsPath())
	}()
	wg.Wait()

	if oddsErr != nil {
		log.Warn().Err(oddsErr).Msg("odds feed failed, continuing without markets")
		metrics.UpstreamFailures.WithLabelValues(league, "odds").Inc()
		odds = nil
	}
	if scoresErr != nil {
		log.Warn().Err(scoresErr).Int("days_from", daysFrom).Msg("scores feed failed, continuing without scores")
		metrics.UpstreamFailures.WithLabelValues(league, "scores").Inc()
		scores = nil
	}
	if standingsErr != nil {
		log.Warn().Err(standingsErr).Msg("standings unavailable, records left blank")
		metrics.UpstreamFailures.WithLabelValues(league, "standings").Inc()
		standings = nil
	}

	if oddsErr != nil && scoresErr != nil {
		return s.fallback(log, key, league, date)
	}

	records := merger.FilterByDate(merger.Merge(odds, scores), target, s.cfg.Location)

	games := make([]models.CanonicalGame, 0, len(records))
	for _, rec := range records {
		games = append(games, s.buildGame(module, rec, standings))
	}
	// records arrive in feed order, so a stable sort keeps it as the tie-break
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].CommenceTime.Before(games[j].CommenceTime)
	})

	entry := s.cache.Put(key, games)
	metrics.CacheEntries.Set(float64(s.cache.Len()))

	text := s.render(module, games)
	s.setContext(league, text)

	log.Info().Int("games", len(games)).Int("odds_events", len(odds)).Int("score_events", len(scores)).Msg("schedule refreshed")

	s.notify(ctx, log, models.ScheduleSnapshot{
		League:      league,
		DisplayName: module.GetDisplayName(),
		Date:        date,
		Games:       copyGames(games),
		Context:     text,
		FetchedAt:   entry.CapturedAt,
	})

	return Result{League: league, Date: date, Games: games, Source: SourceFresh, FetchedAt: entry.CapturedAt}
}

// fallback serves the previous entry untouched when both feeds failed
func (s *Service) fallback(log zerolog.Logger, key, league, date string) Result {
	if entry, _, ok := s.cache.Get(key); ok {
		log.Error().Time("captured_at", entry.CapturedAt).Msg("both feeds failed, serving stale schedule")
		return Result{League: league, Date: date, Games: entry.Games, Source: SourceStale, FetchedAt: entry.CapturedAt}
	}
	log.Error().Msg("both feeds failed and nothing is cached")
	return Result{League: league, Date: date, Games: []models.CanonicalGame{}, Source: SourceFailed}
}

func (s *Service) buildGame(module contracts.LeagueModule, rec *merger.Record, standings map[string]string) models.CanonicalGame {
	awayAbbr := module.GetTeamAbbreviation(rec.AwayTeam)
	homeAbbr := module.GetTeamAbbreviation(rec.HomeTeam)

	return models.CanonicalGame{
		ID:           rec.ID,
		League:       module.GetDisplayName(),
		AwayTeam:     rec.AwayTeam,
		HomeTeam:     rec.HomeTeam,
		AwayAbbr:     awayAbbr,
		HomeAbbr:     homeAbbr,
		AwayRecord:   lookupRecord(standings, rec.AwayTeam, awayAbbr),
		HomeRecord:   lookupRecord(standings, rec.HomeTeam, homeAbbr),
		KickoffLocal: rec.CommenceTime.In(s.cfg.Location).Format("3:04 PM"),
		CommenceTime: rec.CommenceTime,
		Timestamp:    rec.CommenceTime.UnixMilli(),
		Status:       rec.Status,
		AwayScore:    rec.Score(rec.AwayTeam),
		HomeScore:    rec.Score(rec.HomeTeam),
		Quotes:       quotes.Build(rec.Bookmakers, s.cfg.Books, rec.AwayTeam, rec.HomeTeam),
	}
}

func (s *Service) render(module contracts.LeagueModule, games []models.CanonicalGame) string {
	return digest.Render(games, digest.Layout{
		League:      module.GetDisplayName(),
		SpreadLabel: module.GetSpreadLabel(),
		Books:       s.cfg.Books,
		PrimaryBook: s.cfg.PrimaryBook,
	})
}

func (s *Service) setContext(league, text string) {
	s.contextMu.Lock()
	s.lastContext = text
	s.leagueContext[league] = text
	s.contextMu.Unlock()
}

func (s *Service) notify(ctx context.Context, log zerolog.Logger, snap models.ScheduleSnapshot) {
	for _, sink := range s.sinks {
		if err := sink.PublishSnapshot(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("snapshot sink failed")
		}
	}
}

// scoresLookback is how many days back the scores feed must reach so that
// completed games on target are included
func scoresLookback(target, now time.Time, loc *time.Location) int {
	day := merger.StartOfDay(target, loc)
	today := merger.StartOfDay(now, loc)
	if !day.Before(today) {
		return 1
	}
	return wholeDaysBetween(day, today) + 1
}

// wholeDaysBetween counts calendar days, so DST transitions do not skew it
func wholeDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func lookupRecord(standings map[string]string, name, abbr string) string {
	if r, ok := standings[name]; ok {
		return r
	}
	return standings[abbr]
}

// copyGames returns games that share no memory with in, quote maps included.
// Cached games are handed to callers and sinks only through it.
func copyGames(in []models.CanonicalGame) []models.CanonicalGame {
	out := make([]models.CanonicalGame, len(in))
	copy(out, in)
	for i := range out {
		if in[i].Quotes == nil {
			continue
		}
		quotes := make(map[string]models.MarketQuote, len(in[i].Quotes))
		for book, q := range in[i].Quotes {
			quotes[book] = q
		}
		out[i].Quotes = quotes
	}
	return out
}
