package merger

import (
	"time"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// Record is one game after the odds and scores feeds have been combined.
// Participant and market fields come from the odds feed; status and scores
// come from the scores feed once it has an entry for the game.
type Record struct {
	ID           string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Bookmakers   []models.RawBookmaker
	Scores       []models.RawScore
	Completed    bool
	Status       models.GameStatus
}

// Set is the merged batch for one league, keyed by feed identifier.
// Records keeps first-seen order: odds feed order, then score-only games.
type Set struct {
	byID    map[string]*Record
	records []*Record
}

// Merge combines the odds feed and the scores feed into one record per game.
// Neither input slice is modified.
func Merge(odds []models.RawOddsEvent, scores []models.RawScoreEvent) *Set {
	set := &Set{
		byID:    make(map[string]*Record, len(odds)),
		records: make([]*Record, 0, len(odds)),
	}

	for _, ev := range odds {
		if _, dup := set.byID[ev.ID]; dup {
			continue
		}
		set.add(&Record{
			ID:           ev.ID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			CommenceTime: ev.CommenceTime,
			Bookmakers:   copyBookmakers(ev.Bookmakers),
			Status:       models.StatusScheduled,
		})
	}

	for _, ev := range scores {
		rec, ok := set.byID[ev.ID]
		if !ok {
			rec = &Record{
				ID:           ev.ID,
				HomeTeam:     ev.HomeTeam,
				AwayTeam:     ev.AwayTeam,
				CommenceTime: ev.CommenceTime,
				Status:       models.StatusScheduled,
			}
			set.add(rec)
		}
		overlayScores(rec, ev)
	}

	return set
}

// overlayScores applies the scores feed fields; odds-only fields are left alone
func overlayScores(rec *Record, ev models.RawScoreEvent) {
	rec.Completed = ev.Completed
	rec.Scores = append([]models.RawScore(nil), ev.Scores...)
	rec.Status = deriveStatus(ev)

	// fill participants only for score-only games
	if rec.HomeTeam == "" {
		rec.HomeTeam = ev.HomeTeam
	}
	if rec.AwayTeam == "" {
		rec.AwayTeam = ev.AwayTeam
	}
	if rec.CommenceTime.IsZero() {
		rec.CommenceTime = ev.CommenceTime
	}
}

// deriveStatus: score presence implies the game has started
func deriveStatus(ev models.RawScoreEvent) models.GameStatus {
	switch {
	case ev.Completed:
		return models.StatusFinal
	case len(ev.Scores) > 0:
		return models.StatusLive
	default:
		return models.StatusScheduled
	}
}

func (s *Set) add(rec *Record) {
	s.byID[rec.ID] = rec
	s.records = append(s.records, rec)
}

// Get returns the record for an identifier
func (s *Set) Get(id string) (*Record, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// Records returns all records in first-seen order
func (s *Set) Records() []*Record {
	return append([]*Record(nil), s.records...)
}

// Len returns the number of merged games
func (s *Set) Len() int {
	return len(s.records)
}

// Score returns the running score for a participant, empty when unknown
func (r *Record) Score(team string) string {
	for _, sc := range r.Scores {
		if sc.Name == team {
			return sc.Score
		}
	}
	return ""
}

func copyBookmakers(in []models.RawBookmaker) []models.RawBookmaker {
	if in == nil {
		return nil
	}
	out := make([]models.RawBookmaker, len(in))
	copy(out, in)
	return out
}
