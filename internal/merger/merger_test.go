package merger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/merger"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

var kickoff = time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)

func oddsEvent(id, away, home string) models.RawOddsEvent {
	return models.RawOddsEvent{
		ID:           id,
		SportKey:     "icehockey_nhl",
		AwayTeam:     away,
		HomeTeam:     home,
		CommenceTime: kickoff,
		Bookmakers: []models.RawBookmaker{{
			Key: "draftkings",
			Markets: []models.RawMarket{{
				Key: models.MarketH2H,
				Outcomes: []models.RawOutcome{
					{Name: away, Price: decimal.NewFromInt(-150)},
					{Name: home, Price: decimal.NewFromInt(130)},
				},
			}},
		}},
	}
}

func TestMerge_OddsOnlyIsScheduled(t *testing.T) {
	set := merger.Merge([]models.RawOddsEvent{oddsEvent("g1", "Boston Bruins", "New York Rangers")}, nil)

	rec, ok := set.Get("g1")
	require.True(t, ok)
	assert.Equal(t, models.StatusScheduled, rec.Status)
	assert.Empty(t, rec.Scores)
	assert.Len(t, rec.Bookmakers, 1)
}

func TestMerge_ScoresOverlayPreservesBookmakers(t *testing.T) {
	odds := []models.RawOddsEvent{oddsEvent("g1", "Boston Bruins", "New York Rangers")}
	scores := []models.RawScoreEvent{{
		ID:       "g1",
		HomeTeam: "NY Rangers (scores feed spelling)",
		Scores: []models.RawScore{
			{Name: "Boston Bruins", Score: "2"},
			{Name: "New York Rangers", Score: "1"},
		},
	}}

	set := merger.Merge(odds, scores)

	rec, _ := set.Get("g1")
	assert.Equal(t, models.StatusLive, rec.Status)
	assert.Equal(t, "2", rec.Score("Boston Bruins"))
	assert.Equal(t, "1", rec.Score("New York Rangers"))
	assert.Equal(t, "New York Rangers", rec.HomeTeam, "participants come from the odds feed")
	require.Len(t, rec.Bookmakers, 1)
	assert.Equal(t, "draftkings", rec.Bookmakers[0].Key)
}

func TestMerge_CompletedIsFinal(t *testing.T) {
	odds := []models.RawOddsEvent{oddsEvent("g1", "Boston Bruins", "New York Rangers")}
	scores := []models.RawScoreEvent{{
		ID:        "g1",
		Completed: true,
		Scores:    []models.RawScore{{Name: "Boston Bruins", Score: "4"}},
	}}

	rec, _ := merger.Merge(odds, scores).Get("g1")

	assert.Equal(t, models.StatusFinal, rec.Status)
	assert.True(t, rec.Completed)
}

func TestMerge_ScoreEntryWithoutScoresStaysScheduled(t *testing.T) {
	odds := []models.RawOddsEvent{oddsEvent("g1", "Boston Bruins", "New York Rangers")}
	scores := []models.RawScoreEvent{{ID: "g1"}}

	rec, _ := merger.Merge(odds, scores).Get("g1")

	assert.Equal(t, models.StatusScheduled, rec.Status)
}

func TestMerge_ScoreOnlyGameIsKept(t *testing.T) {
	scores := []models.RawScoreEvent{{
		ID:           "g9",
		AwayTeam:     "Toronto Maple Leafs",
		HomeTeam:     "Montreal Canadiens",
		CommenceTime: kickoff,
		Completed:    true,
		Scores: []models.RawScore{
			{Name: "Toronto Maple Leafs", Score: "3"},
			{Name: "Montreal Canadiens", Score: "5"},
		},
	}}

	set := merger.Merge(nil, scores)

	rec, ok := set.Get("g9")
	require.True(t, ok)
	assert.Empty(t, rec.Bookmakers)
	assert.Equal(t, "Montreal Canadiens", rec.HomeTeam)
	assert.Equal(t, kickoff, rec.CommenceTime)
	assert.Equal(t, models.StatusFinal, rec.Status)
}

func TestMerge_ProvenanceIndependentOfFeedOrder(t *testing.T) {
	a := oddsEvent("g1", "Boston Bruins", "New York Rangers")
	b := oddsEvent("g2", "Toronto Maple Leafs", "Montreal Canadiens")
	s1 := models.RawScoreEvent{ID: "g1", Scores: []models.RawScore{{Name: "Boston Bruins", Score: "1"}}}
	s2 := models.RawScoreEvent{ID: "g2", Completed: true}

	forward := merger.Merge([]models.RawOddsEvent{a, b}, []models.RawScoreEvent{s1, s2})
	reverse := merger.Merge([]models.RawOddsEvent{b, a}, []models.RawScoreEvent{s2, s1})

	for _, id := range []string{"g1", "g2"} {
		f, _ := forward.Get(id)
		r, _ := reverse.Get(id)
		assert.Equal(t, f.Status, r.Status, id)
		assert.Equal(t, f.Scores, r.Scores, id)
		assert.Equal(t, f.Bookmakers, r.Bookmakers, id)
		assert.Equal(t, f.AwayTeam, r.AwayTeam, id)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	odds := []models.RawOddsEvent{
		oddsEvent("g1", "Boston Bruins", "New York Rangers"),
		oddsEvent("g2", "Toronto Maple Leafs", "Montreal Canadiens"),
	}
	scores := []models.RawScoreEvent{
		{ID: "g2", Scores: []models.RawScore{{Name: "Montreal Canadiens", Score: "1"}}},
		{ID: "g3", AwayTeam: "Seattle Kraken", HomeTeam: "Vancouver Canucks", CommenceTime: kickoff},
	}

	first := merger.Merge(odds, scores)
	second := merger.Merge(odds, scores)

	require.Equal(t, first.Len(), second.Len())
	for i, rec := range first.Records() {
		other := second.Records()[i]
		assert.Equal(t, *rec, *other)
	}
	assert.Equal(t, 3, first.Len())
	assert.Equal(t, "g3", first.Records()[2].ID)
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	odds := []models.RawOddsEvent{oddsEvent("g1", "Boston Bruins", "New York Rangers")}
	scores := []models.RawScoreEvent{{ID: "g1", Scores: []models.RawScore{{Name: "Boston Bruins", Score: "1"}}}}

	set := merger.Merge(odds, scores)
	rec, _ := set.Get("g1")
	rec.Scores[0].Score = "99"
	rec.Bookmakers[0].Key = "mutated"

	assert.Equal(t, "1", scores[0].Scores[0].Score)
	assert.Equal(t, "draftkings", odds[0].Bookmakers[0].Key)
}

func TestMerge_DuplicateOddsIDKeepsFirst(t *testing.T) {
	first := oddsEvent("g1", "Boston Bruins", "New York Rangers")
	dup := oddsEvent("g1", "Other", "Teams")

	set := merger.Merge([]models.RawOddsEvent{first, dup}, nil)

	assert.Equal(t, 1, set.Len())
	rec, _ := set.Get("g1")
	assert.Equal(t, "Boston Bruins", rec.AwayTeam)
}
