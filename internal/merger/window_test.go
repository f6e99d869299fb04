package merger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/merger"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

func TestFilterByDate_LocalDayBoundaries(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	target := time.Date(2026, 10, 16, 12, 0, 0, 0, loc)
	odds := []models.RawOddsEvent{
		{ID: "late", CommenceTime: time.Date(2026, 10, 16, 23, 59, 59, 0, loc)},
		{ID: "midnight", CommenceTime: time.Date(2026, 10, 17, 0, 0, 0, 0, loc)},
		{ID: "early", CommenceTime: time.Date(2026, 10, 16, 0, 0, 0, 0, loc)},
		{ID: "yesterday", CommenceTime: time.Date(2026, 10, 15, 23, 59, 59, 0, loc)},
	}

	got := merger.FilterByDate(merger.Merge(odds, nil), target, loc)

	ids := make([]string, 0, len(got))
	for _, rec := range got {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"late", "early"}, ids)
}

func TestFilterByDate_UsesLocalNotUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// 02:00 UTC on the 17th is still the evening of the 16th in Los Angeles
	odds := []models.RawOddsEvent{{ID: "g1", CommenceTime: time.Date(2026, 10, 17, 2, 0, 0, 0, time.UTC)}}
	target := time.Date(2026, 10, 16, 9, 0, 0, 0, loc)

	got := merger.FilterByDate(merger.Merge(odds, nil), target, loc)

	require.Len(t, got, 1)
	assert.Equal(t, "g1", got[0].ID)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2026, 10, 16, 18, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, loc), merger.StartOfDay(in, loc))
}
