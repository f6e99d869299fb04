package quotes

import (
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/oddsmath"
)

// Empty returns the quote used when a book has no data for a game
func Empty() models.MarketQuote {
	return models.MarketQuote{
		AwayML:     models.NoLine,
		HomeML:     models.NoLine,
		AwaySpread: models.NoLine,
		HomeSpread: models.NoLine,
		Total:      models.NoLine,
		OverPrice:  models.NoLine,
		UnderPrice: models.NoLine,
	}
}

// Normalize converts one bookmaker's markets into a MarketQuote.
// away and home are the participant names as they appear in the outcomes.
func Normalize(book *models.RawBookmaker, away, home string) models.MarketQuote {
	if book == nil {
		return Empty()
	}

	h2h := book.Market(models.MarketH2H)
	spreads := book.Market(models.MarketSpreads)
	totals := book.Market(models.MarketTotals)

	over := totals.Outcome(models.OutcomeOver)

	return models.MarketQuote{
		AwayML:     FormatMoneyline(h2h.Outcome(away)),
		HomeML:     FormatMoneyline(h2h.Outcome(home)),
		AwaySpread: FormatSpread(spreads.Outcome(away)),
		HomeSpread: FormatSpread(spreads.Outcome(home)),
		Total:      formatTotal(over, totals.Outcome(models.OutcomeUnder)),
		OverPrice:  formatOptionalPrice(over),
		UnderPrice: formatOptionalPrice(totals.Outcome(models.OutcomeUnder)),
	}
}

// Build returns the quotes for every requested book plus the generic quote.
// Books missing from the feed get Empty(); generic is the first bookmaker the
// feed lists for the game.
func Build(bookmakers []models.RawBookmaker, books []string, away, home string) map[string]models.MarketQuote {
	out := make(map[string]models.MarketQuote, len(books)+1)

	for _, key := range books {
		out[key] = Normalize(find(bookmakers, key), away, home)
	}

	var first *models.RawBookmaker
	if len(bookmakers) > 0 {
		first = &bookmakers[0]
	}
	out[models.GenericBook] = Normalize(first, away, home)

	return out
}

// FormatMoneyline formats an outcome's price, "-" when absent
func FormatMoneyline(o *models.RawOutcome) string {
	if o == nil {
		return models.NoLine
	}
	return oddsmath.FormatAmerican(o.Price)
}

// FormatSpread formats "<point> (<price>)", "-" when absent
func FormatSpread(o *models.RawOutcome) string {
	if o == nil || o.Point == nil {
		return models.NoLine
	}
	return oddsmath.FormatLine(*o.Point, o.Price)
}

func formatTotal(over, under *models.RawOutcome) string {
	for _, o := range []*models.RawOutcome{over, under} {
		if o != nil && o.Point != nil {
			return o.Point.String()
		}
	}
	return models.NoLine
}

// over/under prices default to empty, not "-"
func formatOptionalPrice(o *models.RawOutcome) string {
	if o == nil {
		return ""
	}
	return oddsmath.FormatAmerican(o.Price)
}

func find(bookmakers []models.RawBookmaker, key string) *models.RawBookmaker {
	for i := range bookmakers {
		if bookmakers[i].Key == key {
			return &bookmakers[i]
		}
	}
	return nil
}
