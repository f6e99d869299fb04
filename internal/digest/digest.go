// Package digest renders a league's games as plain text for the chat layer.
//
// Each game is a header line followed by one indented line per book with a
// moneyline:
//
//	BOS (10-5-2) @ NYR (8-7-1) | 7:00 PM | Live | BOS 2 - NYR 1
//	  draftkings: BOS -150 / NYR +130 | Total 6.5 | Puck Line BOS +1.5 (-110) / NYR -1.5 (+110)
//	  fanduel: BOS -145 / NYR +125 | Total 6.5
//
// Games are separated by a blank line.
package digest

import (
	"strings"

	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

const (
	NoOddsLine        = "  Odds not yet posted"
	MarketsClosedLine = "  Markets closed"
)

// Layout controls which books are listed and which one carries the spread
type Layout struct {
	League      string   // "NHL"
	SpreadLabel string   // "Puck Line", "Spread"
	Books       []string // listed in this order
	PrimaryBook string
}

// Render builds the digest for games. An empty list renders "".
func Render(games []models.CanonicalGame, layout Layout) string {
	blocks := make([]string, 0, len(games))
	for i := range games {
		blocks = append(blocks, renderGame(&games[i], layout))
	}
	return strings.Join(blocks, "\n\n")
}

func renderGame(g *models.CanonicalGame, layout Layout) string {
	var b strings.Builder
	b.WriteString(header(g))

	lines := 0
	for _, book := range layout.Books {
		q, ok := g.Quotes[book]
		if !ok || !q.HasMoneyline() {
			continue
		}
		b.WriteString("\n")
		b.WriteString(bookLine(g, book, q, book == layout.PrimaryBook, layout.SpreadLabel))
		lines++
	}

	// none of the listed books priced the game; fall back to the first book the feed had
	if lines == 0 {
		if q, ok := g.Quotes[models.GenericBook]; ok && q.HasMoneyline() {
			b.WriteString("\n")
			b.WriteString(bookLine(g, models.GenericBook, q, true, layout.SpreadLabel))
			lines++
		}
	}

	if lines == 0 {
		b.WriteString("\n")
		if g.Status == models.StatusScheduled {
			b.WriteString(NoOddsLine)
		} else {
			b.WriteString(MarketsClosedLine)
		}
	}

	return b.String()
}

func header(g *models.CanonicalGame) string {
	parts := []string{
		team(g.AwayAbbr, g.AwayRecord) + " @ " + team(g.HomeAbbr, g.HomeRecord),
		g.KickoffLocal,
		string(g.Status),
	}
	if g.Status != models.StatusScheduled {
		parts = append(parts, g.AwayAbbr+" "+score(g.AwayScore)+" - "+g.HomeAbbr+" "+score(g.HomeScore))
	}
	return strings.Join(parts, " | ")
}

func bookLine(g *models.CanonicalGame, book string, q models.MarketQuote, withSpread bool, spreadLabel string) string {
	line := "  " + book + ": " +
		g.AwayAbbr + " " + q.AwayML + " / " + g.HomeAbbr + " " + q.HomeML +
		" | Total " + q.Total

	if withSpread && (q.AwaySpread != models.NoLine || q.HomeSpread != models.NoLine) {
		if spreadLabel == "" {
			spreadLabel = "Spread"
		}
		line += " | " + spreadLabel + " " +
			g.AwayAbbr + " " + q.AwaySpread + " / " + g.HomeAbbr + " " + q.HomeSpread
	}
	return line
}

func team(abbr, record string) string {
	if record == "" {
		return abbr
	}
	return abbr + " (" + record + ")"
}

func score(s string) string {
	if s == "" {
		return models.NoLine
	}
	return s
}

// Preamble wraps a non-empty digest in the fixed block the chat layer puts
// ahead of a user message. An empty digest yields "".
func Preamble(digest string) string {
	if strings.TrimSpace(digest) == "" {
		return ""
	}
	return "[Current games and odds]\n" + digest + "\n[End of games]\n\n"
}
