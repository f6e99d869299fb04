package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/providers"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/retry"
)

const (
	BaseURL = "https://site.api.espn.com"

	feedStandings = "standings"
)

// Client handles ESPN API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	retry      *retry.Policy
	logger     zerolog.Logger
}

// New creates a new ESPN API client. An empty baseURL uses BaseURL.
func New(baseURL string, timeout time.Duration, attempts int, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "Mozilla/5.0 (compatible; FortunaBot/1.0)",
		retry:     retry.NewPolicy(attempts, 500*time.Millisecond),
		logger:    logger.With().Str("component", "espn_client").Logger(),
	}
}

// standingsNode is one level of the standings tree. Conferences and
// divisions nest through Children; leaf groups carry Standings.
type standingsNode struct {
	Name      string          `json:"name"`
	Children  []standingsNode `json:"children"`
	Standings struct {
		Entries []standingsEntry `json:"entries"`
	} `json:"standings"`
}

type standingsEntry struct {
	Team struct {
		Abbreviation string `json:"abbreviation"`
		DisplayName  string `json:"displayName"`
	} `json:"team"`
	Stats []standingsStat `json:"stats"`
}

type standingsStat struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FetchStandings returns team records for a league keyed by both the team's
// display name and its abbreviation. An empty sportPath means the league has
// no standings source and yields an empty map without a request.
func (c *Client) FetchStandings(ctx context.Context, sportPath string) (map[string]string, error) {
	records := make(map[string]string)
	if sportPath == "" {
		return records, nil
	}

	url := fmt.Sprintf("%s/apis/v2/sports/%s/standings", c.baseURL, sportPath)

	var root standingsNode
	if err := c.fetch(ctx, url, &root); err != nil {
		return nil, err
	}

	collect(root, records)

	c.logger.Debug().Str("path", sportPath).Int("teams", len(records)/2).Msg("standings loaded")
	return records, nil
}

func collect(node standingsNode, records map[string]string) {
	for _, entry := range node.Standings.Entries {
		record := formatRecord(entry)
		if record == "" {
			continue
		}
		if entry.Team.DisplayName != "" {
			records[entry.Team.DisplayName] = record
		}
		if entry.Team.Abbreviation != "" {
			records[entry.Team.Abbreviation] = record
		}
	}
	for _, child := range node.Children {
		collect(child, records)
	}
}

// formatRecord renders "W-L" or "W-L-OTL"; ties stand in for OT losses
// in leagues that have them
func formatRecord(entry standingsEntry) string {
	stats := make(map[string]float64, len(entry.Stats))
	for _, s := range entry.Stats {
		stats[s.Name] = s.Value
	}

	wins, okW := stats["wins"]
	losses, okL := stats["losses"]
	if !okW || !okL {
		return ""
	}

	record := itoa(wins) + "-" + itoa(losses)
	if otl, ok := stats["otLosses"]; ok {
		return record + "-" + itoa(otl)
	}
	if ties, ok := stats["ties"]; ok && ties > 0 {
		return record + "-" + itoa(ties)
	}
	return record
}

func itoa(v float64) string {
	return strconv.Itoa(int(v))
}

// fetch makes an HTTP GET request and decodes the JSON body into out
func (c *Client) fetch(ctx context.Context, url string, out interface{}) error {
	start := time.Now()
	defer func() {
		metrics.UpstreamLatency.WithLabelValues(feedStandings).Observe(time.Since(start).Seconds())
	}()

	return c.retry.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("making request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := &providers.StatusError{Feed: "ESPN", Status: resp.StatusCode, Body: string(body)}
			if statusErr.Retryable() {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		return nil
	})
}
