package oddsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/providers"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/retry"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

const (
	DefaultBaseURL = "https://api.the-odds-api.com"

	feedOdds   = "odds"
	feedScores = "scores"
)

// Options configures the odds API client
type Options struct {
	BaseURL       string
	APIKey        string
	Regions       string   // "us"
	Bookmakers    []string // restricts the odds request; empty means every book in Regions
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Quota is the request allowance reported by the API on every response
type Quota struct {
	Remaining int
	Used      int
	UpdatedAt time.Time
}

// Client fetches the odds and scores feeds
type Client struct {
	baseURL    string
	apiKey     string
	regions    string
	bookmakers []string
	httpClient *http.Client
	userAgent  string
	retry      *retry.Policy
	logger     zerolog.Logger

	quotaMu sync.Mutex
	quota   Quota
}

// New creates a new odds API client
func New(opts Options, logger zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Regions == "" {
		opts.Regions = "us"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		regions:    opts.Regions,
		bookmakers: opts.Bookmakers,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		userAgent: "Mozilla/5.0 (compatible; FortunaBot/1.0)",
		retry:     retry.NewPolicy(opts.RetryAttempts, opts.RetryDelay),
		logger:    logger.With().Str("component", "oddsapi_client").Logger(),
	}
}

// FetchOdds fetches moneyline, spread and total markets for every upcoming
// and live event of a sport
func (c *Client) FetchOdds(ctx context.Context, sportKey string) ([]models.RawOddsEvent, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", c.regions)
	q.Set("markets", strings.Join([]string{models.MarketH2H, models.MarketSpreads, models.MarketTotals}, ","))
	q.Set("oddsFormat", "american")
	q.Set("dateFormat", "iso")
	if len(c.bookmakers) > 0 {
		q.Set("bookmakers", strings.Join(c.bookmakers, ","))
	}

	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds?%s", c.baseURL, url.PathEscape(sportKey), q.Encode())

	var events []models.RawOddsEvent
	if err := c.fetch(ctx, feedOdds, endpoint, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FetchScores fetches live and recently completed scores. daysFrom reaches
// back that many days for completed games.
func (c *Client) FetchScores(ctx context.Context, sportKey string, daysFrom int) ([]models.RawScoreEvent, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("dateFormat", "iso")
	if daysFrom > 0 {
		q.Set("daysFrom", strconv.Itoa(daysFrom))
	}

	endpoint := fmt.Sprintf("%s/v4/sports/%s/scores?%s", c.baseURL, url.PathEscape(sportKey), q.Encode())

	var events []models.RawScoreEvent
	if err := c.fetch(ctx, feedScores, endpoint, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Quota returns the most recent request allowance seen
func (c *Client) Quota() Quota {
	c.quotaMu.Lock()
	defer c.quotaMu.Unlock()
	return c.quota
}

// fetch makes an HTTP GET request and decodes the JSON body into out
func (c *Client) fetch(ctx context.Context, feed, endpoint string, out interface{}) error {
	start := time.Now()
	defer func() {
		metrics.UpstreamLatency.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	}()

	return c.retry.Execute(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("making request: %w", err)
		}
		defer resp.Body.Close()

		c.recordQuota(resp.Header)

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			statusErr := &providers.StatusError{Feed: feed, Status: resp.StatusCode, Body: string(body)}
			if statusErr.Retryable() {
				return statusErr
			}
			return retry.Permanent(statusErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Permanent(fmt.Errorf("decoding %s response: %w", feed, err))
		}
		return nil
	})
}

func (c *Client) recordQuota(h http.Header) {
	remaining, errR := strconv.Atoi(h.Get("x-requests-remaining"))
	used, errU := strconv.Atoi(h.Get("x-requests-used"))
	if errors.Join(errR, errU) != nil {
		return
	}

	c.quotaMu.Lock()
	c.quota = Quota{Remaining: remaining, Used: used, UpdatedAt: time.Now()}
	c.quotaMu.Unlock()

	metrics.OddsQuotaRemaining.Set(float64(remaining))

	if remaining < 50 {
		c.logger.Warn().Int("remaining", remaining).Int("used", used).Msg("odds API quota running low")
	}
}
