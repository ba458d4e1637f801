package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/metrics"
)

// FixturesEndpoint is the API-Football fixtures endpoint.
const FixturesEndpoint = "fixtures"

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 60 * time.Second
	minuteCooldown = 60 * time.Second
)

// Client is the rate-limited API-Football (RapidAPI) client. Each call is
// self-contained: rate-limit waits suspend only the calling goroutine and no
// state is shared between logical fetches beyond the HTTP connection pool.
type Client struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
	maxRetries int

	// Injectable for tests; default to time.Now and a context-aware sleep.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new API-Football client.
func NewClient(baseURL, apiKey, apiHost string, timeout time.Duration, maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 5
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiHost:    apiHost,
		maxRetries: maxRetries,
		now:        time.Now,
		sleep:      sleepContext,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// envelope is the top-level API response body.
type envelope struct {
	Response []json.RawMessage `json:"response"`
}

// FetchFixtures performs a GET against the fixtures endpoint with automatic
// rate-limit handling:
//   - daily quota exhausted: suspend until the next UTC calendar day, retry;
//   - per-minute quota exhausted: suspend 60s, retry;
//   - HTTP 429: suspend for the Retry-After duration (fallback to the current
//     backoff), retry;
//   - transient errors (connection failure, timeout, other HTTP errors):
//     exponential backoff starting at 1s, doubled per attempt, capped at 60s.
//
// Rate-limit suspensions are scheduled waits, not error retries, and do not
// consume the bounded attempt budget. Exhausting the budget returns an empty
// slice and a nil error: callers must treat empty as "no data obtained",
// which is not the same as a confirmed zero-result response. The returned
// error is non-nil only when ctx is cancelled.
func (c *Client) FetchFixtures(ctx context.Context, params map[string]string) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, FixturesEndpoint)

	backoff := initialBackoff
	for attempt := 1; attempt <= c.maxRetries; {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			// Non-retryable request error
			log.Error().Err(err).Str("endpoint", FixturesEndpoint).Msg("Failed to build API request")
			metrics.RecordAPICall(FixturesEndpoint, "request_error", 0)
			return nil, nil
		}

		req.Header.Set("x-rapidapi-key", c.apiKey)
		req.Header.Set("x-rapidapi-host", c.apiHost)
		req.Header.Set("Accept", "application/json")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("endpoint", FixturesEndpoint).
			Interface("params", params).
			Int("attempt", attempt).
			Msg("Making API request")

		start := c.now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.RecordAPICall(FixturesEndpoint, "transport_error", time.Since(start).Seconds())
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Dur("backoff", backoff).
				Msg("Transient error on API request, retrying after backoff")
			if serr := c.sleep(ctx, backoff); serr != nil {
				return nil, serr
			}
			backoff = nextBackoff(backoff)
			attempt++
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.RecordAPICall(FixturesEndpoint, "read_error", time.Since(start).Seconds())
			log.Warn().Err(err).Int("attempt", attempt).Msg("Failed to read API response body, retrying")
			if serr := c.sleep(ctx, backoff); serr != nil {
				return nil, serr
			}
			backoff = nextBackoff(backoff)
			attempt++
			continue
		}

		// Enforce quota counters before looking at the payload. A response
		// that lands on an exhausted window is discarded and refetched once
		// the window resets; these waits do not consume the attempt budget.
		dailyRem := headerInt(resp.Header, "x-ratelimit-requests-remaining", 1)
		minuteRem := headerInt(resp.Header, "x-ratelimit-remaining", 1)

		if dailyRem < 1 {
			wait := untilNextUTCDay(c.now())
			metrics.RecordRateLimitWait("daily")
			log.Info().
				Dur("wait", wait).
				Msg("Daily rate limit reached, sleeping until next UTC day")
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			continue
		}

		if minuteRem < 1 {
			metrics.RecordRateLimitWait("minute")
			log.Info().Msg("Minute rate limit reached, sleeping 60s")
			if serr := c.sleep(ctx, minuteCooldown); serr != nil {
				return nil, serr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := time.Duration(headerInt(resp.Header, "Retry-After", int(backoff/time.Second))) * time.Second
			metrics.RecordRateLimitWait("429")
			log.Info().
				Dur("retry_after", retryAfter).
				Msg("HTTP 429 received, sleeping for Retry-After duration")
			if serr := c.sleep(ctx, retryAfter); serr != nil {
				return nil, serr
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			metrics.RecordAPICall(FixturesEndpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
			log.Warn().
				Int("status", resp.StatusCode).
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Dur("backoff", backoff).
				Msg("API returned error status, retrying after backoff")
			if serr := c.sleep(ctx, backoff); serr != nil {
				return nil, serr
			}
			backoff = nextBackoff(backoff)
			attempt++
			continue
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			metrics.RecordAPICall(FixturesEndpoint, "decode_error", time.Since(start).Seconds())
			log.Warn().Err(err).Int("attempt", attempt).Msg("Failed to decode API response, retrying")
			if serr := c.sleep(ctx, backoff); serr != nil {
				return nil, serr
			}
			backoff = nextBackoff(backoff)
			attempt++
			continue
		}

		metrics.RecordAPICall(FixturesEndpoint, "ok", time.Since(start).Seconds())
		log.Debug().
			Int("records", len(env.Response)).
			Dur("duration", time.Since(start)).
			Msg("API request successful")
		return env.Response, nil
	}

	log.Error().
		Int("max_retries", c.maxRetries).
		Interface("params", params).
		Msg("Failed to fetch fixtures after exhausting retries")
	metrics.RecordAPICall(FixturesEndpoint, "exhausted", 0)
	return nil, nil
}

// FetchFixturesByLeagueSeason fetches all fixtures for one league-season.
func (c *Client) FetchFixturesByLeagueSeason(ctx context.Context, leagueID int64, season int32) ([]json.RawMessage, error) {
	return c.FetchFixtures(ctx, map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(int(season)),
	})
}

// FetchFixturesByDateRange fetches fixtures for a league-season restricted to
// a kickoff date window (used by the league-season refresh path).
func (c *Client) FetchFixturesByDateRange(ctx context.Context, leagueID int64, season int32, from, to string) ([]json.RawMessage, error) {
	return c.FetchFixtures(ctx, map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(int(season)),
		"from":   from,
		"to":     to,
	})
}

// FetchFixturesByIDs fetches specific fixtures in "-"-joined id batches of
// batchSize per request. A batch that yields no data is logged and skipped;
// remaining batches still run.
func (c *Client) FetchFixturesByIDs(ctx context.Context, ids []int64, batchSize int) ([]json.RawMessage, error) {
	if batchSize < 1 {
		batchSize = 20
	}

	var records []json.RawMessage
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		joined := joinIDs(ids[start:end])
		batch, err := c.FetchFixtures(ctx, map[string]string{"ids": joined})
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			log.Warn().Str("ids", joined).Msg("No data obtained for id batch")
			continue
		}
		records = append(records, batch...)
	}

	return records, nil
}

// joinIDs renders ids as the API's "-"-joined list form.
func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "-")
}

// headerInt parses an integer header, falling back when absent or malformed.
func headerInt(h http.Header, key string, fallback int) int {
	v := h.Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// untilNextUTCDay returns the duration until the next UTC calendar day
// starts. The upstream quota is assumed to reset at UTC midnight.
func untilNextUTCDay(now time.Time) time.Duration {
	utc := now.UTC()
	next := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	return next.Sub(utc)
}

// nextBackoff doubles the backoff up to the cap.
func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
