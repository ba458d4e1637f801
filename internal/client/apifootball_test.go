package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient wires a client to the given server with an instant sleep that
// records every requested wait.
func testClient(t *testing.T, server *httptest.Server, maxRetries int) (*Client, *[]time.Duration) {
	t.Helper()

	var waits []time.Duration
	c := NewClient(server.URL, "test-key", "test-host", 5*time.Second, maxRetries)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func okBody() string {
	return `{"response":[{"fixture":{"id":1}},{"fixture":{"id":2}}]}`
}

func TestFetchFixtures_Success(t *testing.T) {
	var gotKey, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		w.Header().Set("x-ratelimit-requests-remaining", "90")
		w.Header().Set("x-ratelimit-remaining", "9")
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, waits := testClient(t, server, 5)

	records, err := c.FetchFixtures(context.Background(), map[string]string{"league": "39"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Empty(t, *waits, "Successful call should not sleep")
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "test-host", gotHost)
}

func TestFetchFixtures_DailyLimitSleepsUntilNextUTCDay(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("x-ratelimit-requests-remaining", "0")
			w.Write([]byte(okBody()))
			return
		}
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, waits := testClient(t, server, 5)
	fixedNow := time.Date(2025, 8, 16, 21, 30, 0, 0, time.UTC)
	c.now = func() time.Time { return fixedNow }

	records, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, calls, "Should refetch after the quota wait")

	require.Len(t, *waits, 1)
	assert.Equal(t, 2*time.Hour+30*time.Minute, (*waits)[0], "Should sleep until 00:00 UTC")
}

func TestFetchFixtures_MinuteLimitSleeps60s(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("x-ratelimit-remaining", "0")
			w.Write([]byte(okBody()))
			return
		}
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, waits := testClient(t, server, 5)

	records, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.Len(t, *waits, 1)
	assert.Equal(t, 60*time.Second, (*waits)[0])
}

func TestFetchFixtures_429HonorsRetryAfter(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, waits := testClient(t, server, 5)

	records, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.Len(t, *waits, 1)
	assert.Equal(t, 7*time.Second, (*waits)[0])
}

func TestFetchFixtures_RateLimitWaitsDoNotConsumeAttempts(t *testing.T) {
	// Three rate-limit responses followed by success, with only 2 attempts
	// allowed. The waits must not burn the attempt budget.
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 3 {
			w.Header().Set("x-ratelimit-remaining", "0")
			w.Write([]byte(okBody()))
			return
		}
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, _ := testClient(t, server, 2)

	records, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 4, calls)
}

func TestFetchFixtures_ServerErrorsBackOffThenGiveUp(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, waits := testClient(t, server, 3)

	records, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err, "Exhaustion degrades to empty, not an error")
	assert.Empty(t, records)
	assert.Equal(t, 3, calls, "Should stop at the attempt budget")
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, *waits,
		"Backoff should double per attempt")
}

func TestFetchFixtures_MalformedBodyRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"response": not json`))
			return
		}
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, _ := testClient(t, server, 5)

	records, err := c.FetchFixtures(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 2, calls)
}

func TestFetchFixtures_CancelledContextReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, _ := testClient(t, server, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchFixtures(ctx, nil)
	assert.Error(t, err, "Cancellation is the one hard failure")
}

func TestFetchFixturesByDateRange_Params(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(okBody()))
	}))
	defer server.Close()

	c, _ := testClient(t, server, 5)

	_, err := c.FetchFixturesByDateRange(context.Background(), 39, 2025, "2025-08-01", "2025-08-31")
	require.NoError(t, err)

	assert.Equal(t, "39", query["league"][0])
	assert.Equal(t, "2025", query["season"][0])
	assert.Equal(t, "2025-08-01", query["from"][0])
	assert.Equal(t, "2025-08-31", query["to"][0])
}

func TestFetchFixturesByIDs_Batches(t *testing.T) {
	var idParams []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idParams = append(idParams, r.URL.Query().Get("ids"))
		w.Write([]byte(`{"response":[{"fixture":{"id":1}}]}`))
	}))
	defer server.Close()

	c, _ := testClient(t, server, 5)

	records, err := c.FetchFixturesByIDs(context.Background(), []int64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Len(t, records, 3, "One record per batch response")
	assert.Equal(t, []string{"1-2", "3-4", "5"}, idParams)
}

func TestFetchFixturesByIDs_EmptyBatchSkipped(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"response":[]}`))
			return
		}
		w.Write([]byte(`{"response":[{"fixture":{"id":9}}]}`))
	}))
	defer server.Close()

	c, _ := testClient(t, server, 5)

	records, err := c.FetchFixturesByIDs(context.Background(), []int64{1, 2}, 1)
	require.NoError(t, err)
	assert.Len(t, records, 1, "Empty batch contributes nothing but does not abort")
}

func TestUntilNextUTCDay(t *testing.T) {
	now := time.Date(2025, 8, 16, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Minute, untilNextUTCDay(now))

	// Non-UTC wall clock still resolves against UTC midnight
	loc := time.FixedZone("UTC+2", 2*3600)
	local := time.Date(2025, 8, 17, 1, 59, 0, 0, loc)
	assert.Equal(t, time.Minute, untilNextUTCDay(local))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(1*time.Second))
	assert.Equal(t, 32*time.Second, nextBackoff(16*time.Second))
	assert.Equal(t, maxBackoff, nextBackoff(45*time.Second), "Backoff should cap at 60s")
	assert.Equal(t, maxBackoff, nextBackoff(maxBackoff))
}
