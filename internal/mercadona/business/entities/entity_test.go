package entities

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/internal/mercadona/pkg/clients"
)

// fakeFetcher scripts transport responses per endpoint and counts every
// call the engine makes.
type fakeFetcher struct {
	mu        sync.Mutex
	calls     map[string]int
	responses map[string]func(call int) (models.Payload, *clients.APIError)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:     make(map[string]int),
		responses: make(map[string]func(int) (models.Payload, *clients.APIError)),
	}
}

func (f *fakeFetcher) respond(endpoint string, fn func(call int) (models.Payload, *clients.APIError)) {
	f.responses[endpoint] = fn
}

func (f *fakeFetcher) always(endpoint string, payload models.Payload, apiErr *clients.APIError) {
	f.respond(endpoint, func(int) (models.Payload, *clients.APIError) {
		return payload, apiErr
	})
}

func (f *fakeFetcher) FetchJSON(ctx context.Context, endpoint string, params url.Values) (models.Payload, *clients.APIError) {
	f.mu.Lock()
	f.calls[endpoint]++
	call := f.calls[endpoint]
	fn := f.responses[endpoint]
	f.mu.Unlock()

	if fn == nil {
		return nil, &clients.APIError{Code: http.StatusNotFound}
	}
	return fn(call)
}

func (f *fakeFetcher) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func testContext() Context {
	return Context{Warehouse: "mad1", Language: "es"}
}

// newTestItem builds a remoteItem whose backoff sleeps are recorded
// instead of actually waiting.
func newTestItem(t *testing.T, api Fetcher, retry RetryPolicy) (*remoteItem, *[]time.Duration) {
	t.Helper()
	item := newRemoteItem("42", "/api/test/42/", testContext(), api, retry, nil)
	delays := &[]time.Duration{}
	item.sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return &item, delays
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	api := newFakeFetcher()
	api.always("/api/test/42/", models.Payload{"id": "42"}, nil)

	item, _ := newTestItem(t, api, DefaultRetryPolicy)
	item.ensureLoaded(context.Background())
	item.ensureLoaded(context.Background())

	assert.Equal(t, 1, api.callCount("/api/test/42/"), "second ensureLoaded must be a pure no-op")
	assert.True(t, item.exists(context.Background()))
	assert.Equal(t, 1, api.callCount("/api/test/42/"), "exists on a loaded item must not fetch")
}

func TestRateLimitRetriesAreBounded(t *testing.T) {
	api := newFakeFetcher()
	api.always("/api/test/42/", nil, &clients.APIError{Code: http.StatusTooManyRequests})

	retry := RetryPolicy{Attempts: 3, BaseDelay: 20 * time.Second}
	item, delays := newTestItem(t, api, retry)
	item.ensureLoaded(context.Background())

	assert.Equal(t, 3, api.callCount("/api/test/42/"), "engine must attempt exactly Attempts times")
	assert.True(t, item.snapshot().IsEmpty(), "exhausted retries must leave an empty cache")
	require.Len(t, *delays, 3)
	assert.Equal(t, 20*time.Second, (*delays)[0])
	assert.Equal(t, 80*time.Second, (*delays)[1])
	assert.Equal(t, 180*time.Second, (*delays)[2])
}

func TestBackoffGrowsQuadratically(t *testing.T) {
	retry := RetryPolicy{Attempts: 5, BaseDelay: 20 * time.Second}
	previous := time.Duration(0)
	for attempt := 1; attempt <= 5; attempt++ {
		delay := retry.Backoff(attempt)
		assert.Equal(t, time.Duration(attempt*attempt)*retry.BaseDelay, delay)
		assert.Greater(t, delay, previous, "backoff must grow monotonically")
		previous = delay
	}
}

func TestNotFoundShortCircuits(t *testing.T) {
	api := newFakeFetcher()
	api.always("/api/test/42/", nil, &clients.APIError{Code: http.StatusNotFound})

	item, delays := newTestItem(t, api, DefaultRetryPolicy)
	item.ensureLoaded(context.Background())

	assert.Equal(t, 1, api.callCount("/api/test/42/"), "404 must not be retried")
	assert.Empty(t, *delays)
	assert.False(t, item.exists(context.Background()))
}

func TestOtherErrorsAreTerminal(t *testing.T) {
	api := newFakeFetcher()
	api.always("/api/test/42/", nil, &clients.APIError{Code: http.StatusInternalServerError})

	item, delays := newTestItem(t, api, DefaultRetryPolicy)
	item.ensureLoaded(context.Background())

	assert.Equal(t, 1, api.callCount("/api/test/42/"))
	assert.Empty(t, *delays)
	assert.True(t, item.snapshot().IsEmpty())
}

func TestEventualSuccessAfterRateLimit(t *testing.T) {
	api := newFakeFetcher()
	api.respond("/api/test/42/", func(call int) (models.Payload, *clients.APIError) {
		if call < 3 {
			return nil, &clients.APIError{Code: http.StatusTooManyRequests}
		}
		return models.Payload{"id": "42", "display_name": "Leche entera"}, nil
	})

	item, delays := newTestItem(t, api, DefaultRetryPolicy)
	item.ensureLoaded(context.Background())

	assert.Equal(t, 3, api.callCount("/api/test/42/"))
	assert.Len(t, *delays, 2)
	assert.Equal(t, "Leche entera", item.snapshot().String("display_name"))
}

func TestBackoffSleepIsCancellable(t *testing.T) {
	api := newFakeFetcher()
	api.always("/api/test/42/", nil, &clients.APIError{Code: http.StatusTooManyRequests})

	item := newRemoteItem("42", "/api/test/42/", testContext(), api, RetryPolicy{Attempts: 3, BaseDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		item.ensureLoaded(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled backoff must not block")
	}
	assert.Equal(t, 1, api.callCount("/api/test/42/"))
}
