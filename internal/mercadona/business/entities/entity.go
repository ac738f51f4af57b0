package entities

import (
	"context"
	"net/url"
	"sync"
	"time"

	"gomercadona_api/internal/mercadona/business/models"
	"gomercadona_api/internal/mercadona/pkg/clients"
	"gomercadona_api/metrics"
	"gomercadona_api/pkg/logger"
)

// Fetcher is the transport surface the lazy engine consumes. It returns
// either a decoded payload or a structured error, never both.
type Fetcher interface {
	FetchJSON(ctx context.Context, endpoint string, params url.Values) (models.Payload, *clients.APIError)
}

// Context is the immutable (warehouse, language) pair every entity is
// bound to at construction. All fetches for the entity carry it as
// query parameters.
type Context struct {
	Warehouse string
	Language  string
}

func (c Context) QueryParams() url.Values {
	return url.Values{
		"lang": []string{c.Language},
		"wh":   []string{c.Warehouse},
	}
}

// RetryPolicy bounds the rate-limit retry loop. A rate-limited attempt
// n sleeps n² × BaseDelay before the next try.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * p.BaseDelay
}

var (
	DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 20 * time.Second}

	// Product listings are fetched in bulk during catalog exports, so
	// products back off on a shorter base delay.
	DefaultProductRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: 10 * time.Second}
)

// remoteItem is the shared lazy-fetch core behind every catalog entity.
// It holds the identifier, the endpoint, the bound Context and the
// cached payload, and performs the fetch-with-retry protocol on demand.
//
// The mutex guards the whole fetch-and-store sequence, so one entity
// instance may be read from several goroutines.
type remoteItem struct {
	id       string
	endpoint string
	bound    Context
	api      Fetcher
	retry    RetryPolicy
	log      logger.Logger
	sleep    func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	data      models.Payload
	loaded    bool
	refreshed bool
}

func newRemoteItem(id, endpoint string, bound Context, api Fetcher, retry RetryPolicy, log logger.Logger) remoteItem {
	if log == nil {
		log = logger.NewLogger(nil, "[catalog]")
	}
	return remoteItem{
		id:       id,
		endpoint: endpoint,
		bound:    bound,
		api:      api,
		retry:    retry,
		log:      log,
		sleep:    sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchLocked runs the fetch protocol. Rate-limited responses are
// retried up to retry.Attempts times with quadratic backoff; not-found
// and any other error empty the cache immediately. Callers hold mu.
func (r *remoteItem) fetchLocked(ctx context.Context) {
	for attempt := 1; attempt <= r.retry.Attempts; attempt++ {
		payload, apiErr := r.api.FetchJSON(ctx, r.endpoint, r.bound.QueryParams())
		if apiErr == nil {
			r.data = payload
			return
		}

		if apiErr.RateLimited() {
			delay := r.retry.Backoff(attempt)
			r.log.Log("[%d/%d]: Retrying to fetch %s in %s...", attempt, r.retry.Attempts, r.endpoint, delay)
			metrics.RecordRetry()
			if err := r.sleep(ctx, delay); err != nil {
				break
			}
			continue
		}

		if apiErr.NotFound() {
			r.log.Log("Couldn't find %s", r.endpoint)
		} else {
			r.log.Log("Error fetching data for %s: %v", r.endpoint, apiErr)
		}
		break
	}
	r.data = nil
}

// ensureLoaded performs the first fetch if the cache was never
// populated. Repeated calls on a loaded item are no-ops.
func (r *remoteItem) ensureLoaded(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoadedLocked(ctx)
}

func (r *remoteItem) ensureLoadedLocked(ctx context.Context) {
	if r.loaded {
		return
	}
	r.fetchLocked(ctx)
	r.loaded = true
}

// ensureComplete loads the item and, when the cached payload does not
// satisfy the given completeness predicate, fetches one more time. The
// follow-up fetch happens at most once per item regardless of how many
// incomplete reads occur: entities constructed from partial listing
// payloads pay for exactly one extra round trip.
func (r *remoteItem) ensureComplete(ctx context.Context, complete func(models.Payload) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureLoadedLocked(ctx)
	if r.data.IsEmpty() || r.refreshed || complete(r.data) {
		return
	}
	r.fetchLocked(ctx)
	r.refreshed = true
}

// refresh discards the cache and runs the fetch protocol again. The
// completeness override is re-armed too: a partial refreshed payload
// may pay one follow-up fetch again.
func (r *remoteItem) refresh(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	r.refreshed = false
	r.fetchLocked(ctx)
	r.loaded = true
}

// snapshot returns the cached payload for reading. The payload is never
// mutated after being stored, so sharing it is safe.
func (r *remoteItem) snapshot() models.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// exists forces a load and reports whether the identifier resolved to
// anything upstream. This is the canonical existence check: fields of a
// not-found entity read as zero values instead of failing.
func (r *remoteItem) exists(ctx context.Context) bool {
	r.ensureLoaded(ctx)
	return !r.snapshot().IsEmpty()
}
