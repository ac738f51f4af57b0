package discovery

import (
	"context"
	"io"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"gomercadona_api/config/values"
	"gomercadona_api/metrics"
	"gomercadona_api/pkg/logger"
)

const (
	// DefaultWorkers bounds concurrent point-lookups in flight.
	DefaultWorkers = 5
	// DefaultBatchSize bounds how many frontier codes are dispatched
	// between queue mutations.
	DefaultBatchSize = 10
)

// Resolver is the point-lookup primitive: one postal code in, the
// warehouse serving it (or ok=false) out. Lookup failures count as "no
// warehouse" and never abort a crawl.
type Resolver interface {
	Resolve(ctx context.Context, postalCode string) (string, bool)
}

// WarehouseFinder explores the postal-code space to discover the
// distinct warehouse codes serving the country. Edges of the search
// graph are synthetic: the neighbors of a code are the codes differing
// by ±1 (mod 10) in exactly one digit. This is a one-shot offline
// maintenance crawl, not part of the steady-state client path.
type WarehouseFinder struct {
	resolver  Resolver
	workers   int
	batchSize int
	limiter   *rate.Limiter
	log       logger.Logger
	Metrics   metrics.CrawlMetrics
}

func NewWarehouseFinder(resolver Resolver, writer io.Writer) *WarehouseFinder {
	return &WarehouseFinder{
		resolver:  resolver,
		workers:   DefaultWorkers,
		batchSize: DefaultBatchSize,
		log:       logger.NewLogger(writer, "[discovery]"),
	}
}

func (f *WarehouseFinder) WithWorkers(n int) *WarehouseFinder {
	if n > 0 {
		f.workers = n
	}
	return f
}

func (f *WarehouseFinder) WithBatchSize(n int) *WarehouseFinder {
	if n > 0 {
		f.batchSize = n
	}
	return f
}

// WithLimiter paces point-lookups across all workers.
func (f *WarehouseFinder) WithLimiter(limiter *rate.Limiter) *WarehouseFinder {
	f.limiter = limiter
	return f
}

// WithCrawlValues applies a parsed crawl config section. Zero values
// keep the defaults; a zero rate limit leaves lookups unpaced.
func (f *WarehouseFinder) WithCrawlValues(v values.CrawlValues) *WarehouseFinder {
	f.WithWorkers(v.Workers).WithBatchSize(v.BatchSize)
	if v.RequestsPerSecond > 0 {
		f.WithLimiter(rate.NewLimiter(rate.Limit(v.RequestsPerSecond), 1))
	}
	return f
}

// Neighbors generates the synthetic neighbors of a 5-digit postal code:
// for each digit position, the two codes with that digit incremented
// and decremented modulo 10. Codes that are not 5 digits have no
// neighbors.
func Neighbors(postalCode string) []string {
	if len(postalCode) != 5 {
		return nil
	}
	digits := []byte(postalCode)
	for _, d := range digits {
		if d < '0' || d > '9' {
			return nil
		}
	}

	seen := make(map[string]struct{}, 10)
	neighbors := make([]string, 0, 10)
	for i := range digits {
		original := digits[i]
		for _, change := range []int{-1, 1} {
			digits[i] = byte('0' + (int(original-'0')+change+10)%10)
			neighbor := string(digits)
			if _, ok := seen[neighbor]; !ok && neighbor != postalCode {
				seen[neighbor] = struct{}{}
				neighbors = append(neighbors, neighbor)
			}
		}
		digits[i] = original
	}
	return neighbors
}

type lookupResult struct {
	postalCode string
	warehouse  string
	ok         bool
}

// Find runs the crawl from the given seed postal codes and returns the
// sorted set of distinct warehouse codes observed. The frontier is
// mutated only between batches by this goroutine; workers only resolve.
func (f *WarehouseFinder) Find(ctx context.Context, seeds []string) ([]string, error) {
	visited := make(map[string]struct{})
	found := make(map[string]struct{})
	frontier := make([]string, 0, len(seeds))
	frontier = append(frontier, seeds...)

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if peak := int32(len(frontier)); peak > f.Metrics.FrontierPeak.Load() {
			f.Metrics.FrontierPeak.Store(peak)
		}

		// Pop a batch, marking codes visited before dispatch so a code
		// is never resolved twice however many parents enqueued it.
		batch := make([]string, 0, f.batchSize)
		for len(batch) < f.batchSize && len(frontier) > 0 {
			code := frontier[0]
			frontier = frontier[1:]
			if _, ok := visited[code]; ok {
				continue
			}
			visited[code] = struct{}{}
			batch = append(batch, code)
		}
		if len(batch) == 0 {
			continue
		}

		for _, result := range f.resolveBatch(ctx, batch) {
			f.Metrics.CheckedCount.Add(1)
			if !result.ok {
				f.Metrics.ErroredLookups.Add(1)
				continue
			}

			if _, known := found[result.warehouse]; !known {
				f.log.Log("Found new warehouse code %s for postal code %s", result.warehouse, result.postalCode)
				f.Metrics.WarehousesFound.Add(1)
			}
			found[result.warehouse] = struct{}{}

			for _, neighbor := range Neighbors(result.postalCode) {
				if _, ok := visited[neighbor]; !ok {
					frontier = append(frontier, neighbor)
				}
			}
		}
	}

	warehouses := make([]string, 0, len(found))
	for warehouse := range found {
		warehouses = append(warehouses, warehouse)
	}
	sort.Strings(warehouses)

	f.log.Log("Crawl finished: %d postal codes checked, %d warehouses", f.Metrics.CheckedCount.Load(), len(warehouses))
	return warehouses, nil
}

// resolveBatch dispatches one batch to the bounded worker pool and
// collects every result before returning.
func (f *WarehouseFinder) resolveBatch(ctx context.Context, batch []string) []lookupResult {
	jobs := make(chan string, len(batch))
	results := make(chan lookupResult, len(batch))

	workers := f.workers
	if workers > len(batch) {
		workers = len(batch)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				if f.limiter != nil {
					if err := f.limiter.Wait(ctx); err != nil {
						results <- lookupResult{postalCode: code}
						continue
					}
				}
				warehouse, ok := f.resolver.Resolve(ctx, code)
				results <- lookupResult{postalCode: code, warehouse: warehouse, ok: ok}
			}
		}()
	}

	for _, code := range batch {
		jobs <- code
	}
	close(jobs)
	wg.Wait()
	close(results)

	collected := make([]lookupResult, 0, len(batch))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}
