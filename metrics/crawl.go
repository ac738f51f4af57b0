package metrics

import "sync/atomic"

// CrawlMetrics carries live counters for a warehouse discovery run.
type CrawlMetrics struct {
	CheckedCount    atomic.Int32
	WarehousesFound atomic.Int32
	ErroredLookups  atomic.Int32
	FrontierPeak    atomic.Int32
}
