package registry

import (
	"sort"
	"sync"
)

// defaultWarehouses are the distribution-center codes known to serve
// Spain, found by an offline discovery crawl over postal codes.
var defaultWarehouses = []string{
	"4115", "3532", "2183", "bcn1", "4483", "4421", "alc1", "3684",
	"3968", "4644", "4097", "vlc1", "mad2", "4293", "2581", "4537",
	"4572", "2623", "4416", "4028", "2343", "4436", "4281", "mad1",
	"4308", "2749", "3947", "3951", "3996", "4068", "4069", "4230",
	"4267", "4354", "4385", "4472", "4558", "4697", "svq1",
}

// WarehouseRegistry is the set of known warehouse codes. It is built
// once at startup and injected into catalog sessions; after that it is
// only read.
type WarehouseRegistry struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

func NewWarehouseRegistry(codes []string) *WarehouseRegistry {
	r := &WarehouseRegistry{codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		r.codes[code] = struct{}{}
	}
	return r
}

// Default returns a registry holding the known Spanish warehouses.
func Default() *WarehouseRegistry {
	return NewWarehouseRegistry(defaultWarehouses)
}

func (r *WarehouseRegistry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codes[code]
	return ok
}

// Add registers a warehouse code. Meant for loading the results of a
// discovery run before the registry is handed out.
func (r *WarehouseRegistry) Add(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[code] = struct{}{}
}

func (r *WarehouseRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Codes returns the known warehouse codes in sorted order.
func (r *WarehouseRegistry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.codes))
	for code := range r.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
