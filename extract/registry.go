package extract

import (
	"sync"

	"github.com/fwojciec/pulse"
)

// Registry hands out one long-lived Extractor per model so that each
// model's cache survives across requests.
type Registry struct {
	gen  pulse.Generator
	opts []Option

	mu         sync.Mutex
	extractors map[string]*Extractor
}

// NewRegistry creates a Registry whose Extractors use gen. A nil gen puts
// every Extractor in mock mode. opts apply to each Extractor, except that
// every model always gets its own cache.
func NewRegistry(gen pulse.Generator, opts ...Option) *Registry {
	return &Registry{
		gen:        gen,
		opts:       opts,
		extractors: make(map[string]*Extractor),
	}
}

// Extractor returns the Extractor for model, creating it on first use.
func (r *Registry) Extractor(model string) *Extractor {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.extractors[model]; ok {
		return e
	}
	opts := append(append([]Option{}, r.opts...), WithCache(NewCache()))
	e := NewExtractor(model, r.gen, opts...)
	r.extractors[model] = e
	return e
}
