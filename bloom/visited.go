// Package bloom provides the per-crawl visited set, backed by a Bloom filter
// pre-check in front of an exact set.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Sizing for the Bloom pre-filter. Crawls larger than this still dedupe
// exactly; only the pre-filter's false positive rate degrades.
const (
	DefaultExpectedURLs      = 10000
	DefaultFalsePositiveRate = 0.01
)

// VisitedSet records URLs that a crawl has claimed. It is safe for
// concurrent use.
type VisitedSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet sized for n expected URLs
// with the given Bloom false positive rate.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		filter: bloom.NewWithEstimates(n, fpRate),
		exact:  make(map[string]struct{}),
	}
}

// MarkIfNotVisited marks url as visited and reports whether this call
// claimed it. Exactly one caller wins for any given URL.
func (s *VisitedSet) MarkIfNotVisited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A negative Bloom test is definitive, so the map lookup is only
	// needed for possible members.
	if s.filter.TestString(url) {
		if _, ok := s.exact[url]; ok {
			return false
		}
	}
	s.filter.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Visited reports whether url has been marked.
func (s *VisitedSet) Visited(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.filter.TestString(url) {
		return false
	}
	_, ok := s.exact[url]
	return ok
}

// Len returns the number of marked URLs.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exact)
}
