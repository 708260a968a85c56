package crawl

import (
	"net/url"
	"strings"
)

// OriginSet is the set of network locations (host, with port if present)
// a crawl is allowed to follow links into. It is derived once from the
// seed URLs and never changes during a crawl.
type OriginSet map[string]struct{}

// NewOriginSet builds an OriginSet from seed URLs. Seeds that do not parse
// or have no host contribute nothing.
func NewOriginSet(seeds []string) OriginSet {
	s := make(OriginSet, len(seeds))
	for _, seed := range seeds {
		if host := hostOf(seed); host != "" {
			s[host] = struct{}{}
		}
	}
	return s
}

// Contains reports whether rawURL has a network location in the set.
// URLs without a host are never contained.
func (s OriginSet) Contains(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	_, ok := s[host]
	return ok
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
