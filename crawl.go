package pulse

import (
	"context"
	"net/url"
	"strings"
)

// CrawlRequest describes a single crawl. It is not modified once crawling starts.
type CrawlRequest struct {
	// Seeds are the starting URLs, visited in order. Their hosts form the
	// set of hosts the crawl may follow links into.
	Seeds []string

	// MaxDepth is the deepest link distance from a seed that is fetched.
	// Zero fetches only the seeds.
	MaxDepth int

	// MaxPages stops the crawl once that many pages are recorded.
	// Zero means no limit.
	MaxPages int
}

// Validate returns an EINVALID error if the request cannot be crawled.
func (r *CrawlRequest) Validate() error {
	if len(r.Seeds) == 0 {
		return Errorf(EINVALID, "at least one seed URL required")
	}
	for _, seed := range r.Seeds {
		u, err := url.Parse(strings.TrimSpace(seed))
		if err != nil {
			return Errorf(EINVALID, "invalid seed URL %q: %v", seed, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Errorf(EINVALID, "seed URL %q must be an absolute http(s) URL", seed)
		}
	}
	if r.MaxDepth < 0 {
		return Errorf(EINVALID, "max depth must not be negative")
	}
	if r.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must not be negative")
	}
	return nil
}

// CrawlResult is the outcome of a crawl.
type CrawlResult struct {
	// Pages are the recorded pages in visitation order.
	Pages []*Page

	// Visited counts URLs marked visited, including ones that failed
	// or fell below the content threshold.
	Visited int

	// Failed counts URLs abandoned on fetch or parse errors.
	Failed int
}

// Content returns the recorded page text keyed by URL.
func (r *CrawlResult) Content() map[string]string {
	m := make(map[string]string, len(r.Pages))
	for _, p := range r.Pages {
		m[p.URL] = p.Text
	}
	return m
}

// Text concatenates the page text in crawl order, separated by a blank line.
func (r *CrawlResult) Text() string {
	texts := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n")
}

// Crawler performs depth-bounded, same-host traversal from seed URLs.
type Crawler interface {
	// Crawl visits the request's seeds and the links reachable from them.
	// Per-page failures never fail the crawl; an error is returned only for
	// an invalid request or a canceled context, in which case the pages
	// recorded so far are still returned.
	Crawl(ctx context.Context, req *CrawlRequest) (*CrawlResult, error)
}
