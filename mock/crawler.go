package mock

import (
	"context"

	"github.com/fwojciec/pulse"
)

var _ pulse.Crawler = (*Crawler)(nil)

// Crawler is a mock implementation of pulse.Crawler.
type Crawler struct {
	CrawlFn func(ctx context.Context, req *pulse.CrawlRequest) (*pulse.CrawlResult, error)
}

func (c *Crawler) Crawl(ctx context.Context, req *pulse.CrawlRequest) (*pulse.CrawlResult, error) {
	return c.CrawlFn(ctx, req)
}
