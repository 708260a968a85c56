package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pulse"
)

// Ensure LoggingCrawler implements pulse.Crawler.
var _ pulse.Crawler = (*LoggingCrawler)(nil)

// LoggingCrawler wraps a Crawler with debug logging.
type LoggingCrawler struct {
	next   pulse.Crawler
	logger *slog.Logger
}

// NewLoggingCrawler creates a new LoggingCrawler.
func NewLoggingCrawler(next pulse.Crawler, logger *slog.Logger) *LoggingCrawler {
	return &LoggingCrawler{next: next, logger: logger}
}

// Crawl delegates to the wrapped crawler and logs the outcome.
func (c *LoggingCrawler) Crawl(ctx context.Context, req *pulse.CrawlRequest) (result *pulse.CrawlResult, err error) {
	defer func(begin time.Time) {
		var pages, visited, failed int
		if result != nil {
			pages, visited, failed = len(result.Pages), result.Visited, result.Failed
		}
		c.logger.Info("crawl",
			"seeds", len(req.Seeds),
			"max_depth", req.MaxDepth,
			"pages", pages,
			"visited", visited,
			"failed", failed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Crawl(ctx, req)
}
