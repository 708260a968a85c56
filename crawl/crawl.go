// Package crawl provides depth-bounded, same-host documentation crawling.
// It coordinates fetching and parsing of pages reachable from a set of
// seed URLs and records the pages that carry meaningful content.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/bloom"
	"golang.org/x/sync/errgroup"
)

// Crawl defaults.
const (
	// DefaultFetchTimeout bounds each individual fetch.
	DefaultFetchTimeout = 10 * time.Second

	// MinContentLength is the number of characters a page's cleaned text
	// must exceed to be recorded.
	MinContentLength = 100
)

// Ensure Crawler implements pulse.Crawler at compile time.
var _ pulse.Crawler = (*Crawler)(nil)

// Crawler performs depth-first traversal from seed URLs, following only
// links whose host matches one of the seeds.
type Crawler struct {
	Fetcher pulse.Fetcher
	Parser  pulse.PageParser

	// Concurrency is the number of fetch workers. Values below 2 visit
	// pages strictly one at a time in depth-first document order.
	Concurrency int

	// FetchTimeout bounds each fetch. Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration

	// Logger receives per-page outcomes. Defaults to discarding output.
	Logger *slog.Logger

	// Progress, if set, receives an event for every visited URL.
	// It is called from the coordinating goroutine only.
	Progress ProgressFunc
}

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type     ProgressType
	URL      string
	Depth    int
	Chars    int
	Recorded int
	Visited  int
	Error    error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	// ProgressRecorded means the page passed the content gate.
	ProgressRecorded ProgressType = iota
	// ProgressSkipped means the page's text was too short to record.
	ProgressSkipped
	// ProgressFailed means the fetch or parse failed.
	ProgressFailed
	// ProgressLimited means the page arrived after MaxPages was reached
	// and was dropped unexamined.
	ProgressLimited
	// ProgressFinished is sent once when the crawl ends.
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// visitResult holds the outcome of fetching and parsing a single URL.
type visitResult struct {
	item   Item
	parsed *pulse.ParsedPage
	err    error
}

// Crawl visits every seed in order, then follows same-host links depth
// first up to req.MaxDepth. Each URL is fetched at most once per call.
//
// Fetch and parse failures are logged and abandon only the URL involved.
// When ctx is canceled the pages recorded so far are returned together
// with the context error.
func (c *Crawler) Crawl(ctx context.Context, req *pulse.CrawlRequest) (*pulse.CrawlResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	concurrency := max(c.Concurrency, 1)

	origins := NewOriginSet(req.Seeds)
	visited := bloom.NewVisitedSet(bloom.DefaultExpectedURLs, bloom.DefaultFalsePositiveRate)
	frontier := NewFrontier()

	seeds := make([]Item, 0, len(req.Seeds))
	for _, seed := range req.Seeds {
		seeds = append(seeds, Item{URL: strings.TrimSpace(seed)})
	}
	frontier.PushAll(seeds)

	result := &pulse.CrawlResult{Pages: []*pulse.Page{}}

	workCh := make(chan Item)
	resultCh := make(chan visitResult)

	g, gctx := errgroup.WithContext(ctx)
	for range concurrency {
		g.Go(func() error {
			for item := range workCh {
				res := c.visit(gctx, item)
				select {
				case resultCh <- res:
				case <-gctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	limitReached := func() bool {
		return req.MaxPages > 0 && len(result.Pages) >= req.MaxPages
	}

	// next pops items until one is claimed in the visited set. Depth and
	// visited checks happen here, at dequeue, before any fetch.
	next := func() (Item, bool) {
		for {
			item, ok := frontier.Pop()
			if !ok {
				return Item{}, false
			}
			if item.Depth > req.MaxDepth {
				continue
			}
			if !visited.MarkIfNotVisited(item.URL) {
				continue
			}
			result.Visited = visited.Len()
			return item, true
		}
	}

	handle := func(res visitResult) {
		event := ProgressEvent{URL: res.item.URL, Depth: res.item.Depth}
		defer func() {
			if c.Progress != nil {
				event.Recorded = len(result.Pages)
				event.Visited = result.Visited
				c.Progress(event)
			}
		}()

		if res.err != nil {
			result.Failed++
			event.Type = ProgressFailed
			event.Error = res.err
			logger.Warn("crawl failed", "url", res.item.URL, "depth", res.item.Depth, "err", res.err)
			return
		}
		if limitReached() {
			event.Type = ProgressLimited
			return
		}

		chars := utf8.RuneCountInString(res.parsed.Text)
		event.Chars = chars
		if chars > MinContentLength {
			result.Pages = append(result.Pages, &pulse.Page{URL: res.item.URL, Text: res.parsed.Text})
			event.Type = ProgressRecorded
			logger.Info("page recorded", "url", res.item.URL, "depth", res.item.Depth, "chars", chars)
		} else {
			event.Type = ProgressSkipped
			logger.Warn("content too short", "url", res.item.URL, "depth", res.item.Depth, "chars", chars)
		}

		if res.item.Depth >= req.MaxDepth {
			return
		}
		children := make([]Item, 0, len(res.parsed.Links))
		for _, link := range res.parsed.Links {
			link = StripFragment(link)
			if !origins.Contains(link) || visited.Visited(link) {
				continue
			}
			children = append(children, Item{URL: link, Depth: res.item.Depth + 1})
		}
		frontier.PushAll(children)
	}

	pending := 0
coordinatorLoop:
	for ctx.Err() == nil {
		if pending < concurrency && !limitReached() {
			if item, ok := next(); ok {
				select {
				case workCh <- item:
					pending++
					continue
				case <-ctx.Done():
					break coordinatorLoop
				}
			}
		}
		if pending == 0 {
			break
		}
		select {
		case res := <-resultCh:
			pending--
			handle(res)
		case <-ctx.Done():
			break coordinatorLoop
		}
	}

	close(workCh)
	_ = g.Wait()

	logger.Info("crawl finished",
		"recorded", len(result.Pages),
		"visited", result.Visited,
		"failed", result.Failed,
		"pending", frontier.Len(),
	)

	if c.Progress != nil {
		c.Progress(ProgressEvent{
			Type:     ProgressFinished,
			Recorded: len(result.Pages),
			Visited:  result.Visited,
		})
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("crawl: %w", err)
	}
	return result, nil
}

// visit fetches and parses a single URL.
func (c *Crawler) visit(ctx context.Context, item Item) visitResult {
	res := visitResult{item: item}

	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	html, err := c.Fetcher.Fetch(fetchCtx, item.URL)
	if err != nil {
		res.err = err
		return res
	}

	parsed, err := c.Parser.Parse(html, item.URL)
	if err != nil {
		res.err = fmt.Errorf("parse: %w", err)
		return res
	}
	res.parsed = parsed
	return res
}
