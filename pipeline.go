package pulse

import "context"

// Report is the outcome of a pipeline run.
type Report struct {
	Modules      []Module
	PagesCrawled int

	// InputLength is the length in characters of the text handed to the
	// extractor, before any truncation the extractor applies.
	InputLength int
}

// Pipeline runs a crawl to completion and extracts modules from its text.
type Pipeline struct {
	Crawler   Crawler
	Extractor ModuleExtractor

	// OnCrawled, if set, is called with the crawl result before extraction.
	OnCrawled func(*CrawlResult)
}

// Run crawls req and extracts modules from the concatenated page text.
//
// A crawl that records no pages fails with ENOCONTENT and the extractor is
// never called. Extraction errors are returned unmodified.
func (p *Pipeline) Run(ctx context.Context, req *CrawlRequest) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := p.Crawler.Crawl(ctx, req)
	if err != nil {
		return nil, err
	}
	if p.OnCrawled != nil {
		p.OnCrawled(result)
	}
	if len(result.Pages) == 0 {
		return nil, Errorf(ENOCONTENT, "no content found to extract")
	}

	text := result.Text()
	modules, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []Module{}
	}

	return &Report{
		Modules:      modules,
		PagesCrawled: len(result.Pages),
		InputLength:  len([]rune(text)),
	}, nil
}
