package main

import (
	"fmt"

	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/fs"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	pipeline := &pulse.Pipeline{
		Crawler:   deps.Crawler,
		Extractor: deps.Extractor,
	}
	var saveErr error
	if deps.Pages != nil {
		pipeline.OnCrawled = func(result *pulse.CrawlResult) {
			saveErr = savePages(deps.Pages, result)
		}
	}

	req := &pulse.CrawlRequest{
		Seeds:    c.URLs,
		MaxDepth: c.Depth,
		MaxPages: c.MaxPages,
	}

	report, err := pipeline.Run(deps.Ctx, req)
	if saveErr != nil {
		fmt.Fprintf(deps.Stderr, "warning: failed to save pages: %v\n", saveErr)
	}
	if err != nil {
		switch pulse.ErrorCode(err) {
		case pulse.EINVALID, pulse.ENOCONTENT:
			fmt.Fprintf(deps.Stderr, "error: %s\n", pulse.ErrorMessage(err))
		default:
			fmt.Fprintf(deps.Stderr, "error: extraction failed: %v\n", err)
			if hint := pulse.ExtractionHint(err, c.Model); hint != "" {
				fmt.Fprintf(deps.Stderr, "Hint: %s\n", hint)
			}
		}
		return &reportedError{err: err}
	}

	if len(report.Modules) == 0 {
		fmt.Fprintln(deps.Stderr, "warning: the model returned nothing usable")
	}

	out, err := fs.MarshalModules(report.Modules)
	if err != nil {
		return fmt.Errorf("encode modules: %w", err)
	}
	if _, err := deps.Stdout.Write(out); err != nil {
		return err
	}

	if c.Output != "" {
		if err := fs.WriteModules(c.Output, report.Modules); err != nil {
			fmt.Fprintf(deps.Stderr, "error writing %s: %v\n", c.Output, err)
			return &reportedError{err: err}
		}
	}

	summary := pulse.Summarize(report.Modules)
	fmt.Fprintf(deps.Stderr, "Extracted %d modules (%d submodules, average confidence %.2f) from %d pages\n",
		summary.Modules, summary.Submodules, summary.AverageConfidence, report.PagesCrawled)
	if c.Output != "" {
		fmt.Fprintf(deps.Stderr, "Results saved to %s\n", c.Output)
	}

	return nil
}

// savePages writes every recorded page to store, committing only when all
// of them were saved.
func savePages(store *fs.PageStore, result *pulse.CrawlResult) error {
	if err := store.SaveAll(result); err != nil {
		_ = store.Abort()
		return err
	}
	return store.Commit()
}
