package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/pulse"
)

// Ensure LoggingPageParser implements pulse.PageParser.
var _ pulse.PageParser = (*LoggingPageParser)(nil)

// LoggingPageParser wraps a PageParser with debug logging.
type LoggingPageParser struct {
	next   pulse.PageParser
	logger *slog.Logger
}

// NewLoggingPageParser creates a new LoggingPageParser.
func NewLoggingPageParser(next pulse.PageParser, logger *slog.Logger) *LoggingPageParser {
	return &LoggingPageParser{next: next, logger: logger}
}

// Parse delegates to the wrapped parser and logs what it found.
func (p *LoggingPageParser) Parse(html, pageURL string) (page *pulse.ParsedPage, err error) {
	defer func(begin time.Time) {
		var chars, links int
		if page != nil {
			chars = len([]rune(page.Text))
			links = len(page.Links)
		}
		p.logger.Info("parse",
			"url", pageURL,
			"chars", chars,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Parse(html, pageURL)
}
