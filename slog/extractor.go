package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pulse"
)

// Ensure LoggingModuleExtractor implements pulse.ModuleExtractor.
var _ pulse.ModuleExtractor = (*LoggingModuleExtractor)(nil)

// LoggingModuleExtractor wraps a ModuleExtractor with debug logging.
type LoggingModuleExtractor struct {
	next   pulse.ModuleExtractor
	logger *slog.Logger
}

// NewLoggingModuleExtractor creates a new LoggingModuleExtractor.
func NewLoggingModuleExtractor(next pulse.ModuleExtractor, logger *slog.Logger) *LoggingModuleExtractor {
	return &LoggingModuleExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the module count.
func (e *LoggingModuleExtractor) Extract(ctx context.Context, text string) (modules []pulse.Module, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract",
			"chars", len([]rune(text)),
			"count", len(modules),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, text)
}
