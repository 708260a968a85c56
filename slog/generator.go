package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pulse"
)

// Ensure LoggingGenerator implements pulse.Generator.
var _ pulse.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with debug logging.
type LoggingGenerator struct {
	next   pulse.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next pulse.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate logs request and response sizes and delegates to the wrapped generator.
func (g *LoggingGenerator) Generate(ctx context.Context, req *pulse.GenerateRequest) (resp string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"model", req.Model,
			"prompt_bytes", len(req.Prompt),
			"json", req.JSON,
			"response_bytes", len(resp),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, req)
}
