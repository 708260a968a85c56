package mock

import (
	"context"

	"github.com/fwojciec/pulse"
)

var _ pulse.ModuleExtractor = (*ModuleExtractor)(nil)

// ModuleExtractor is a mock implementation of pulse.ModuleExtractor.
type ModuleExtractor struct {
	ExtractFn func(ctx context.Context, text string) ([]pulse.Module, error)
}

func (e *ModuleExtractor) Extract(ctx context.Context, text string) ([]pulse.Module, error) {
	return e.ExtractFn(ctx, text)
}
