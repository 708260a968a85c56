package mock

import (
	"context"

	"github.com/fwojciec/pulse"
)

var _ pulse.Generator = (*Generator)(nil)

// Generator is a mock implementation of pulse.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, req *pulse.GenerateRequest) (string, error)
}

func (g *Generator) Generate(ctx context.Context, req *pulse.GenerateRequest) (string, error) {
	return g.GenerateFn(ctx, req)
}
