// Package extract turns crawled documentation text into a normalized module
// list using a structured-generation model, with results cached by input
// fingerprint.
package extract

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/pulse"
	"golang.org/x/sync/singleflight"
)

// Ensure Extractor implements pulse.ModuleExtractor at compile time.
var _ pulse.ModuleExtractor = (*Extractor)(nil)

// Extractor implements pulse.ModuleExtractor for a single model.
type Extractor struct {
	model         string
	gen           pulse.Generator
	cache         *Cache
	maxInputChars int
	logger        *slog.Logger
	group         singleflight.Group
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCache shares cache with other Extractors. Defaults to a fresh cache.
func WithCache(cache *Cache) Option {
	return func(e *Extractor) {
		e.cache = cache
	}
}

// WithMaxInputChars sets how many characters of input are sent to the model.
// Defaults to MaxInputChars.
func WithMaxInputChars(n int) Option {
	return func(e *Extractor) {
		e.maxInputChars = n
	}
}

// WithLogger sets the logger for cache and normalization diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor for model. A nil gen selects mock mode,
// in which Extract returns MockModules without calling any service.
func NewExtractor(model string, gen pulse.Generator, opts ...Option) *Extractor {
	e := &Extractor{
		model:         model,
		gen:           gen,
		maxInputChars: MaxInputChars,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewCache()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Model returns the model identifier requests are sent to.
func (e *Extractor) Model() string { return e.model }

// Mock reports whether the Extractor runs without a generator.
func (e *Extractor) Mock() bool { return e.gen == nil }

// Cache returns the Extractor's cache.
func (e *Extractor) Cache() *Cache { return e.cache }

// Extract returns the module list for text.
//
// A cached result for the same text is returned as stored, without calling
// the generator. Otherwise one generation request is made and its response
// normalized with Decode. Generator and JSON errors are returned unmodified
// and nothing is cached. Concurrent misses for the same text share a single
// request, which keeps running when the caller that started it gives up;
// a canceled caller returns its own ctx error.
func (e *Extractor) Extract(ctx context.Context, text string) ([]pulse.Module, error) {
	key := Fingerprint(text)
	if modules, ok := e.cache.Get(key); ok {
		e.logger.Debug("extraction cache hit", "fingerprint", key)
		return modules, nil
	}

	if e.gen == nil {
		return MockModules(), nil
	}

	// The shared call must not fail because one waiting caller gave up, so
	// it runs detached from cancellation and each caller waits on its own ctx.
	genCtx := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (any, error) {
		if modules, ok := e.cache.Get(key); ok {
			return modules, nil
		}

		resp, err := e.gen.Generate(genCtx, &pulse.GenerateRequest{
			Model:  e.model,
			System: SystemInstruction,
			Prompt: BuildPrompt(text, e.maxInputChars),
			JSON:   true,
		})
		if err != nil {
			return nil, err
		}

		decoded, err := Decode(resp)
		if err != nil {
			return nil, err
		}
		if len(decoded.Modules) == 0 {
			e.logger.Warn("extraction returned no modules", "model", e.model, "shape", decoded.Shape)
		}

		e.cache.Put(key, decoded.Modules)
		return decoded.Modules, nil
	})

	var v any
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		v = res.Val
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	modules, _ := v.([]pulse.Module)
	return modules, nil
}
