package pulse

import (
	"context"
	"fmt"
	"strings"
)

// Module is one top-level functional area of a documented product.
//
// JSON keys follow the extraction schema exactly, including the
// capitalized Description and Submodules keys.
type Module struct {
	Name        string            `json:"module"`
	Description string            `json:"Description"`
	Submodules  map[string]string `json:"Submodules"`

	// Confidence is the model's self-reported score. It is not clamped;
	// nil means the model did not report a numeric score.
	Confidence *float64 `json:"confidence_score,omitempty"`
}

// ModuleExtractor turns concatenated documentation text into modules.
type ModuleExtractor interface {
	// Extract returns the normalized module list for text. A response the
	// model shaped unexpectedly yields an empty list, not an error.
	// Service and decode errors are returned unmodified.
	Extract(ctx context.Context, text string) ([]Module, error)
}

// Summary holds aggregate figures about an extraction result.
type Summary struct {
	Modules           int     `json:"modules"`
	Submodules        int     `json:"submodules"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Summarize computes a Summary. Modules without a confidence score count as zero.
func Summarize(modules []Module) Summary {
	var s Summary
	var total float64
	for _, m := range modules {
		s.Submodules += len(m.Submodules)
		if m.Confidence != nil {
			total += *m.Confidence
		}
	}
	s.Modules = len(modules)
	if s.Modules > 0 {
		s.AverageConfidence = total / float64(s.Modules)
	}
	return s
}

// ExtractionHint classifies a structured-generation failure into a short
// user-facing hint. It returns "" when the error is not recognized.
// The error itself is left unchanged and should still be reported.
func ExtractionHint(err error, model string) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "authentication"), strings.Contains(msg, "api key not valid"):
		return "authentication error: check GEMINI_API_KEY"
	case strings.Contains(msg, "429"), strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"):
		return "rate limit error: the model quota has been exceeded"
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"):
		return fmt.Sprintf("model error: the model %q does not exist or is not available to this key", model)
	}
	return ""
}
