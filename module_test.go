package pulse_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestModule_JSON(t *testing.T) {
	t.Parallel()

	t.Run("uses the extraction schema key names", func(t *testing.T) {
		t.Parallel()

		m := pulse.Module{
			Name:        "Billing",
			Description: "Invoices and payments",
			Submodules:  map[string]string{"Invoices": "Create invoices"},
			Confidence:  ptr(0.9),
		}

		b, err := json.Marshal(m)

		require.NoError(t, err)
		assert.JSONEq(t, `{
			"module": "Billing",
			"Description": "Invoices and payments",
			"Submodules": {"Invoices": "Create invoices"},
			"confidence_score": 0.9
		}`, string(b))
	})

	t.Run("omits a missing confidence score", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(pulse.Module{Name: "A", Submodules: map[string]string{}})

		require.NoError(t, err)
		assert.NotContains(t, string(b), "confidence_score")
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("counts modules and submodules and averages confidence", func(t *testing.T) {
		t.Parallel()

		s := pulse.Summarize([]pulse.Module{
			{Name: "A", Submodules: map[string]string{"a1": "", "a2": ""}, Confidence: ptr(0.8)},
			{Name: "B", Submodules: map[string]string{"b1": ""}},
		})

		assert.Equal(t, 2, s.Modules)
		assert.Equal(t, 3, s.Submodules)
		assert.InDelta(t, 0.4, s.AverageConfidence, 1e-9)
	})

	t.Run("returns zero summary for no modules", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, pulse.Summary{}, pulse.Summarize(nil))
	})
}

func TestExtractionHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"unrecognized error", errors.New("connection reset"), ""},
		{"authentication", errors.New("Error 401, Message: unauthenticated"), "authentication error: check GEMINI_API_KEY"},
		{"invalid key", errors.New("API key not valid. Please pass a valid API key."), "authentication error: check GEMINI_API_KEY"},
		{"quota", errors.New("Error 429, Message: Resource has been exhausted"), "rate limit error: the model quota has been exceeded"},
		{"unknown model", errors.New("Error 404, Message: models/nope is not found"), `model error: the model "nope" does not exist or is not available to this key`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, pulse.ExtractionHint(tt.err, "nope"))
		})
	}
}
