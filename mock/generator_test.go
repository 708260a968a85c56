package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("delegates to GenerateFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *pulse.GenerateRequest
		g := &mock.Generator{
			GenerateFn: func(_ context.Context, req *pulse.GenerateRequest) (string, error) {
				calledWith = req
				return `{"modules":[]}`, nil
			},
		}

		req := &pulse.GenerateRequest{Model: "gemini-2.5-flash", Prompt: "hello", JSON: true}
		out, err := g.Generate(context.Background(), req)

		require.NoError(t, err)
		assert.JSONEq(t, `{"modules":[]}`, out)
		assert.Same(t, req, calledWith)
	})
}
