package fs_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalModules(t *testing.T) {
	t.Parallel()

	t.Run("uses stable schema key names", func(t *testing.T) {
		t.Parallel()

		score := 0.95
		b, err := fs.MarshalModules([]pulse.Module{{
			Name:        "Account Settings",
			Description: "Manage account preferences.",
			Submodules:  map[string]string{"Change Username": "Update your handle."},
			Confidence:  &score,
		}})

		require.NoError(t, err)
		want := `[
  {
    "module": "Account Settings",
    "Description": "Manage account preferences.",
    "Submodules": {
      "Change Username": "Update your handle."
    },
    "confidence_score": 0.95
  }
]
`
		assert.Equal(t, want, string(b))
	})

	t.Run("encodes nil as an empty array", func(t *testing.T) {
		t.Parallel()

		b, err := fs.MarshalModules(nil)

		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(b))
	})
}

func TestWriteModules(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON that reads back", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out", "output.json")
		modules := []pulse.Module{{Name: "A", Submodules: map[string]string{}}}

		err := fs.WriteModules(path, modules)
		require.NoError(t, err)

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []pulse.Module
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, modules, got)

		_, err = os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
	})

	t.Run("replaces an existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "output.json")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		err := fs.WriteModules(path, nil)

		require.NoError(t, err)
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]\n", string(b))
	})
}
