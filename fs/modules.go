// Package fs provides file-based output for extraction results and
// crawled pages.
package fs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/pulse"
)

// MarshalModules encodes modules as indented JSON followed by a newline.
// A nil list encodes as an empty array.
func MarshalModules(modules []pulse.Module) ([]byte, error) {
	if modules == nil {
		modules = []pulse.Module{}
	}
	b, err := json.MarshalIndent(modules, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// WriteModules writes modules to path as JSON. The file is written next to
// its destination and renamed into place, so readers never see a partial file.
func WriteModules(path string, modules []pulse.Module) error {
	b, err := MarshalModules(modules)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
