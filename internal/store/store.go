// Package store centralizes the file I/O both CLIs perform around a
// compilation run: reading the source/regex/NFA input, and writing the
// textual, Graphviz, and cache artifacts a run produces. Consolidating
// it here keeps cmd/regexdfa and cmd/kalcc free of raw os calls, the
// same "convenience wrapper over os" role rek_test.go's own file
// helpers play for the teacher's tests.
package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadInput reads the file at path, wrapping any failure so callers
// can errors.Is against a single sentinel regardless of which pipeline
// is reading.
func ReadInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteArtifact writes text to prefix+suffix, creating any missing
// parent directory first.
func WriteArtifact(prefix, suffix, text string) (string, error) {
	path := prefix + suffix
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteArtifactBytes is WriteArtifact for binary payloads (the msgpack
// DFA cache).
func WriteArtifactBytes(prefix, suffix string, data []byte) (string, error) {
	path := prefix + suffix
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadArtifactBytes reads a previously written binary artifact (the
// msgpack DFA cache), returning ok=false if it does not exist.
func ReadArtifactBytes(path string) (data []byte, ok bool, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}
