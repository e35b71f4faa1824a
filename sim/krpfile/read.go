// Package krpfile reads and writes the line-oriented KRP file formats:
// instance configs, execution traces, and the human-readable state block.
package krpfile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// MaxFileSize is the largest config or trace file accepted, in bytes.
const MaxFileSize = 10000

// ErrFileTooLarge is returned when an input exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadLimited reads all of r, failing with ErrFileTooLarge past MaxFileSize bytes.
func ReadLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxFileSize {
		return "", fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, MaxFileSize)
	}
	return string(data), nil
}

// ReadFile opens path and reads it with ReadLimited.
func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	src, err := ReadLimited(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return src, nil
}
