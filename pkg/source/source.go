// Package source provides the raw report text handed to the parser.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ErrSourceUnavailable is returned when the report text cannot be obtained.
var ErrSourceUnavailable = errors.New("report source unavailable")

// Source yields the raw text of one scan report.
type Source interface {
	Read(ctx context.Context) (string, error)
}

// FileSource reads a report from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Read(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s does not exist", ErrSourceUnavailable, f.Path)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return string(data), nil
}

// TextSource serves text already in memory, such as an HTTP request body.
type TextSource string

func (t TextSource) Read(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", fmt.Errorf("%w: empty report", ErrSourceUnavailable)
	}
	return string(t), nil
}
