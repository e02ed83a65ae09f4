package source

import (
	"context"
	"fmt"
	"strings"
)

// Analyzer produces report text from raw scanner output.
type Analyzer interface {
	Analyze(ctx context.Context, scanLog string) (string, error)
}

// LLMSource reads a raw scanner log from Log and asks an Analyzer to write the
// chunked report for it.
type LLMSource struct {
	Log      Source
	Analyzer Analyzer
}

func (s LLMSource) Read(ctx context.Context) (string, error) {
	scanLog, err := s.Log.Read(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(scanLog) == "" {
		return "", fmt.Errorf("%w: scan log is empty", ErrSourceUnavailable)
	}
	report, err := s.Analyzer.Analyze(ctx, scanLog)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return report, nil
}
