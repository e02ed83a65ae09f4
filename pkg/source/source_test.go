package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("--- Chunk 1 Analysis ---\n"), 0600))

	text, err := FileSource{Path: path}.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "--- Chunk 1 Analysis ---\n", text)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")}.Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestTextSource(t *testing.T) {
	text, err := TextSource("report").Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "report", text)

	_, err = TextSource(" \n\t").Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

type fakeAnalyzer struct {
	got string
	out string
	err error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, scanLog string) (string, error) {
	f.got = scanLog
	return f.out, f.err
}

func TestLLMSource(t *testing.T) {
	a := &fakeAnalyzer{out: "--- Chunk 1 Analysis ---\n**Severity:** High"}
	text, err := LLMSource{Log: TextSource("Failed password for root"), Analyzer: a}.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Failed password for root", a.got)
	assert.Equal(t, a.out, text)
}

func TestLLMSourceErrors(t *testing.T) {
	_, err := LLMSource{Log: TextSource(""), Analyzer: &fakeAnalyzer{}}.Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)

	_, err = LLMSource{
		Log:      TextSource("log line"),
		Analyzer: &fakeAnalyzer{err: errors.New("quota exceeded")},
	}.Read(context.Background())
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "quota exceeded")
}
