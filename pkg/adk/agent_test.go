package adk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	system  string
	history []Message
	resp    string
	err     error
}

func (f *fakeProvider) GenerateResponse(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	f.system, f.history = systemPrompt, history
	return f.resp, f.err
}

func (f *fakeProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"gemini-pro"}, nil
}

func TestAnalystAnalyze(t *testing.T) {
	p := &fakeProvider{resp: "--- Chunk 1 Analysis ---"}
	a := NewAnalyst(p)

	out, err := a.Analyze(context.Background(), "sshd: Failed password for root")
	require.NoError(t, err)
	assert.Equal(t, "--- Chunk 1 Analysis ---", out)
	assert.Equal(t, GetSystemPrompt(), p.system)
	require.Len(t, p.history, 1)
	assert.Equal(t, "user", p.history[0].Role)
	assert.Contains(t, p.history[0].Content, "sshd: Failed password for root")
}

func TestAnalystErrors(t *testing.T) {
	_, err := NewAnalyst(&fakeProvider{resp: "  "}).Analyze(context.Background(), "log")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	boom := errors.New("quota exceeded")
	_, err = NewAnalyst(&fakeProvider{err: boom}).Analyze(context.Background(), "log")
	assert.ErrorIs(t, err, boom)
}

func TestSystemPrompt(t *testing.T) {
	a := NewAnalyst(&fakeProvider{resp: "x"})
	a.SetSystemPrompt("custom")
	p := a.llm.(*fakeProvider)
	_, err := a.Analyze(context.Background(), "log")
	require.NoError(t, err)
	assert.Equal(t, "custom", p.system)

	assert.Contains(t, GetSystemPrompt(), "Chunk")
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), "openai", "key", "")
	assert.Error(t, err)
}
