package adk

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Message represents a chat message
type Message struct {
	Role    string // "user", "model"
	Content string
}

// LLMProvider defines the interface for different AI models
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt string, history []Message) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Analyst asks a model to turn raw scanner output into a chunked
// vulnerability report the parser understands.
type Analyst struct {
	llm          LLMProvider
	systemPrompt string
}

// NewAnalyst creates an analyst using the default report prompt.
func NewAnalyst(llm LLMProvider) *Analyst {
	return &Analyst{llm: llm, systemPrompt: GetSystemPrompt()}
}

// SetSystemPrompt replaces the instructions sent with every request.
func (a *Analyst) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// Analyze sends the scan log and returns the generated report text.
func (a *Analyst) Analyze(ctx context.Context, scanLog string) (string, error) {
	prompt := fmt.Sprintf("Here is the log data:\n%s\n\nPlease analyze it and provide cybersecurity recommendations.", scanLog)
	history := []Message{{Role: "user", Content: prompt}}

	resp, err := a.llm.GenerateResponse(ctx, a.systemPrompt, history)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	if strings.TrimSpace(resp) == "" {
		return "", ErrEmptyResponse
	}
	return resp, nil
}
