package adk

import (
	_ "embed"
)

//go:embed prompts/report_prompt.md
var systemPrompt string

// GetSystemPrompt returns the default system prompt for report generation
func GetSystemPrompt() string {
	return systemPrompt
}
