package model

import "strings"

// Severity is the ordinal risk level of a finding.
type Severity string

const (
	SevCritical Severity = "Critical"
	SevHigh     Severity = "High"
	SevMedium   Severity = "Medium"
	SevLow      Severity = "Low"
)

// DefaultSeverity is applied when a chunk carries no recognizable severity.
const DefaultSeverity = SevMedium

// Severities lists the canonical levels from most to least severe.
var Severities = []Severity{SevCritical, SevHigh, SevMedium, SevLow}

// ParseSeverity maps a case-insensitive severity word to its canonical form.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SevCritical, true
	case "high":
		return SevHigh, true
	case "medium":
		return SevMedium, true
	case "low":
		return SevLow, true
	}
	return "", false
}

// Rank orders severities, Critical highest. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 4
	case SevHigh:
		return 3
	case SevMedium:
		return 2
	case SevLow:
		return 1
	}
	return 0
}
