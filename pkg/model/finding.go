package model

import "time"

// Defaults applied when a chunk does not carry the field.
const (
	DefaultLocation = "System-wide"
	DefaultLogEntry = "No log entries available"
	DefaultNotes    = "No additional notes"
)

// Length bounds enforced by the document store.
const (
	MinDescriptionLen     = 20
	MaxDescriptionLen     = 1500
	MinStepDescriptionLen = 10
	MaxStepCommands       = 20
)

// RemediationStep is one recommended corrective action.
type RemediationStep struct {
	Description string   `json:"description"`
	Commands    []string `json:"commands"`
	Notes       string   `json:"notes"`
}

// Remediation groups the steps and reference links of a finding.
type Remediation struct {
	Steps      []RemediationStep `json:"steps"`
	References []string          `json:"references"`
}

// Finding represents a single vulnerability extracted from one report chunk
type Finding struct {
	SequenceID  int         `json:"vulnerability_id"` // 1-based chunk position
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Severity    Severity    `json:"severity"`
	Location    string      `json:"location"`
	LogEntry    string      `json:"log_entry"`
	Remediation Remediation `json:"remediation"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Key identifies a finding across reports independently of its position.
func (f Finding) Key() string {
	return f.Type + "|" + f.Location + "|" + f.LogEntry
}
