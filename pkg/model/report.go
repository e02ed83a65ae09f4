package model

import (
	"fmt"
	"regexp"
	"time"
)

// ReportIDPattern is the only accepted report identifier shape.
var ReportIDPattern = regexp.MustCompile(`^REPORT-\d{13}$`)

// Default system metadata when the source text does not mention it.
const (
	DefaultOS           = "Linux"
	DefaultVersion      = "Unknown"
	DefaultArchitecture = "x86_64"
)

// SystemInfo describes the scanned host.
type SystemInfo struct {
	OS           string `json:"os"`
	Version      string `json:"version"`
	Architecture string `json:"architecture"`
}

// Summary holds counts derived from a report's findings.
type Summary struct {
	TotalVulnerabilities int `json:"total_vulnerabilities"`
	CriticalCount        int `json:"critical_count"`
	HighCount            int `json:"high_count"`
	MediumCount          int `json:"medium_count"`
	LowCount             int `json:"low_count"`
}

// Report is the top-level record persisted in the document store.
type Report struct {
	ReportID        string     `json:"report_id"`
	SystemInfo      SystemInfo `json:"system_info"`
	Vulnerabilities []Finding  `json:"vulnerabilities"`
	Summary         Summary    `json:"summary"`
	GeneratedAt     time.Time  `json:"generated_at"`
}

// NewReportID formats the identifier for a report created at t.
func NewReportID(t time.Time) string {
	return fmt.Sprintf("REPORT-%013d", t.UnixMilli())
}

// Summarize counts findings by severity.
func Summarize(findings []Finding) Summary {
	s := Summary{TotalVulnerabilities: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case SevCritical:
			s.CriticalCount++
		case SevHigh:
			s.HighCount++
		case SevMedium:
			s.MediumCount++
		case SevLow:
			s.LowCount++
		}
	}
	return s
}

// RefreshSummary overwrites the summary with a recount of the findings.
// Stores call it before every validation and write.
func (r *Report) RefreshSummary() {
	r.Summary = Summarize(r.Vulnerabilities)
}

// FindingsAtLeast returns the findings whose severity ranks at or above floor.
func (r *Report) FindingsAtLeast(floor Severity) []Finding {
	out := make([]Finding, 0, len(r.Vulnerabilities))
	for _, f := range r.Vulnerabilities {
		if f.Severity.Rank() >= floor.Rank() {
			out = append(out, f)
		}
	}
	return out
}
