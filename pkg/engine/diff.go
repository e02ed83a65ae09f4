package engine

import (
	"fmt"
	"strings"

	"github.com/user/vulnrecord/pkg/model"
)

// SnapshotDiff classifies findings of a current report against a baseline.
type SnapshotDiff struct {
	New       []model.Finding
	Fixed     []model.Finding
	Unchanged []model.Finding
}

// CompareReports matches findings by type, location and log entry. Findings
// only in current are New, only in baseline are Fixed.
func CompareReports(baseline, current *model.Report) SnapshotDiff {
	seen := make(map[string]int, len(baseline.Vulnerabilities))
	for _, f := range baseline.Vulnerabilities {
		seen[f.Key()]++
	}

	var diff SnapshotDiff
	for _, f := range current.Vulnerabilities {
		if seen[f.Key()] > 0 {
			seen[f.Key()]--
			diff.Unchanged = append(diff.Unchanged, f)
			continue
		}
		diff.New = append(diff.New, f)
	}
	for _, f := range baseline.Vulnerabilities {
		if seen[f.Key()] > 0 {
			seen[f.Key()]--
			diff.Fixed = append(diff.Fixed, f)
		}
	}
	return diff
}

// FormatDiff renders the comparison for terminal output.
func FormatDiff(baselineID, currentID string, diff SnapshotDiff) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Report Comparison (%s vs baseline %s):\n", currentID, baselineID))
	sb.WriteString("--------------------------------------------------\n")

	section := func(title, mark string, findings []model.Finding) {
		sb.WriteString(fmt.Sprintf("%s: %d\n", title, len(findings)))
		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("  [%s] [%s] %s @ %s\n", mark, f.Severity, f.Type, f.Location))
		}
		sb.WriteString("\n")
	}
	section("NEW RISKS", "+", diff.New)
	section("FIXED RISKS", "-", diff.Fixed)
	section("UNCHANGED RISKS", "=", diff.Unchanged)
	return sb.String()
}
