package engine

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/user/vulnrecord/pkg/model"
)

// MaxCSVCellLen caps every exported cell.
const MaxCSVCellLen = 500

// PatchStatusPending is the patch status of freshly exported findings.
const PatchStatusPending = "Pending"

// CSVHeader lists the export columns in order.
var CSVHeader = []string{
	"Datetime",
	"Report ID",
	"Vulnerability ID",
	"Vulnerability",
	"Severity",
	"Description",
	"Location",
	"Machine OS",
	"Machine Version",
	"Machine Architecture",
	"Fix",
	"Patch Status",
	"Log Entry",
	"References",
}

// WriteCSV writes one row per finding of r, preceded by CSVHeader.
func WriteCSV(w io.Writer, r *model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, f := range r.Vulnerabilities {
		row := []string{
			f.Timestamp.UTC().Format(time.RFC3339),
			r.ReportID,
			strconv.Itoa(f.SequenceID),
			f.Type,
			string(f.Severity),
			f.Description,
			f.Location,
			r.SystemInfo.OS,
			r.SystemInfo.Version,
			r.SystemInfo.Architecture,
			fixText(f.Remediation.Steps),
			PatchStatusPending,
			f.LogEntry,
			strings.Join(f.Remediation.References, " "),
		}
		for i := range row {
			row[i] = truncateCell(row[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// fixText flattens remediation steps as "description: cmd && cmd; ...".
func fixText(steps []model.RemediationStep) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		if len(s.Commands) == 0 {
			parts = append(parts, s.Description)
			continue
		}
		parts = append(parts, s.Description+": "+strings.Join(s.Commands, " && "))
	}
	return strings.Join(parts, "; ")
}

func truncateCell(s string) string {
	r := []rune(s)
	if len(r) <= MaxCSVCellLen {
		return s
	}
	return string(r[:MaxCSVCellLen])
}
