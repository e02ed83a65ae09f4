package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnrecord/pkg/model"
)

func finding(typ, location string, sev model.Severity) model.Finding {
	return model.Finding{Type: typ, Location: location, LogEntry: model.DefaultLogEntry, Severity: sev}
}

func TestCompareReports(t *testing.T) {
	baseline := &model.Report{ReportID: "REPORT-0000000000001", Vulnerabilities: []model.Finding{
		finding(model.TypeOpenPorts, "tcp/23", model.SevHigh),         // unchanged
		finding(model.TypeWeakPasswords, "/etc/shadow", model.SevLow), // fixed
	}}
	current := &model.Report{ReportID: "REPORT-0000000000002", Vulnerabilities: []model.Finding{
		finding(model.TypeOpenPorts, "tcp/23", model.SevCritical),
		finding(model.TypeSQLInjection, "/login", model.SevCritical), // new
	}}

	d := CompareReports(baseline, current)
	require.Len(t, d.New, 1)
	require.Len(t, d.Fixed, 1)
	require.Len(t, d.Unchanged, 1)
	assert.Equal(t, model.TypeSQLInjection, d.New[0].Type)
	assert.Equal(t, model.TypeWeakPasswords, d.Fixed[0].Type)
	assert.Equal(t, model.SevCritical, d.Unchanged[0].Severity)

	out := FormatDiff(baseline.ReportID, current.ReportID, d)
	assert.Contains(t, out, "NEW RISKS: 1")
	assert.Contains(t, out, "[+] [Critical] SQL Injection @ /login")
	assert.Contains(t, out, "FIXED RISKS: 1")
	assert.Contains(t, out, "UNCHANGED RISKS: 1")
}

func TestCompareReportsDuplicates(t *testing.T) {
	dup := finding(model.TypeOpenPorts, "tcp/23", model.SevHigh)
	baseline := &model.Report{Vulnerabilities: []model.Finding{dup, dup}}
	current := &model.Report{Vulnerabilities: []model.Finding{dup}}

	d := CompareReports(baseline, current)
	assert.Len(t, d.Unchanged, 1)
	assert.Len(t, d.Fixed, 1)
	assert.Empty(t, d.New)
}
