package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnrecord/pkg/model"
	"github.com/user/vulnrecord/pkg/schema"
)

func testReport(id string, severities ...model.Severity) *model.Report {
	r := &model.Report{
		ReportID:    id,
		SystemInfo:  model.SystemInfo{OS: model.DefaultOS, Version: model.DefaultVersion, Architecture: model.DefaultArchitecture},
		GeneratedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	for i, sev := range severities {
		r.Vulnerabilities = append(r.Vulnerabilities, model.Finding{
			SequenceID:  i + 1,
			Type:        model.TypeInsecureConfiguration,
			Description: fmt.Sprintf("Finding %d has an insecure default configuration", i+1),
			Severity:    sev,
			Location:    model.DefaultLocation,
			LogEntry:    model.DefaultLogEntry,
			Remediation: model.Remediation{
				Steps: []model.RemediationStep{{
					Description: "Harden the service configuration",
					Commands:    []string{},
					Notes:       model.DefaultNotes,
				}},
				References: []string{},
			},
			Timestamp: r.GeneratedAt,
		})
	}
	return r
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewMemoryStore(4, schema.MustValidator())
	require.NoError(t, err)
	defer st.Close()

	r := testReport("REPORT-1714550400000", model.SevCritical, model.SevLow)
	r.Summary = model.Summary{TotalVulnerabilities: 42}

	doc, err := st.Save(ctx, r)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.StoredAt.IsZero())
	assert.Equal(t, model.Summary{TotalVulnerabilities: 2, CriticalCount: 1, LowCount: 1}, doc.Report.Summary)

	// Stored documents are independent of the caller's report.
	r.Vulnerabilities[0].Description = "mutated after save"
	got, err := st.Get(ctx, "REPORT-1714550400000")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.NotEqual(t, "mutated after save", got.Report.Vulnerabilities[0].Description)

	_, err = st.Save(ctx, testReport("REPORT-1714550400000", model.SevHigh))
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "report_id", verr.Field)

	_, err = st.Get(ctx, "REPORT-0000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st, err := NewMemoryStore(4, schema.MustValidator())
	require.NoError(t, err)

	const id = "REPORT-1714550400000"
	saved, err := st.Save(ctx, testReport(id, model.SevHigh))
	require.NoError(t, err)
	want := saved.Report.Vulnerabilities[0].Description
	saved.Report.Vulnerabilities[0].Description = "changed through save result"

	got, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want, got.Report.Vulnerabilities[0].Description)
	got.Report.Vulnerabilities[0].Description = "changed through get"
	got.Report.Summary.TotalVulnerabilities = 99

	docs, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, want, docs[0].Report.Vulnerabilities[0].Description)
	assert.Equal(t, 1, docs[0].Report.Summary.TotalVulnerabilities)
	docs[0].Report.Vulnerabilities = nil

	again, err := st.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, again.Report.Vulnerabilities, 1)
	assert.Equal(t, saved.ID, again.ID)
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	st, err := NewMemoryStore(0, schema.MustValidator())
	require.NoError(t, err)

	_, err = st.Save(ctx, testReport("REPORT-1714550400000"))
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "vulnerabilities", verr.Field)

	_, err = st.Save(ctx, nil)
	assert.ErrorAs(t, err, &verr)

	docs, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	ctx := context.Background()
	st, err := NewMemoryStore(2, schema.MustValidator())
	require.NoError(t, err)

	for _, id := range []string{"REPORT-0000000000001", "REPORT-0000000000002", "REPORT-0000000000003"} {
		_, err := st.Save(ctx, testReport(id, model.SevMedium))
		require.NoError(t, err)
	}

	docs, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "REPORT-0000000000002", docs[0].Report.ReportID)
	assert.Equal(t, "REPORT-0000000000003", docs[1].Report.ReportID)

	_, err = st.Get(ctx, "REPORT-0000000000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	v := schema.MustValidator()

	st, err := Open(ctx, DriverMemory, "", 0, v, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	_, err = Open(ctx, DriverPostgres, "", 0, v, nil)
	assert.Error(t, err)

	_, err = Open(ctx, "mongodb", "", 0, v, nil)
	assert.Error(t, err)
}
