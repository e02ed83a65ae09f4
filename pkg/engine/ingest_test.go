package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnrecord/pkg/metrics"
	"github.com/user/vulnrecord/pkg/model"
	"github.com/user/vulnrecord/pkg/schema"
	"github.com/user/vulnrecord/pkg/source"
	"github.com/user/vulnrecord/pkg/store"
)

type recordingPublisher struct {
	reports []*model.Report
	err     error
}

func (p *recordingPublisher) PublishReport(ctx context.Context, r *model.Report) error {
	p.reports = append(p.reports, r)
	return p.err
}

func newTestIngestor(t *testing.T) (*Ingestor, store.Store, *metrics.Metrics) {
	t.Helper()
	st, err := store.NewMemoryStore(8, schema.MustValidator())
	require.NoError(t, err)
	m := metrics.NewMetrics(prometheus.NewRegistry())
	in := NewIngestor(newTestParser(), st, nil)
	in.SetMetrics(m)
	return in, st, m
}

func TestIngest(t *testing.T) {
	in, st, m := newTestIngestor(t)
	pub := &recordingPublisher{}
	in.SetPublisher(pub)

	out, err := in.Ingest(context.Background(), source.TextSource(twoChunkReport))
	require.NoError(t, err)
	require.NotNil(t, out.Document)
	assert.NotEmpty(t, out.Document.ID)
	assert.Equal(t, 2, out.Document.Report.Summary.TotalVulnerabilities)

	doc, err := st.Get(context.Background(), out.Document.Report.ReportID)
	require.NoError(t, err)
	assert.Equal(t, out.Document.ID, doc.ID)

	require.Len(t, pub.reports, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsStored))
}

func TestIngestPublishFailureIsNotFatal(t *testing.T) {
	in, _, m := newTestIngestor(t)
	in.SetPublisher(&recordingPublisher{err: errors.New("nats down")})

	_, err := in.Ingest(context.Background(), source.TextSource(twoChunkReport))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventPublishErrors))
}

func TestIngestSourceUnavailable(t *testing.T) {
	in, _, _ := newTestIngestor(t)

	_, err := in.Ingest(context.Background(), source.FileSource{Path: "/nonexistent/report.txt"})
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)

	_, err = in.Ingest(context.Background(), source.TextSource("   "))
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
}

func TestIngestRejectsEmptyReport(t *testing.T) {
	in, st, m := newTestIngestor(t)

	text := "--- Chunk 1 Analysis ---\n```json\n{\"steps\":[7]}\n```\n"
	out, err := in.Ingest(context.Background(), source.TextSource(text))

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "vulnerabilities", verr.Field)
	require.Len(t, out.Result.Skipped, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures))

	docs, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngestDuplicateReportID(t *testing.T) {
	in, st, _ := newTestIngestor(t)

	out, err := in.Ingest(context.Background(), source.TextSource(twoChunkReport))
	require.NoError(t, err)

	_, err = st.Save(context.Background(), out.Document.Report)
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "report_id", verr.Field)
}

func TestIngestConcurrentUploads(t *testing.T) {
	st, err := store.NewMemoryStore(64, schema.MustValidator())
	require.NoError(t, err)
	// Every upload sees the same clock reading.
	in := NewIngestor(newTestParser(), st, nil)

	const uploads = 50
	errs := make(chan error, uploads)
	var wg sync.WaitGroup
	for i := 0; i < uploads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := in.Ingest(context.Background(), source.TextSource(twoChunkReport))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	docs, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, uploads)
}
