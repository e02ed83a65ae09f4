package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/metrics"
	"github.com/user/vulnrecord/pkg/model"
	"github.com/user/vulnrecord/pkg/schema"
	"github.com/user/vulnrecord/pkg/source"
	"github.com/user/vulnrecord/pkg/store"
)

// Publisher announces stored reports.
type Publisher interface {
	PublishReport(ctx context.Context, r *model.Report) error
}

// Outcome describes one ingestion run.
type Outcome struct {
	Document *store.Document
	Result   *Result
}

// Ingestor runs source → parser → store, and announces what it stored.
type Ingestor struct {
	parser  *Parser
	store   store.Store
	events  Publisher
	metrics *metrics.Metrics
	log     *zap.SugaredLogger
}

// NewIngestor wires a parser to a store.
func NewIngestor(parser *Parser, st store.Store, log *zap.SugaredLogger) *Ingestor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Ingestor{parser: parser, store: st, log: log}
}

// SetPublisher enables report events.
func (in *Ingestor) SetPublisher(p Publisher) {
	in.events = p
}

// SetMetrics enables store counters.
func (in *Ingestor) SetMetrics(m *metrics.Metrics) {
	in.metrics = m
}

// Ingest reads one report, parses it and persists it. Source and validation
// errors are returned unchanged so callers can match them with errors.Is and
// errors.As. A failed event publish is logged but does not fail the run.
func (in *Ingestor) Ingest(ctx context.Context, src source.Source) (*Outcome, error) {
	text, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}

	res := in.parser.Parse(text)
	out := &Outcome{Result: res}

	doc, err := in.store.Save(ctx, res.Report)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			in.metrics.IncValidationFailures()
			in.log.Warnw("Report rejected", "report_id", res.Report.ReportID, "field", verr.Field, "error", verr.Message)
		}
		return out, err
	}
	out.Document = doc
	in.metrics.IncReportsStored()
	in.log.Infow("Report stored",
		"id", doc.ID,
		"report_id", doc.Report.ReportID,
		"vulnerabilities", doc.Report.Summary.TotalVulnerabilities,
		"skipped_chunks", len(res.Skipped))

	if in.events != nil {
		if err := in.events.PublishReport(ctx, doc.Report); err != nil {
			in.metrics.IncEventPublishErrors()
			in.log.Warnw("Failed to publish report event", "report_id", doc.Report.ReportID, "error", err)
		}
	}
	return out, nil
}
