// Package notify announces stored reports on NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/model"
)

const (
	// DefaultSubject is used when no subject is configured.
	DefaultSubject = "vulnrecord.reports.stored"
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout = 10 * time.Second
)

// ReportEvent is the payload published for every stored report.
type ReportEvent struct {
	ReportID    string    `json:"report_id"`
	Total       int       `json:"total"`
	Critical    int       `json:"critical"`
	High        int       `json:"high"`
	Medium      int       `json:"medium"`
	Low         int       `json:"low"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReportEvent summarizes r for publication.
func NewReportEvent(r *model.Report) ReportEvent {
	return ReportEvent{
		ReportID:    r.ReportID,
		Total:       r.Summary.TotalVulnerabilities,
		Critical:    r.Summary.CriticalCount,
		High:        r.Summary.HighCount,
		Medium:      r.Summary.MediumCount,
		Low:         r.Summary.LowCount,
		GeneratedAt: r.GeneratedAt,
	}
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher sends ReportEvents to a NATS subject.
type Publisher struct {
	conn    Conn
	subject string
	log     *zap.SugaredLogger
}

// Connect dials natsURL and returns a publisher for subject.
func Connect(natsURL, subject string, log *zap.SugaredLogger) (*Publisher, error) {
	conn, err := nats.Connect(natsURL, nats.Timeout(ConnectTimeout), nats.Name("vulnrecord"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsURL, err)
	}
	return NewPublisher(conn, subject, log), nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn Conn, subject string, log *zap.SugaredLogger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Publisher{conn: conn, subject: subject, log: log}
}

// PublishReport publishes the summary event for r and flushes it.
func (p *Publisher) PublishReport(ctx context.Context, r *model.Report) error {
	data, err := json.Marshal(NewReportEvent(r))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	// Flushing requires a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ConnectTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	p.log.Debugw("Report event published", "subject", p.subject, "report_id", r.ReportID)
	return nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}
