// Package engine assembles findings from report chunks and aggregates them
// into reports.
package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/extract"
	"github.com/user/vulnrecord/pkg/metrics"
	"github.com/user/vulnrecord/pkg/model"
)

// Texts applied to descriptions.
const (
	DefaultDescription = "Vulnerability details were not provided in the scan report."
	DescriptionSuffix  = " - Immediate remediation recommended."
)

// ChunkError records why a chunk was skipped.
type ChunkError struct {
	Index int // 0-based chunk position
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Index+1, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Result is the outcome of parsing one report text.
type Result struct {
	Report  *model.Report
	Chunks  int
	Skipped []*ChunkError
}

// Parser turns raw report text into a Report.
type Parser struct {
	log         *zap.SugaredLogger
	remediation *extract.RemediationExtractor
	metrics     *metrics.Metrics
	now         func() time.Time

	mu         sync.Mutex
	lastIssued int64 // unix millis of the last report id
}

// NewParser creates a parser logging chunk-level warnings to log.
func NewParser(log *zap.SugaredLogger) *Parser {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Parser{
		log:         log,
		remediation: extract.NewRemediationExtractor(log),
		now:         time.Now,
	}
}

// SetClock overrides the time source used for ids and default timestamps.
func (p *Parser) SetClock(now func() time.Time) {
	p.now = now
}

// SetMetrics counts processed and skipped chunks on m.
func (p *Parser) SetMetrics(m *metrics.Metrics) {
	p.metrics = m
}

// Parse segments text, assembles one finding per chunk and aggregates them.
// Chunks that fail are skipped and reported in Result.Skipped.
func (p *Parser) Parse(text string) *Result {
	now := p.now()
	chunks := extract.Segment(text)
	res := &Result{Chunks: len(chunks)}

	findings := make([]model.Finding, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			p.log.Debugw("Skipping empty chunk", "chunk", i+1)
			continue
		}
		f, err := p.assemble(i, chunk, now)
		if err != nil {
			cerr := &ChunkError{Index: i, Err: err}
			res.Skipped = append(res.Skipped, cerr)
			p.metrics.IncChunksSkipped()
			p.log.Warnw("Skipping chunk", "chunk", i+1, "error", err)
			continue
		}
		if f.Description == "" || f.Severity == "" {
			p.log.Debugw("Dropping incomplete finding", "chunk", i+1)
			continue
		}
		p.metrics.IncChunksProcessed()
		findings = append(findings, f)
	}

	res.Report = p.aggregate(text, findings, now)
	p.log.Debugw("Report parsed",
		"report_id", res.Report.ReportID,
		"chunks", res.Chunks,
		"findings", len(findings),
		"skipped", len(res.Skipped))
	return res
}

// assemble builds the finding for chunk i. Panics raised by extraction are
// converted into errors so one bad chunk cannot abort the run.
func (p *Parser) assemble(i int, chunk string, now time.Time) (f model.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during extraction: %v", r)
		}
	}()

	steps, err := p.remediation.Extract(chunk)
	if err != nil {
		return f, err
	}
	for j := range steps {
		if n := len(steps[j].Commands); n > model.MaxStepCommands {
			p.log.Warnw("Truncating remediation commands", "chunk", i+1, "step", j+1, "commands", n)
			steps[j].Commands = steps[j].Commands[:model.MaxStepCommands]
		}
	}

	return model.Finding{
		SequenceID:  i + 1,
		Type:        model.NormalizeType(extract.Extract(chunk, extract.TypePatterns).Or(model.TypeOther)),
		Description: normalizeDescription(extract.Extract(chunk, extract.DescriptionPatterns).Or(DefaultDescription)),
		Severity:    extract.Severity(chunk),
		Location:    extract.Extract(chunk, extract.LocationPatterns).Or(model.DefaultLocation),
		LogEntry:    extract.Extract(chunk, extract.LogEntryPatterns).Or(model.DefaultLogEntry),
		Remediation: model.Remediation{
			Steps:      steps,
			References: extract.References(chunk),
		},
		Timestamp: chunkTimestamp(chunk, now),
	}, nil
}

// aggregate builds the report. The summary is always recounted from the final
// findings list.
func (p *Parser) aggregate(text string, findings []model.Finding, now time.Time) *model.Report {
	r := &model.Report{
		ReportID:        p.nextReportID(now),
		SystemInfo:      DetectSystemInfo(text),
		Vulnerabilities: findings,
		GeneratedAt:     now,
	}
	r.RefreshSummary()
	return r
}

// nextReportID issues ids from the clock, bumped by a millisecond whenever the
// clock has not advanced past the last id, so concurrent parses never collide.
func (p *Parser) nextReportID(now time.Time) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ms := now.UnixMilli()
	if ms <= p.lastIssued {
		ms = p.lastIssued + 1
	}
	p.lastIssued = ms
	return model.NewReportID(time.UnixMilli(ms))
}

// DetectSystemInfo reads host metadata from the whole document.
func DetectSystemInfo(text string) model.SystemInfo {
	return model.SystemInfo{
		OS:           extract.Extract(text, extract.OSPatterns).Or(model.DefaultOS),
		Version:      extract.Extract(text, extract.VersionPatterns).Or(model.DefaultVersion),
		Architecture: extract.Extract(text, extract.ArchitecturePatterns).Or(model.DefaultArchitecture),
	}
}

func normalizeDescription(s string) string {
	if len([]rune(s)) < model.MinDescriptionLen {
		s += DescriptionSuffix
	}
	if r := []rune(s); len(r) > model.MaxDescriptionLen {
		s = string(r[:model.MaxDescriptionLen])
	}
	return s
}

func chunkTimestamp(chunk string, now time.Time) time.Time {
	res := extract.Timestamp(chunk)
	if !res.Found {
		return now
	}
	t, err := time.ParseInLocation(extract.TimestampLayout, res.Value, time.UTC)
	if err != nil {
		return now
	}
	return t
}
