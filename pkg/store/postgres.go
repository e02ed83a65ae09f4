package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/model"
	"github.com/user/vulnrecord/pkg/schema"
)

const uniqueViolation = "23505"

const reportsSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY,
		report_id TEXT NOT NULL UNIQUE,
		document JSONB NOT NULL,
		total_vulnerabilities INTEGER NOT NULL CHECK (total_vulnerabilities > 0),
		critical_count INTEGER NOT NULL,
		high_count INTEGER NOT NULL,
		medium_count INTEGER NOT NULL,
		low_count INTEGER NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		stored_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);
`

type reportRow struct {
	ID       string    `db:"id"`
	Document []byte    `db:"document"`
	StoredAt time.Time `db:"stored_at"`
}

// PostgresStore keeps each report as a JSONB document with its summary
// counts in indexed columns.
type PostgresStore struct {
	db        *sqlx.DB
	validator *schema.Validator
	log       *zap.SugaredLogger
}

// NewPostgresStore connects to dsn and creates the reports table if needed.
func NewPostgresStore(ctx context.Context, dsn string, v *schema.Validator, log *zap.SugaredLogger) (*PostgresStore, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, reportsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Debugw("Postgres store initialized")
	return newPostgresStore(db, v, log), nil
}

func newPostgresStore(db *sqlx.DB, v *schema.Validator, log *zap.SugaredLogger) *PostgresStore {
	return &PostgresStore{db: db, validator: v, log: log}
}

func (s *PostgresStore) Save(ctx context.Context, r *model.Report) (*Document, error) {
	if err := prepare(s.validator, r); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	doc := &Document{ID: uuid.NewString(), Report: r}
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO reports (id, report_id, document, total_vulnerabilities,
			critical_count, high_count, medium_count, low_count, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING stored_at`,
		doc.ID, r.ReportID, raw,
		r.Summary.TotalVulnerabilities, r.Summary.CriticalCount, r.Summary.HighCount,
		r.Summary.MediumCount, r.Summary.LowCount, r.GeneratedAt,
	).Scan(&doc.StoredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateID(r.ReportID)
		}
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}
	s.log.Debugw("Report stored", "id", doc.ID, "report_id", r.ReportID)
	return doc, nil
}

func (s *PostgresStore) Get(ctx context.Context, reportID string) (*Document, error) {
	var row reportRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, document, stored_at FROM reports WHERE report_id = $1`, reportID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reportID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return row.document()
}

// List returns stored documents, oldest first.
func (s *PostgresStore) List(ctx context.Context) ([]*Document, error) {
	var rows []reportRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT id, document, stored_at FROM reports ORDER BY stored_at, report_id`); err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	out := make([]*Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// Health checks that the database is reachable.
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (row reportRow) document() (*Document, error) {
	var r model.Report
	if err := json.Unmarshal(row.Document, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", row.ID, err)
	}
	return &Document{ID: row.ID, StoredAt: row.StoredAt, Report: &r}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
