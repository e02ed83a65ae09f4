// Package store persists validated reports.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/user/vulnrecord/pkg/model"
	"github.com/user/vulnrecord/pkg/schema"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// Document is a stored report together with its storage metadata.
type Document struct {
	ID       string        `json:"id"`
	StoredAt time.Time     `json:"stored_at"`
	Report   *model.Report `json:"report"`
}

// Store is the document store collaborator. Save is all-or-nothing: it
// recomputes the report summary, validates the report, rejects duplicate
// report ids and only then writes.
type Store interface {
	Save(ctx context.Context, r *model.Report) (*Document, error)
	Get(ctx context.Context, reportID string) (*Document, error)
	List(ctx context.Context) ([]*Document, error)
	Close() error
}

// prepare refreshes the derived summary and validates r.
func prepare(v *schema.Validator, r *model.Report) error {
	if r == nil {
		return &schema.ValidationError{Field: "report", Message: "report is nil"}
	}
	r.RefreshSummary()
	return v.Validate(r)
}

func duplicateID(reportID string) error {
	return &schema.ValidationError{
		Field:   "report_id",
		Message: fmt.Sprintf("duplicate report_id %s", reportID),
	}
}

// clone deep-copies a report so stored documents are not shared with callers.
func clone(r *model.Report) (*model.Report, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var out model.Report
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
