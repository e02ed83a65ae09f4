package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/user/vulnrecord/pkg/model"
)

// loadReport resolves ref as a stored report id, or as a path to a report
// JSON file written by `parse --out` when no such report is stored.
func (a *app) loadReport(ctx context.Context, ref string) (*model.Report, error) {
	if model.ReportIDPattern.MatchString(ref) {
		doc, err := a.store.Get(ctx, ref)
		if err == nil {
			return doc.Report, nil
		}
		if _, statErr := os.Stat(ref); statErr != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", ref, err)
	}
	var r model.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", ref, err)
	}
	r.RefreshSummary()
	if err := a.validator.Validate(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
