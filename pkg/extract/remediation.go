package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/model"
)

// ErrMalformedJSON marks an embedded JSON block that could not be decoded.
var ErrMalformedJSON = errors.New("malformed embedded JSON")

// Generic texts used when a step carries no usable description or notes.
const (
	GenericStepDescription  = "Apply the recommended security fix"
	StepPaddingSuffix       = " (security update)"
	InlineStepDescription   = "Run the recommended remediation command"
	InlineStepNotes         = "Extracted from inline command list"
	PlaceholderDescription  = "Review and remediate this vulnerability manually"
	PlaceholderNotes        = "No automated remediation was provided. Consult the vendor advisory and apply the appropriate patch or configuration change."
	stepDescriptionPadBelow = 20
)

var (
	jsonFenceRe     = regexp.MustCompile("(?is)```json\\s*(\\{.*?\\})\\s*```")
	inlineCommandRe = regexp.MustCompile("(?m)^[ \\t]*\\*[ \\t]+`([^`\\n]+)`")
)

// RemediationExtractor recovers remediation steps from a chunk.
type RemediationExtractor struct {
	log *zap.SugaredLogger
}

// NewRemediationExtractor returns an extractor logging skipped blocks to log.
func NewRemediationExtractor(log *zap.SugaredLogger) *RemediationExtractor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RemediationExtractor{log: log}
}

// Extract returns the chunk's remediation steps; the result is never empty.
// JSON fences win over inline `* `cmd`` bullets; with neither, a single
// placeholder step is returned. A step whose fields have the wrong JSON type
// is an error for the whole chunk.
func (e *RemediationExtractor) Extract(chunk string) ([]model.RemediationStep, error) {
	steps, err := e.structured(chunk)
	if err != nil {
		return nil, err
	}
	if len(steps) > 0 {
		return steps, nil
	}
	if steps := inlineSteps(chunk); len(steps) > 0 {
		return steps, nil
	}
	return []model.RemediationStep{{
		Description: PlaceholderDescription,
		Commands:    []string{},
		Notes:       PlaceholderNotes,
	}}, nil
}

func (e *RemediationExtractor) structured(chunk string) ([]model.RemediationStep, error) {
	for i, m := range jsonFenceRe.FindAllStringSubmatch(chunk, -1) {
		data, err := decodeBlock(m[1])
		if err != nil {
			e.log.Warnw("Skipping remediation block", "block", i, "error", err)
			continue
		}
		items, ok := stepList(data)
		if !ok {
			continue
		}
		steps := make([]model.RemediationStep, 0, len(items))
		for j, item := range items {
			step, err := decodeStep(item)
			if err != nil {
				return nil, fmt.Errorf("remediation block %d step %d: %w", i, j, err)
			}
			steps = append(steps, step)
		}
		if len(steps) > 0 {
			return steps, nil
		}
	}
	return nil, nil
}

// decodeBlock parses a fenced block after dropping // comment lines.
func decodeBlock(block string) (map[string]any, error) {
	lines := strings.Split(block, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "//") {
			continue
		}
		kept = append(kept, l)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(strings.Join(kept, "\n")), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return data, nil
}

func stepList(data map[string]any) ([]any, bool) {
	for _, key := range []string{"steps", "recommendations"} {
		if items, ok := data[key].([]any); ok {
			return items, true
		}
	}
	return nil, false
}

func decodeStep(item any) (model.RemediationStep, error) {
	step := model.RemediationStep{Commands: []string{}, Notes: model.DefaultNotes}
	switch v := item.(type) {
	case string:
		desc := strings.TrimSpace(v)
		if desc == "" {
			desc = GenericStepDescription
		}
		step.Description = PadStepDescription(desc)
		return step, nil
	case map[string]any:
		desc, err := firstString(v, "description", "action")
		if err != nil {
			return step, err
		}
		if desc == "" {
			desc = GenericStepDescription
		}
		step.Description = PadStepDescription(desc)

		if step.Commands, err = commands(v); err != nil {
			return step, err
		}
		notes, err := firstString(v, "notes")
		if err != nil {
			return step, err
		}
		if notes != "" {
			step.Notes = notes
		}
		return step, nil
	default:
		return step, fmt.Errorf("unsupported step of type %T", item)
	}
}

func firstString(m map[string]any, keys ...string) (string, error) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("field %q: expected string, got %T", k, raw)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
	}
	return "", nil
}

func commands(m map[string]any) ([]string, error) {
	out := []string{}
	if raw, ok := m["commands"]; ok && raw != nil {
		switch v := raw.(type) {
		case string:
			out = append(out, v)
		case []any:
			for i, c := range v {
				s, ok := c.(string)
				if !ok {
					return nil, fmt.Errorf("commands[%d]: expected string, got %T", i, c)
				}
				out = append(out, s)
			}
		default:
			return nil, fmt.Errorf("field \"commands\": expected list, got %T", raw)
		}
		return out, nil
	}
	if raw, ok := m["command"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field \"command\": expected string, got %T", raw)
		}
		out = append(out, s)
	}
	return out, nil
}

func inlineSteps(chunk string) []model.RemediationStep {
	var steps []model.RemediationStep
	for _, m := range inlineCommandRe.FindAllStringSubmatch(chunk, -1) {
		steps = append(steps, model.RemediationStep{
			Description: InlineStepDescription,
			Commands:    []string{strings.TrimSpace(m[1])},
			Notes:       InlineStepNotes,
		})
	}
	return steps
}

// PadStepDescription appends the security-update suffix to short step text.
func PadStepDescription(s string) string {
	if len([]rune(s)) < stepDescriptionPadBelow {
		return s + StepPaddingSuffix
	}
	return s
}
