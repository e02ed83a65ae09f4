package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/model"
)

const planTemplate = `[FIX PLAN] {{.Report.ReportID}}
System: {{.Report.SystemInfo.OS}} {{.Report.SystemInfo.Version}} ({{.Report.SystemInfo.Architecture}})
{{- range .Findings}}

#{{.SequenceID}} {{.Type}} [{{.Severity}}]
Issue: {{.Description}}
Location: {{.Location}}
{{- range $i, $s := .Remediation.Steps}}
  {{inc $i}}. {{$s.Description}}
{{- range $s.Commands}}
     $ {{.}}
{{- end}}
     Notes: {{$s.Notes}}
{{- end}}
{{- if .Remediation.References}}
References:
{{- range .Remediation.References}}
  - {{.}}
{{- end}}
{{- end}}
{{- end}}
`

var editorCommandRe = regexp.MustCompile(`\b(nano|vi|vim|emacs)\b`)

// Command outcomes recorded by Execute.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// Runner executes one shell command.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ShellRunner runs commands through sh -c.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, command string) (string, error) {
	out, err := exec.CommandContext(ctx, "sh", "-c", command).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// CommandResult is the outcome of one remediation command.
type CommandResult struct {
	SequenceID  int
	Command     string
	Description string
	Status      string
	Output      string
}

// RemediationEngine renders and applies the remediation of stored reports.
type RemediationEngine struct {
	tmpl   *template.Template
	runner Runner
	log    *zap.SugaredLogger
}

// NewRemediationEngine creates an engine that runs commands with runner.
func NewRemediationEngine(runner Runner, log *zap.SugaredLogger) *RemediationEngine {
	if runner == nil {
		runner = ShellRunner{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	tmpl := template.Must(template.New("plan").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(planTemplate))
	return &RemediationEngine{tmpl: tmpl, runner: runner, log: log}
}

// GeneratePlan renders the remediation of every finding at or above floor.
func (e *RemediationEngine) GeneratePlan(r *model.Report, floor model.Severity) (string, error) {
	var buf bytes.Buffer
	err := e.tmpl.Execute(&buf, struct {
		Report   *model.Report
		Findings []model.Finding
	}{r, r.FindingsAtLeast(floor)})
	if err != nil {
		return "", fmt.Errorf("failed to render plan: %w", err)
	}
	return buf.String(), nil
}

// Execute runs the commands of every finding at or above floor, in report
// order. Interactive editor commands are skipped. A failing command is
// recorded and the run continues; only context cancellation stops it.
func (e *RemediationEngine) Execute(ctx context.Context, r *model.Report, floor model.Severity) ([]CommandResult, error) {
	var results []CommandResult
	for _, f := range r.FindingsAtLeast(floor) {
		for _, step := range f.Remediation.Steps {
			for _, cmd := range step.Commands {
				if err := ctx.Err(); err != nil {
					return results, err
				}
				res := CommandResult{SequenceID: f.SequenceID, Command: cmd, Description: step.Description}
				if IsEditorCommand(cmd) {
					res.Status = StatusSkipped
					e.log.Infow("Skipping interactive editor command", "command", cmd)
					results = append(results, res)
					continue
				}
				e.log.Infow("Running remediation command", "vulnerability", f.SequenceID, "command", cmd)
				out, err := e.runner.Run(ctx, cmd)
				res.Output = out
				res.Status = StatusSuccess
				if err != nil {
					res.Status = StatusFailed
					if res.Output == "" {
						res.Output = err.Error()
					}
				}
				results = append(results, res)
			}
		}
	}
	return results, nil
}

// IsEditorCommand reports whether command opens an interactive text editor.
func IsEditorCommand(command string) bool {
	return editorCommandRe.MatchString(command)
}
