// Package scan runs the host scanners whose output feeds the analyze command
// and appends it to a timestamped scan log.
package scan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Kind names one scan.
type Kind string

const (
	Service Kind = "service" // nmap -sV
	Ports   Kind = "ports"   // nmap -p-
	Vuln    Kind = "vuln"    // nmap --script vuln
	Lynis   Kind = "lynis"   // lynis audit system
)

// LogTimeLayout is the timestamp layout of scan log entries.
const LogTimeLayout = "2006-01-02 15:04:05"

// ErrAllFailed is returned when no requested scan produced output.
var ErrAllFailed = errors.New("all scans failed")

type definition struct {
	label       string
	needsTarget bool
	args        func(target string) []string
}

var definitions = map[Kind]definition{
	Service: {"Nmap Scan", true, func(t string) []string { return []string{"-sV", t} }},
	Ports:   {"Port Scan", true, func(t string) []string { return []string{"-p-", t} }},
	Vuln:    {"Vulnerability Scan", true, func(t string) []string { return []string{"--script", "vuln", t} }},
	Lynis:   {"Lynis Audit", false, nil},
}

// Label is the heading used for k in the scan log.
func (k Kind) Label() string {
	if d, ok := definitions[k]; ok {
		return d.label
	}
	return string(k)
}

// DefaultKinds is every scan when a target is known, the local audit otherwise.
func DefaultKinds(target string) []Kind {
	if target == "" {
		return []Kind{Lynis}
	}
	return []Kind{Service, Lynis, Ports, Vuln}
}

// ParseKinds resolves scan names, falling back to DefaultKinds when names is
// empty, and checks that network scans have a usable target.
func ParseKinds(names []string, target string) ([]Kind, error) {
	if len(names) == 0 {
		return DefaultKinds(target), nil
	}
	kinds := make([]Kind, 0, len(names))
	for _, n := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(n)))
		if _, ok := definitions[k]; !ok {
			return nil, fmt.Errorf("unknown scan %q (want service, ports, vuln or lynis)", n)
		}
		kinds = append(kinds, k)
	}
	for _, k := range kinds {
		if err := checkTarget(k, target); err != nil {
			return nil, err
		}
	}
	return kinds, nil
}

func checkTarget(k Kind, target string) error {
	if !definitions[k].needsTarget {
		return nil
	}
	if target == "" {
		return fmt.Errorf("%s needs a target", k.Label())
	}
	// Targets go straight onto the nmap command line.
	if strings.HasPrefix(target, "-") || strings.ContainsAny(target, " \t\n") {
		return fmt.Errorf("invalid target %q", target)
	}
	return nil
}

// Runner executes one external program.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs programs directly, without a shell.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// Result is the outcome of one scan.
type Result struct {
	Kind   Kind
	Output string
	Err    error
}

// Scanner runs scans and writes one log entry per scan.
type Scanner struct {
	runner Runner
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewScanner(runner Runner, log *zap.SugaredLogger) *Scanner {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scanner{runner: runner, log: log, now: time.Now}
}

// SetClock replaces the clock used for entry timestamps.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}

// Run executes kinds in order and appends an entry for each to w:
//
//	[2006-01-02 15:04:05] Nmap Scan Results:
//	<output>
//
// A failing tool is recorded in its entry and does not stop later scans.
func (s *Scanner) Run(ctx context.Context, kinds []Kind, target string, w io.Writer) ([]Result, error) {
	for _, k := range kinds {
		if _, ok := definitions[k]; !ok {
			return nil, fmt.Errorf("unknown scan %q", k)
		}
		if err := checkTarget(k, target); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(kinds))
	failed := 0
	for _, k := range kinds {
		s.log.Infow("Running scan", "scan", k.Label(), "target", target)
		out, err := s.scan(ctx, k, target)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		body := out
		if err != nil {
			failed++
			s.log.Warnw("Scan failed", "scan", k.Label(), "error", err)
			if body == "" {
				body = "Error: " + err.Error()
			}
		}
		entry := fmt.Sprintf("[%s] %s Results:\n%s\n\n", s.now().Format(LogTimeLayout), k.Label(), body)
		if _, werr := io.WriteString(w, entry); werr != nil {
			return results, fmt.Errorf("failed to write scan log: %w", werr)
		}
		results = append(results, Result{Kind: k, Output: out, Err: err})
	}

	if len(kinds) > 0 && failed == len(kinds) {
		return results, ErrAllFailed
	}
	return results, nil
}

func (s *Scanner) scan(ctx context.Context, k Kind, target string) (string, error) {
	if k == Lynis {
		return s.lynis(ctx)
	}
	return s.runner.Run(ctx, "nmap", definitions[k].args(target)...)
}

// lynis runs the audit with a private report file and summarizes it.
func (s *Scanner) lynis(ctx context.Context) (string, error) {
	f, err := os.CreateTemp("", "lynis-report-*.dat")
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	reportFile := f.Name()
	f.Close()
	defer os.Remove(reportFile)

	out, runErr := s.runner.Run(ctx, "lynis", "audit", "system", "--quick", "--no-colors", "--report-file", reportFile)

	data, err := os.ReadFile(reportFile)
	if err != nil || len(data) == 0 {
		return out, runErr
	}
	// Lynis exits non-zero when it has warnings; the report file is what counts.
	if runErr != nil {
		s.log.Debugw("Lynis exited with error", "error", runErr)
	}
	return LynisSummary(data), nil
}

// LynisSummary lists the warnings and suggestions of a lynis report file.
func LynisSummary(report []byte) string {
	var warnings, suggestions []string
	sc := bufio.NewScanner(bytes.NewReader(report))
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "warning[]="):
			warnings = append(warnings, strings.TrimPrefix(line, "warning[]="))
		case strings.HasPrefix(line, "suggestion[]="):
			suggestions = append(suggestions, strings.TrimPrefix(line, "suggestion[]="))
		}
	}
	if len(warnings) == 0 && len(suggestions) == 0 {
		return "Lynis finished. No warnings or suggestions found in the report file."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WARNINGS (%d found):\n", len(warnings))
	for _, w := range warnings {
		b.WriteString("- " + w + "\n")
	}
	fmt.Fprintf(&b, "\nSUGGESTIONS (%d found):\n", len(suggestions))
	for _, s := range suggestions {
		b.WriteString("- " + s + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
