package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vulnrecord/pkg/model"
)

func TestSegment(t *testing.T) {
	t.Run("no markers yields the whole input", func(t *testing.T) {
		for _, text := range []string{"", "plain text", "--- Chunk Analysis ---"} {
			chunks := Segment(text)
			require.Len(t, chunks, 1)
			assert.Equal(t, text, chunks[0])
		}
	})

	t.Run("preamble dropped", func(t *testing.T) {
		text := "intro\n--- Chunk 1 Analysis ---\nfirst\n--- chunk 2 analysis ---\nsecond\n"
		chunks := Segment(text)
		require.Len(t, chunks, 2)
		assert.True(t, strings.HasPrefix(chunks[0], "--- Chunk 1 Analysis ---"))
		assert.Contains(t, chunks[0], "first")
		assert.NotContains(t, chunks[0], "second")
		assert.Contains(t, chunks[1], "second")
	})
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		patterns []Pattern
		want     Result
	}{
		{"markdown type", "Vulnerability 1: **Weak Password Policy**", TypePatterns, Found("Weak Password Policy")},
		{"json type", `{"type": "SQL Injection"}`, TypePatterns, Found("SQL Injection")},
		{"markdown wins over json", "Vulnerability 2: **XSS**\n{\"type\": \"Other\"}", TypePatterns, Found("XSS")},
		{"bold location", "**Location:** /etc/ssh/sshd_config", LocationPatterns, Found("/etc/ssh/sshd_config")},
		{"bulleted log entry", "* **Log Entry:** Failed password for root", LogEntryPatterns, Found("Failed password for root")},
		{"json log entry", `"log_entry": "sshd[12]: accepted"`, LogEntryPatterns, Found("sshd[12]: accepted")},
		{"missing", "nothing here", LocationPatterns, NotFound},
		{"empty value is not found", `{"location": ""}`, LocationPatterns, NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text, tt.patterns))
		})
	}
}

func TestResultOr(t *testing.T) {
	assert.Equal(t, "x", Found("x").Or("d"))
	assert.Equal(t, "d", NotFound.Or("d"))
}

func TestDescription(t *testing.T) {
	chunk := "**Description:** Default password found on the SSH service.\n**Severity:** High"
	assert.Equal(t, Found("Default password found on the SSH service."), Extract(chunk, DescriptionPatterns))
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		text string
		want model.Severity
	}{
		{"**Severity:** Critical", model.SevCritical},
		{"Severity: high", model.SevHigh},
		{`{"severity": "LOW"}`, model.SevLow},
		{"**Severity:** Low\n{\"severity\": \"Critical\"}", model.SevLow},
		{"no mention", model.SevMedium},
		{"Severity: catastrophic", model.SevMedium},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Severity(tt.text), tt.text)
	}
}

func TestSeverityIdempotent(t *testing.T) {
	for _, sev := range model.Severities {
		got := Severity("Severity: " + string(sev))
		assert.Equal(t, sev, got)
		assert.Equal(t, got, Severity("Severity: "+string(got)))
	}
}

func TestReferences(t *testing.T) {
	refs := References("See https://nvd.nist.gov/vuln/detail/CVE-2024-1 and http://example.com/a.")
	assert.Equal(t, []string{"https://nvd.nist.gov/vuln/detail/CVE-2024-1", "http://example.com/a."}, refs)

	none := References("no links")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, Found("2024-03-01 12:30:00"), Timestamp("at 2024-03-01 12:30:00 sshd"))
	assert.Equal(t, NotFound, Timestamp("yesterday"))
}
