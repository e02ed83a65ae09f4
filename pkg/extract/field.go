// Package extract pulls structured values out of free-text scan reports.
//
// Every extractor is a pure function over a text span: no I/O, no shared
// state. Patterns are compiled once at package init.
package extract

import (
	"regexp"
	"strings"
)

// Kind selects the cleanup applied to a matched value.
type Kind int

const (
	// Markdown values have bold markers (**) stripped.
	Markdown Kind = iota
	// JSON values have stray quote characters stripped.
	JSON
)

// Pattern is one candidate way of locating a field.
type Pattern struct {
	Re    *regexp.Regexp
	Group int
	Kind  Kind
}

// Result is the outcome of an extraction: a value, or NotFound.
type Result struct {
	Value string
	Found bool
}

// NotFound is the empty Result.
var NotFound = Result{}

// Found wraps a successfully extracted value.
func Found(v string) Result {
	return Result{Value: v, Found: true}
}

// Or returns the value when found, def otherwise.
func (r Result) Or(def string) string {
	if r.Found {
		return r.Value
	}
	return def
}

// Extract tries each pattern in order and returns the first non-empty match.
func Extract(text string, patterns []Pattern) Result {
	for _, p := range patterns {
		m := p.Re.FindStringSubmatch(text)
		if m == nil || p.Group >= len(m) {
			continue
		}
		if v := clean(m[p.Group], p.Kind); v != "" {
			return Found(v)
		}
	}
	return NotFound
}

func clean(v string, kind Kind) string {
	v = strings.TrimSpace(v)
	switch kind {
	case Markdown:
		v = strings.ReplaceAll(v, "**", "")
	case JSON:
		v = strings.ReplaceAll(v, `"`, "")
	}
	return strings.TrimSpace(v)
}

func md(expr string) Pattern {
	return Pattern{Re: regexp.MustCompile(expr), Group: 1, Kind: Markdown}
}

func js(expr string) Pattern {
	return Pattern{Re: regexp.MustCompile(expr), Group: 1, Kind: JSON}
}
