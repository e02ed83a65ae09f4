package extract

import "regexp"

// labeled builds a markdown pattern for "Name: value" lines, tolerating list
// bullets and bold markers around the label.
func labeled(names string) Pattern {
	return md(`(?im)^[\t >*-]*(?:\*\*)?(?:` + names + `)(?:\*\*)?:(?:\*\*)?[ \t]*([^\n]+)`)
}

// Per-chunk field patterns, markdown first.
var (
	TypePatterns = []Pattern{
		md(`(?i)Vulnerability\s+\d+\s*:\s*\*\*([^*\n]+)\*\*`),
		js(`(?i)"type"\s*:\s*"([^"\n]*)"`),
	}
	DescriptionPatterns = []Pattern{
		md(`(?is)\*\*Description:?\*\*:?(.+?)(?:\*\*|\z)`),
		js(`(?i)"description"\s*:\s*"([^"]*)"`),
	}
	LocationPatterns = []Pattern{
		labeled(`Location`),
		js(`(?i)"location"\s*:\s*"([^"\n]*)"`),
	}
	LogEntryPatterns = []Pattern{
		labeled(`Log[ _]?Entry`),
		js(`(?i)"log_entry"\s*:\s*"([^"\n]*)"`),
	}
)

// Whole-document system metadata patterns.
var (
	OSPatterns = []Pattern{
		labeled(`OS|Operating System`),
		js(`(?i)"os"\s*:\s*"([^"\n]*)"`),
	}
	VersionPatterns = []Pattern{
		labeled(`(?:OS |Kernel )?Version`),
		js(`(?i)"version"\s*:\s*"([^"\n]*)"`),
	}
	ArchitecturePatterns = []Pattern{
		labeled(`Architecture|Arch`),
		js(`(?i)"architecture"\s*:\s*"([^"\n]*)"`),
	}
)

var timestampRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)

// TimestampLayout is the date-time shape recognized inside chunks.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp returns the first date-time substring in text.
func Timestamp(text string) Result {
	if m := timestampRe.FindString(text); m != "" {
		return Found(m)
	}
	return NotFound
}
