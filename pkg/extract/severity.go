package extract

import (
	"regexp"

	"github.com/user/vulnrecord/pkg/model"
)

var severityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"severity"\s*:\s*"(critical|high|medium|low)"`),
	regexp.MustCompile(`(?i)(?:\*\*)?Severity(?:\*\*)?:(?:\*\*)?[ \t]*(?:\*\*)?(critical|high|medium|low)\b`),
}

// Severity classifies the first severity mention in text, in document order.
// Without one it returns model.DefaultSeverity.
func Severity(text string) model.Severity {
	best, word := -1, ""
	for _, re := range severityPatterns {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		if best < 0 || m[0] < best {
			best, word = m[0], text[m[2]:m[3]]
		}
	}
	if sev, ok := model.ParseSeverity(word); ok {
		return sev
	}
	return model.DefaultSeverity
}
