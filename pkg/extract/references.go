package extract

import "regexp"

var referenceRe = regexp.MustCompile(`https?://\S+`)

// References returns every http(s) URL in text in order of appearance.
// Duplicates are kept.
func References(text string) []string {
	refs := referenceRe.FindAllString(text, -1)
	if refs == nil {
		return []string{}
	}
	return refs
}
