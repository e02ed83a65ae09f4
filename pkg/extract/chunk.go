package extract

import "regexp"

var chunkMarkerRe = regexp.MustCompile(`(?i)---\s*Chunk\s+\d+\s+Analysis\s*---`)

// Segment splits a report into per-finding chunks. Each chunk starts at its
// "--- Chunk N Analysis ---" marker and ends before the next one; text ahead
// of the first marker is dropped. Without markers the whole text is one chunk.
func Segment(text string) []string {
	locs := chunkMarkerRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}
	chunks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunks = append(chunks, text[loc[0]:end])
	}
	return chunks
}
