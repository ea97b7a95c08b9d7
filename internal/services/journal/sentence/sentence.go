// Package sentence splits dream text into the sentences typed on screen.
package sentence

import (
	"regexp"
	"strings"
)

// boundary matches a run of terminal punctuation followed by whitespace,
// including Unicode separators such as U+00A0, U+2028 and U+3000. The input
// is trimmed first, so the whitespace is always followed by more text.
var boundary = regexp.MustCompile(`[.?!…]+([\s\v\p{Z}\x{FEFF}]+)`)

// Split breaks text into trimmed, non-empty sentences in order.
//
// A sentence ends at a run of '.', '?', '!' or '…' followed by whitespace, or
// at the end of the text. When nothing survives trimming the result is a
// single element holding the trimmed input, which may be "".
func Split(text string) []string {
	trimmed := strings.TrimSpace(text)

	var parts []string
	start := 0
	for _, loc := range boundary.FindAllStringSubmatchIndex(trimmed, -1) {
		// loc[2] is where the whitespace after the punctuation begins.
		parts = appendPart(parts, trimmed[start:loc[2]])
		start = loc[3]
	}
	parts = appendPart(parts, trimmed[start:])

	if len(parts) == 0 {
		return []string{trimmed}
	}
	return parts
}

func appendPart(parts []string, part string) []string {
	if part = strings.TrimSpace(part); part != "" {
		parts = append(parts, part)
	}
	return parts
}
