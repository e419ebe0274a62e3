package knowledge

import "strings"

// Default chunking parameters for persona source files.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// chunkSeparators are tried in order when choosing a break point: paragraph
// break first, then line break, sentence end, word boundary.
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// SplitText splits text into chunks of at most chunkSize characters, breaking
// at the most natural separator available in each window and carrying overlap
// characters into the next chunk. Sizes are measured in runes, not bytes.
func SplitText(text string, chunkSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		if pos+chunkSize >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[pos:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := runes[pos : pos+chunkSize]
		cut := breakPoint(window)
		if chunk := strings.TrimSpace(string(window[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Back up by the overlap, but always make forward progress.
		next := pos + cut - overlap
		if next <= pos {
			next = pos + cut
		}
		pos = next
	}
	return chunks
}

// breakPoint finds the cut position (exclusive) within window, preferring the
// last occurrence of the highest-priority separator. Falls back to a hard cut
// at the window end when no separator is present.
func breakPoint(window []rune) int {
	for _, sep := range chunkSeparators {
		sepRunes := []rune(sep)
		for i := len(window) - len(sepRunes); i > 0; i-- {
			if string(window[i:i+len(sepRunes)]) == sep {
				return i + len(sepRunes)
			}
		}
	}
	return len(window)
}
