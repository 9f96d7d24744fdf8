package common

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is Discord's limit on message content
const MaxMessageLength = 2000

// SplitMessage breaks content into chunks of at most limit characters,
// cutting on line boundaries. A single line longer than limit is cut
// wherever the limit falls.
func SplitMessage(content string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if utf8.RuneCountInString(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0
	// set once the chunk holds a line, even an empty one
	started := false

	// Discord rejects messages without content, so a chunk of blank lines is dropped
	flush := func() {
		if started && strings.Trim(current.String(), "\n") != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		currentLen = 0
		started = false
	}

	for _, line := range strings.Split(content, "\n") {
		lineLen := utf8.RuneCountInString(line)

		// separator newline counts towards the current chunk
		needed := lineLen
		if started {
			needed++
		}
		if currentLen+needed > limit {
			flush()
		}

		cut := false
		for lineLen > limit {
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
			lineLen -= limit
			cut = true
		}
		if cut && lineLen == 0 {
			continue
		}

		if started {
			current.WriteByte('\n')
			currentLen++
		}
		current.WriteString(line)
		currentLen += lineLen
		started = true
	}
	flush()

	return chunks
}
