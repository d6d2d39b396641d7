package content

import "strings"

// WordsPerMinute is the reading speed used for estimates.
const WordsPerMinute = 200

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ReadingTime estimates reading time in whole minutes, rounding up.
func ReadingTime(s string) int {
	words := WordCount(s)
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
