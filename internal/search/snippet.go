package search

import (
	"strings"
	"unicode/utf8"
)

// DefaultRadius is how many characters of context surround a match.
const DefaultRadius = 50

const ellipsis = "..."

// FindFold locates the first case-insensitive occurrence of keyword in text
// and returns its start and length in runes.
func FindFold(text, keyword string) (start, length int, ok bool) {
	lowerText := strings.ToLower(text)
	lowerKey := strings.ToLower(keyword)
	i := strings.Index(lowerText, lowerKey)
	if i < 0 {
		return 0, 0, false
	}
	// Lowercasing maps rune to rune, so rune offsets carry over to text.
	return utf8.RuneCountInString(lowerText[:i]), utf8.RuneCountInString(lowerKey), true
}

// Snippet cuts radius runes either side of [start, start+length), marking
// each truncated side with an ellipsis.
func Snippet(text string, start, length, radius int) string {
	runes := []rune(text)
	from := max(0, start-radius)
	to := min(len(runes), start+length+radius)
	if from > to {
		from = to
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(string(runes[from:to]))
	if to < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}
