package playback

import (
	"regexp"
	"strings"
)

var (
	// Anything outside letters, digits, punctuation, separators and
	// whitespace, which covers emoji and pictographic glyphs. Newlines
	// and tabs must survive this step so the collapse below can turn
	// them into single spaces.
	emojiPattern = regexp.MustCompile(`[^\p{L}\p{N}\p{P}\p{Z}\s]`)
	// Markdown-style punctuation markers never meant to be spoken.
	markdownPattern   = regexp.MustCompile("[\\\\*_~#`!]")
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeForSpeech strips presentation-only content from chat text
// before synthesis: emoji, markdown punctuation markers, and redundant
// whitespace. The result is idempotent under re-normalization.
func NormalizeForSpeech(text string) string {
	text = emojiPattern.ReplaceAllString(text, "")
	text = markdownPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
