package tokens

import "unicode/utf8"

// Estimate returns a conservative estimate of the token count for a piece of
// text. It over-estimates so history trimming triggers early rather than
// late; it is a safety threshold, not a tokenizer.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	// BPE tokenizers land around 3-4 chars/token for English-ish text.
	// bytes/3 is a conservative bound; runes/2 guards mostly-ASCII short tokens.
	byBytes := len(text) / 3
	byRunes := utf8.RuneCountInString(text) / 2
	if byBytes < byRunes {
		return byRunes
	}
	return byBytes
}
