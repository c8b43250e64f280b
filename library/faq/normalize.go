package faq

import (
	"strings"
	"unicode/utf8"
)

// MinTokenLen tokens shorter than this (in characters) are discarded
const MinTokenLen = 3

// U+0130 lower-cases to two runes, `i` and a combining dot,
// strings.ToLower maps it to a single `i`
var dottedCapitalI = strings.NewReplacer("\u0130", "i\u0307")

// Normalize lower-cases text, splits it on whitespace
// and drops tokens with less than MinTokenLen characters.
//
// Punctuation is kept as a part of the token, duplicates are kept.
func Normalize(text string) []string {
	fields := strings.Fields(strings.ToLower(dottedCapitalI.Replace(text)))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLen {
			continue
		}

		tokens = append(tokens, f)
	}

	return tokens
}
