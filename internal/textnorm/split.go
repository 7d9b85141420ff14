package textnorm

import "unicode/utf8"

// Split breaks text on whitespace runs. Unlike strings.Fields it keeps the
// empty tokens produced by leading or trailing whitespace, and an empty input
// yields a single empty token. Word counts in the structure score depend on it.
func Split(text string) []string {
	words := make([]string, 0, 8)
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !IsSpace(r) {
			i += size
			continue
		}
		words = append(words, text[start:i])
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !IsSpace(r) {
				break
			}
			i += size
		}
		start = i
	}
	return append(words, text[start:])
}

// Length counts UTF-16 code units, the unit word-length filters are defined in.
func Length(word string) int {
	n := 0
	for _, r := range word {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
