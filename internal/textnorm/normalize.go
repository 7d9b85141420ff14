// Package textnorm holds the text primitives shared by the scorer and the
// phrase bank: normalization, whitespace splitting and keyword extraction.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// spaceClass is the whitespace set used by browser regular expressions (\s),
// which is wider than RE2's \s.
const spaceClass = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	punctuation = regexp.MustCompile("[.,/#!$%^&*;:{}=\\-_`~()]")
	spaceRun    = regexp.MustCompile("[" + spaceClass + "]{2,}")
)

// Normalize lowercases text, strips the fixed punctuation class, collapses
// runs of two or more whitespace characters into one space and trims.
// Apostrophes, question marks and brackets are kept.
func Normalize(text string) string {
	out := Lower(text)
	out = punctuation.ReplaceAllString(out, "")
	out = spaceRun.ReplaceAllString(out, " ")
	return strings.TrimFunc(out, IsSpace)
}

// Lower applies Unicode default case mapping. A Caser is stateful, so each
// call gets its own.
func Lower(text string) string {
	return cases.Lower(language.Und).String(text)
}

// IsSpace reports whether r belongs to spaceClass.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}
