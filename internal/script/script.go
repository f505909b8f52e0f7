// Package script classifies runes by writing system and finds word boundaries
// without relying on ASCII-only regex word classes.
package script

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Class is the writing-system class of a word rune.
type Class int

const (
	// None marks runes that never belong to a word (space, punctuation).
	None Class = iota
	Bengali
	Latin
	Other
)

const (
	bengaliFirst = 0x0980
	// U+09F2 onwards are currency and fraction signs, not word runes.
	bengaliLastWord = 0x09F1

	zwnj = 0x200C
	zwj  = 0x200D
)

// IsBengali reports whether r is a Bengali letter, sign or digit.
func IsBengali(r rune) bool {
	return r >= bengaliFirst && r <= bengaliLastWord
}

// IsJoiner reports whether r is a zero-width (non-)joiner.
func IsJoiner(r rune) bool {
	return r == zwnj || r == zwj
}

// ClassOf returns the word class of r.
func ClassOf(r rune) Class {
	switch {
	case IsBengali(r):
		return Bengali
	case r < 0x80:
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return Latin
		}
		return None
	case unicode.Is(unicode.Latin, r):
		return Latin
	case unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r):
		return Other
	default:
		return None
	}
}

// joins reports whether neighbor continues a word whose edge rune is edge.
func joins(edge, neighbor rune) bool {
	edgeClass := ClassOf(edge)
	if edgeClass == None {
		return false
	}
	if edgeClass == Bengali && IsJoiner(neighbor) {
		return true
	}
	return ClassOf(neighbor) == edgeClass
}

// IsBoundary reports whether runes[start:end] is a whole word: the rune
// before start and the rune at end must not continue the word in the
// script of the adjacent match edge.
func IsBoundary(runes []rune, start, end int) bool {
	if start < 0 || end > len(runes) || start >= end {
		return false
	}
	if start > 0 && joins(runes[start], runes[start-1]) {
		return false
	}
	if end < len(runes) && joins(runes[end-1], runes[end]) {
		return false
	}
	return true
}

// Token is a maximal run of word runes of one class.
type Token struct {
	Text  string
	Start int
	End   int
	Class Class
}

// Tokens splits text into word runs. Offsets are rune offsets.
func Tokens(text string) []Token {
	runes := []rune(text)
	var tokens []Token
	start := -1
	class := None
	flush := func(end int) {
		if start < 0 {
			return
		}
		// Trailing joiners are not part of the word.
		for end > start && IsJoiner(runes[end-1]) {
			end--
		}
		if end > start {
			tokens = append(tokens, Token{Text: string(runes[start:end]), Start: start, End: end, Class: class})
		}
		start = -1
		class = None
	}
	for i, r := range runes {
		c := ClassOf(r)
		if start >= 0 && class == Bengali && IsJoiner(r) {
			continue
		}
		if c == None {
			flush(i)
			continue
		}
		if start >= 0 && c != class {
			flush(i)
		}
		if start < 0 {
			start = i
			class = c
		}
	}
	flush(len(runes))
	return tokens
}

// Normalize returns the NFC form of s.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
