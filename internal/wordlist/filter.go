// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"strings"

	"github.com/verte-zerg/shuddho/internal/script"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists.
func FilterForLang(lang string) FilterFunc {
	switch strings.ToLower(lang) {
	case "bn":
		return filterBengali
	case "en":
		return filterEnglishASCII
	default:
		return func(word string) bool { return word != "" }
	}
}

// Filter returns the words accepted by keep.
func Filter(words []string, keep FilterFunc) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

func filterBengali(word string) bool {
	if word == "" {
		return false
	}
	letters := 0
	for _, r := range word {
		switch {
		case script.IsBengali(r):
			letters++
		case script.IsJoiner(r):
		default:
			return false
		}
	}
	return letters > 0
}

func filterEnglishASCII(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
