package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// RootKey derives the compact consonant-only signature used for phonetic
// grouping. The input is NFD-decomposed so that combining marks (Hebrew
// niqqud and cantillation, Greek accents and breathings) can be dropped,
// then vowel letters are removed from romanized text. Hebrew and Greek
// base letters pass through untouched. The result is a pure function of
// its input: identical strings always produce identical keys.
func RootKey(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if !unicode.IsLetter(r) {
			continue
		}
		if isLatinVowel(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// InitialLetter returns the first base letter of a root string with
// diacritics stripped, or "" when the string has no letters.
func InitialLetter(s string) string {
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsLetter(r) {
			return string(unicode.ToLower(r))
		}
	}
	return ""
}

func isLatinVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
