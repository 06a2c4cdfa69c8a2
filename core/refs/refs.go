// Package refs extracts Strong's reference markers from annotated verse text.
//
// Source verses carry inline markers in the form {H7225} or {G2316}: a
// one-letter language prefix (H for Hebrew, G for Greek) followed by digits,
// wrapped in braces. Tokenization is a pure function over the text; it never
// mutates its input and never fails.
package refs

import (
	"regexp"
	"strings"
)

// Marker syntax patterns. The escaped/parenthetical variants appear in some
// source modules and are stripped without ever being tokenized.
var (
	markerPattern  = regexp.MustCompile(`\{([HG]\d+)\}`)
	escapedPattern = regexp.MustCompile(`\{\(([HG]\d+)\)\}|\{[HG]\d+\)\}`)
	idPattern      = regexp.MustCompile(`[HG]\d+`)
)

// Token is a single reference marker occurrence within a verse.
type Token struct {
	// ID is the normalized reference id (e.g. "H7225").
	ID string

	// Index is the position in the verse's ordered token sequence
	// (0-indexed). Doublet tokens advance the index like any other token
	// so that positions stay aligned with sound-annotation lookups.
	Index int

	// Start is the byte offset of the opening brace.
	Start int

	// End is the byte offset just past the closing brace.
	End int

	// Word is the source word immediately preceding the marker, or ""
	// when no word is attached.
	Word string

	// WordStart is the byte offset where Word begins. Meaningless when
	// Word is empty.
	WordStart int

	// Doublet marks a token that touches the previous marker with no
	// intervening word. Such markers annotate nothing translatable and
	// are stripped without styling.
	Doublet bool
}

// Tokenize extracts the ordered reference tokens from raw verse text.
//
// A marker that immediately follows another marker (optionally separated by
// an apostrophe) has no word of its own; it is emitted with Doublet set so
// downstream stages can strip it while leaving the neighboring marker's
// word attachment intact.
func Tokenize(text string) []Token {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tokens := make([]Token, 0, len(matches))
	prevEnd := -1
	for i, m := range matches {
		start, end := m[0], m[1]
		id := text[m[2]:m[3]]

		tok := Token{
			ID:    id,
			Index: i,
			Start: start,
			End:   end,
		}

		if prevEnd >= 0 && touchesPrevious(text[prevEnd:start]) {
			tok.Doublet = true
		} else {
			tok.Word, tok.WordStart = precedingWord(text, start)
		}

		tokens = append(tokens, tok)
		prevEnd = end
	}
	return tokens
}

// touchesPrevious reports whether the gap between two markers carries no
// word content. An empty gap or a lone apostrophe counts as touching.
func touchesPrevious(gap string) bool {
	return gap == "" || gap == "'" || gap == "’"
}

// precedingWord scans back from a marker's opening brace and returns the
// attached word and its starting offset. Words are runs of letters, digits
// and apostrophes, matching the annotation convention of the source corpus.
func precedingWord(text string, braceAt int) (string, int) {
	start := braceAt
	for start > 0 {
		r := text[start-1]
		if isWordByte(r) {
			start--
			continue
		}
		break
	}
	if start == braceAt {
		return "", 0
	}
	return text[start:braceAt], start
}

func isWordByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '\'':
		return true
	}
	return false
}

// NormalizeID extracts a canonical reference id from a free-form value.
// It accepts strings like "h7225", "H7225 (qal)", or "strong:G2316" and
// returns the first substring matching the [HG]digits pattern.
func NormalizeID(s string) (string, bool) {
	id := idPattern.FindString(strings.ToUpper(s))
	return id, id != ""
}

// NormalizeFirst returns the first normalizable id from a list of
// candidate strings. Pre-tokenized corpora sometimes record a token's
// Strong's data as a list; the first recognizable entry wins.
func NormalizeFirst(candidates []string) (string, bool) {
	for _, c := range candidates {
		if id, ok := NormalizeID(c); ok {
			return id, true
		}
	}
	return "", false
}

// StripMarkers removes every reference marker from text, including the
// escaped and parenthetical variants, leaving no visual trace.
func StripMarkers(text string) string {
	text = markerPattern.ReplaceAllString(text, "")
	return escapedPattern.ReplaceAllString(text, "")
}

// IDs returns the normalized ids of all markers in the text, in order,
// including doublets. Convenience for frequency counting.
func IDs(text string) []string {
	matches := markerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m[1]
	}
	return ids
}
