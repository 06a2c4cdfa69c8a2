// Package render turns raw annotated verse text into display markup: one
// tokenize pass producing an immutable token list, then one emit pass that
// consumes byte spans in order. The source text is never rewritten in
// place, so marker-like text inside already-emitted markup can never be
// re-matched.
//
// Rendering is best-effort by contract: malformed or unmatched markers
// degrade to plain stripped text and the chapter function always returns a
// string, never an error.
package render

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/CedarLex/core/analysis"
	"github.com/FocuswithJustin/CedarLex/core/corpus"
	"github.com/FocuswithJustin/CedarLex/core/lexicon"
	"github.com/FocuswithJustin/CedarLex/core/overrides"
	"github.com/FocuswithJustin/CedarLex/core/refs"
	"github.com/FocuswithJustin/CedarLex/core/resolve"
	"github.com/FocuswithJustin/CedarLex/core/units"
)

// maxGlossLen caps the gloss carried on a span's data attribute.
const maxGlossLen = 180

// defaultMinDisplayLen is the shortest display text that still earns a
// repeat highlight.
const defaultMinDisplayLen = 4

// defaultStopwords are trivial English connectives whose repetition is
// noise, not signal.
var defaultStopwords = map[string]bool{
	"the": true, "and": true, "of": true, "that": true, "which": true,
	"unto": true, "with": true, "for": true, "not": true, "but": true,
	"all": true, "his": true, "her": true, "him": true, "thou": true,
	"thee": true, "was": true, "were": true, "are": true, "upon": true,
}

// Options configures a chapter render. The zero value uses defaults
// throughout.
type Options struct {
	// Repeat configures repeat-set construction.
	Repeat analysis.RepeatOptions

	// Rules is the rarity rule chain. Nil means analysis.DefaultRules.
	Rules []analysis.Rule

	// Stopwords suppresses repeat highlights on trivial display words.
	// Nil means the built-in English list.
	Stopwords map[string]bool

	// MinDisplayLen is the shortest punctuation-stripped display text
	// that still earns a repeat highlight (default 4).
	MinDisplayLen int
}

func (o Options) withDefaults() Options {
	if o.Rules == nil {
		o.Rules = analysis.DefaultRules()
	}
	if o.Stopwords == nil {
		o.Stopwords = defaultStopwords
	}
	if o.MinDisplayLen == 0 {
		o.MinDisplayLen = defaultMinDisplayLen
	}
	return o
}

// Chapter renders one chapter as annotated text: one line per verse in the
// form "<verse-number> <annotated text>", joined by newlines. Unknown
// books or chapters render as the empty string. The override store and
// unit set may be nil.
func Chapter(idx *corpus.Index, lex lexicon.Lexicon, store *overrides.Store, unitSet units.Set, book string, chapter int, opts Options) string {
	verses := idx.Chapter(book, chapter)
	if len(verses) == 0 {
		return ""
	}
	opts = opts.withDefaults()

	counts := analysis.ChapterCounts(verses)
	repeatSet := analysis.BuildRepeatSet(counts, opts.Repeat)

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	resolved := resolve.Chapter(ids, lex, store)

	peaks := unitPeaks(idx, unitSet, book, chapter, counts)
	tags := make(map[string]analysis.Tag, len(counts))
	for id := range counts {
		tags[id] = analysis.Classify(analysis.Usage{
			Global:   idx.GlobalCount(id),
			UnitPeak: peaks[id],
		}, opts.Rules)
	}

	lines := make([]string, 0, len(verses))
	for _, v := range verses {
		lines = append(lines, fmt.Sprintf("%d %s", v.Verse, renderVerse(v.Text, resolved, repeatSet, tags, opts)))
	}
	return strings.Join(lines, "\n")
}

// unitPeaks computes, for each id present in the chapter, its highest
// occurrence count within any literary unit active for the chapter.
func unitPeaks(idx *corpus.Index, unitSet units.Set, book string, chapter int, chapterCounts map[string]int) map[string]int {
	peaks := make(map[string]int, len(chapterCounts))
	if unitSet == nil {
		return peaks
	}
	for _, u := range unitSet.ForChapter(book, chapter) {
		unitCounts := make(map[string]int)
		for ch := u.Start.Chapter; ch <= u.End.Chapter; ch++ {
			for _, v := range idx.Chapter(u.Book, ch) {
				if !u.Contains(v.Chapter, v.Verse) {
					continue
				}
				for _, id := range refs.IDs(v.Text) {
					if _, inChapter := chapterCounts[id]; inChapter {
						unitCounts[id]++
					}
				}
			}
		}
		for id, n := range unitCounts {
			if n > peaks[id] {
				peaks[id] = n
			}
		}
	}
	return peaks
}

// renderVerse emits one verse's annotated text by consuming token spans in
// order. Raw text segments pass through refs.StripMarkers so escaped
// marker variants vanish without ever touching emitted markup.
func renderVerse(text string, resolved map[string]*resolve.Entry, repeatSet map[string]bool, tags map[string]analysis.Tag, opts Options) string {
	tokens := refs.Tokenize(text)
	if len(tokens) == 0 {
		return refs.StripMarkers(text)
	}

	var out strings.Builder
	cursor := 0
	for _, tok := range tokens {
		entry := resolved[tok.ID]

		// Doublets and unresolved references are stripped with no
		// visual trace, their surrounding text intact.
		if tok.Doublet || entry == nil || tok.Word == "" {
			out.WriteString(refs.StripMarkers(text[cursor:tok.Start]))
			cursor = tok.End
			continue
		}

		matchStart, original := matchSpan(text, cursor, tok, entry)

		repeated := repeatSet[tok.ID]
		if repeated && trivialDisplay(entry.Xlit, opts) {
			// Repeated-but-trivial occurrences are suppressed: the
			// marker goes, the original word stays unstyled.
			out.WriteString(refs.StripMarkers(text[cursor:tok.Start]))
			cursor = tok.End
			continue
		}

		out.WriteString(refs.StripMarkers(text[cursor:matchStart]))
		out.WriteString(span(entry, original, repeated, tags[tok.ID]))
		cursor = tok.End
	}
	out.WriteString(refs.StripMarkers(text[cursor:]))
	return out.String()
}

// matchSpan finds the source text a token annotates: the longest user
// translation phrase ending at the marker, else the single preceding
// word. Returns the match's byte start and the matched text.
func matchSpan(text string, cursor int, tok refs.Token, entry *resolve.Entry) (int, string) {
	pre := text[cursor:tok.Start]

	for _, phrase := range byWordCountDesc(entry.Translations) {
		if start, ok := phraseEnd(pre, phrase); ok {
			abs := cursor + start
			return abs, strings.TrimRight(text[abs:tok.Start], " \t")
		}
	}
	return tok.WordStart, tok.Word
}

// phraseEnd reports whether pre ends with the phrase (case-insensitive,
// word-boundary anchored, optionally followed by whitespace) and returns
// the phrase's byte offset within pre. The candidate suffix is located by
// walking back whole runes, so offsets stay correct when a case fold
// changes encoded width.
func phraseEnd(pre, phrase string) (int, bool) {
	if phrase == "" {
		return 0, false
	}
	trimmed := strings.TrimRight(pre, " \t")
	start := len(trimmed)
	for i := 0; i < utf8.RuneCountInString(phrase); i++ {
		if start == 0 {
			return 0, false
		}
		_, size := utf8.DecodeLastRuneInString(trimmed[:start])
		start -= size
	}
	if !strings.EqualFold(trimmed[start:], phrase) {
		return 0, false
	}
	if start > 0 && isWordChar(trimmed[start-1]) {
		return 0, false
	}
	return start, true
}

func isWordChar(b byte) bool {
	return b == '\'' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// byWordCountDesc orders candidate phrases longest-first so the most
// specific translation wins.
func byWordCountDesc(phrases []string) []string {
	if len(phrases) < 2 {
		return phrases
	}
	out := make([]string, len(phrases))
	copy(out, phrases)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && wordCount(out[j]) > wordCount(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// trivialDisplay reports display text too slight to deserve a repeat
// highlight: shorter than the minimum after punctuation stripping, or a
// common English stopword.
func trivialDisplay(display string, opts Options) bool {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case '\'', '-', '.', ',', ';', '!', '?', '(', ')', '’':
			return -1
		}
		return r
	}, display)
	if len(stripped) < opts.MinDisplayLen {
		return true
	}
	return opts.Stopwords[strings.ToLower(stripped)]
}

// span emits the annotation markup for one resolved occurrence.
func span(e *resolve.Entry, original string, repeated bool, tag analysis.Tag) string {
	element := "span"
	if tag.Notable() {
		element = "button"
	}

	classes := "transliterated"
	if repeated {
		classes += " repeated"
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(element)
	fmt.Fprintf(&b, " class=%q", classes)
	fmt.Fprintf(&b, " data-strongs=%q", html.EscapeString(e.ID))
	fmt.Fprintf(&b, " data-original=%q", html.EscapeString(original))
	if e.Lemma != "" {
		fmt.Fprintf(&b, " data-lemma=%q", html.EscapeString(e.Lemma))
	}
	if e.Pronunciation != "" {
		fmt.Fprintf(&b, " data-pron=%q", html.EscapeString(e.Pronunciation))
	}
	if e.Gloss != "" {
		fmt.Fprintf(&b, " data-gloss=%q", html.EscapeString(truncate(e.Gloss, maxGlossLen)))
	}
	if e.RootKey != "" {
		fmt.Fprintf(&b, " data-root-key=%q", html.EscapeString(e.RootKey))
	}
	if tag.Notable() {
		fmt.Fprintf(&b, " data-rarity=%q", string(tag))
	}

	if style := styleFor(e, repeated); style != "" {
		fmt.Fprintf(&b, " style=%q", style)
	}

	b.WriteString(">")
	b.WriteString(html.EscapeString(e.Xlit))
	fmt.Fprintf(&b, "</%s>", element)
	return b.String()
}

// styleFor picks the inline style: a user color wins and chooses its text
// color for contrast; otherwise repeat-set members get their derived
// base/accent pair; an explicit "no color" override suppresses both.
func styleFor(e *resolve.Entry, repeated bool) string {
	if hex, ok := e.Color.HexValue(); ok {
		text := "#ffffff"
		if analysis.IsLight(hex) {
			text = "#000000"
		}
		return fmt.Sprintf("background-color: %s; color: %s;", hex, text)
	}
	if e.Color.Present && e.Color.None {
		return ""
	}
	if repeated {
		pair := analysis.HighlightColors(e.ID)
		return fmt.Sprintf("background-color: %s; border-bottom: 2px solid %s;", pair.Base, pair.Accent)
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	// Do not split a multi-byte rune.
	for len(cut) > 0 && cut[len(cut)-1]&0xC0 == 0x80 {
		cut = cut[:len(cut)-1]
	}
	return cut
}
