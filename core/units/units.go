// Package units loads literary-unit outlines: named multi-verse groupings
// (pericopes) within a book, with inclusive verse ranges. Units are
// read-only reference data loaded once; several may be active for one
// chapter.
package units

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/CedarLex/core/corpus"
	"github.com/FocuswithJustin/CedarLex/core/errors"
)

// Unit is one literary unit within a book.
type Unit struct {
	// Book is the containing book's name.
	Book string `json:"-"`

	// Marker is the unit's short outline label (e.g., "I.A").
	Marker string `json:"marker"`

	// Title is the unit's display title.
	Title string `json:"title"`

	// Range is the optional textual form of the verse range, kept for
	// display.
	Range string `json:"range,omitempty"`

	// Start and End delimit the unit's inclusive verse range.
	Start Point `json:"range_start"`
	End   Point `json:"range_end"`
}

// Label combines marker and title for display.
func (u *Unit) Label() string {
	label := strings.TrimSpace(strings.TrimSpace(u.Marker) + " " + strings.TrimSpace(u.Title))
	if label == "" {
		return u.Title
	}
	return label
}

// Color derives the unit's deterministic display color from its marker and
// title.
func (u *Unit) Color() string {
	sum := blake3.Sum256([]byte(u.Marker + "-" + u.Title))
	return fmt.Sprintf("#%02x%02x%02x", sum[0], sum[1], sum[2])
}

// ActiveFor reports whether the unit's chapter span covers the chapter.
func (u *Unit) ActiveFor(chapter int) bool {
	return u.Start.Chapter <= chapter && chapter <= u.End.Chapter
}

// Contains reports whether a (chapter, verse) position falls inside the
// unit's inclusive range. An end verse of 0 extends through the end
// chapter.
func (u *Unit) Contains(chapter, verse int) bool {
	p := Point{Chapter: chapter, Verse: verse}
	if p.Before(u.Start) {
		return false
	}
	if u.End.Verse == 0 {
		return chapter <= u.End.Chapter
	}
	return !u.End.Before(p)
}

// endVerse resolves the unit's final verse number against the corpus.
func (u *Unit) endVerse(idx *corpus.Index) int {
	if u.End.Verse != 0 {
		return u.End.Verse
	}
	return idx.MaxVerse(u.Book, u.End.Chapter)
}

// VerseCount returns the number of corpus verses the unit spans.
func (u *Unit) VerseCount(idx *corpus.Index) int {
	return idx.CountVersesInRange(u.Book, u.Start.Chapter, u.Start.Verse, u.End.Chapter, u.endVerse(idx))
}

// Progress returns the percentage of the unit completed after reading
// through the given chapter, clamped to 100.
func (u *Unit) Progress(idx *corpus.Index, chapter int) float64 {
	total := u.VerseCount(idx)
	if total == 0 {
		return 0
	}

	currentEnd := idx.MaxVerse(u.Book, chapter)
	if chapter == u.End.Chapter && u.End.Verse != 0 {
		currentEnd = u.End.Verse
	}
	completed := idx.CountVersesInRange(u.Book, u.Start.Chapter, u.Start.Verse, chapter, currentEnd)

	percent := float64(completed) / float64(total) * 100
	if percent > 100 {
		return 100
	}
	return percent
}

// Set is the loaded outline: book name to that book's units in file order.
type Set map[string][]*Unit

// rawUnit tolerates either structured range points or a textual range.
type rawUnit struct {
	Marker string `json:"marker"`
	Title  string `json:"title"`
	Range  string `json:"range"`
	Start  *Point `json:"range_start"`
	End    *Point `json:"range_end"`
}

// Load reads a literary-unit outline from JSON: an object keyed by book
// name, each value a list of units. A unit needs either structured
// range_start/range_end points or a parseable textual range.
func Load(r io.Reader) (Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return parse(data, "")
}

// LoadFile reads an outline from a JSON file on disk.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (Set, error) {
	var raw map[string][]rawUnit
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewParse("JSON", path, err.Error())
	}

	set := make(Set, len(raw))
	for book, rawUnits := range raw {
		if book == "" {
			return nil, errors.NewValidation("book", "outline has an empty book name key")
		}
		for i, ru := range rawUnits {
			u, err := ru.canonical(book)
			if err != nil {
				return nil, errors.Wrapf(err, "unit %d of %s", i, book)
			}
			set[book] = append(set[book], u)
		}
	}
	return set, nil
}

func (ru *rawUnit) canonical(book string) (*Unit, error) {
	u := &Unit{
		Book:   book,
		Marker: ru.Marker,
		Title:  ru.Title,
		Range:  ru.Range,
	}
	if u.Title == "" && u.Marker == "" {
		return nil, errors.NewValidation("title", "unit has neither a title nor a marker")
	}

	switch {
	case ru.Start != nil && ru.End != nil && !ru.Start.Zero() && !ru.End.Zero():
		u.Start, u.End = *ru.Start, *ru.End
		if u.Start.Verse == 0 {
			u.Start.Verse = 1
		}
		if u.End.Before(u.Start) {
			return nil, errors.NewValidation("range", "range end precedes range start")
		}
	case ru.Range != "":
		start, end, err := ParseRange(ru.Range)
		if err != nil {
			return nil, err
		}
		u.Start, u.End = start, end
	default:
		return nil, errors.NewValidation("range", "unit has neither range points nor a textual range")
	}
	return u, nil
}

// ForChapter returns the units of a book active for a chapter, in outline
// order.
func (s Set) ForChapter(book string, chapter int) []*Unit {
	var active []*Unit
	for _, u := range s[book] {
		if u.ActiveFor(chapter) {
			active = append(active, u)
		}
	}
	return active
}

// ForVerse returns the units of a book containing a specific verse.
func (s Set) ForVerse(book string, chapter, verse int) []*Unit {
	var containing []*Unit
	for _, u := range s[book] {
		if u.Contains(chapter, verse) {
			containing = append(containing, u)
		}
	}
	return containing
}

// Primary returns the tightest unit containing a verse: the one spanning
// the fewest corpus verses. Returns nil when no unit contains it.
func (s Set) Primary(idx *corpus.Index, book string, chapter, verse int) *Unit {
	var best *Unit
	bestCount := 0
	for _, u := range s.ForVerse(book, chapter, verse) {
		n := u.VerseCount(idx)
		if best == nil || n < bestCount {
			best, bestCount = u, n
		}
	}
	return best
}
