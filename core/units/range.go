package units

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/CedarLex/core/errors"
)

// Point is one end of a unit's verse range. Verse 0 on an end point means
// "through the last verse of the chapter"; the corpus index resolves it.
type Point struct {
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// Zero reports an unpopulated point.
func (p Point) Zero() bool { return p.Chapter == 0 && p.Verse == 0 }

// Before reports whether p orders strictly before q.
func (p Point) Before(q Point) bool {
	if p.Chapter != q.Chapter {
		return p.Chapter < q.Chapter
	}
	return p.Verse < q.Verse
}

// rangeGrammar parses textual verse ranges.
// Examples: "3", "3:1", "3-4", "3:1-26", "3:1-4:26"
//
//nolint:govet // participle grammar tags are not standard struct tags
type rangeGrammar struct {
	Chapter int      `@Int`
	Verse   *int     `( ":" @Int )?`
	End     *endPart `( "-" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type endPart struct {
	Number int  `@Int`
	Verse  *int `( ":" @Int )?`
}

var rangeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var rangeParser = participle.MustBuild[rangeGrammar](
	participle.Lexer(rangeLexer),
	participle.Elide("Whitespace"),
)

// ParseRange parses a textual range expression into start and end points.
//
// Disambiguation follows the usual reference convention: when the start
// names a verse and the end is a bare number ("3:1-26"), the end number is
// a verse in the start chapter; when neither side names a verse ("3-4"),
// the range covers whole chapters.
func ParseRange(s string) (Point, Point, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), "–", "-")
	if normalized == "" {
		return Point{}, Point{}, errors.NewParse("range", "", "empty range expression")
	}

	g, err := rangeParser.ParseString("", normalized)
	if err != nil {
		return Point{}, Point{}, errors.NewParse("range", "", err.Error())
	}

	start := Point{Chapter: g.Chapter, Verse: 1}
	if g.Verse != nil {
		start.Verse = *g.Verse
	}

	var end Point
	switch {
	case g.End == nil:
		// "3" spans the whole chapter; "3:1" is a single verse.
		end = Point{Chapter: g.Chapter}
		if g.Verse != nil {
			end.Verse = *g.Verse
		}
	case g.End.Verse != nil:
		// "3:1-4:26"
		end = Point{Chapter: g.End.Number, Verse: *g.End.Verse}
	case g.Verse != nil:
		// "3:1-26": bare end number is a verse in the start chapter.
		end = Point{Chapter: g.Chapter, Verse: g.End.Number}
	default:
		// "3-4": whole chapters.
		end = Point{Chapter: g.End.Number}
	}

	if end.Chapter < start.Chapter || (end.Chapter == start.Chapter && end.Verse != 0 && end.Verse < start.Verse) {
		return Point{}, Point{}, errors.NewParse("range", "", "range end precedes range start: "+s)
	}
	return start, end, nil
}
