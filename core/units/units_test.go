package units

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/CedarLex/core/corpus"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in         string
		start, end Point
	}{
		{"3", Point{3, 1}, Point{3, 0}},
		{"3:1", Point{3, 1}, Point{3, 1}},
		{"3:5", Point{3, 5}, Point{3, 5}},
		{"3-4", Point{3, 1}, Point{4, 0}},
		{"3:1-26", Point{3, 1}, Point{3, 26}},
		{"3:1-4:26", Point{3, 1}, Point{4, 26}},
		{"1:1–2:3", Point{1, 1}, Point{2, 3}}, // en-dash normalizes
		{" 12 : 1 - 50 : 26 ", Point{12, 1}, Point{50, 26}},
	}
	for _, tt := range tests {
		start, end, err := ParseRange(tt.in)
		if err != nil {
			t.Errorf("ParseRange(%q): %v", tt.in, err)
			continue
		}
		if start != tt.start || end != tt.end {
			t.Errorf("ParseRange(%q) = %v..%v, want %v..%v", tt.in, start, end, tt.start, tt.end)
		}
	}
}

func TestParseRangeErrors(t *testing.T) {
	for _, in := range []string{"", "abc", "4:26-3:1", "3:9-3:2", ":5"} {
		if _, _, err := ParseRange(in); err == nil {
			t.Errorf("ParseRange(%q) accepted invalid input", in)
		}
	}
}

const outlineJSON = `{
  "Genesis": [
    {"marker": "I", "title": "Creation", "range": "1:1-2:3"},
    {"marker": "II", "title": "Eden", "range_start": {"chapter": 2, "verse": 4}, "range_end": {"chapter": 3, "verse": 24}},
    {"marker": "I.A", "title": "First Day", "range": "1:1-5"}
  ]
}`

func testIndex(t *testing.T) *corpus.Index {
	t.Helper()
	var verses []corpus.Verse
	// Genesis 1 has 10 verses, chapters 2 and 3 have 5 each.
	for v := 1; v <= 10; v++ {
		verses = append(verses, corpus.Verse{Book: "Genesis", Chapter: 1, Verse: v, Text: "x"})
	}
	for ch := 2; ch <= 3; ch++ {
		for v := 1; v <= 5; v++ {
			verses = append(verses, corpus.Verse{Book: "Genesis", Chapter: ch, Verse: v, Text: "x"})
		}
	}
	return corpus.BuildIndex(&corpus.Corpus{Verses: verses})
}

func TestLoad(t *testing.T) {
	set, err := Load(strings.NewReader(outlineJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set["Genesis"]) != 3 {
		t.Fatalf("loaded %d units, want 3", len(set["Genesis"]))
	}

	creation := set["Genesis"][0]
	if creation.Start != (Point{1, 1}) || creation.End != (Point{2, 3}) {
		t.Errorf("textual range parsed to %v..%v", creation.Start, creation.End)
	}
	eden := set["Genesis"][1]
	if eden.Start != (Point{2, 4}) || eden.End != (Point{3, 24}) {
		t.Errorf("structured range parsed to %v..%v", eden.Start, eden.End)
	}
	if creation.Book != "Genesis" {
		t.Errorf("Book = %q", creation.Book)
	}
}

func TestLoadRejections(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no range", `{"Genesis": [{"title": "x"}]}`},
		{"no title or marker", `{"Genesis": [{"range": "1:1-2:3"}]}`},
		{"inverted points", `{"Genesis": [{"title": "x", "range_start": {"chapter": 3, "verse": 1}, "range_end": {"chapter": 1, "verse": 1}}]}`},
		{"not an object", `[1]`},
	}
	for _, tt := range tests {
		if _, err := Load(strings.NewReader(tt.in)); err == nil {
			t.Errorf("%s: Load accepted malformed outline", tt.name)
		}
	}
}

func TestLabelAndColor(t *testing.T) {
	u := &Unit{Marker: " I ", Title: " Creation "}
	if u.Label() != "I Creation" {
		t.Errorf("Label = %q", u.Label())
	}

	c1, c2 := u.Color(), u.Color()
	if c1 != c2 {
		t.Error("Color not deterministic")
	}
	if len(c1) != 7 || c1[0] != '#' {
		t.Errorf("Color = %q", c1)
	}
	other := &Unit{Marker: "II", Title: "Eden"}
	if other.Color() == c1 {
		t.Error("distinct units share a color")
	}
}

func TestContains(t *testing.T) {
	u := &Unit{Book: "Genesis", Start: Point{1, 3}, End: Point{2, 3}}
	tests := []struct {
		ch, v int
		want  bool
	}{
		{1, 2, false},
		{1, 3, true},
		{1, 10, true},
		{2, 3, true},
		{2, 4, false},
		{3, 1, false},
	}
	for _, tt := range tests {
		if got := u.Contains(tt.ch, tt.v); got != tt.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tt.ch, tt.v, got, tt.want)
		}
	}

	// End verse 0 runs through the whole end chapter.
	open := &Unit{Book: "Genesis", Start: Point{1, 1}, End: Point{2, 0}}
	if !open.Contains(2, 5) {
		t.Error("open end excluded a verse of the end chapter")
	}
}

func TestVerseCountAndProgress(t *testing.T) {
	idx := testIndex(t)
	u := &Unit{Book: "Genesis", Start: Point{1, 1}, End: Point{2, 3}}

	// Chapter 1 has 10 verses plus 2:1-3.
	if got := u.VerseCount(idx); got != 13 {
		t.Errorf("VerseCount = %d, want 13", got)
	}

	// After chapter 1: 10 of 13.
	got := u.Progress(idx, 1)
	want := 10.0 / 13.0 * 100
	if got < want-0.01 || got > want+0.01 {
		t.Errorf("Progress(1) = %f, want %f", got, want)
	}

	// After the end chapter the unit is complete, clamped at 100.
	if got := u.Progress(idx, 2); got != 100 {
		t.Errorf("Progress(2) = %f, want 100", got)
	}
}

func TestForChapterAndPrimary(t *testing.T) {
	set, err := Load(strings.NewReader(outlineJSON))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	idx := testIndex(t)

	active := set.ForChapter("Genesis", 1)
	if len(active) != 2 {
		t.Fatalf("ForChapter(1) returned %d units, want 2", len(active))
	}

	if got := set.ForChapter("Exodus", 1); got != nil {
		t.Errorf("ForChapter on unknown book = %v", got)
	}

	// Genesis 1:2 is inside both "Creation" (1:1-2:3) and "First Day"
	// (1:1-5); the tighter unit wins.
	primary := set.Primary(idx, "Genesis", 1, 2)
	if primary == nil || primary.Title != "First Day" {
		t.Errorf("Primary = %+v, want First Day", primary)
	}

	// Genesis 1:7 is only inside Creation.
	primary = set.Primary(idx, "Genesis", 1, 7)
	if primary == nil || primary.Title != "Creation" {
		t.Errorf("Primary = %+v, want Creation", primary)
	}

	if set.Primary(idx, "Genesis", 3, 25) != nil {
		t.Error("Primary found a unit outside all ranges")
	}
}
