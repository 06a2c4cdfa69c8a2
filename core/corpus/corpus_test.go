package corpus

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/CedarLex/core/errors"
)

const sampleJSON = `{
  "verses": [
    {"book_name": "Genesis", "book": 1, "chapter": 1, "verse": 1,
     "text": "In the beginning{H7225} God{H430} created{H1254}"},
    {"book_name": "Genesis", "book": 1, "chapter": 1, "verse": 2,
     "text": "And the earth was without form{H8414}"},
    {"book_name": "Genesis", "book": 1, "chapter": 2, "verse": 1,
     "text": "Thus the heavens{H8064} were finished"},
    {"book_name": "Exodus", "book": 2, "chapter": 1, "verse": 1,
     "text": "Now these are the names{H8034}"}
  ]
}`

func TestLoadJSONEnvelope(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(c.Verses) != 4 {
		t.Fatalf("loaded %d verses, want 4", len(c.Verses))
	}
	v := c.Verses[0]
	if v.Book != "Genesis" || v.Chapter != 1 || v.Verse != 1 {
		t.Errorf("first verse = %s %d:%d", v.Book, v.Chapter, v.Verse)
	}
	if v.BookOrder != 1 {
		t.Errorf("BookOrder = %d, want 1", v.BookOrder)
	}
	if v.Ref() != "1:1" {
		t.Errorf("Ref = %q, want 1:1", v.Ref())
	}
}

func TestLoadJSONBareList(t *testing.T) {
	in := `[{"book_name": "Ruth", "chapter": "1", "verse": "1", "text": "Now it came to pass"}]`
	c, err := LoadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	// Numeric strings normalize at the boundary.
	if c.Verses[0].Chapter != 1 || c.Verses[0].Verse != 1 {
		t.Errorf("chapter/verse = %d/%d, want 1/1", c.Verses[0].Chapter, c.Verses[0].Verse)
	}
}

func TestLoadJSONRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"missing book", `[{"chapter": 1, "verse": 1, "text": "x"}]`},
		{"missing chapter", `[{"book_name": "Genesis", "verse": 1, "text": "x"}]`},
		{"missing verse", `[{"book_name": "Genesis", "chapter": 1, "text": "x"}]`},
		{"missing text", `[{"book_name": "Genesis", "chapter": 1, "verse": 1}]`},
		{"zero chapter", `[{"book_name": "Genesis", "chapter": 0, "verse": 1, "text": "x"}]`},
		{"no verses key", `{"data": []}`},
		{"not json", `{{{{`},
	}
	for _, tt := range tests {
		if _, err := LoadJSON(strings.NewReader(tt.in)); err == nil {
			t.Errorf("%s: LoadJSON accepted malformed input", tt.name)
		} else if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("%s: error %v does not unwrap to ErrInvalidInput", tt.name, err)
		}
	}
}

func TestBuildIndex(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	idx := BuildIndex(c)

	books := idx.Books()
	if len(books) != 2 || books[0] != "Genesis" || books[1] != "Exodus" {
		t.Errorf("Books = %v", books)
	}
	if !idx.HasBook("Genesis") || idx.HasBook("Leviticus") {
		t.Error("HasBook gave wrong answers")
	}
	if got := idx.ChapterCount("Genesis"); got != 2 {
		t.Errorf("ChapterCount(Genesis) = %d, want 2", got)
	}
	if got := idx.MaxVerse("Genesis", 1); got != 2 {
		t.Errorf("MaxVerse(Genesis, 1) = %d, want 2", got)
	}
	if got := len(idx.Chapter("Genesis", 1)); got != 2 {
		t.Errorf("Chapter(Genesis, 1) has %d verses, want 2", got)
	}
	if got := idx.Chapters("Genesis"); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Chapters(Genesis) = %v", got)
	}
	if got := idx.GlobalCount("H430"); got != 1 {
		t.Errorf("GlobalCount(H430) = %d, want 1", got)
	}
	if got := idx.GlobalCount("H9999"); got != 0 {
		t.Errorf("GlobalCount(H9999) = %d, want 0", got)
	}
}

func TestCountVersesInRange(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	idx := BuildIndex(c)

	tests := []struct {
		name               string
		sc, sv, ec, ev, want int
	}{
		{"single verse", 1, 1, 1, 1, 1},
		{"whole first chapter", 1, 1, 1, 2, 2},
		{"across chapters", 1, 2, 2, 1, 2},
		{"everything", 1, 1, 2, 1, 3},
		{"absent chapter skipped", 1, 1, 3, 5, 3},
	}
	for _, tt := range tests {
		got := idx.CountVersesInRange("Genesis", tt.sc, tt.sv, tt.ec, tt.ev)
		if got != tt.want {
			t.Errorf("%s: CountVersesInRange = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestHeatmapFor(t *testing.T) {
	in := `[
	  {"book_name": "Genesis", "book": 1, "chapter": 1, "verse": 1, "text": "a{H1} b{H1}"},
	  {"book_name": "Genesis", "book": 1, "chapter": 2, "verse": 1, "text": "c{H1}"},
	  {"book_name": "Genesis", "book": 1, "chapter": 3, "verse": 1, "text": "d{H2}"}
	]`
	c, err := LoadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	idx := BuildIndex(c)

	hm := idx.HeatmapFor("H1")
	row := hm.Books["Genesis"]
	if len(row) != 3 {
		t.Fatalf("heatmap row has %d cells, want 3", len(row))
	}
	if row[0].Count != 2 || row[1].Count != 1 || row[2].Count != 0 {
		t.Errorf("heatmap counts = %d,%d,%d want 2,1,0", row[0].Count, row[1].Count, row[2].Count)
	}
	if hm.Max != 2 {
		t.Errorf("heatmap Max = %d, want 2", hm.Max)
	}
}
