package lexicon

import (
	"path/filepath"
	"strings"
	"testing"
)

const listLexicon = `[
  {"number": "H7225", "xlit": "re'shiyth", "lemma": "רֵאשִׁית", "pron": "ray-sheeth'", "description": "the first, in place, time, order or rank"},
  {"number": "H430", "xlit": "'elohiym", "lemma": "אֱלֹהִים", "pron": "el-o-heem'", "description": "gods in the ordinary sense"},
  {"number": "G2316", "xlit": "theos", "lemma": "θεός", "pron": "theh'-os", "description": "a deity"}
]`

const mapLexicon = `{
  "H1254": {"xlit": "bara'", "root": "ברא", "first_root_letter": "ב"},
  "H8064": {"translit": "shamayim", "pronunciation": "shaw-mah'-yim"}
}`

func TestLoadJSONList(t *testing.T) {
	lex, err := LoadJSON(strings.NewReader(listLexicon))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(lex) != 3 {
		t.Fatalf("loaded %d entries, want 3", len(lex))
	}
	e := lex["H7225"]
	if e == nil {
		t.Fatal("H7225 missing")
	}
	if e.Xlit != "re'shiyth" {
		t.Errorf("Xlit = %q", e.Xlit)
	}
	if e.Pronunciation != "ray-sheeth'" {
		t.Errorf("Pronunciation = %q", e.Pronunciation)
	}
	if e.RootKey == "" {
		t.Error("RootKey not derived")
	}
}

func TestLoadJSONMap(t *testing.T) {
	lex, err := LoadJSON(strings.NewReader(mapLexicon))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	e := lex["H1254"]
	if e == nil {
		t.Fatal("H1254 missing")
	}
	// Explicit root takes precedence for the root key.
	if e.RootKey != RootKey("ברא") {
		t.Errorf("RootKey = %q, want %q", e.RootKey, RootKey("ברא"))
	}
	if e.Initial != "ב" {
		t.Errorf("Initial = %q, want ב", e.Initial)
	}

	// Field-name variants normalize.
	alt := lex["H8064"]
	if alt == nil || alt.Xlit != "shamayim" || alt.Pronunciation != "shaw-mah'-yim" {
		t.Errorf("variant fields not normalized: %+v", alt)
	}
}

func TestLoadJSONKeepsEntryWithoutXlit(t *testing.T) {
	lex, err := LoadJSON(strings.NewReader(`[{"number": "H853", "description": "untranslatable particle"}]`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	e := lex["H853"]
	if e == nil {
		t.Fatal("entry without a romanized form should still load")
	}
	if e.Xlit != "" {
		t.Errorf("Xlit = %q, want empty", e.Xlit)
	}
}

func TestLoadJSONRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"scalar document", `42`},
		{"empty document", ``},
		{"entry without id", `[{"xlit": "x"}]`},
		{"unparseable id key", `{"notanid": {"xlit": "x"}}`},
	}
	for _, tt := range tests {
		if _, err := LoadJSON(strings.NewReader(tt.in)); err == nil {
			t.Errorf("%s: LoadJSON accepted malformed input", tt.name)
		}
	}
}

func TestRootKeyDeterminism(t *testing.T) {
	inputs := []string{"רֵאשִׁית", "bara'", "θεός", "shamayim"}
	for _, in := range inputs {
		a, b := RootKey(in), RootKey(in)
		if a != b {
			t.Errorf("RootKey(%q) unstable: %q vs %q", in, a, b)
		}
	}
}

func TestRootKeyStripsMarksAndVowels(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// Pointed Hebrew reduces to bare consonants.
		{"בָּרָא", "ברא"},
		// Romanized text loses Latin vowels, keeps consonants lowercased.
		{"Bara", "br"},
		{"shamayim", "shmym"},
		// Punctuation contributes nothing.
		{"re'shiyth", "rshyth"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RootKey(tt.in); got != tt.want {
			t.Errorf("RootKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitialLetter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"בָּרָא", "ב"},
		{"Theos", "t"},
		{"'elohiym", "e"},
		{"", ""},
		{"123", ""},
	}
	for _, tt := range tests {
		if got := InitialLetter(tt.in); got != tt.want {
			t.Errorf("InitialLetter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompileAndOpenDB(t *testing.T) {
	lex, err := LoadJSON(strings.NewReader(listLexicon))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	path := filepath.Join(t.TempDir(), "lexicon.db")
	if err := lex.Compile(path); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	n, err := CountDB(path)
	if err != nil {
		t.Fatalf("CountDB: %v", err)
	}
	if n != 3 {
		t.Errorf("CountDB = %d, want 3", n)
	}

	loaded, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	for _, id := range lex.IDs() {
		want, got := lex[id], loaded[id]
		if got == nil {
			t.Errorf("entry %s lost in round-trip", id)
			continue
		}
		if got.Xlit != want.Xlit || got.RootKey != want.RootKey || got.Initial != want.Initial {
			t.Errorf("entry %s changed in round-trip: %+v vs %+v", id, got, want)
		}
	}
}
