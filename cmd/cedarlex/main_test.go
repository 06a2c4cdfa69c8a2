package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/CedarLex/core/overrides"
)

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

const testCorpus = `{"verses": [
	{"book_name": "Genesis", "book": 1, "chapter": 1, "verse": 1,
	 "text": "In the beginning{H7225} God{H430} created{H1254} the heaven and the earth."},
	{"book_name": "Genesis", "book": 1, "chapter": 1, "verse": 2,
	 "text": "And the earth was without form, and void."}
]}`

const testLexicon = `[
	{"number": "H7225", "xlit": "bereshit", "description": "first, beginning"},
	{"number": "H430", "xlit": "Elohim", "description": "God, gods"},
	{"number": "H1254", "xlit": "bara", "description": "to create"}
]`

func TestIsSQLitePath(t *testing.T) {
	yes := []string{"lexicon.sqlite", "a.db", "x.SQLITE3"}
	for _, p := range yes {
		if !isSQLitePath(p) {
			t.Errorf("isSQLitePath(%q) = false", p)
		}
	}
	no := []string{"lexicon.json", "corpus.xml", "soundmap.json.xz", "plain"}
	for _, p := range no {
		if isSQLitePath(p) {
			t.Errorf("isSQLitePath(%q) = true", p)
		}
	}
}

func TestLoadIndexJSON(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "corpus.json", testCorpus)

	idx, err := loadIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := idx.Books(); len(got) != 1 || got[0] != "Genesis" {
		t.Fatalf("Books() = %v", got)
	}
	if idx.GlobalCount("H7225") != 1 {
		t.Errorf("GlobalCount(H7225) = %d", idx.GlobalCount("H7225"))
	}
}

func TestCheckFileTypeMismatch(t *testing.T) {
	dir := t.TempDir()
	sqliteHeader := string(append([]byte("SQLite format 3\x00"), make([]byte, 32)...))

	path := createTestFile(t, dir, "corpus.json", sqliteHeader)
	if err := checkFileType(path); err == nil {
		t.Fatal("sqlite bytes under a .json extension should be rejected")
	}
	if _, err := loadIndex(path); err == nil {
		t.Fatal("loadIndex should reject a mistyped corpus file")
	}

	lexPath := createTestFile(t, dir, "lexicon.json", testLexicon)
	if err := checkFileType(lexPath); err != nil {
		t.Fatalf("well-typed lexicon rejected: %v", err)
	}
}

func TestLoadOrNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := loadOrNewStore(filepath.Join(dir, "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Fatalf("fresh store should be empty, got %d entries", store.Len())
	}

	if err := store.Set("H7225", &overrides.Override{Translations: []string{"in the beginning"}}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "dict.json")
	if err := store.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	back, err := loadOrNewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.Get("H7225") == nil {
		t.Fatal("saved entry lost on reload")
	}
}

func TestRenderCmd(t *testing.T) {
	dir := t.TempDir()
	cmd := &RenderCmd{
		Book:    "Genesis",
		Chapter: 1,
		Corpus:  createTestFile(t, dir, "corpus.json", testCorpus),
		Lexicon: createTestFile(t, dir, "lexicon.json", testLexicon),
	}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}

	cmd.Chapter = 9
	if err := cmd.Run(); err == nil {
		t.Fatal("unknown chapter should error")
	}
}

func TestDictSetValidateDeleteCycle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.json")

	set := &DictSetCmd{
		Path:         path,
		ID:           "h7225",
		Translations: []string{"in the beginning"},
		Color:        "#aabbcc",
	}
	if err := set.Run(); err != nil {
		t.Fatal(err)
	}

	store, err := overrides.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	o := store.Get("H7225")
	if o == nil {
		t.Fatal("normalized id not stored")
	}
	if hex, ok := o.Color.HexValue(); !ok || hex != "#aabbcc" {
		t.Fatalf("color lost: %+v", o.Color)
	}

	validate := &DictValidateCmd{Path: path}
	if err := validate.Run(); err != nil {
		t.Fatal(err)
	}

	del := &DictDeleteCmd{Path: path, ID: "H7225"}
	if err := del.Run(); err != nil {
		t.Fatal(err)
	}
	store, err = overrides.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Fatalf("entry survived delete: %d", store.Len())
	}
}

func TestDictSetColorFlagsConflict(t *testing.T) {
	cmd := &DictSetCmd{
		Path:         filepath.Join(t.TempDir(), "dict.json"),
		ID:           "H7225",
		Translations: []string{"beginning"},
		Color:        "#aabbcc",
		NoColor:      true,
	}
	if err := cmd.Run(); err == nil {
		t.Fatal("conflicting color flags should error")
	}
}

func TestDictExportName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.json")
	set := &DictSetCmd{Path: path, ID: "H430", Translations: []string{"God"}}
	if err := set.Run(); err != nil {
		t.Fatal(err)
	}

	export := &DictExportCmd{Path: path, Out: dir}
	if err := export.Run(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "dictionary-") && strings.HasSuffix(e.Name(), ".json") {
			found = true
		}
	}
	if !found {
		t.Fatal("export file with stable name not written")
	}
}

func TestSoundmapBuildCmd(t *testing.T) {
	dir := t.TempDir()
	tokens := createTestFile(t, dir, "tokens.json", `[
		{"book_name": "Genesis", "chapter": 1, "verse": 1,
		 "tokens": [{"strongs": "H1254"}, {"strongs": "H1254"}]},
		{"book_name": "Genesis", "chapter": 1, "verse": 2,
		 "tokens": [{"strongs": "H1254"}]}
	]`)
	unitsFile := createTestFile(t, dir, "units.json", `{
		"Genesis": [{"marker": "1a", "title": "Creation", "range": "1:1-1:2"}]
	}`)
	lexFile := createTestFile(t, dir, "lexicon.json", testLexicon)
	out := filepath.Join(dir, "soundmap.json")

	cmd := &SoundmapBuildCmd{Tokens: tokens, Units: unitsFile, Lexicon: lexFile, Out: out}
	if err := cmd.Run(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	verify := &SoundmapVerifyCmd{Path: out}
	if err := verify.Run(); err != nil {
		t.Fatal(err)
	}
}
