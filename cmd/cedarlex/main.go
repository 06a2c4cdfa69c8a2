// Command cedarlex is the CLI tool for the CedarLex annotation engine.
// It renders annotated chapters, manages user dictionaries and lexicon
// databases, and runs the offline sound-pattern batch.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/CedarLex/core/corpus"
	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/FocuswithJustin/CedarLex/core/lexicon"
	"github.com/FocuswithJustin/CedarLex/core/overrides"
	"github.com/FocuswithJustin/CedarLex/core/refs"
	"github.com/FocuswithJustin/CedarLex/core/render"
	"github.com/FocuswithJustin/CedarLex/core/soundmap"
	"github.com/FocuswithJustin/CedarLex/core/sqlite"
	"github.com/FocuswithJustin/CedarLex/core/units"
	"github.com/FocuswithJustin/CedarLex/internal/logging"
	"github.com/FocuswithJustin/CedarLex/internal/validation"
)

const version = "0.1.0"

// CLI defines the command-line interface for cedarlex.
var CLI struct {
	// Global flags
	Verbose bool `name:"verbose" short:"v" help:"Enable debug logging"`

	// Command groups (noun-first organization)
	Render   RenderCmd     `cmd:"" help:"Render an annotated chapter"`
	Heatmap  HeatmapCmd    `cmd:"" help:"Per-chapter occurrence heatmap for a reference id"`
	Units    UnitsGroup    `cmd:"" help:"Literary unit operations"`
	Dict     DictGroup     `cmd:"" help:"User dictionary operations"`
	Lexicon  LexiconGroup  `cmd:"" help:"Lexicon database operations"`
	Soundmap SoundmapGroup `cmd:"" help:"Sound-pattern batch operations"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// UnitsGroup contains literary unit operations.
type UnitsGroup struct {
	List     UnitsListCmd     `cmd:"" help:"List a book's literary units"`
	Progress UnitsProgressCmd `cmd:"" help:"Reading progress through a chapter's units"`
}

// DictGroup contains user dictionary operations.
type DictGroup struct {
	Validate DictValidateCmd `cmd:"" help:"Validate a dictionary file"`
	List     DictListCmd     `cmd:"" help:"List dictionary entries"`
	Set      DictSetCmd      `cmd:"" help:"Add or replace a dictionary entry"`
	Delete   DictDeleteCmd   `cmd:"" help:"Remove a dictionary entry"`
	Export   DictExportCmd   `cmd:"" help:"Export a dictionary under its stable export name"`
}

// LexiconGroup contains lexicon database operations.
type LexiconGroup struct {
	Import LexiconImportCmd `cmd:"" help:"Compile a JSON lexicon into a SQLite database"`
	Info   LexiconInfoCmd   `cmd:"" help:"Show lexicon entry count and driver info"`
}

// SoundmapGroup contains sound-pattern batch operations.
type SoundmapGroup struct {
	Build  SoundmapBuildCmd  `cmd:"" help:"Run the sound-pattern batch over a tokenized corpus"`
	Verify SoundmapVerifyCmd `cmd:"" help:"Load an artifact and report its checksum"`
}

// RenderCmd renders one chapter as annotated text.
type RenderCmd struct {
	Book    string `arg:"" help:"Book name"`
	Chapter int    `arg:"" help:"Chapter number"`

	Corpus  string `required:"" help:"Corpus file (JSON, or XML by extension)" type:"existingfile"`
	Lexicon string `required:"" help:"Lexicon file (JSON, or SQLite by extension)" type:"existingfile"`
	Dict    string `help:"User dictionary file" type:"existingfile"`
	Units   string `help:"Literary units file" type:"existingfile"`
}

func (c *RenderCmd) Run() error {
	idx, err := loadIndex(c.Corpus)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(c.Lexicon)
	if err != nil {
		return err
	}

	var store *overrides.Store
	if c.Dict != "" {
		if store, err = overrides.LoadFile(c.Dict); err != nil {
			return err
		}
	}
	var set units.Set
	if c.Units != "" {
		if set, err = units.LoadFile(c.Units); err != nil {
			return err
		}
	}

	start := time.Now()
	out := render.Chapter(idx, lex, store, set, c.Book, c.Chapter, render.Options{})
	if out == "" {
		return errors.NewNotFound("chapter", fmt.Sprintf("%s %d", c.Book, c.Chapter))
	}
	logging.RenderEvent(c.Book, c.Chapter, time.Since(start))

	fmt.Println(out)
	return nil
}

// HeatmapCmd prints per-book, per-chapter occurrence counts for one id.
type HeatmapCmd struct {
	ID     string `arg:"" help:"Reference id (e.g. H7225)"`
	Corpus string `required:"" help:"Corpus file" type:"existingfile"`
}

func (c *HeatmapCmd) Run() error {
	id, ok := refs.NormalizeID(c.ID)
	if !ok {
		return errors.NewValidation("id", fmt.Sprintf("%q is not a reference id", c.ID))
	}
	idx, err := loadIndex(c.Corpus)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx.HeatmapFor(id), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// UnitsListCmd lists a book's literary units with their derived colors.
type UnitsListCmd struct {
	Book   string `arg:"" help:"Book name"`
	Units  string `required:"" help:"Literary units file" type:"existingfile"`
	Corpus string `required:"" help:"Corpus file" type:"existingfile"`
}

func (c *UnitsListCmd) Run() error {
	set, err := units.LoadFile(c.Units)
	if err != nil {
		return err
	}
	idx, err := loadIndex(c.Corpus)
	if err != nil {
		return err
	}

	bookUnits := set[c.Book]
	if len(bookUnits) == 0 {
		return errors.NewNotFound("units", c.Book)
	}
	for _, u := range bookUnits {
		fmt.Printf("%-40s %s  %d verses\n", u.Label(), u.Color(), u.VerseCount(idx))
	}
	return nil
}

// UnitsProgressCmd reports progress through each unit active for a chapter.
type UnitsProgressCmd struct {
	Book    string `arg:"" help:"Book name"`
	Chapter int    `arg:"" help:"Chapter number"`
	Units   string `required:"" help:"Literary units file" type:"existingfile"`
	Corpus  string `required:"" help:"Corpus file" type:"existingfile"`
}

func (c *UnitsProgressCmd) Run() error {
	set, err := units.LoadFile(c.Units)
	if err != nil {
		return err
	}
	idx, err := loadIndex(c.Corpus)
	if err != nil {
		return err
	}

	active := set.ForChapter(c.Book, c.Chapter)
	if len(active) == 0 {
		return errors.NewNotFound("units", fmt.Sprintf("%s %d", c.Book, c.Chapter))
	}
	for _, u := range active {
		fmt.Printf("%-40s %5.1f%%\n", u.Label(), u.Progress(idx, c.Chapter))
	}
	return nil
}

// DictValidateCmd loads a dictionary, reporting the first violation.
type DictValidateCmd struct {
	Path string `arg:"" help:"Dictionary file" type:"existingfile"`
}

func (c *DictValidateCmd) Run() error {
	store, err := overrides.LoadFile(c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d entries, ok\n", c.Path, store.Len())
	return nil
}

// DictListCmd prints dictionary entries in stable id order.
type DictListCmd struct {
	Path string `arg:"" help:"Dictionary file" type:"existingfile"`
}

func (c *DictListCmd) Run() error {
	store, err := overrides.LoadFile(c.Path)
	if err != nil {
		return err
	}
	for _, id := range store.IDs() {
		o := store.Get(id)
		color := "-"
		if hex, ok := o.Color.HexValue(); ok {
			color = hex
		} else if o.Color.Present {
			color = "none"
		}
		fmt.Printf("%-8s %-9s %s\n", id, color, strings.Join(o.Translations, "; "))
	}
	return nil
}

// DictSetCmd adds or replaces one entry. A missing file starts a new
// dictionary.
type DictSetCmd struct {
	Path         string   `arg:"" help:"Dictionary file"`
	ID           string   `arg:"" help:"Reference id"`
	Translations []string `arg:"" help:"Translation phrases, longest first"`

	Color   string `help:"Highlight color (#rrggbb)"`
	NoColor bool   `help:"Record an explicit no-color preference"`
}

func (c *DictSetCmd) Run() error {
	if c.Color != "" && c.NoColor {
		return errors.NewValidation("color", "--color and --no-color are mutually exclusive")
	}

	store, err := loadOrNewStore(c.Path)
	if err != nil {
		return err
	}
	if err := store.Set(c.ID, &overrides.Override{Translations: c.Translations}); err != nil {
		return err
	}

	id, _ := refs.NormalizeID(c.ID)
	if c.Color != "" {
		if err := store.SetColor(id, c.Color); err != nil {
			return err
		}
	}
	if c.NoColor {
		if err := store.ClearColor(id); err != nil {
			return err
		}
	}

	if err := store.SaveFile(c.Path); err != nil {
		return err
	}
	logging.OverrideEvent("set", id)
	return nil
}

// DictDeleteCmd removes one entry.
type DictDeleteCmd struct {
	Path string `arg:"" help:"Dictionary file" type:"existingfile"`
	ID   string `arg:"" help:"Reference id"`
}

func (c *DictDeleteCmd) Run() error {
	store, err := overrides.LoadFile(c.Path)
	if err != nil {
		return err
	}
	id, ok := refs.NormalizeID(c.ID)
	if !ok {
		return errors.NewValidation("id", fmt.Sprintf("%q is not a reference id", c.ID))
	}
	store.Delete(id)
	if err := store.SaveFile(c.Path); err != nil {
		return err
	}
	logging.OverrideEvent("delete", id)
	return nil
}

// DictExportCmd writes a dictionary copy under its stable export name.
type DictExportCmd struct {
	Path string `arg:"" help:"Dictionary file" type:"existingfile"`
	Out  string `help:"Output directory" default:"." type:"existingdir"`
}

func (c *DictExportCmd) Run() error {
	store, err := overrides.LoadFile(c.Path)
	if err != nil {
		return err
	}

	name, err := validation.SanitizeFilename(store.ExportName())
	if err != nil {
		return err
	}
	rel, err := validation.SanitizePath(c.Out, name)
	if err != nil {
		return err
	}
	dest := filepath.Join(c.Out, rel)
	if err := store.SaveFile(dest); err != nil {
		return err
	}
	fmt.Println(dest)
	return nil
}

// LexiconImportCmd compiles a JSON lexicon into a SQLite database.
type LexiconImportCmd struct {
	Input  string `arg:"" help:"JSON lexicon file" type:"existingfile"`
	Output string `arg:"" help:"SQLite output path"`
}

func (c *LexiconImportCmd) Run() error {
	if err := validation.ValidatePath(c.Output); err != nil {
		return err
	}
	lex, err := lexicon.LoadJSONFile(c.Input)
	if err != nil {
		return err
	}
	if err := lex.Compile(c.Output); err != nil {
		return err
	}
	logging.Info("lexicon_compiled", "input", c.Input, "output", c.Output, "entries", len(lex))
	return nil
}

// LexiconInfoCmd shows the entry count and SQLite driver in use.
type LexiconInfoCmd struct {
	Path string `arg:"" help:"Lexicon file (JSON or SQLite)" type:"existingfile"`
}

func (c *LexiconInfoCmd) Run() error {
	if isSQLitePath(c.Path) {
		count, err := lexicon.CountDB(c.Path)
		if err != nil {
			return err
		}
		info := sqlite.GetInfo()
		fmt.Printf("%s: %d entries (driver %s)\n", c.Path, count, info.DriverName)
		return nil
	}

	lex, err := lexicon.LoadJSONFile(c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d entries (JSON)\n", c.Path, len(lex))
	return nil
}

// SoundmapBuildCmd runs the whole-corpus sound-pattern batch.
type SoundmapBuildCmd struct {
	Tokens  string `required:"" help:"Pre-tokenized corpus file" type:"existingfile"`
	Units   string `required:"" help:"Literary units file" type:"existingfile"`
	Lexicon string `required:"" help:"Lexicon file (JSON or SQLite)" type:"existingfile"`
	Out     string `required:"" help:"Artifact output path (.xz compresses)"`
}

func (c *SoundmapBuildCmd) Run() error {
	if err := validation.ValidatePath(c.Out); err != nil {
		return err
	}
	if err := checkFileType(c.Tokens); err != nil {
		return err
	}
	tc, err := soundmap.LoadTokensFile(c.Tokens)
	if err != nil {
		return err
	}
	if err := checkFileType(c.Units); err != nil {
		return err
	}
	set, err := units.LoadFile(c.Units)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(c.Lexicon)
	if err != nil {
		return err
	}

	logging.BatchEvent("started", len(set), len(tc.Verses))
	a := soundmap.Build(tc, set, lex, soundmap.Options{})
	if err := a.WriteFile(c.Out); err != nil {
		return err
	}

	checksum, err := a.Checksum()
	if err != nil {
		return err
	}
	logging.ArtifactWritten(c.Out, checksum)
	fmt.Println(checksum)
	return nil
}

// SoundmapVerifyCmd loads an artifact back and reports its canonical
// checksum.
type SoundmapVerifyCmd struct {
	Path string `arg:"" help:"Artifact file" type:"existingfile"`
}

func (c *SoundmapVerifyCmd) Run() error {
	if err := checkFileType(c.Path); err != nil {
		return err
	}
	a, err := soundmap.ReadFile(c.Path)
	if err != nil {
		return err
	}
	checksum, err := a.Checksum()
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s (%d books)\n", checksum, c.Path, len(a))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("cedarlex version %s\n", version)
	return nil
}

// Helper functions

// checkFileType reads a file's header and verifies the content matches
// what its extension claims before a parser touches it.
func checkFileType(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer f.Close()
	if _, err := validation.ValidateFileType(f, filepath.Base(path)); err != nil {
		return errors.NewValidation("file", fmt.Sprintf("%s: %v", path, err))
	}
	return nil
}

func loadIndex(path string) (*corpus.Index, error) {
	if err := checkFileType(path); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		c   *corpus.Corpus
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		c, err = corpus.LoadXMLFile(path)
	} else {
		c, err = corpus.LoadJSONFile(path)
	}
	if err != nil {
		return nil, err
	}

	idx := corpus.BuildIndex(c)
	logging.CorpusLoaded(path, len(idx.Books()), len(c.Verses), time.Since(start))
	return idx, nil
}

// loadOrNewStore opens a dictionary file, starting a fresh store when the
// file does not exist yet.
func loadOrNewStore(path string) (*overrides.Store, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return overrides.NewStore(), nil
		}
		return nil, errors.NewIO("stat", path, err)
	}
	return overrides.LoadFile(path)
}

func loadLexicon(path string) (lexicon.Lexicon, error) {
	if err := checkFileType(path); err != nil {
		return nil, err
	}
	if isSQLitePath(path) {
		return lexicon.OpenDB(path)
	}
	return lexicon.LoadJSONFile(path)
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".db", ".sqlite3":
		return true
	}
	return false
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("cedarlex"),
		kong.Description("CedarLex - scripture annotation and sound-pattern engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if CLI.Verbose {
		logging.InitLogger(logging.LevelDebug, logging.FormatText)
	}
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
