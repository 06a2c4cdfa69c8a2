// Package lexicon loads Strong's lexicon data and derives the root keys used
// for phonetic grouping.
//
// Source lexicons come in two JSON shapes: a list of entry objects carrying a
// "number" field, or an object keyed by reference id. Both are normalized at
// the load boundary into the canonical Entry map. Only the reference id is
// required; an entry without a romanized form still loads, and resolution
// skips it so its markers render as plain text.
package lexicon

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/FocuswithJustin/CedarLex/core/refs"
)

// Entry is a lexicon record for one reference id.
type Entry struct {
	// ID is the reference id (e.g., "H7225").
	ID string `json:"number"`

	// Xlit is the romanized rendering shown in place of the source word.
	Xlit string `json:"xlit"`

	// Lemma is the origin-language form (optional).
	Lemma string `json:"lemma,omitempty"`

	// Root is the origin-language root when the lexicon records one
	// (optional). Root keys derive from this, falling back to Xlit.
	Root string `json:"root,omitempty"`

	// Pronunciation is the pronunciation guide (optional).
	Pronunciation string `json:"pron,omitempty"`

	// Gloss is a short description of the word's sense (optional).
	Gloss string `json:"description,omitempty"`

	// RootKey is the derived consonant-only signature. Stable for
	// identical inputs; populated by the loader.
	RootKey string `json:"-"`

	// Initial is the first letter of the root key source, after
	// diacritics are stripped. Empty when no root material exists.
	Initial string `json:"-"`
}

// Lexicon maps reference ids to their entries.
type Lexicon map[string]*Entry

// rawEntry tolerates the field-name variants seen in source lexicons.
type rawEntry struct {
	Number    string `json:"number"`
	Strongs   string `json:"strongs"`
	Xlit      string `json:"xlit"`
	Translit  string `json:"translit"`
	Lemma     string `json:"lemma"`
	Root      string `json:"root"`
	Pron      string `json:"pron"`
	Pronounce string `json:"pronunciation"`
	Desc      string `json:"description"`
	Def       string `json:"strongs_def"`
	Initial   string `json:"first_root_letter"`
	InitAlt   string `json:"first_root"`
}

func (re *rawEntry) canonical(fallbackID string) (*Entry, error) {
	idSrc := re.Number
	if idSrc == "" {
		idSrc = re.Strongs
	}
	if idSrc == "" {
		idSrc = fallbackID
	}
	id, ok := refs.NormalizeID(idSrc)
	if !ok {
		return nil, errors.NewValidation("number", "lexicon entry has no recognizable reference id")
	}

	e := &Entry{
		ID:            id,
		Xlit:          re.Xlit,
		Lemma:         re.Lemma,
		Root:          re.Root,
		Pronunciation: re.Pron,
		Gloss:         re.Desc,
	}
	if e.Xlit == "" {
		e.Xlit = re.Translit
	}
	if e.Pronunciation == "" {
		e.Pronunciation = re.Pronounce
	}
	if e.Gloss == "" {
		e.Gloss = re.Def
	}

	source := e.Root
	if source == "" {
		source = e.Xlit
	}
	e.RootKey = RootKey(source)
	e.Initial = re.Initial
	if e.Initial == "" {
		e.Initial = re.InitAlt
	}
	if e.Initial == "" {
		e.Initial = InitialLetter(source)
	}
	return e, nil
}

// LoadJSON reads a lexicon from JSON data in either accepted shape.
func LoadJSON(r io.Reader) (Lexicon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return parseJSON(data, "")
}

// LoadJSONFile reads a lexicon from a JSON file on disk.
func LoadJSONFile(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return parseJSON(data, path)
}

func parseJSON(data []byte, path string) (Lexicon, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.NewParse("JSON", path, "empty lexicon document")
	}

	lex := make(Lexicon)
	switch trimmed[0] {
	case '[':
		var raws []rawEntry
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, errors.NewParse("JSON", path, err.Error())
		}
		for i, re := range raws {
			e, err := re.canonical("")
			if err != nil {
				return nil, errors.Wrapf(err, "lexicon entry %d", i)
			}
			lex[e.ID] = e
		}
	case '{':
		var raws map[string]rawEntry
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, errors.NewParse("JSON", path, err.Error())
		}
		for key, re := range raws {
			e, err := re.canonical(key)
			if err != nil {
				return nil, errors.Wrapf(err, "lexicon entry %q", key)
			}
			lex[e.ID] = e
		}
	default:
		return nil, errors.NewParse("JSON", path, "lexicon must be a JSON array or object")
	}
	return lex, nil
}

// IDs returns the lexicon's reference ids sorted ascending.
func (l Lexicon) IDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
