// Package corpus loads annotated verse corpora and builds the process-wide
// read-only index used by the frequency analyzer and the sound-pattern batch.
//
// Accepted JSON shapes are normalized at the load boundary: the verse list
// may appear bare or wrapped in a {"verses": [...]} envelope, and chapter and
// verse numbers may arrive as JSON numbers or numeric strings. The rest of
// the codebase only ever sees the canonical Verse struct.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/FocuswithJustin/CedarLex/core/refs"
)

// FlexInt is an int that unmarshals from a JSON number or a numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("numeric string expected, got %q", s)
		}
		*f = FlexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// Int returns the value as a plain int.
func (f FlexInt) Int() int { return int(f) }

// Verse is a single verse of source text. Verses are immutable once loaded;
// the rendering pipeline only ever produces derived annotated copies.
type Verse struct {
	// Book is the book name (e.g., "Genesis").
	Book string `json:"book_name"`

	// BookOrder is the canonical position of the book, when the source
	// records one (1-indexed, 0 when absent).
	BookOrder int `json:"book,omitempty"`

	// Chapter is the chapter number (1-indexed).
	Chapter int `json:"chapter"`

	// Verse is the verse number (1-indexed).
	Verse int `json:"verse"`

	// Text is the raw verse text, containing zero or more {H...}/{G...}
	// reference markers.
	Text string `json:"text"`
}

// Ref returns the verse's "chapter:verse" reference string.
func (v *Verse) Ref() string {
	return fmt.Sprintf("%d:%d", v.Chapter, v.Verse)
}

// Corpus is a loaded verse collection.
type Corpus struct {
	Verses []Verse
}

// rawVerse is the permissive boundary shape a verse record may arrive in.
type rawVerse struct {
	BookName  string   `json:"book_name"`
	Book      *FlexInt `json:"book"`
	BookAlt   string   `json:"bookName"`
	Chapter   *FlexInt `json:"chapter"`
	VerseNum  *FlexInt `json:"verse"`
	Text      *string  `json:"text"`
}

// envelope is the optional {"verses": [...]} wrapper.
type envelope struct {
	Verses json.RawMessage `json:"verses"`
}

// LoadJSON reads a corpus from JSON data. Both a bare verse array and a
// {"verses": [...]} envelope are accepted. Records missing a book name,
// chapter, verse, or text are rejected with a descriptive error rather
// than silently coerced.
func LoadJSON(r io.Reader) (*Corpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return parseJSON(data, "")
}

// LoadJSONFile reads a corpus from a JSON file on disk.
func LoadJSONFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return parseJSON(data, path)
}

func parseJSON(data []byte, path string) (*Corpus, error) {
	list := data
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, errors.NewParse("JSON", path, err.Error())
		}
		if env.Verses == nil {
			return nil, errors.NewParse("JSON", path, "corpus object has no \"verses\" key")
		}
		list = env.Verses
	}

	var raws []rawVerse
	if err := json.Unmarshal(list, &raws); err != nil {
		return nil, errors.NewParse("JSON", path, err.Error())
	}

	c := &Corpus{Verses: make([]Verse, 0, len(raws))}
	for i, rv := range raws {
		v, err := rv.canonical()
		if err != nil {
			return nil, errors.Wrapf(err, "verse record %d", i)
		}
		c.Verses = append(c.Verses, v)
	}
	return c, nil
}

// canonical validates a raw record and converts it to the internal shape.
func (rv *rawVerse) canonical() (Verse, error) {
	name := rv.BookName
	if name == "" {
		name = rv.BookAlt
	}
	if name == "" {
		return Verse{}, errors.NewValidation("book_name", "verse record is missing a book name")
	}
	if rv.Chapter == nil {
		return Verse{}, errors.NewValidation("chapter", "verse record is missing a chapter number")
	}
	if rv.VerseNum == nil {
		return Verse{}, errors.NewValidation("verse", "verse record is missing a verse number")
	}
	if rv.Text == nil {
		return Verse{}, errors.NewValidation("text", "verse record is missing text")
	}

	v := Verse{
		Book:    name,
		Chapter: rv.Chapter.Int(),
		Verse:   rv.VerseNum.Int(),
		Text:    *rv.Text,
	}
	if rv.Book != nil {
		v.BookOrder = rv.Book.Int()
	}
	if v.Chapter < 1 {
		return Verse{}, errors.NewValidation("chapter", fmt.Sprintf("chapter number %d out of range", v.Chapter))
	}
	if v.Verse < 1 {
		return Verse{}, errors.NewValidation("verse", fmt.Sprintf("verse number %d out of range", v.Verse))
	}
	return v, nil
}

// MarkerIDs returns the normalized reference ids appearing in the verse
// text, in order.
func (v *Verse) MarkerIDs() []string {
	return refs.IDs(v.Text)
}
