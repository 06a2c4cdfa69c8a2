// Package soundmap is the offline precomputor for sound-pattern
// annotations: it clusters repeated roots and initial root letters across
// literary units and writes one static artifact the renderer later treats
// as opaque lookup data.
package soundmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/FocuswithJustin/CedarLex/core/corpus"
	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/FocuswithJustin/CedarLex/core/refs"
)

// TokenVerse is one verse of the pre-tokenized corpus. IDs is aligned with
// the verse's ordered token sequence; positions without a recognizable
// reference id hold the empty string so later position indices still line
// up with the source tokens.
type TokenVerse struct {
	Book    string
	Chapter int
	Verse   int
	IDs     []string
}

// Ref returns the "chapter:verse" reference used in unit cluster output.
func (v *TokenVerse) Ref() string {
	return fmt.Sprintf("%d:%d", v.Chapter, v.Verse)
}

// TokenCorpus is a loaded pre-tokenized corpus.
type TokenCorpus struct {
	Verses []TokenVerse
}

// rawTokenVerse is the permissive boundary shape. Token lists arrive under
// any of three historical key names, and the book may be recorded as a
// name or a bare value under "book".
type rawTokenVerse struct {
	BookName  string            `json:"book_name"`
	Book      json.RawMessage   `json:"book"`
	Chapter   *corpus.FlexInt   `json:"chapter"`
	VerseNum  *corpus.FlexInt   `json:"verse"`
	Tokens    []json.RawMessage `json:"tokens"`
	Tokenized []json.RawMessage `json:"tokenized"`
	Words     []json.RawMessage `json:"words"`
}

// rawToken covers the object token shape; the id may live under any of
// three keys and may itself be a string or a list of strings.
type rawToken struct {
	Strongs json.RawMessage `json:"strongs"`
	Strong  json.RawMessage `json:"strong"`
	S       json.RawMessage `json:"s"`
}

// LoadTokens reads a pre-tokenized corpus from JSON data. Both a bare
// verse array and a {"verses": [...]} envelope are accepted. Structural
// problems (missing book, non-integer chapter or verse, tokens that are
// not a list) are hard errors; individual tokens with no recognizable
// reference id are kept as empty positions.
func LoadTokens(r io.Reader) (*TokenCorpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	return parseTokens(data, "")
}

// LoadTokensFile reads a pre-tokenized corpus from a JSON file.
func LoadTokensFile(path string) (*TokenCorpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return parseTokens(data, path)
}

func parseTokens(data []byte, path string) (*TokenCorpus, error) {
	list := data
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Verses json.RawMessage `json:"verses"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, errors.NewParse("JSON", path, err.Error())
		}
		if env.Verses == nil {
			return nil, errors.NewParse("JSON", path, "token corpus object has no \"verses\" key")
		}
		list = env.Verses
	}

	var raws []rawTokenVerse
	if err := json.Unmarshal(list, &raws); err != nil {
		return nil, errors.NewParse("JSON", path, err.Error())
	}

	tc := &TokenCorpus{Verses: make([]TokenVerse, 0, len(raws))}
	for i, rv := range raws {
		v, err := rv.canonical()
		if err != nil {
			return nil, errors.Wrapf(err, "verse record %d", i)
		}
		tc.Verses = append(tc.Verses, v)
	}
	return tc, nil
}

func (rv *rawTokenVerse) canonical() (TokenVerse, error) {
	book := rv.BookName
	if book == "" {
		book = bookFromRaw(rv.Book)
	}
	if book == "" {
		return TokenVerse{}, errors.NewValidation("book_name", "verse record is missing a book name")
	}
	if rv.Chapter == nil {
		return TokenVerse{}, errors.NewValidation("chapter", "verse record is missing a chapter number")
	}
	if rv.VerseNum == nil {
		return TokenVerse{}, errors.NewValidation("verse", "verse record is missing a verse number")
	}

	tokens := rv.Tokens
	if tokens == nil {
		tokens = rv.Tokenized
	}
	if tokens == nil {
		tokens = rv.Words
	}

	v := TokenVerse{
		Book:    book,
		Chapter: rv.Chapter.Int(),
		Verse:   rv.VerseNum.Int(),
		IDs:     make([]string, len(tokens)),
	}
	if v.Chapter < 1 || v.Verse < 1 {
		return TokenVerse{}, errors.NewValidation("verse", fmt.Sprintf("reference %d:%d out of range", v.Chapter, v.Verse))
	}
	for i, raw := range tokens {
		v.IDs[i] = tokenID(raw)
	}
	return v, nil
}

// bookFromRaw accepts a book recorded as a JSON string or number.
func bookFromRaw(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Itoa(n)
	}
	return ""
}

// tokenID extracts a normalized reference id from one token, which may be
// a bare string or an object carrying the id under "strongs", "strong" or
// "s". Tokens without a recognizable id yield the empty string; they are
// positions, not errors.
func tokenID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id, _ := refs.NormalizeID(s)
		return id
	}

	var tok rawToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return ""
	}
	for _, field := range []json.RawMessage{tok.Strongs, tok.Strong, tok.S} {
		if id, ok := refs.NormalizeFirst(stringCandidates(field)); ok {
			return id
		}
	}
	return ""
}

// stringCandidates flattens a string-or-list-of-strings JSON value.
func stringCandidates(raw json.RawMessage) []string {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		var v string
		if err := json.Unmarshal(item, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
