// Package resolve merges lexicon metadata with user overrides into the
// resolved-entry map consumed by the phrase matcher and renderer.
package resolve

import (
	"github.com/FocuswithJustin/CedarLex/core/lexicon"
	"github.com/FocuswithJustin/CedarLex/core/overrides"
)

// Entry is the fully resolved annotation data for one reference id.
type Entry struct {
	// ID is the reference id.
	ID string

	// Xlit is the romanized display form. Always from the lexicon.
	Xlit string

	// Lemma, Pronunciation and Gloss ride through from the lexicon for
	// the rendered span's data attributes.
	Lemma         string
	Pronunciation string
	Gloss         string

	// RootKey is the lexicon's derived consonant signature.
	RootKey string

	// Translations are the user's candidate display phrases for phrase
	// matching, longest first. Empty when the user has no override; the
	// renderer then falls back to the literal matched word.
	Translations []string

	// Color is the user's highlight color for this id.
	Color overrides.Color
}

// Chapter resolves the reference ids appearing in a chapter against the
// lexicon and the active override store. Ids without a lexicon entry are
// silently excluded: a missing entry is not an error, the reference simply
// renders as plain text downstream. The override store may be nil.
func Chapter(ids []string, lex lexicon.Lexicon, store *overrides.Store) map[string]*Entry {
	resolved := make(map[string]*Entry, len(ids))
	for _, id := range ids {
		if _, done := resolved[id]; done {
			continue
		}
		le := lex[id]
		if le == nil || le.Xlit == "" {
			continue
		}

		e := &Entry{
			ID:            id,
			Xlit:          le.Xlit,
			Lemma:         le.Lemma,
			Pronunciation: le.Pronunciation,
			Gloss:         le.Gloss,
			RootKey:       le.RootKey,
		}
		if store != nil {
			if o := store.Get(id); o != nil {
				e.Translations = o.Translations
				e.Color = o.Color
			}
		}
		resolved[id] = e
	}
	return resolved
}
