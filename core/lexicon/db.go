package lexicon

import (
	"database/sql"

	"github.com/FocuswithJustin/CedarLex/core/errors"
	"github.com/FocuswithJustin/CedarLex/core/sqlite"
)

// schema is the compiled-lexicon table layout. Root keys and initials are
// stored precomputed so readers never re-derive them.
const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id       TEXT PRIMARY KEY,
	xlit     TEXT NOT NULL,
	lemma    TEXT NOT NULL DEFAULT '',
	root     TEXT NOT NULL DEFAULT '',
	pron     TEXT NOT NULL DEFAULT '',
	gloss    TEXT NOT NULL DEFAULT '',
	root_key TEXT NOT NULL DEFAULT '',
	initial  TEXT NOT NULL DEFAULT ''
);
`

// Compile writes the lexicon into a SQLite database at path, replacing any
// existing entries. Large installs load the compiled form instead of
// re-parsing JSON at startup.
func (l Lexicon) Compile(path string) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return errors.NewIO("open", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "creating lexicon schema")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "starting lexicon transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries"); err != nil {
		return errors.Wrap(err, "clearing lexicon entries")
	}

	stmt, err := tx.Prepare(
		"INSERT INTO entries (id, xlit, lemma, root, pron, gloss, root_key, initial) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return errors.Wrap(err, "preparing lexicon insert")
	}
	defer stmt.Close()

	for _, id := range l.IDs() {
		e := l[id]
		if _, err := stmt.Exec(e.ID, e.Xlit, e.Lemma, e.Root, e.Pronunciation, e.Gloss, e.RootKey, e.Initial); err != nil {
			return errors.Wrapf(err, "inserting entry %s", e.ID)
		}
	}
	return tx.Commit()
}

// OpenDB loads a compiled lexicon from a SQLite database.
func OpenDB(path string) (Lexicon, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT id, xlit, lemma, root, pron, gloss, root_key, initial FROM entries")
	if err != nil {
		return nil, errors.Wrap(err, "querying lexicon entries")
	}
	defer rows.Close()

	lex := make(Lexicon)
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Xlit, &e.Lemma, &e.Root, &e.Pronunciation, &e.Gloss, &e.RootKey, &e.Initial); err != nil {
			return nil, errors.Wrap(err, "scanning lexicon entry")
		}
		lex[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading lexicon entries")
	}
	if len(lex) == 0 {
		return nil, errors.NewNotFound("lexicon entries", path)
	}
	return lex, nil
}

// CountDB returns the number of entries in a compiled lexicon without
// loading them.
func CountDB(path string) (int, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return 0, errors.NewIO("open", path, err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, errors.Wrap(err, "counting lexicon entries")
	}
	return n, nil
}
