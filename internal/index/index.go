// Package index provides SQLite-backed full-text search over stored records.
//
// The index is a cache derived from the store: it can always be rebuilt by
// re-walking the reference tree, and record files remain the source of truth.
package index

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/store"
)

// FileName is the index database file inside the store metadata directory.
const FileName = "index.db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS refs (
	path    TEXT PRIMARY KEY,
	citekey TEXT NOT NULL DEFAULT ''
);

CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
	path UNINDEXED,
	citekey,
	content
);
`

// Index is the search index handle.
type Index struct {
	db *sql.DB
}

// Result is one search hit.
type Result struct {
	Path    string `json:"path"`
	Citekey string `json:"citekey"`
	Snippet string `json:"snippet"`
}

// Open opens or creates the index database for a store.
func Open(st *store.Store) (*Index, error) {
	path := filepath.Join(st.MetaDir(), FileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Update replaces the indexed content for one reference.
func (ix *Index) Update(ref string, records []bibtex.Record) error {
	citekey := ""
	if len(records) > 0 {
		citekey = records[0].Key
	}
	content := searchableText(records)

	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("index: begin: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRef(tx, ref); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO refs (path, citekey) VALUES (?, ?)`, ref, citekey); err != nil {
		return fmt.Errorf("index: insert %s: %w", ref, err)
	}
	if _, err := tx.Exec(`INSERT INTO refs_fts (path, citekey, content) VALUES (?, ?, ?)`, ref, citekey, content); err != nil {
		return fmt.Errorf("index: insert fts %s: %w", ref, err)
	}
	return tx.Commit()
}

// Delete drops one reference from the index.
func (ix *Index) Delete(ref string) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("index: begin: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRef(tx, ref); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteRef(tx *sql.Tx, ref string) error {
	if _, err := tx.Exec(`DELETE FROM refs WHERE path = ?`, ref); err != nil {
		return fmt.Errorf("index: delete %s: %w", ref, err)
	}
	if _, err := tx.Exec(`DELETE FROM refs_fts WHERE path = ?`, ref); err != nil {
		return fmt.Errorf("index: delete fts %s: %w", ref, err)
	}
	return nil
}

// Rebuild re-walks the store and repopulates the index from scratch. It
// returns the number of references indexed. Unparseable records are skipped;
// the index is best-effort by construction.
func (ix *Index) Rebuild(st *store.Store) (int, error) {
	if _, err := ix.db.Exec(`DELETE FROM refs`); err != nil {
		return 0, fmt.Errorf("index: clear: %w", err)
	}
	if _, err := ix.db.Exec(`DELETE FROM refs_fts`); err != nil {
		return 0, fmt.Errorf("index: clear fts: %w", err)
	}

	count := 0
	err := st.Walk("", func(ref string) error {
		records, err := st.Read(ref)
		if err != nil {
			return nil
		}
		if err := ix.Update(ref, records); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}

// Search runs a full-text query and returns hits ordered by relevance.
func (ix *Index) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := ix.db.Query(`
		SELECT path, citekey, snippet(refs_fts, 2, '', '', '…', 12)
		FROM refs_fts
		WHERE refs_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Path, &r.Citekey, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ftsQuery quotes every whitespace-separated token so user input can never
// be misread as FTS5 operators, and ANDs the tokens together.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return `""`
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " AND ")
}

// searchableText flattens records into one indexable blob: citation keys,
// entry types, and field values.
func searchableText(records []bibtex.Record) string {
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(rec.Key)
		b.WriteString(" ")
		b.WriteString(rec.Type)
		b.WriteString("\n")
		for _, f := range rec.Fields {
			b.WriteString(f.Name)
			b.WriteString(" ")
			b.WriteString(f.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}
