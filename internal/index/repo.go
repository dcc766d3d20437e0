package index

import (
	"encoding/json"
	"fmt"
)

// Item is one row in the search cache: a URL record or a note index entry
// flattened for full-text lookup.
type Item struct {
	Kind       string // "note" or "url"
	Identifier string
	Title      string
	Summary    string
	Tags       []string
	Domain     string
	UpdatedAt  string
}

// ID returns the primary key for an item.
func (it Item) ID() string {
	return it.Kind + ":" + it.Identifier
}

// SearchResult represents one search hit.
type SearchResult struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
}

// UpsertItem inserts or replaces an item and its FTS entry.
func (db *DB) UpsertItem(it Item) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(it.Tags)
	_, err = tx.Exec(`
		INSERT INTO items (id, kind, identifier, title, summary, tags, domain, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			summary    = excluded.summary,
			tags       = excluded.tags,
			domain     = excluded.domain,
			updated_at = excluded.updated_at
	`, it.ID(), it.Kind, it.Identifier, it.Title, it.Summary, string(tagsJSON), it.Domain, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert item: %w", err)
	}

	if err := ftsUpsert(tx, it); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteItem removes an item and its FTS entry.
func (db *DB) DeleteItem(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM items WHERE id = ?`, id)
	return tx.Commit()
}

// AllIDs returns every cached item id.
func (db *DB) AllIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("index: all ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// Count returns the number of cached items per kind.
func (db *DB) Count(kind string) (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM items WHERE kind = ?`, kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}
