// Package casestore implements the read-only case-base loader of §4.9:
// a store of previously-recorded graphs the CLI and server can retrieve
// against, persisted as plain JSON-serialised WireGraphs in SQLite.
//
// The store only ever produces Dispatcher input — per §5, no search
// state is ever written back to it.
package casestore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/casegraph/argfac/internal/argmodel"
)

// Store wraps a connection to a case-base database. Retrieval only reads
// from it (LoadAll); Put is the write path for seeding cases.
type Store struct {
	db *sql.DB
}

// Open opens (and, if needed, initialises the schema of) the case-base
// database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open case store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping case store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cases (
			id      TEXT PRIMARY KEY,
			name    TEXT NOT NULL,
			payload TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate case store: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces one case's serialised graph.
func (s *Store) Put(id string, w argmodel.WireGraph) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal case %q: %w", id, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO cases (id, name, payload) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, payload = excluded.payload`,
		id, w.Name, string(payload),
	)
	if err != nil {
		return fmt.Errorf("put case %q: %w", id, err)
	}
	return nil
}

// LoadAll reads every case in the store and parses it into a Graph,
// keyed by case id (§4.9's contract: this is the only way cases enter a
// request besides the RPC surface's inline `cases` map).
func (s *Store) LoadAll() (map[string]*argmodel.Graph, error) {
	rows, err := s.db.Query(`SELECT id, payload FROM cases`)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*argmodel.Graph)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		var wire argmodel.WireGraph
		if err := json.Unmarshal([]byte(payload), &wire); err != nil {
			return nil, fmt.Errorf("unmarshal case %q: %w", id, err)
		}
		graph, err := argmodel.FromWire(wire)
		if err != nil {
			return nil, fmt.Errorf("build case %q: %w", id, err)
		}
		out[id] = graph
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}
