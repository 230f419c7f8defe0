// Package persist stores a mesh in a SQLite database: one row per
// anchor, one ordered row per directed link entry. Component membership
// and signal values are never persisted — they are fully derivable, and
// a loaded mesh starts with every component record unbuilt, so the first
// update pass after load rebuilds everything.
package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/avren/wiremesh/mesh"
)

// SchemaVersion is the current storage schema version.
const SchemaVersion = 1

// ErrSchemaVersion indicates the database was written by an
// incompatible schema version.
var ErrSchemaVersion = errors.New("persist: unsupported schema version")

const schemaV1 = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

-- One row per anchor position.
CREATE TABLE IF NOT EXISTS anchors (
    x INTEGER NOT NULL,
    y INTEGER NOT NULL,
    z INTEGER NOT NULL,
    PRIMARY KEY (x, y, z)
);

-- One row per directed link entry; ord preserves insertion order.
CREATE TABLE IF NOT EXISTS links (
    ax  INTEGER NOT NULL,
    ay  INTEGER NOT NULL,
    az  INTEGER NOT NULL,
    ord INTEGER NOT NULL,
    tx  INTEGER NOT NULL,
    ty  INTEGER NOT NULL,
    tz  INTEGER NOT NULL,
    PRIMARY KEY (ax, ay, az, ord)
);
`

// Store persists meshes in one SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer

	ctx := context.Background()
	if _, err = db.ExecContext(ctx, schemaV1); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: init schema: %w", err)
	}

	var version int
	err = db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err = db.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, SchemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("persist: write schema version: %w", err)
		}
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("persist: read schema version: %w", err)
	case version != SchemaVersion:
		db.Close()
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, version, SchemaVersion)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the stored mesh with m: every anchor position plus its
// ordered (x, y, z) link triples, exactly as the minimal save contract
// requires. The write is one transaction.
func (s *Store) Save(ctx context.Context, m *mesh.Mesh) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist: begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM links`); err != nil {
		return fmt.Errorf("persist: clear links: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM anchors`); err != nil {
		return fmt.Errorf("persist: clear anchors: %w", err)
	}

	insAnchor, err := tx.PrepareContext(ctx, `INSERT INTO anchors (x, y, z) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("persist: prepare anchor insert: %w", err)
	}
	defer insAnchor.Close()
	insLink, err := tx.PrepareContext(ctx,
		`INSERT INTO links (ax, ay, az, ord, tx, ty, tz) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("persist: prepare link insert: %w", err)
	}
	defer insLink.Close()

	for _, p := range m.Anchors() {
		if _, err = insAnchor.ExecContext(ctx, p.X, p.Y, p.Z); err != nil {
			return fmt.Errorf("persist: insert anchor %s: %w", p, err)
		}
		links, lerr := m.Links(p)
		if lerr != nil {
			return lerr
		}
		for ord, t := range links {
			if _, err = insLink.ExecContext(ctx, p.X, p.Y, p.Z, ord, t.X, t.Y, t.Z); err != nil {
				return fmt.Errorf("persist: insert link %s to %s: %w", p, t, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("persist: commit save: %w", err)
	}
	return nil
}

// Load rebuilds a mesh from storage. Link lists are restored verbatim,
// bypassing the validator: limits in effect at load time must not drop
// previously saved links. All derived state starts unbuilt.
func (s *Store) Load(ctx context.Context, opts ...mesh.MeshOption) (*mesh.Mesh, error) {
	m, err := mesh.New(opts...)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT x, y, z FROM anchors ORDER BY x, y, z`)
	if err != nil {
		return nil, fmt.Errorf("persist: query anchors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p mesh.Position
		if err = rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, fmt.Errorf("persist: scan anchor: %w", err)
		}
		if err = m.AddAnchor(p); err != nil {
			return nil, err
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("persist: iterate anchors: %w", err)
	}

	lrows, err := s.db.QueryContext(ctx,
		`SELECT ax, ay, az, tx, ty, tz FROM links ORDER BY ax, ay, az, ord`)
	if err != nil {
		return nil, fmt.Errorf("persist: query links: %w", err)
	}
	defer lrows.Close()
	for lrows.Next() {
		var a, t mesh.Position
		if err = lrows.Scan(&a.X, &a.Y, &a.Z, &t.X, &t.Y, &t.Z); err != nil {
			return nil, fmt.Errorf("persist: scan link: %w", err)
		}
		if err = m.RestoreLink(a, t); err != nil {
			return nil, err
		}
	}
	if err = lrows.Err(); err != nil {
		return nil, fmt.Errorf("persist: iterate links: %w", err)
	}

	return m, nil
}
