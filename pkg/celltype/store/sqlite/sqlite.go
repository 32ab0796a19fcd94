package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/celltype/pkg/celltype/doc"
	"github.com/cognicore/celltype/pkg/celltype/internalerr"
	"github.com/cognicore/celltype/pkg/celltype/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDs
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys
// enabled, creating the schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:  db,
		ids: store.NewIDs(),
		now: time.Now,
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sheets (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	n_columns INTEGER NOT NULL DEFAULT 0,
	n_rows INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sheet_columns (
	sheet_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	type TEXT NOT NULL,
	has_header INTEGER NOT NULL DEFAULT 0,
	header_type TEXT NOT NULL DEFAULT '',
	header_raw TEXT NOT NULL DEFAULT '',
	header_text TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(sheet_id, position),
	FOREIGN KEY(sheet_id) REFERENCES sheets(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sheet_items (
	sheet_id TEXT NOT NULL,
	column_pos INTEGER NOT NULL,
	row_num INTEGER NOT NULL,
	raw TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(sheet_id, column_pos, row_num),
	FOREIGN KEY(sheet_id, column_pos) REFERENCES sheet_columns(sheet_id, position) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// PutSheet inserts or replaces a sheet and all of its cells
func (s *sqliteStore) PutSheet(ctx context.Context, sh *doc.Sheet) (string, error) {
	if sh == nil {
		return "", fmt.Errorf("put sheet: nil sheet: %w", internalerr.ErrInvalidInput)
	}
	now := s.now().UTC()
	if sh.ID == "" {
		sh.ID = s.ids.New(now)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO sheets (id, source, title, n_columns, n_rows, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	title=excluded.title,
	n_columns=excluded.n_columns,
	n_rows=excluded.n_rows;
`
	if _, err := tx.ExecContext(ctx, stmt,
		sh.ID,
		sh.Source,
		sh.Title,
		len(sh.Columns),
		sh.Rows(),
		now.Format(time.RFC3339Nano),
	); err != nil {
		return "", err
	}

	if err := replaceColumns(ctx, tx, sh); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return sh.ID, nil
}

func replaceColumns(ctx context.Context, tx *sql.Tx, sh *doc.Sheet) error {
	// foreign_keys is per connection, so cascades cannot be relied on
	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_items WHERE sheet_id=?`, sh.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_columns WHERE sheet_id=?`, sh.ID); err != nil {
		return err
	}
	if len(sh.Columns) == 0 {
		return nil
	}

	colStmt, err := tx.PrepareContext(ctx, `
INSERT INTO sheet_columns (sheet_id, position, type, has_header, header_type, header_raw, header_text)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer colStmt.Close()

	itemStmt, err := tx.PrepareContext(ctx, `
INSERT INTO sheet_items (sheet_id, column_pos, row_num, raw, text)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	for pos, col := range sh.Columns {
		var h doc.Header
		if col.Header != nil {
			h = *col.Header
		}
		if _, err := colStmt.ExecContext(ctx, sh.ID, pos, col.Type, col.Header != nil, h.Type, h.Raw, h.Text); err != nil {
			return err
		}
		for row, it := range col.Items {
			if _, err := itemStmt.ExecContext(ctx, sh.ID, pos, row, it.Raw, it.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetSheet loads a sheet with its columns and items
func (s *sqliteStore) GetSheet(ctx context.Context, id string) (*doc.Sheet, error) {
	sh := &doc.Sheet{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT source, title FROM sheets WHERE id = ?`, id,
	).Scan(&sh.Source, &sh.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sheet %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT type, has_header, header_type, header_raw, header_text
FROM sheet_columns
WHERE sheet_id = ?
ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			col       doc.Column
			hasHeader bool
			h         doc.Header
		)
		if err := rows.Scan(&col.Type, &hasHeader, &h.Type, &h.Raw, &h.Text); err != nil {
			return nil, err
		}
		if hasHeader {
			col.Header = &h
		}
		col.Items = []doc.Item{}
		sh.Columns = append(sh.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *sqliteStore) loadItems(ctx context.Context, sh *doc.Sheet) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT column_pos, raw, text
FROM sheet_items
WHERE sheet_id = ?
ORDER BY column_pos, row_num`, sh.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos int
			it  doc.Item
		)
		if err := rows.Scan(&pos, &it.Raw, &it.Text); err != nil {
			return err
		}
		if pos < 0 || pos >= len(sh.Columns) {
			return fmt.Errorf("sheet %s: item for unknown column %d", sh.ID, pos)
		}
		sh.Columns[pos].Items = append(sh.Columns[pos].Items, it)
	}
	return rows.Err()
}

// ListSheets returns sheet summaries, newest first
func (s *sqliteStore) ListSheets(ctx context.Context, limit int) ([]store.Summary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, title, n_columns, n_rows, created_at
FROM sheets
ORDER BY id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Summary
	for rows.Next() {
		var (
			sum     store.Summary
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Source, &sum.Title, &sum.Columns, &sum.Rows, &created); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("sheet %s: created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
