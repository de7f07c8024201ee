package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"go-scout-export/internal/model"
)

// Entry is one indexed item of the content store.
type Entry struct {
	ID           int64
	RelativePath string
	DisplayName  string
	MimeType     string
	Pending      bool
	Size         int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ContentStore indexes published files in SQLite. Bytes live under root at
// <relative path>/<display name>.
type ContentStore struct {
	db   *sql.DB
	root string
}

// OpenContentStore opens (creating if needed) the index at indexPath.
func OpenContentStore(indexPath, root string) (*ContentStore, error) {
	if indexPath == "" {
		return nil, fmt.Errorf("index path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", indexPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports single writer

	cs := &ContentStore{db: db, root: root}
	if err := cs.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return cs, nil
}

func (cs *ContentStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		relative_path TEXT NOT NULL,
		display_name TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		is_pending INTEGER NOT NULL DEFAULT 1,
		size INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_relative_path ON entries(relative_path);
	`
	_, err := cs.db.Exec(schema)
	return err
}

// Query lists the entries under relativePath in insertion order.
func (cs *ContentStore) Query(ctx context.Context, relativePath string) ([]Entry, error) {
	rows, err := cs.db.QueryContext(ctx, `
		SELECT id, relative_path, display_name, mime_type, is_pending, size, created_at, updated_at
		FROM entries WHERE relative_path = ? ORDER BY id`, relativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var pending int
		var created, updated int64
		if err := rows.Scan(&e.ID, &e.RelativePath, &e.DisplayName, &e.MimeType, &pending, &e.Size, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Pending = pending != 0
		e.CreatedAt = time.UnixMilli(created)
		e.UpdatedAt = time.UnixMilli(updated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Find returns the first entry named displayName under relativePath, or nil.
func (cs *ContentStore) Find(ctx context.Context, relativePath, displayName string) (*Entry, error) {
	entries, err := cs.Query(ctx, relativePath)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].DisplayName == displayName {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// Insert creates a pending entry for loc.
func (cs *ContentStore) Insert(ctx context.Context, loc model.Location) (*Entry, error) {
	if filepath.Base(loc.DisplayName) != loc.DisplayName {
		return nil, fmt.Errorf("invalid display name %q", loc.DisplayName)
	}

	now := time.Now()
	result, err := cs.db.ExecContext(ctx, `
		INSERT INTO entries (relative_path, display_name, mime_type, is_pending, size, created_at, updated_at)
		VALUES (?, ?, ?, 1, 0, ?, ?)`,
		loc.RelativePath, loc.DisplayName, loc.MimeType, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry id: %w", err)
	}

	return &Entry{
		ID:           id,
		RelativePath: loc.RelativePath,
		DisplayName:  loc.DisplayName,
		MimeType:     loc.MimeType,
		Pending:      true,
		CreatedAt:    time.UnixMilli(now.UnixMilli()),
		UpdatedAt:    time.UnixMilli(now.UnixMilli()),
	}, nil
}

// Path is where the bytes of e are stored.
func (cs *ContentStore) Path(e *Entry) string {
	return filepath.Join(cs.root, filepath.FromSlash(e.RelativePath), e.DisplayName)
}

// Write truncates e's content and replaces it with r.
func (cs *ContentStore) Write(ctx context.Context, e *Entry, r io.Reader) error {
	path := cs.Path(e)
	if err := writeFileAtomic(path, r); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	_, err = cs.db.ExecContext(ctx, `UPDATE entries SET size = ?, updated_at = ? WHERE id = ?`,
		info.Size(), time.Now().UnixMilli(), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	e.Size = info.Size()
	return nil
}

// MarkReady clears the pending flag of entry id.
func (cs *ContentStore) MarkReady(ctx context.Context, id int64) error {
	result, err := cs.db.ExecContext(ctx, `UPDATE entries SET is_pending = 0, updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("entry %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Pending lists entries that were inserted but never marked ready.
func (cs *ContentStore) Pending(ctx context.Context) ([]Entry, error) {
	rows, err := cs.db.QueryContext(ctx, `SELECT id, relative_path, display_name FROM entries WHERE is_pending = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e := Entry{Pending: true}
		if err := rows.Scan(&e.ID, &e.RelativePath, &e.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the index.
func (cs *ContentStore) Close() error {
	if cs.db == nil {
		return errors.New("content store already closed")
	}
	err := cs.db.Close()
	cs.db = nil
	return err
}
