package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dshills/folio/internal/storage"
	"github.com/dshills/folio/internal/storage/sqlite/migrations"
)

const migrationTable = "schema_migrations"

// Store provides SQLite-backed persistence for documents.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a document store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts or updates doc. A document without an id gets a new one.
// The stored document is returned with its id and timestamps set.
func (s *Store) Save(ctx context.Context, doc storage.Document) (storage.Document, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Document{}, fmt.Errorf("storage is not configured")
	}
	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if _, err := uuid.Parse(doc.ID); err != nil {
		return storage.Document{}, fmt.Errorf("document id %q: %w", doc.ID, err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO documents (id, title, content, pages, words, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    title = excluded.title,
		    content = excluded.content,
		    pages = excluded.pages,
		    words = excluded.words,
		    updated_at = excluded.updated_at`,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.Pages,
		doc.Words,
		doc.CreatedAt.UnixMilli(),
		doc.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return storage.Document{}, fmt.Errorf("save document: %w", err)
	}

	// An update keeps the original creation time.
	row := s.sqlDB.QueryRowContext(ctx, `SELECT created_at FROM documents WHERE id = ?`, doc.ID)
	var created int64
	if err := row.Scan(&created); err != nil {
		return storage.Document{}, fmt.Errorf("read saved document: %w", err)
	}
	doc.CreatedAt = time.UnixMilli(created).UTC()
	return doc, nil
}

// Load returns the document saved under id, or storage.ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (storage.Document, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Document{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, content, pages, words, created_at, updated_at
		 FROM documents
		 WHERE id = ?`,
		strings.TrimSpace(id),
	)

	var doc storage.Document
	var created, updated int64
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.Pages, &doc.Words, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Document{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		return storage.Document{}, fmt.Errorf("load document: %w", err)
	}
	doc.CreatedAt = time.UnixMilli(created).UTC()
	doc.UpdatedAt = time.UnixMilli(updated).UTC()
	return doc, nil
}

// List returns summaries of all saved documents, most recently updated first.
func (s *Store) List(ctx context.Context) ([]storage.Summary, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, pages, words, length(CAST(content AS BLOB)), updated_at
		 FROM documents
		 ORDER BY updated_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []storage.Summary
	for rows.Next() {
		var sum storage.Summary
		var updated int64
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Pages, &sum.Words, &sum.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

// Delete removes the document saved under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

// applyMigrations executes the embedded migrations at most once per file.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		var found int
		err := sqlDB.QueryRow(`SELECT 1 FROM `+migrationTable+` WHERE name = ?`, file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		body, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(upSection(string(body))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file,
			time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// upSection returns the SQL in the "-- +migrate Up" section.
func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	i := strings.Index(content, up)
	if i == -1 {
		return content
	}
	content = content[i+len(up):]
	if j := strings.Index(content, down); j != -1 {
		content = content[:j]
	}
	return content
}
