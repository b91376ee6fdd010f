package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"agadeepaoli/internal/storage"
)

const (
	// tables
	poemsTable   = "poems"
	galleryTable = "gallery_images"
)

// Default column values written by the schema itself.
const (
	schemaDefaultAuthor = "சந்திரசேகர் P"
	schemaDefaultAlt    = "அறக்கட்டளை நிகழ்வு"
)

// Storage is the file-backed store for poems and gallery items. Every
// mutating statement runs in autocommit mode with synchronous=FULL, so it is
// on disk before the call returns.
type Storage struct {
	db   *sql.DB
	sb   sq.StatementBuilderType
	path string
}

// New opens the database at path, creating it and its directory if needed,
// then ensures the schema and applies the mimetype migration. An existing
// file that cannot be read as a database yields *storage.OpenError.
func New(ctx context.Context, path string) (*Storage, error) {
	const op = "storage.sqlite.New"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, statErr := os.Stat(path)
	existed := statErr == nil

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)&_pragma=journal_mode(DELETE)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &storage.OpenError{Path: path, Err: err})
	}
	// One connection keeps read-modify-persist sequences from interleaving.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Storage{
		db:   db,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Question),
		path: path,
	}

	if existed {
		if err := s.checkIntegrity(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, &storage.OpenError{Path: path, Err: err})
		}
	}

	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, &storage.OpenError{Path: path, Err: err})
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Storage) Path() string {
	return s.path
}

// Ping reports whether the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) checkIntegrity(ctx context.Context) error {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return errors.New(result)
	}
	return nil
}

func (s *Storage) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS poems (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '`+schemaDefaultAuthor+`',
			date TEXT NOT NULL,
			type TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS gallery_images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			mimetype TEXT NOT NULL DEFAULT 'image/jpeg',
			alt TEXT DEFAULT '`+schemaDefaultAlt+`',
			uploaded_at TEXT NOT NULL DEFAULT ''
		);
	`)
	return err
}

// migrate adds the mimetype column to databases created before it existed.
func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `ALTER TABLE gallery_images ADD COLUMN mimetype TEXT NOT NULL DEFAULT 'image/jpeg'`)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}
