package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DocumentName is the row key of the dashboard document.
const DocumentName = "store"

// SQLiteMedium keeps the encoded document as one row of the documents table.
type SQLiteMedium struct {
	db   *sql.DB
	path string
	name string
}

func NewSQLiteMedium(dbPath string) (*SQLiteMedium, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteMedium{db: db, path: dbPath, name: DocumentName}, nil
}

func (m *SQLiteMedium) Read(ctx context.Context) ([]byte, error) {
	var body string
	err := m.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, m.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %q: %w", m.name, fs.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return []byte(body), nil
}

func (m *SQLiteMedium) Write(ctx context.Context, data []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		m.name, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (m *SQLiteMedium) Location() string {
	return "sqlite://" + m.path + "#" + m.name
}

func (m *SQLiteMedium) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
