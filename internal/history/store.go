package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
)

// Export is one finalized batch recorded in the history database.
type Export struct {
	ID        int64
	Filename  string
	DataRows  int
	CreatedAt time.Time
}

// Store persists export history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the export history database inside the
// archive directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.ArchiveDir, "exports.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the history database location.
func (s *Store) Path() string {
	return s.path
}

// RecordExport stores one finalized export.
func (s *Store) RecordExport(ctx context.Context, filename string, dataRows int) (*Export, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	createdAt := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO exports (filename, data_rows, created_at) VALUES (?, ?, ?)",
		filename, dataRows, createdAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read export id: %w", err)
	}
	return &Export{ID: id, Filename: filename, DataRows: dataRows, CreatedAt: createdAt}, nil
}

// List returns recorded exports, newest first, up to limit (0 means all).
func (s *Store) List(ctx context.Context, limit int) ([]Export, error) {
	query := "SELECT id, filename, data_rows, created_at FROM exports ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var exports []Export
	for rows.Next() {
		var (
			exp       Export
			createdAt string
		)
		if err := rows.Scan(&exp.ID, &exp.Filename, &exp.DataRows, &createdAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			exp.CreatedAt = parsed
		}
		exports = append(exports, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return exports, nil
}
