// Package sqlite provides a SQLite-backed place cache implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/confide.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/confide.space/internal/services/places/storage"
	"github.com/louisbranch/confide.space/internal/services/places/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists place cache entries in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite place cache store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutPlaceEntry inserts one cache entry. Entries are write-once; a duplicate
// normalized query returns storage.ErrAlreadyExists.
func (s *Store) PutPlaceEntry(ctx context.Context, entry storage.PlaceEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	normalized := strings.TrimSpace(entry.NormalizedQuery)
	if normalized == "" {
		return fmt.Errorf("normalized query is required")
	}
	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("place name is required")
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO place_cache (normalized_query, query, name, lat, lng, provider, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		normalized,
		entry.Query,
		entry.Name,
		entry.Lat,
		entry.Lng,
		entry.Provider,
		toMillis(createdAt),
	)
	if err != nil {
		if isPlaceCacheUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put place entry: %w", err)
	}
	return nil
}

// GetPlaceEntry returns one cache entry by normalized query.
func (s *Store) GetPlaceEntry(ctx context.Context, normalizedQuery string) (storage.PlaceEntry, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlaceEntry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PlaceEntry{}, fmt.Errorf("storage is not configured")
	}
	normalizedQuery = strings.TrimSpace(normalizedQuery)
	if normalizedQuery == "" {
		return storage.PlaceEntry{}, fmt.Errorf("normalized query is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT normalized_query, query, name, lat, lng, provider, created_at
		   FROM place_cache
		  WHERE normalized_query = ?`,
		normalizedQuery,
	)

	var entry storage.PlaceEntry
	var createdAt int64
	err := row.Scan(
		&entry.NormalizedQuery,
		&entry.Query,
		&entry.Name,
		&entry.Lat,
		&entry.Lng,
		&entry.Provider,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PlaceEntry{}, storage.ErrNotFound
		}
		return storage.PlaceEntry{}, fmt.Errorf("get place entry: %w", err)
	}
	entry.CreatedAt = fromMillis(createdAt)
	return entry, nil
}

func isPlaceCacheUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "place_cache.normalized_query")
}

var _ storage.PlaceStore = (*Store)(nil)
