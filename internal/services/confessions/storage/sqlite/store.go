// Package sqlite provides a SQLite-backed confession storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
	"github.com/louisbranch/confide.space/internal/platform/geo"
	sqlitemigrate "github.com/louisbranch/confide.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/confide.space/internal/services/confessions/domain"
	"github.com/louisbranch/confide.space/internal/services/confessions/storage"
	"github.com/louisbranch/confide.space/internal/services/confessions/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists confessions in SQLite.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite confession store and applies embedded migrations.
// Transactions take the write lock up front (_txlock=immediate) so the
// cooldown read and the insert inside CreateConfession are serialized
// against concurrent submissions.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate"
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
	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateConfession enforces the per-actor cooldown and inserts the row in a
// single write transaction. Timestamps are server-computed; callers supply
// admitted text and an id.
func (s *Store) CreateConfession(ctx context.Context, confession storage.NewConfession) (domain.Confession, error) {
	if err := ctx.Err(); err != nil {
		return domain.Confession{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Confession{}, fmt.Errorf("storage is not configured")
	}
	confessionID := strings.TrimSpace(confession.ID)
	text := strings.TrimSpace(confession.Text)
	actorID := strings.TrimSpace(confession.ActorID)
	if confessionID == "" {
		return domain.Confession{}, fmt.Errorf("confession id is required")
	}
	if text == "" {
		return domain.Confession{}, fmt.Errorf("confession text is required")
	}
	if actorID == "" {
		return domain.Confession{}, fmt.Errorf("actor id is required")
	}
	if (confession.Lat == nil) != (confession.Lng == nil) {
		return domain.Confession{}, fmt.Errorf("coordinates must be both set or both absent")
	}

	now := s.now()
	createdAt := toMillis(now)
	expiresAt := toMillis(now.Add(domain.TTL))

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Confession{}, fmt.Errorf("begin admission transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var lastCreated int64
	err = tx.QueryRowContext(
		ctx,
		`SELECT created_at
		   FROM confessions
		  WHERE actor_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT 1`,
		actorID,
	).Scan(&lastCreated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First post from this actor; always allowed.
	case err != nil:
		return domain.Confession{}, fmt.Errorf("check actor cooldown: %w", err)
	default:
		elapsed := now.Sub(fromMillis(lastCreated))
		if elapsed < domain.PostCooldown {
			wait := domain.PostCooldown - elapsed
			waitSeconds := int(wait / time.Second)
			if wait%time.Second != 0 {
				waitSeconds++
			}
			return domain.Confession{}, apperrors.WithMetadata(
				apperrors.CodeRateLimit,
				fmt.Sprintf("actor posted %s ago, cooldown is %s", elapsed.Round(time.Millisecond), domain.PostCooldown),
				map[string]string{"WaitSeconds": strconv.Itoa(waitSeconds)},
			)
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO confessions (id, text, actor_id, lat, lng, created_at, expires_at, hidden)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		confessionID,
		text,
		actorID,
		confession.Lat,
		confession.Lng,
		createdAt,
		expiresAt,
	)
	if err != nil {
		return domain.Confession{}, fmt.Errorf("insert confession: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Confession{}, fmt.Errorf("commit admission transaction: %w", err)
	}

	return domain.Confession{
		ID:        confessionID,
		Text:      text,
		Lat:       confession.Lat,
		Lng:       confession.Lng,
		CreatedAt: fromMillis(createdAt),
		ExpiresAt: fromMillis(expiresAt),
		ActorID:   actorID,
	}, nil
}

// ListFeed returns one page of visible confessions in (created_at DESC,
// id DESC) order. Near mode prefilters candidates through a bounding box in
// SQL and applies the exact great-circle distance in Go.
func (s *Store) ListFeed(ctx context.Context, query storage.FeedQuery) (storage.FeedPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.FeedPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.FeedPage{}, fmt.Errorf("storage is not configured")
	}
	if query.PageSize <= 0 {
		return storage.FeedPage{}, fmt.Errorf("page size must be greater than zero")
	}
	near := query.Mode == storage.FeedModeNear
	if near && query.RadiusMeters <= 0 {
		return storage.FeedPage{}, fmt.Errorf("radius must be greater than zero in near mode")
	}

	now := query.Now
	if now.IsZero() {
		now = s.now()
	}

	var sb strings.Builder
	sb.WriteString(
		`SELECT id, text, lat, lng, created_at, expires_at, hidden
		   FROM confessions
		  WHERE expires_at > ? AND hidden = 0`)
	args := []any{toMillis(now)}

	if !query.AfterCreatedAt.IsZero() {
		afterMillis := toMillis(query.AfterCreatedAt)
		sb.WriteString(` AND (created_at < ? OR (created_at = ? AND id < ?))`)
		args = append(args, afterMillis, afterMillis, query.AfterID)
	}

	if near {
		minLat, maxLat, minLng, maxLng := geo.BoundingBox(query.Lat, query.Lng, query.RadiusMeters)
		if minLng < -180 || maxLng > 180 {
			// Box crosses the antimeridian; over-scan the full longitude
			// range and let the exact distance check prune.
			minLng, maxLng = -180, 180
		}
		sb.WriteString(` AND lat IS NOT NULL AND lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?`)
		args = append(args, minLat, maxLat, minLng, maxLng)
	}

	sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	if !near {
		// Near mode post-filters by exact distance, so rows cannot be
		// bounded in SQL without undercounting.
		sb.WriteString(` LIMIT ?`)
		args = append(args, query.PageSize+1)
	}

	rows, err := s.sqlDB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return storage.FeedPage{}, fmt.Errorf("list feed: %w", err)
	}
	defer rows.Close()

	page := storage.FeedPage{
		Confessions: make([]domain.Confession, 0, query.PageSize),
	}
	for rows.Next() {
		var c domain.Confession
		var lat, lng sql.NullFloat64
		var createdAt, expiresAt int64
		var hidden int
		if err := rows.Scan(&c.ID, &c.Text, &lat, &lng, &createdAt, &expiresAt, &hidden); err != nil {
			return storage.FeedPage{}, fmt.Errorf("list feed: %w", err)
		}
		if lat.Valid && lng.Valid {
			latValue, lngValue := lat.Float64, lng.Float64
			c.Lat, c.Lng = &latValue, &lngValue
		}
		c.CreatedAt = fromMillis(createdAt)
		c.ExpiresAt = fromMillis(expiresAt)
		c.Hidden = hidden != 0

		if near {
			if !c.HasCoordinates() {
				continue
			}
			if geo.Distance(query.Lat, query.Lng, *c.Lat, *c.Lng) > query.RadiusMeters {
				continue
			}
		}

		page.Confessions = append(page.Confessions, c)
		if len(page.Confessions) > query.PageSize {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return storage.FeedPage{}, fmt.Errorf("list feed: %w", err)
	}
	if len(page.Confessions) > query.PageSize {
		page.HasMore = true
		page.Confessions = page.Confessions[:query.PageSize]
	}

	return page, nil
}

// LatestActorPost returns the creation time of the actor's most recent
// confession.
func (s *Store) LatestActorPost(ctx context.Context, actorID string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if s == nil || s.sqlDB == nil {
		return time.Time{}, fmt.Errorf("storage is not configured")
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return time.Time{}, fmt.Errorf("actor id is required")
	}

	var createdAt int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT created_at
		   FROM confessions
		  WHERE actor_id = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT 1`,
		actorID,
	).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, storage.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("latest actor post: %w", err)
	}
	return fromMillis(createdAt), nil
}

// DeleteExpired removes confessions past their expiry. The read path already
// filters expired rows, so physical deletion lagging behind is harmless.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if now.IsZero() {
		now = s.now()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM confessions WHERE expires_at <= ?`,
		toMillis(now),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired confessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired confessions: %w", err)
	}
	return deleted, nil
}

// SetHidden flips the moderation-hide flag. This is an operator action; no
// actor-facing operation updates confessions.
func (s *Store) SetHidden(ctx context.Context, confessionID string, hidden bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	confessionID = strings.TrimSpace(confessionID)
	if confessionID == "" {
		return fmt.Errorf("confession id is required")
	}

	hiddenValue := 0
	if hidden {
		hiddenValue = 1
	}
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE confessions SET hidden = ? WHERE id = ?`,
		hiddenValue,
		confessionID,
	)
	if err != nil {
		return fmt.Errorf("set confession hidden: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set confession hidden: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

var _ storage.ConfessionStore = (*Store)(nil)
