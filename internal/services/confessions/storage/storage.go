// Package storage defines persistence contracts for confession state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/confide.space/internal/services/confessions/domain"
)

// ErrNotFound indicates a requested confession record is missing.
var ErrNotFound = errors.New("record not found")

// FeedMode selects the unified feed query behavior.
type FeedMode string

const (
	// FeedModeWorld returns confessions regardless of geotag.
	FeedModeWorld FeedMode = "world"
	// FeedModeNear returns only geotagged confessions within a radius.
	FeedModeNear FeedMode = "near"
)

// NewConfession carries the admitted fields for one insert. Text must already
// have passed admission; CreatedAt/ExpiresAt are server-computed by the store.
type NewConfession struct {
	ID      string
	Text    string
	ActorID string
	Lat     *float64
	Lng     *float64
}

// FeedQuery describes one page request against the unified feed.
type FeedQuery struct {
	Mode     FeedMode
	PageSize int
	// After, when set, restricts rows to (created_at, id) strictly less than
	// (AfterCreatedAt, AfterID) under the descending ordering.
	AfterCreatedAt time.Time
	AfterID        string
	// Near-mode parameters. Ignored in world mode.
	Lat          float64
	Lng          float64
	RadiusMeters float64
	// Now is the visibility instant; zero means time.Now.
	Now time.Time
}

// FeedPage is one page of feed rows in (created_at DESC, id DESC) order.
type FeedPage struct {
	Confessions []domain.Confession
	HasMore     bool
}

// ConfessionStore persists confessions and enforces the admission pipeline's
// server-side half: the rate-limit check and insert run atomically.
type ConfessionStore interface {
	// CreateConfession enforces the per-actor cooldown and inserts the row in
	// a single transaction. Returns the stored confession with
	// server-computed timestamps, or a RATE_LIMIT domain error.
	CreateConfession(ctx context.Context, confession NewConfession) (domain.Confession, error)

	// ListFeed returns one feed page. Expired and hidden rows are always
	// excluded regardless of mode.
	ListFeed(ctx context.Context, query FeedQuery) (FeedPage, error)

	// LatestActorPost returns the creation time of the actor's most recent
	// confession, or ErrNotFound.
	LatestActorPost(ctx context.Context, actorID string) (time.Time, error)

	// DeleteExpired removes confessions past their expiry and returns the
	// number of rows deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
