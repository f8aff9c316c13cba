// Package storage defines persistence contracts for the place resolution
// cache.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested cache entry is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a cache entry for the normalized query exists.
// Concurrent resolvers racing to fill the same key is expected; callers
// treat this as success.
var ErrAlreadyExists = errors.New("record already exists")

// PlaceEntry stores one resolved place keyed by its normalized query.
// Entries are write-once: they are never updated after creation.
type PlaceEntry struct {
	NormalizedQuery string
	Query           string
	Name            string
	Lat             float64
	Lng             float64
	Provider        string
	CreatedAt       time.Time
}

// PlaceStore persists geocoding results.
type PlaceStore interface {
	PutPlaceEntry(ctx context.Context, entry PlaceEntry) error
	GetPlaceEntry(ctx context.Context, normalizedQuery string) (PlaceEntry, error)
}
