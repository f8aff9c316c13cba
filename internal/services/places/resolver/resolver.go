// Package resolver maps free-text place queries to coordinates, using a
// write-once cache in front of an external geocoding provider.
package resolver

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	platformerrors "github.com/louisbranch/confide.space/internal/platform/errors"
	"github.com/louisbranch/confide.space/internal/services/places/geocoder"
	"github.com/louisbranch/confide.space/internal/services/places/storage"
)

const (
	minQueryChars = 2
	maxQueryChars = 80

	cacheWriteTimeout = 3 * time.Second
)

// Source identifies where a resolution came from.
const (
	SourceCache    = "cache"
	SourceProvider = "provider"
)

// Resolution is the outcome of a place lookup. A query for a place that does
// not exist is a valid resolution with OK false, not an error.
type Resolution struct {
	OK     bool
	Name   string
	Lat    float64
	Lng    float64
	Source string
}

// Resolver answers place queries from the cache first and falls back to the
// geocoding provider on a miss.
type Resolver struct {
	store    storage.PlaceStore
	provider geocoder.Provider
	now      func() time.Time
	runAsync func(func())
}

// New builds a resolver over the given cache store and provider.
func New(store storage.PlaceStore, provider geocoder.Provider) *Resolver {
	return &Resolver{
		store:    store,
		provider: provider,
		now:      time.Now,
		runAsync: func(fn func()) { go fn() },
	}
}

// Resolve looks up a place by free-text query.
func (r *Resolver) Resolve(ctx context.Context, query string) (Resolution, error) {
	trimmed := strings.TrimSpace(query)
	length := len([]rune(trimmed))
	if length < minQueryChars || length > maxQueryChars {
		return Resolution{}, platformerrors.WithMetadata(platformerrors.CodePlaceQueryInvalid, "place query length out of range", map[string]string{
			"Min": strconv.Itoa(minQueryChars),
			"Max": strconv.Itoa(maxQueryChars),
		})
	}

	normalized := strings.ToLower(trimmed)
	entry, err := r.store.GetPlaceEntry(ctx, normalized)
	switch {
	case err == nil:
		return Resolution{
			OK:     true,
			Name:   entry.Name,
			Lat:    entry.Lat,
			Lng:    entry.Lng,
			Source: SourceCache,
		}, nil
	case !errors.Is(err, storage.ErrNotFound):
		return Resolution{}, platformerrors.Wrap(platformerrors.CodePlaceLookupFailed, "read place cache", err)
	}

	result, err := r.provider.Geocode(ctx, trimmed)
	if err != nil {
		if errors.Is(err, geocoder.ErrNoResults) {
			return Resolution{OK: false, Source: SourceProvider}, nil
		}
		return Resolution{}, platformerrors.Wrap(platformerrors.CodePlaceLookupFailed, "geocode place query", err)
	}

	// The caller does not wait on the cache write; losing it only costs a
	// future provider call.
	r.runAsync(func() { r.cacheResult(normalized, trimmed, result) })

	return Resolution{
		OK:     true,
		Name:   result.Name,
		Lat:    result.Lat,
		Lng:    result.Lng,
		Source: SourceProvider,
	}, nil
}

func (r *Resolver) cacheResult(normalized, query string, result geocoder.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	err := r.store.PutPlaceEntry(ctx, storage.PlaceEntry{
		NormalizedQuery: normalized,
		Query:           query,
		Name:            result.Name,
		Lat:             result.Lat,
		Lng:             result.Lng,
		Provider:        "nominatim",
		CreatedAt:       r.now().UTC(),
	})
	if err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		log.Printf("cache place entry %q: %v", normalized, err)
	}
}
