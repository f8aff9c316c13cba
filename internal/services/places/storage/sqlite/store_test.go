package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/confide.space/internal/services/places/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "places.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutGetPlaceEntryRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	input := storage.PlaceEntry{
		NormalizedQuery: "new york",
		Query:           "New York",
		Name:            "New York, United States",
		Lat:             40.7128,
		Lng:             -74.0060,
		Provider:        "nominatim",
		CreatedAt:       now,
	}
	if err := store.PutPlaceEntry(context.Background(), input); err != nil {
		t.Fatalf("put place entry: %v", err)
	}

	got, err := store.GetPlaceEntry(context.Background(), "new york")
	if err != nil {
		t.Fatalf("get place entry: %v", err)
	}
	if got.Name != input.Name {
		t.Fatalf("name = %q, want %q", got.Name, input.Name)
	}
	if got.Lat != input.Lat || got.Lng != input.Lng {
		t.Fatalf("coordinates = %v,%v, want %v,%v", got.Lat, got.Lng, input.Lat, input.Lng)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
}

func TestPutPlaceEntryReturnsAlreadyExistsOnDuplicate(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	entry := storage.PlaceEntry{
		NormalizedQuery: "paris",
		Query:           "Paris",
		Name:            "Paris, France",
		Lat:             48.8566,
		Lng:             2.3522,
		Provider:        "nominatim",
	}
	if err := store.PutPlaceEntry(context.Background(), entry); err != nil {
		t.Fatalf("put initial entry: %v", err)
	}
	err := store.PutPlaceEntry(context.Background(), entry)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate put error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetPlaceEntryMissing(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetPlaceEntry(context.Background(), "atlantis")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}
