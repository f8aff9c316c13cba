package session

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BackgroundStore persists the backgrounded-at timestamp across process
// restarts. Everything else in State is deliberately ephemeral.
type BackgroundStore interface {
	SaveBackgroundedAt(at time.Time) error
	LoadBackgroundedAt() (time.Time, error)
}

// FileBackgroundStore keeps the timestamp as unix milliseconds in a single
// file.
type FileBackgroundStore struct {
	Path string
}

// SaveBackgroundedAt writes the timestamp. A zero time clears the file.
func (f FileBackgroundStore) SaveBackgroundedAt(at time.Time) error {
	if at.IsZero() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear backgrounded-at: %w", err)
		}
		return nil
	}
	data := strconv.FormatInt(at.UnixMilli(), 10)
	if err := os.WriteFile(f.Path, []byte(data), 0o600); err != nil {
		return fmt.Errorf("write backgrounded-at: %w", err)
	}
	return nil
}

// LoadBackgroundedAt reads the timestamp. A missing file yields the zero
// time.
func (f FileBackgroundStore) LoadBackgroundedAt() (time.Time, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read backgrounded-at: %w", err)
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse backgrounded-at: %w", err)
	}
	return time.UnixMilli(millis).UTC(), nil
}

// Restore rebuilds session state after a cold start: a new session whose
// foreground decision can still see the persisted background timestamp.
func Restore(store BackgroundStore) (State, error) {
	s := Apply(State{}, ColdStart{})
	at, err := store.LoadBackgroundedAt()
	if err != nil {
		return s, err
	}
	s.BackgroundedAt = at
	return s, nil
}
