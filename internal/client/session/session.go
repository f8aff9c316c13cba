// Package session tracks an anonymous client session and decides when a
// single interstitial ad may be shown.
package session

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ForegroundGap is the minimum background duration that starts a fresh
	// session on return.
	ForegroundGap = 10 * time.Minute

	// ArmThreshold is the number of feed page fetches that arms the ad.
	ArmThreshold = 4
)

// State is the full session state. It is a value; transitions return a new
// state and never mutate the input.
type State struct {
	ID             string
	FetchCount     int
	AdArmed        bool
	AdShown        bool
	BackgroundedAt time.Time
}

// Event is a session lifecycle or activity event.
type Event interface{ isEvent() }

// ColdStart begins a brand-new session.
type ColdStart struct{}

// Background records the app leaving the foreground.
type Background struct{ At time.Time }

// Foreground records the app returning to the foreground.
type Foreground struct{ At time.Time }

// PageFetch records one feed page load.
type PageFetch struct{}

// AdShown records the interstitial actually rendering.
type AdShown struct{}

func (ColdStart) isEvent()  {}
func (Background) isEvent() {}
func (Foreground) isEvent() {}
func (PageFetch) isEvent()  {}
func (AdShown) isEvent()    {}

func newSession() State {
	return State{ID: uuid.NewString()}
}

// Apply computes the next state for one event. Unknown events leave the
// state unchanged.
func Apply(s State, e Event) State {
	switch e := e.(type) {
	case ColdStart:
		return newSession()

	case Background:
		s.BackgroundedAt = e.At
		return s

	case Foreground:
		if !s.BackgroundedAt.IsZero() && e.At.Sub(s.BackgroundedAt) >= ForegroundGap {
			return newSession()
		}
		s.BackgroundedAt = time.Time{}
		return s

	case PageFetch:
		// Once the ad has rendered this session, fetches no longer count.
		if s.AdShown {
			return s
		}
		s.FetchCount++
		if s.FetchCount >= ArmThreshold {
			s.AdArmed = true
		}
		return s

	case AdShown:
		if !s.AdArmed || s.AdShown {
			return s
		}
		s.AdArmed = false
		s.AdShown = true
		return s
	}
	return s
}
