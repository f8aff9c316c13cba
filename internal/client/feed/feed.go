// Package feed implements the client-side near-me search that widens its
// radius until the feed has enough to show.
package feed

import (
	"context"
	"fmt"

	"github.com/louisbranch/confide.space/internal/client/confide"
)

// radiusLadder is the sequence of search radii in meters.
var radiusLadder = []float64{100, 250, 500, 1000, 2000}

const (
	// MinResults is the row count that stops the radius expansion.
	MinResults = 10

	// MaxAttempts bounds how many ladder rungs one search may try.
	MaxAttempts = 3
)

// Fetcher is the slice of the API client the searcher needs.
type Fetcher interface {
	Feed(ctx context.Context, query confide.FeedQuery) (confide.FeedPage, error)
}

// NearSearcher pages through the near-me feed around a fixed device
// location. The first page expands the search radius until it finds enough
// rows; later pages reuse the radius that satisfied the search so the result
// set stays consistent.
type NearSearcher struct {
	fetcher  Fetcher
	lat      float64
	lng      float64
	pageSize int

	radius  float64
	cursor  string
	hasMore bool
	started bool
}

// NewNearSearcher creates a searcher around the given device coordinates.
func NewNearSearcher(fetcher Fetcher, lat, lng float64, pageSize int) *NearSearcher {
	return &NearSearcher{
		fetcher:  fetcher,
		lat:      lat,
		lng:      lng,
		pageSize: pageSize,
	}
}

// Radius returns the pinned radius in meters, or 0 before the first page.
func (s *NearSearcher) Radius() float64 {
	return s.radius
}

// HasMore reports whether another page is available.
func (s *NearSearcher) HasMore() bool {
	return !s.started || s.hasMore
}

// Next returns the next feed page. The first call runs the radius expansion;
// subsequent calls follow the server cursor at the pinned radius.
func (s *NearSearcher) Next(ctx context.Context) (confide.FeedPage, error) {
	if !s.started {
		return s.first(ctx)
	}
	if !s.hasMore {
		return confide.FeedPage{}, nil
	}

	page, err := s.fetch(ctx, s.radius, s.cursor)
	if err != nil {
		return confide.FeedPage{}, err
	}
	s.advance(page)
	return page, nil
}

func (s *NearSearcher) first(ctx context.Context) (confide.FeedPage, error) {
	attempts := MaxAttempts
	if attempts > len(radiusLadder) {
		attempts = len(radiusLadder)
	}

	var page confide.FeedPage
	for attempt := 0; attempt < attempts; attempt++ {
		radius := radiusLadder[attempt]
		var err error
		page, err = s.fetch(ctx, radius, "")
		if err != nil {
			return confide.FeedPage{}, err
		}
		s.radius = radius
		if len(page.Rows) >= MinResults {
			break
		}
	}

	s.started = true
	s.advance(page)
	return page, nil
}

func (s *NearSearcher) fetch(ctx context.Context, radius float64, cursor string) (confide.FeedPage, error) {
	page, err := s.fetcher.Feed(ctx, confide.FeedQuery{
		Mode:         "near",
		Limit:        s.pageSize,
		Cursor:       cursor,
		Lat:          &s.lat,
		Lng:          &s.lng,
		RadiusMeters: radius,
	})
	if err != nil {
		return confide.FeedPage{}, fmt.Errorf("fetch near feed at %.0fm: %w", radius, err)
	}
	return page, nil
}

func (s *NearSearcher) advance(page confide.FeedPage) {
	s.hasMore = page.HasMore
	if page.NextCursor != nil {
		s.cursor = *page.NextCursor
	} else {
		s.cursor = ""
		s.hasMore = false
	}
}
