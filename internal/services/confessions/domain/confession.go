// Package domain holds confession state and the admission rules that gate
// what becomes a stored confession.
package domain

import "time"

const (
	// MaxTextChars is the confession length limit, counted in runes.
	MaxTextChars = 120
	// TTL is how long a confession stays visible after creation.
	TTL = 24 * time.Hour
	// PostCooldown is the minimum gap between accepted posts per actor.
	PostCooldown = 15 * time.Second
)

// Confession is one ephemeral anonymous post. ActorID exists only for rate
// limiting and is never exposed to readers.
type Confession struct {
	ID        string
	Text      string
	Lat       *float64
	Lng       *float64
	CreatedAt time.Time
	ExpiresAt time.Time
	Hidden    bool
	ActorID   string
}

// Visible reports whether readers may see the confession at the given time.
func (c Confession) Visible(now time.Time) bool {
	return now.Before(c.ExpiresAt) && !c.Hidden
}

// HasCoordinates reports whether the confession carries a geotag. Lat and Lng
// are always both present or both absent.
func (c Confession) HasCoordinates() bool {
	return c.Lat != nil && c.Lng != nil
}
