package pagination

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Cursor identifies the last-seen feed row under the (created_at DESC,
// id DESC) ordering. Every row on the next page satisfies
// (created_at, id) < (CreatedAtMillis, ID).
type Cursor struct {
	// CreatedAtMillis is the creation timestamp of the last-seen row.
	CreatedAtMillis int64 `json:"ts"`
	// ID is the identifier of the last-seen row, breaking timestamp ties.
	ID string `json:"id"`
	// ModeHash invalidates tokens replayed against a different feed mode
	// or filter than the one they were minted for.
	ModeHash string `json:"mode_hash,omitempty"`
}

// Encode encodes a cursor to an opaque base64 string.
func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode decodes an opaque base64 string to a cursor.
// Returns an error if the token is invalid or malformed.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("empty token")
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode base64: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal cursor: %w", err)
	}

	if c.CreatedAtMillis <= 0 || c.ID == "" {
		return Cursor{}, fmt.Errorf("incomplete cursor")
	}

	return c, nil
}

// HashMode computes a short hash of the feed mode/filter string for cursor
// validation. Returns empty string for empty input.
func HashMode(mode string) string {
	if mode == "" {
		return ""
	}
	h := sha256.Sum256([]byte(mode))
	return hex.EncodeToString(h[:8])
}

// ValidateModeHash checks if the cursor's mode hash matches the current feed
// mode. Returns an error if the mode changed since the cursor was created.
func ValidateModeHash(c Cursor, currentMode string) error {
	if c.ModeHash != HashMode(currentMode) {
		return fmt.Errorf("feed mode changed since cursor was created")
	}
	return nil
}

// NewCursor creates a cursor pointing past the given row for the given mode.
func NewCursor(createdAtMillis int64, id, mode string) Cursor {
	return Cursor{
		CreatedAtMillis: createdAtMillis,
		ID:              id,
		ModeHash:        HashMode(mode),
	}
}
