package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
)

func assertCode(t *testing.T, err error, want apperrors.Code) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error = %v, want domain error with code %s", err, want)
	}
	if appErr.Code != want {
		t.Fatalf("code = %s, want %s", appErr.Code, want)
	}
}

func TestSanitizeAcceptsPlainText(t *testing.T) {
	t.Parallel()

	got, err := Sanitize("  meet me at noon  ")
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if got != "meet me at noon" {
		t.Fatalf("text = %q, want trimmed input", got)
	}
}

func TestSanitizeRejectsEmpty(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "\n\t "} {
		_, err := Sanitize(raw)
		assertCode(t, err, apperrors.CodeEmptyText)
	}
}

func TestSanitizeLengthBoundary(t *testing.T) {
	t.Parallel()

	exactly120 := strings.Repeat("a", 120)
	if _, err := Sanitize(exactly120); err != nil {
		t.Fatalf("120 chars should be accepted: %v", err)
	}

	_, err := Sanitize(strings.Repeat("a", 121))
	assertCode(t, err, apperrors.CodeTextTooLong)
}

func TestSanitizeCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	// 120 multibyte runes is within the limit even though it exceeds 120 bytes.
	if _, err := Sanitize(strings.Repeat("é", 120)); err != nil {
		t.Fatalf("120 runes should be accepted: %v", err)
	}
	_, err := Sanitize(strings.Repeat("é", 121))
	assertCode(t, err, apperrors.CodeTextTooLong)
}

func TestSanitizeBlocksIdentityPatterns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{"at symbol", "contact@x.com"},
		{"bare at", "find me @ the cafe"},
		{"http scheme", "see http://example.test/page"},
		{"https scheme", "see HTTPS://example.test"},
		{"www prefix", "go to www.example.test"},
		{"com suffix", "find mysite.com ok"},
		{"io suffix", "check weird.io"},
		{"co suffix", "short.co is mine"},
		{"suffix with trailing punctuation", "visit mysite.org."},
		{"eight digits", "Call 55512345"},
		{"formatted phone", "call 555-123-4567 now"},
		{"dial prefix", "+15551234 is me"},
		{"full name", "my roommate John Smith snores"},
		{"full name with punctuation", "it was Jane Doe."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Sanitize(tc.text)
			assertCode(t, err, apperrors.CodeContentBlocked)
		})
	}
}

func TestSanitizeAllowsBorderlineText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{"seven digits", "lost $1234567 at poker"},
		{"sentence capitals", "Today I told a lie"},
		{"single capitalized word", "Everyone knows now"},
		{"plus without digit", "coffee + sleep = happiness"},
		{"period mid sentence", "i did it. nobody saw"},
		{"all caps", "I REGRET EVERYTHING"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Sanitize(tc.text); err != nil {
				t.Fatalf("expected accept, got %v", err)
			}
		})
	}
}

func TestConfessionVisible(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	c := Confession{ExpiresAt: now.Add(time.Hour)}
	if !c.Visible(now) {
		t.Fatal("expected unexpired, unhidden confession to be visible")
	}
	c.Hidden = true
	if c.Visible(now) {
		t.Fatal("hidden confession must not be visible")
	}
	c.Hidden = false
	if c.Visible(now.Add(2 * time.Hour)) {
		t.Fatal("expired confession must not be visible")
	}
}

func TestConfessionHasCoordinates(t *testing.T) {
	t.Parallel()

	lat, lng := 40.71, -74.00
	if (Confession{}).HasCoordinates() {
		t.Fatal("confession without geotag reports coordinates")
	}
	if !(Confession{Lat: &lat, Lng: &lng}).HasCoordinates() {
		t.Fatal("geotagged confession reports no coordinates")
	}
}
