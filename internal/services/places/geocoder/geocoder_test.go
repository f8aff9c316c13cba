package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocodeReturnsFirstMatch(t *testing.T) {
	t.Parallel()

	var gotUserAgent string
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"display_name":"Lisbon, Portugal","lat":"38.7223","lon":"-9.1393"},{"display_name":"Lisbon, Ohio","lat":"40.77","lon":"-80.76"}]`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, server.Client())
	result, err := provider.Geocode(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if result.Name != "Lisbon, Portugal" {
		t.Fatalf("name = %q, want %q", result.Name, "Lisbon, Portugal")
	}
	if result.Lat != 38.7223 || result.Lng != -9.1393 {
		t.Fatalf("coordinates = %v,%v", result.Lat, result.Lng)
	}
	if gotQuery != "Lisbon" {
		t.Fatalf("query = %q, want %q", gotQuery, "Lisbon")
	}
	if gotUserAgent == "" {
		t.Fatal("expected user agent header")
	}
}

func TestGeocodeEmptyArrayReturnsNoResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, server.Client())
	_, err := provider.Geocode(context.Background(), "nowhereville")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("error = %v, want %v", err, ErrNoResults)
	}
}

func TestGeocodeRejectsServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, server.Client())
	_, err := provider.Geocode(context.Background(), "Lisbon")
	if err == nil {
		t.Fatal("expected error for server failure")
	}
	if errors.Is(err, ErrNoResults) {
		t.Fatal("server failure must not map to ErrNoResults")
	}
}

func TestGeocodeRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, server.Client())
	_, err := provider.Geocode(context.Background(), "Lisbon")
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestGeocodeRejectsInvalidCoordinates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"display_name":"Bad","lat":"not-a-number","lon":"0"}]`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, server.Client())
	_, err := provider.Geocode(context.Background(), "Bad")
	if err == nil {
		t.Fatal("expected error for invalid coordinates")
	}
}
