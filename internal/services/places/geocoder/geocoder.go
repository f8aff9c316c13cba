// Package geocoder turns free-text place queries into coordinates via an
// external geocoding service.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoResults indicates the provider answered successfully but found no
// place matching the query. Callers treat this differently from transport
// failures.
var ErrNoResults = errors.New("geocoder: no results")

// Result is a single geocoded place.
type Result struct {
	Name string
	Lat  float64
	Lng  float64
}

// Provider resolves a place query to coordinates.
type Provider interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "confide.space/1.0"
)

// HTTPProvider queries a Nominatim-compatible search endpoint. Each call is
// a single attempt; retry policy belongs to the caller.
type HTTPProvider struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewHTTPProvider builds a provider for the given search endpoint base URL.
func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPProvider{
		baseURL:   baseURL,
		client:    client,
		userAgent: defaultUserAgent,
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Geocode looks up the query and returns the first match. It returns
// ErrNoResults when the provider finds nothing.
func (p *HTTPProvider) Geocode(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	endpoint := p.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	res, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocode request: unexpected status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read geocode response: %w", err)
	}

	var matches []searchResult
	if err := json.Unmarshal(body, &matches); err != nil {
		return Result{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(matches) == 0 {
		return Result{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(matches[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("decode geocode response: invalid latitude %q", matches[0].Lat)
	}
	lng, err := strconv.ParseFloat(matches[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("decode geocode response: invalid longitude %q", matches[0].Lon)
	}

	return Result{
		Name: matches[0].DisplayName,
		Lat:  lat,
		Lng:  lng,
	}, nil
}
