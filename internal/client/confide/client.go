// Package confide is the HTTP client for the confessions API.
package confide

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
)

const defaultTimeout = 10 * time.Second

// Client calls the confessions API. Calls are single attempts; the server's
// error codes tell the caller whether retrying makes sense.
type Client struct {
	baseURL    string
	actorID    string
	httpClient *http.Client
}

// New creates a client for the given base URL acting as the given anonymous
// actor.
func New(baseURL, actorID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		actorID:    actorID,
		httpClient: httpClient,
	}
}

// Confession is one feed row as returned by the API.
type Confession struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Lat       *float64  `json:"lat"`
	Lng       *float64  `json:"lng"`
}

// PostRequest carries one submission.
type PostRequest struct {
	Text       string   `json:"text"`
	PlaceLabel string   `json:"place_label,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

// Post submits a confession.
func (c *Client) Post(ctx context.Context, post PostRequest) (Confession, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return Confession{}, fmt.Errorf("marshal confession: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/confessions", bytes.NewReader(body))
	if err != nil {
		return Confession{}, fmt.Errorf("build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Anon-Actor", c.actorID)

	var created Confession
	if err := c.do(req, http.StatusCreated, &created); err != nil {
		return Confession{}, err
	}
	return created, nil
}

// FeedQuery selects one feed page.
type FeedQuery struct {
	Mode         string
	Limit        int
	Cursor       string
	Lat          *float64
	Lng          *float64
	RadiusMeters float64
}

// FeedPage is one page of feed rows.
type FeedPage struct {
	Rows       []Confession `json:"rows"`
	NextCursor *string      `json:"next_cursor"`
	HasMore    bool         `json:"has_more"`
}

// Feed fetches one feed page.
func (c *Client) Feed(ctx context.Context, query FeedQuery) (FeedPage, error) {
	params := url.Values{}
	if query.Mode != "" {
		params.Set("mode", query.Mode)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Cursor != "" {
		params.Set("cursor", query.Cursor)
	}
	if query.Lat != nil {
		params.Set("lat", strconv.FormatFloat(*query.Lat, 'f', -1, 64))
	}
	if query.Lng != nil {
		params.Set("lng", strconv.FormatFloat(*query.Lng, 'f', -1, 64))
	}
	if query.RadiusMeters > 0 {
		params.Set("radius_m", strconv.FormatFloat(query.RadiusMeters, 'f', -1, 64))
	}

	endpoint := c.baseURL + "/v1/feed"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FeedPage{}, fmt.Errorf("build feed request: %w", err)
	}

	var page FeedPage
	if err := c.do(req, http.StatusOK, &page); err != nil {
		return FeedPage{}, err
	}
	return page, nil
}

// Place is a resolved place query.
type Place struct {
	OK     bool     `json:"ok"`
	Name   string   `json:"name"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
	Source string   `json:"source"`
	Reason string   `json:"reason"`
}

// ResolvePlace resolves a free-text place query to coordinates.
func (c *Client) ResolvePlace(ctx context.Context, query string) (Place, error) {
	endpoint := c.baseURL + "/v1/places/resolve?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Place{}, fmt.Errorf("build resolve request: %w", err)
	}

	var place Place
	if err := c.do(req, http.StatusOK, &place); err != nil {
		return Place{}, err
	}
	return place, nil
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	req.Header.Set("Accept", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode != wantStatus {
		return decodeError(res.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a tagged error payload back into a domain error so
// callers can branch on codes the same way server code does.
func decodeError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Code == "" {
		return apperrors.New(apperrors.CodeUnknown, fmt.Sprintf("unexpected status %d", status))
	}
	return apperrors.New(apperrors.Code(payload.Error.Code), payload.Error.Message)
}
