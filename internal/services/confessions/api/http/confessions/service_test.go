package confessions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
	"github.com/louisbranch/confide.space/internal/platform/pagination"
	"github.com/louisbranch/confide.space/internal/platform/telemetry"
	"github.com/louisbranch/confide.space/internal/services/confessions/domain"
	"github.com/louisbranch/confide.space/internal/services/confessions/storage"
)

type fakeStore struct {
	created    []storage.NewConfession
	createErr  error
	feedPage   storage.FeedPage
	feedErr    error
	lastQuery  storage.FeedQuery
	feedCalled bool
}

func (f *fakeStore) CreateConfession(_ context.Context, c storage.NewConfession) (domain.Confession, error) {
	if f.createErr != nil {
		return domain.Confession{}, f.createErr
	}
	f.created = append(f.created, c)
	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	return domain.Confession{
		ID:        c.ID,
		Text:      c.Text,
		ActorID:   c.ActorID,
		Lat:       c.Lat,
		Lng:       c.Lng,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.TTL),
	}, nil
}

func (f *fakeStore) ListFeed(_ context.Context, q storage.FeedQuery) (storage.FeedPage, error) {
	f.feedCalled = true
	f.lastQuery = q
	if f.feedErr != nil {
		return storage.FeedPage{}, f.feedErr
	}
	return f.feedPage, nil
}

func (f *fakeStore) LatestActorPost(context.Context, string) (time.Time, error) {
	return time.Time{}, storage.ErrNotFound
}

func (f *fakeStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestMux(store storage.ConfessionStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewService(store, telemetry.NewEmitter(nil)).Register(mux)
	return mux
}

func postConfession(t *testing.T, mux *http.ServeMux, actor, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/confessions", strings.NewReader(body))
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error.Code
}

func TestHandleCreateAccepted(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	mux := newTestMux(store)

	rec := postConfession(t, mux, "actor-1", `{"text":"  i still sleep with the hallway light on  ","lat":40.7,"lng":-74.0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp confessionPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected generated id")
	}
	if resp.Text != "i still sleep with the hallway light on" {
		t.Fatalf("text = %q, want trimmed", resp.Text)
	}
	if resp.Lat == nil || resp.Lng == nil {
		t.Fatal("expected coordinates in response")
	}
	if len(store.created) != 1 || store.created[0].ActorID != "actor-1" {
		t.Fatalf("stored = %+v", store.created)
	}
}

func TestHandleCreateRequiresActor(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := postConfession(t, mux, "", `{"text":"hello there"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, rec); code != "ACTOR_REQUIRED" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleCreateRejectsBlockedContent(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := postConfession(t, mux, "actor-1", `{"text":"find me at example.com tonight"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if code := errorCode(t, rec); code != "CONTENT_BLOCKED" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleCreateRejectsUnpairedCoordinates(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := postConfession(t, mux, "actor-1", `{"text":"hello there","lat":40.7}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, rec); code != "COORDINATES_INCOMPLETE" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleCreateRateLimited(t *testing.T) {
	t.Parallel()

	store := &fakeStore{createErr: apperrors.WithMetadata(apperrors.CodeRateLimit, "cooldown active", map[string]string{"WaitSeconds": "12"})}
	mux := newTestMux(store)
	rec := postConfession(t, mux, "actor-1", `{"text":"hello there"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if code := errorCode(t, rec); code != "RATE_LIMIT" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleCreateMalformedBody(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := postConfession(t, mux, "actor-1", `{"text": `)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, rec); code != "INVALID_REQUEST" {
		t.Fatalf("error code = %q", code)
	}
}

func feedGet(t *testing.T, mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleFeedDefaultsToWorld(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	mux := newTestMux(store)

	rec := feedGet(t, mux, "/v1/feed")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastQuery.Mode != storage.FeedModeWorld {
		t.Fatalf("mode = %q, want world", store.lastQuery.Mode)
	}
	if store.lastQuery.PageSize != pagination.DefaultPageSize.Default {
		t.Fatalf("page size = %d, want default", store.lastQuery.PageSize)
	}
}

func TestHandleFeedRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := feedGet(t, mux, "/v1/feed?mode=galaxy")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_FEED_MODE" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleFeedNearRequiresCoordinates(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := feedGet(t, mux, "/v1/feed?mode=near&lat=40.7")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "NEAR_REQUIRES_COORDINATES" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleFeedNearClampsRadius(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	mux := newTestMux(store)

	rec := feedGet(t, mux, "/v1/feed?mode=near&lat=40.7&lng=-74.0&radius_m=999999999")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastQuery.RadiusMeters != pagination.DefaultRadius.Max {
		t.Fatalf("radius = %v, want clamped to %v", store.lastQuery.RadiusMeters, pagination.DefaultRadius.Max)
	}
}

func TestHandleFeedCursorRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	full := make([]domain.Confession, 0, 2)
	for _, id := range []string{"bbb", "aaa"} {
		full = append(full, domain.Confession{
			ID:        id,
			Text:      "something quiet",
			CreatedAt: now,
			ExpiresAt: now.Add(domain.TTL),
		})
	}
	store := &fakeStore{feedPage: storage.FeedPage{Confessions: full, HasMore: true}}
	mux := newTestMux(store)

	rec := feedGet(t, mux, "/v1/feed?limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp feedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.HasMore || resp.NextCursor == nil {
		t.Fatalf("response = %+v, want cursor", resp)
	}

	rec = feedGet(t, mux, "/v1/feed?limit=10&cursor="+*resp.NextCursor)
	if rec.Code != http.StatusOK {
		t.Fatalf("second page status = %d: %s", rec.Code, rec.Body.String())
	}
	if store.lastQuery.AfterID != "aaa" {
		t.Fatalf("after id = %q, want last row id", store.lastQuery.AfterID)
	}
	if store.lastQuery.AfterCreatedAt.UnixMilli() != now.UnixMilli() {
		t.Fatalf("after created_at = %v", store.lastQuery.AfterCreatedAt)
	}
}

func TestHandleFeedRejectsCursorFromOtherMode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{feedPage: storage.FeedPage{
		Confessions: []domain.Confession{{ID: "aaa", Text: "x", CreatedAt: now, ExpiresAt: now.Add(domain.TTL)}},
		HasMore:     true,
	}}
	mux := newTestMux(store)

	rec := feedGet(t, mux, "/v1/feed")
	var resp feedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NextCursor == nil {
		t.Fatal("expected cursor")
	}

	rec = feedGet(t, mux, "/v1/feed?mode=near&lat=40.7&lng=-74.0&cursor="+*resp.NextCursor)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if code := errorCode(t, rec); code != "INVALID_CURSOR" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleFeedRejectsMalformedCursor(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&fakeStore{})
	rec := feedGet(t, mux, "/v1/feed?cursor=not-a-cursor")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_CURSOR" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleFeedNoCursorOnLastPage(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{feedPage: storage.FeedPage{
		Confessions: []domain.Confession{{ID: "aaa", Text: "x", CreatedAt: now, ExpiresAt: now.Add(domain.TTL)}},
		HasMore:     false,
	}}
	mux := newTestMux(store)

	rec := feedGet(t, mux, "/v1/feed")
	var resp feedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.HasMore || resp.NextCursor != nil {
		t.Fatalf("response = %+v, want terminal page", resp)
	}
}
