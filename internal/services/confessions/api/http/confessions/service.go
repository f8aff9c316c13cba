// Package confessions exposes the admission and feed operations over
// HTTP/JSON.
package confessions

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
	"github.com/louisbranch/confide.space/internal/platform/id"
	"github.com/louisbranch/confide.space/internal/platform/pagination"
	"github.com/louisbranch/confide.space/internal/platform/telemetry"
	"github.com/louisbranch/confide.space/internal/services/confessions/domain"
	"github.com/louisbranch/confide.space/internal/services/confessions/storage"
)

// ActorHeader carries the opaque anonymous actor identifier on submissions.
const ActorHeader = "X-Anon-Actor"

// Service handles confession admission and feed requests.
type Service struct {
	store   storage.ConfessionStore
	emitter *telemetry.Emitter
	tracer  trace.Tracer
	newID   func() (string, error)
}

// NewService creates a confession API service backed by the given store.
func NewService(store storage.ConfessionStore, emitter *telemetry.Emitter) *Service {
	return &Service{
		store:   store,
		emitter: emitter,
		tracer:  otel.Tracer("confide.space/api/confessions"),
		newID:   id.NewID,
	}
}

// Register mounts the service routes on mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/confessions", s.handleCreate)
	mux.HandleFunc("GET /v1/feed", s.handleFeed)
}

type confessionPayload struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	CreatedAt string   `json:"created_at"`
	ExpiresAt string   `json:"expires_at"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

func toPayload(c domain.Confession) confessionPayload {
	return confessionPayload{
		ID:        c.ID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		ExpiresAt: c.ExpiresAt.UTC().Format(time.RFC3339Nano),
		Lat:       c.Lat,
		Lng:       c.Lng,
	}
}

type createRequest struct {
	Text       string   `json:"text"`
	PlaceLabel string   `json:"place_label"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "confessions.create")
	defer span.End()
	locale := r.Header.Get("Accept-Language")

	actorID := r.Header.Get(ActorHeader)
	if actorID == "" {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeActorRequired, "missing "+ActorHeader+" header"), locale)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeInvalidRequest, "decode request body", err), locale)
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeCoordinatesIncomplete, "latitude and longitude must be paired"), locale)
		return
	}

	text, err := domain.Sanitize(req.Text)
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}

	confessionID, err := s.newID()
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}

	created, err := s.store.CreateConfession(ctx, storage.NewConfession{
		ID:      confessionID,
		Text:    text,
		ActorID: actorID,
		Lat:     req.Lat,
		Lng:     req.Lng,
	})
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}
	span.SetAttributes(attribute.Bool("confession.geotagged", created.HasCoordinates()))

	s.emitter.Emit(ctx, telemetry.Event{
		Name: "confession_posted",
		Attrs: map[string]string{
			"geotagged": strconv.FormatBool(created.HasCoordinates()),
		},
	})

	// The place label is display-only; it is never stored or queried.
	writeJSON(w, http.StatusCreated, toPayload(created))
}

type feedResponse struct {
	Rows       []confessionPayload `json:"rows"`
	NextCursor *string             `json:"next_cursor"`
	HasMore    bool                `json:"has_more"`
}

func (s *Service) handleFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "confessions.feed")
	defer span.End()
	locale := r.Header.Get("Accept-Language")
	params := r.URL.Query()

	mode := storage.FeedMode(params.Get("mode"))
	if mode == "" {
		mode = storage.FeedModeWorld
	}
	if mode != storage.FeedModeWorld && mode != storage.FeedModeNear {
		apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeInvalidFeedMode, "unknown feed mode "+string(mode)), locale)
		return
	}
	span.SetAttributes(attribute.String("feed.mode", string(mode)))

	limit, _ := strconv.Atoi(params.Get("limit"))
	pageSize := pagination.ClampPageSize(limit, pagination.DefaultPageSize)

	query := storage.FeedQuery{Mode: mode, PageSize: pageSize}

	if mode == storage.FeedModeNear {
		lat, latErr := strconv.ParseFloat(params.Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(params.Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			apperrors.WriteHTTP(w, apperrors.New(apperrors.CodeNearRequiresCoordinates, "near mode requires lat and lng"), locale)
			return
		}
		radius, _ := strconv.ParseFloat(params.Get("radius_m"), 64)
		query.Lat = lat
		query.Lng = lng
		query.RadiusMeters = pagination.ClampRadius(radius, pagination.DefaultRadius)
	}

	if token := params.Get("cursor"); token != "" {
		cursor, err := pagination.Decode(token)
		if err != nil {
			apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeInvalidCursor, "decode cursor", err), locale)
			return
		}
		if err := pagination.ValidateModeHash(cursor, string(mode)); err != nil {
			apperrors.WriteHTTP(w, apperrors.Wrap(apperrors.CodeInvalidCursor, "cursor mode mismatch", err), locale)
			return
		}
		query.AfterCreatedAt = time.UnixMilli(cursor.CreatedAtMillis).UTC()
		query.AfterID = cursor.ID
	}

	page, err := s.store.ListFeed(ctx, query)
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}

	resp := feedResponse{
		Rows:    make([]confessionPayload, 0, len(page.Confessions)),
		HasMore: page.HasMore,
	}
	for _, c := range page.Confessions {
		resp.Rows = append(resp.Rows, toPayload(c))
	}
	if page.HasMore && len(page.Confessions) > 0 {
		last := page.Confessions[len(page.Confessions)-1]
		token, err := pagination.Encode(pagination.NewCursor(last.CreatedAt.UnixMilli(), last.ID, string(mode)))
		if err != nil {
			apperrors.WriteHTTP(w, err, locale)
			return
		}
		resp.NextCursor = &token
	}

	s.emitter.Emit(ctx, telemetry.Event{
		Name: "feed_page",
		Attrs: map[string]string{
			"mode": string(mode),
			"rows": strconv.Itoa(len(resp.Rows)),
		},
	})

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}
