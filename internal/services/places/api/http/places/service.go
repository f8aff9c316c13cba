// Package places exposes place resolution over HTTP/JSON.
package places

import (
	"encoding/json"
	"log"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/confide.space/internal/platform/errors"
	"github.com/louisbranch/confide.space/internal/services/places/resolver"
)

// Service handles place resolution requests.
type Service struct {
	resolver *resolver.Resolver
	tracer   trace.Tracer
}

// NewService creates a places API service backed by the given resolver.
func NewService(r *resolver.Resolver) *Service {
	return &Service{
		resolver: r,
		tracer:   otel.Tracer("confide.space/api/places"),
	}
}

// Register mounts the service routes on mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/places/resolve", s.handleResolve)
}

type resolveResponse struct {
	OK     bool     `json:"ok"`
	Name   string   `json:"name,omitempty"`
	Lat    *float64 `json:"lat,omitempty"`
	Lng    *float64 `json:"lng,omitempty"`
	Source string   `json:"source,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

func (s *Service) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "places.resolve")
	defer span.End()
	locale := r.Header.Get("Accept-Language")

	res, err := s.resolver.Resolve(ctx, r.URL.Query().Get("q"))
	if err != nil {
		apperrors.WriteHTTP(w, err, locale)
		return
	}
	span.SetAttributes(
		attribute.Bool("place.resolved", res.OK),
		attribute.String("place.source", res.Source),
	)

	resp := resolveResponse{OK: res.OK}
	if res.OK {
		resp.Name = res.Name
		resp.Lat = &res.Lat
		resp.Lng = &res.Lng
		resp.Source = res.Source
	} else {
		resp.Reason = string(apperrors.CodeNotFound)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}
