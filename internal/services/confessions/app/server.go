// Package server hosts the confessions API service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/confide.space/internal/platform/telemetry"
	confessionsapi "github.com/louisbranch/confide.space/internal/services/confessions/api/http/confessions"
	confsqlite "github.com/louisbranch/confide.space/internal/services/confessions/storage/sqlite"
	placesapi "github.com/louisbranch/confide.space/internal/services/places/api/http/places"
	"github.com/louisbranch/confide.space/internal/services/places/geocoder"
	"github.com/louisbranch/confide.space/internal/services/places/resolver"
	placesqlite "github.com/louisbranch/confide.space/internal/services/places/storage/sqlite"
)

const defaultGeocoderURL = "https://nominatim.openstreetmap.org/search"

// Server hosts the confessions HTTP API: admission, feed, and place
// resolution.
type Server struct {
	listener    net.Listener
	httpServer  *http.Server
	confessions *confsqlite.Store
	places      *placesqlite.Store
}

// New creates a configured server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured server listening on the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	confessions, err := openConfessionStore()
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	places, err := openPlaceStore()
	if err != nil {
		_ = listener.Close()
		_ = confessions.Close()
		return nil, err
	}

	mux := http.NewServeMux()
	emitter := telemetry.NewEmitter(telemetry.LogSink{})
	confessionsapi.NewService(confessions, emitter).Register(mux)

	provider := geocoder.NewHTTPProvider(geocoderURL(), nil)
	placesapi.NewService(resolver.New(places, provider)).Register(mux)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		listener:    listener,
		httpServer:  &http.Server{Handler: mux},
		confessions: confessions,
		places:      places,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a confessions server until the context ends.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// RunWithAddr creates and serves a confessions server on the given address.
func RunWithAddr(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStores()

	log.Printf("confessions server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}

// Close releases the listener and stores for a server that was never served.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	err := s.listener.Close()
	s.closeStores()
	return err
}

func (s *Server) closeStores() {
	if s.confessions != nil {
		if err := s.confessions.Close(); err != nil {
			log.Printf("close confession store: %v", err)
		}
		s.confessions = nil
	}
	if s.places != nil {
		if err := s.places.Close(); err != nil {
			log.Printf("close place store: %v", err)
		}
		s.places = nil
	}
}

func openConfessionStore() (*confsqlite.Store, error) {
	path, err := storagePath("CONFIDE_SPACE_CONFESSIONS_DB_PATH")
	if err != nil {
		return nil, err
	}
	store, err := confsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open confession sqlite store: %w", err)
	}
	return store, nil
}

func openPlaceStore() (*placesqlite.Store, error) {
	path, err := storagePath("CONFIDE_SPACE_PLACES_DB_PATH")
	if err != nil {
		return nil, err
	}
	store, err := placesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open place sqlite store: %w", err)
	}
	return store, nil
}

// storagePath reads a database location from the environment. An unset path
// is a startup error rather than a silent default.
func storagePath(envVar string) (string, error) {
	path := strings.TrimSpace(os.Getenv(envVar))
	if path == "" {
		return "", fmt.Errorf("%s is required", envVar)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create storage dir: %w", err)
		}
	}
	return path, nil
}

func geocoderURL() string {
	url := strings.TrimSpace(os.Getenv("CONFIDE_SPACE_GEOCODER_URL"))
	if url == "" {
		return defaultGeocoderURL
	}
	return url
}
