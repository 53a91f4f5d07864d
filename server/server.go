// Package server exposes interchange queries over HTTP
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	interchanges "github.com/juliuste/db-interchanges"
)

const (
	// Optional header carrying facility status API token of the caller
	FACILITY_TOKEN_HEADER = "X-Facility-Token"
)

// InterchangeComputer answers interchange queries
type InterchangeComputer interface {
	ComputeInterchange(ctx context.Context, from, to interchanges.StationInput, options ...interchanges.QueryOption) (*interchanges.Result, error)
}

// Server is HTTP API over InterchangeComputer
type Server struct {
	computer    InterchangeComputer
	corsOrigins []string
	timeout     time.Duration
	logger      zerolog.Logger
}

// New returns server. By default any origin is allowed and requests time out after two minutes.
func New(computer InterchangeComputer, options ...func(*Server)) *Server {
	srv := &Server{
		computer:    computer,
		corsOrigins: []string{"*"},
		timeout:     2 * time.Minute,
		logger:      zerolog.Nop(),
	}
	for _, option := range options {
		option(srv)
	}
	return srv
}

func WithCORSOrigins(origins []string) func(*Server) {
	return func(srv *Server) {
		srv.corsOrigins = origins
	}
}

func WithTimeout(timeout time.Duration) func(*Server) {
	return func(srv *Server) {
		srv.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) func(*Server) {
	return func(srv *Server) {
		srv.logger = logger
	}
}

// Handler returns router with all routes
func (srv *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: srv.corsOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", FACILITY_TOKEN_HEADER},
	}))
	r.Use(srv.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})
	r.Get("/interchange", srv.getInterchange)
	r.Get("/interchange/geometry", srv.getInterchangeGeometry)
	return r
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusOf maps error kind to HTTP status
func statusOf(err error) int {
	switch {
	case interchanges.IsInvalidInput(err):
		return http.StatusBadRequest
	case interchanges.IsUpstreamFetchFailed(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (srv *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	response := ErrorResponse{Error: err.Error()}
	if kind, ok := interchanges.KindOf(err); ok {
		response.Kind = kind.String()
	}
	if status >= http.StatusInternalServerError {
		srv.logger.Error().Err(err).Int("status", status).Msg("Interchange query failed")
	}
	writeJSON(w, status, response)
}

func (srv *Server) compute(r *http.Request) (*interchanges.Result, error) {
	ctx, cancel := context.WithTimeout(r.Context(), srv.timeout)
	defer cancel()
	query := r.URL.Query()
	from := interchanges.StationInput{StationID: query.Get("fromStation"), Platform: query.Get("fromPlatform")}
	to := interchanges.StationInput{StationID: query.Get("toStation"), Platform: query.Get("toPlatform")}
	options := []interchanges.QueryOption{}
	if token := r.Header.Get(FACILITY_TOKEN_HEADER); token != "" {
		options = append(options, interchanges.WithFacilityAuthToken(token))
	}
	return srv.computer.ComputeInterchange(ctx, from, to, options...)
}

// getInterchange handles GET /interchange?fromStation=&fromPlatform=&toStation=&toPlatform=
// Responds with {"barrierFree": ..., "elevators": [...]} or null when platforms can't be resolved
func (srv *Server) getInterchange(w http.ResponseWriter, r *http.Request) {
	result, err := srv.compute(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	if result == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// getInterchangeGeometry handles GET /interchange/geometry with same parameters.
// Responds with GeoJSON feature collection of the chosen path
func (srv *Server) getInterchangeGeometry(w http.ResponseWriter, r *http.Request) {
	result, err := srv.compute(r)
	if err != nil {
		srv.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(interchanges.ResultFeatureCollection(result))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (srv *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		srv.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(st)).
			Msg("Request served")
	})
}
