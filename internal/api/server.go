// Package api exposes the feed, stories and notifications over HTTP and pushes
// store changes to connected views over a websocket.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"solofeed/internal/engine"
	"solofeed/internal/feed"
	"solofeed/internal/identity"
	"solofeed/internal/logging"
	"solofeed/internal/model"
	"solofeed/internal/stories"
)

// EventLog is the engagement journal read by the hourly activity endpoint.
type EventLog interface {
	LoadEventsRange(ctx context.Context, start, end time.Time, typ string) ([]model.EngagementEvent, error)
}

type Deps struct {
	Feed     *feed.Store
	Stories  *stories.Store
	Engine   *engine.Engine
	Registry *identity.Registry
	Events   EventLog
	Clock    clock.Clock
}

type Server struct {
	feed     *feed.Store
	stories  *stories.Store
	engine   *engine.Engine
	registry *identity.Registry
	events   EventLog
	clock    clock.Clock
	hub      *Hub
}

// NewServer wires the handlers and subscribes the websocket hub to feed changes.
func NewServer(d Deps) *Server {
	clk := d.Clock
	if clk == nil {
		clk = clock.New()
	}
	s := &Server{
		feed:     d.Feed,
		stories:  d.Stories,
		engine:   d.Engine,
		registry: d.Registry,
		events:   d.Events,
		clock:    clk,
		hub:      NewHub(),
	}
	d.Feed.Subscribe(s.hub.Broadcast)
	return s
}

// Handler returns the routed API wrapped with CORS for allowedOrigins.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/posts", s.listPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/posts", s.createPost).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}", s.getPost).Methods(http.MethodGet)
	r.HandleFunc("/api/posts/{id}/like", s.likePost).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/like", s.unlikePost).Methods(http.MethodDelete)
	r.HandleFunc("/api/posts/{id}/save", s.savePost).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/save", s.unsavePost).Methods(http.MethodDelete)
	r.HandleFunc("/api/posts/{id}/likes", s.postLikers).Methods(http.MethodGet)
	r.HandleFunc("/api/posts/{id}/comments", s.addComment).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/comments/{cid}/like", s.likeComment).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/comments/{cid}/like", s.unlikeComment).Methods(http.MethodDelete)
	r.HandleFunc("/api/posts/{id}/comments/{cid}/thread", s.openThread).Methods(http.MethodPost)
	r.HandleFunc("/api/refresh", s.refresh).Methods(http.MethodPost)
	r.HandleFunc("/api/profile", s.getProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", s.updateProfile).Methods(http.MethodPut)
	r.HandleFunc("/api/notifications", s.listNotifications).Methods(http.MethodGet)
	r.HandleFunc("/api/notifications/seen", s.markSeen).Methods(http.MethodPost)
	r.HandleFunc("/api/notifications/{id}", s.clearNotification).Methods(http.MethodDelete)
	r.HandleFunc("/api/stories", s.listStories).Methods(http.MethodGet)
	r.HandleFunc("/api/stories", s.addStory).Methods(http.MethodPost)
	r.HandleFunc("/api/stories/{actor}/{story}/seen", s.markStorySeen).Methods(http.MethodPost)
	r.HandleFunc("/api/actors", s.listActors).Methods(http.MethodGet)
	r.HandleFunc("/api/activity/hourly", s.hourlyActivity).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)
	r.Use(logRequests)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// Close drops every websocket connection.
func (s *Server) Close() { s.hub.Close() }

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("api_encode", map[string]any{"error": err.Error()})
	}
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, model.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		logging.Error("api_error", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debug("http_request", map[string]any{
			"method": r.Method, "path": r.URL.Path, "status": rec.status,
			"ms": time.Since(start).Milliseconds(),
		})
	})
}
