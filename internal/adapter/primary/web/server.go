package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"sound-scheduler/internal/domain"
	"sound-scheduler/internal/usecase"
)

const (
	defaultEventLimit = 50
	wsWriteTimeout    = 5 * time.Second
	wsPingInterval    = 30 * time.Second
)

// Server is a primary adapter that exposes HTTP API + UI.
// It depends on the use case (primary port).
type Server struct {
	usecase  usecase.SchedulerUseCase
	server   *http.Server
	upgrader websocket.Upgrader

	closeOnce sync.Once
	done      chan struct{}
}

// NewServer creates the HTTP server bound to addr.
func NewServer(uc usecase.SchedulerUseCase, addr string) *Server {
	srv := &Server{
		usecase: uc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/", srv.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/status", srv.handleStatus)
		r.Post("/schedule", srv.handleStartSchedule)
		r.Delete("/schedule", srv.handleStopSchedule)
		r.Get("/events", srv.handleEvents)
		r.Get("/events/ws", srv.handleEventStream)
		r.Get("/settings", srv.handleGetSettings)
		r.Put("/settings", srv.handlePutSettings)
	})

	srv.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and closes event streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeStreams()
	return s.server.Shutdown(ctx)
}

func (s *Server) closeStreams() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newStatusView(s.usecase.Snapshot()))
}

func (s *Server) handleStartSchedule(w http.ResponseWriter, r *http.Request) {
	var req usecase.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Mark(errors.Wrap(err, "invalid JSON"), domain.ErrValidation))
		return
	}
	if err := s.usecase.StartScheduling(req); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatusView(s.usecase.Snapshot()))
}

func (s *Server) handleStopSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.usecase.StopScheduling(); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatusView(s.usecase.Snapshot()))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, errors.Mark(errors.Newf("limit must be a non-negative integer, got %q", raw), domain.ErrValidation))
			return
		}
		limit = n
	}
	respondJSON(w, http.StatusOK, s.usecase.Events().History(limit))
}

// handleEventStream sends recent history, then every new event, as JSON frames.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	bus := s.usecase.Events()
	sub := bus.Subscribe(64)
	defer bus.Unsubscribe(sub)

	// The read side only exists to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(v)
	}

	for _, ev := range bus.History(defaultEventLimit) {
		if err := write(ev); err != nil {
			return
		}
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := write(ev); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-gone:
			return
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, NewSettingsView(s.usecase.Snapshot().Settings))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Mark(errors.Wrap(err, "invalid JSON"), domain.ErrValidation))
		return
	}

	settings, err := req.apply(s.usecase.Snapshot().Settings)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.usecase.UpdateSettings(settings); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, NewSettingsView(s.usecase.Snapshot().Settings))
}

// statusCode maps the error taxonomy onto HTTP.
func statusCode(err error) int {
	switch domain.Kind(err) {
	case "validation", "parse", "range", "settings":
		return http.StatusBadRequest
	case "session":
		return http.StatusConflict
	case "playback":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorView struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Hint  string `json:"hint,omitempty"`
}

func respondError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	respondJSON(w, code, errorView{
		Error: err.Error(),
		Kind:  domain.Kind(err),
		Hint:  errors.FlattenHints(err),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("encode JSON")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
