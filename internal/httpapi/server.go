package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/mmakana/dabus/internal/config"
	"github.com/mmakana/dabus/internal/observability"
	"github.com/mmakana/dabus/internal/protocol"
	"github.com/mmakana/dabus/internal/session"
	"github.com/mmakana/dabus/internal/skill"
	"github.com/mmakana/dabus/internal/turnlog"
)

// Dispatcher routes one validated turn to completion.
type Dispatcher interface {
	HandleTurn(ctx context.Context, turn protocol.Turn) (skill.Outcome, error)
}

type Server struct {
	cfg        config.Config
	sessions   *session.Manager
	dispatcher Dispatcher
	renderer   skill.Renderer
	store      turnlog.Store
	metrics    *observability.Metrics
	hub        *Hub
	upgrader   websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, dispatcher Dispatcher, store turnlog.Store, metrics *observability.Metrics, hub *Hub) *Server {
	return &Server{
		cfg:        cfg,
		sessions:   sessions,
		dispatcher: dispatcher,
		renderer:   skill.Renderer{SkillName: cfg.SkillName},
		store:      store,
		metrics:    metrics,
		hub:        hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may watch the turn tap unless
				// explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/skill", s.handleSkillRequest)
	r.Get("/v1/turns", s.handleRecentTurns)
	r.Get("/v1/turns/ws", s.handleTurnEventsWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.ActiveCount(),
	}
	if s.hub != nil {
		body["event_subscribers"] = s.hub.subscriberCount()
	}
	respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (s *Server) handleSkillRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	turn, err := protocol.ParseTurn(raw)
	if err != nil {
		var unknown *protocol.UnknownIntentError
		if errors.As(err, &unknown) {
			// Handled-but-unsupported: the turn was well-formed, the intent
			// is outside the skill's model.
			respondError(w, http.StatusBadRequest, "unknown_intent", unknown.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_envelope", err.Error())
		return
	}

	outcome, err := s.dispatcher.HandleTurn(r.Context(), turn)
	if err != nil {
		var unknown *protocol.UnknownIntentError
		if errors.As(err, &unknown) {
			respondError(w, http.StatusBadRequest, "unknown_intent", unknown.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "dispatch_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, s.renderer.Render(outcome))
}

// maxTurnsLimit caps the page size a caller may request; the store
// pre-allocates the result slice from it.
const maxTurnsLimit = 500

func (s *Server) handleRecentTurns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		if n > maxTurnsLimit {
			n = maxTurnsLimit
		}
		limit = n
	}

	records, err := s.store.RecentTurns(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "turn_log_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"turns": records})
}

func (s *Server) handleTurnEventsWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "event hub not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := s.hub.Subscribe(64)
	defer cancel()

	// Reader exists only to notice the peer going away.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readerDone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
