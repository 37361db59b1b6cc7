package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

// Service is the orchestrator surface the transport drives.
type Service interface {
	StartSession(ctx context.Context, sessionID string) (string, error)
	HandleMessage(ctx context.Context, sessionID, text string, sink contractx.StreamSink) (contractx.TurnResult, error)
	EndSession(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) (statex.History, error)
}

type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" split_words:"true"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

type Server struct {
	svc Service
	cfg Config
}

// NewHandler wires the chat routes. metrics may be nil.
func NewHandler(svc Service, cfg Config, metrics http.Handler) http.Handler {
	s := &Server{svc: svc, cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.startSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.endSession)
			r.Get("/history", s.history)
			r.Post("/messages", s.postMessage)
			r.Get("/ws", s.chatSocket)
		})
	})
	return r
}

type startSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
	Welcome   string `json:"welcome"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type historyResponse struct {
	SessionID string         `json:"session_id"`
	History   statex.History `json:"history"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var body startSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, fmt.Errorf("%w: invalid request body", contractx.ErrValidation))
			return
		}
	}
	sessionID := strings.TrimSpace(body.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	welcome, err := s.svc.StartSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{SessionID: sessionID, Welcome: welcome})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.EndSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h, err := s.svc.History(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, History: h})
}

// postMessage runs a turn and streams it as server-sent events: one "token"
// event per fragment and a final "done" event carrying the turn result.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", contractx.ErrValidation))
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeError(w, fmt.Errorf("%w: message is empty", contractx.ErrValidation))
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		writeError(w, err)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	res, err := s.svc.HandleMessage(r.Context(), sessionID, body.Message, stream)
	switch {
	case errors.Is(err, contractx.ErrTurnCanceled):
		log.Info().Str("session_id", sessionID).Msg("sse client disconnected mid-turn")
		return
	case err != nil:
		log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
		_ = stream.event("error", errorResponse{Error: publicMessage(err)})
		return
	}
	_ = stream.event("done", res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: publicMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, contractx.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, contractx.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, contractx.ErrTurnCanceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
