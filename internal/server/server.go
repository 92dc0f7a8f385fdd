// Package server exposes the chat engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stratos/todochat/internal/gateway"
	"github.com/stratos/todochat/internal/orchestrator"
	"github.com/stratos/todochat/internal/types"
	"github.com/stratos/todochat/internal/validator"
	"go.uber.org/zap"
)

// reauthMessage is the fixed reply returned when the gateway rejects the
// caller's credentials mid-run.
const reauthMessage = "Please login again to use tools."

// Engine runs one chat turn. *orchestrator.Orchestrator satisfies it.
type Engine interface {
	Run(ctx context.Context, req orchestrator.Request) (orchestrator.Outcome, error)
}

type Server struct {
	engine     Engine
	validator  *validator.InputValidator
	logger     *zap.Logger
	hasAPIKey  bool
	runTimeout time.Duration
}

func New(engine Engine, hasAPIKey bool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:     engine,
		validator:  validator.NewInputValidator(),
		logger:     logger,
		hasAPIKey:  hasAPIKey,
		runTimeout: 120 * time.Second,
	}
}

// WithRunTimeout overrides the per-request deadline for one orchestration
// run. Zero disables the deadline.
func (s *Server) WithRunTimeout(d time.Duration) *Server {
	s.runTimeout = d
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.logging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/chat", s.handleChat)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.hasAPIKey {
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "GEMINI_API_KEY is not configured"})
		return
	}

	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := s.validator.Validate(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	token := bearerToken(r, req.Token)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, types.ErrorResponse{Error: "missing auth token"})
		return
	}

	ctx := r.Context()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	outcome, err := s.engine.Run(ctx, orchestrator.Request{
		Messages:    req.Messages,
		Token:       token,
		ToolContext: req.ToolContext,
		ToolHistory: req.ToolHistory,
	})
	if err != nil {
		var authErr *gateway.AuthError
		if errors.As(err, &authErr) {
			writeJSON(w, http.StatusUnauthorized, types.ReauthResponse{
				Message:    reauthMessage,
				ToolCall:   authErr.Call,
				ToolResult: authErr.Raw,
			})
			return
		}
		s.logger.Error("chat run failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, types.ChatResponse{
		Reply:     outcome.Reply,
		ToolSteps: outcome.ToolSteps,
	})
}

// bearerToken prefers the Authorization header, falling back to the token
// carried in the request body.
func bearerToken(r *http.Request, bodyToken string) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok && after != "" {
		return after
	}
	return bodyToken
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
