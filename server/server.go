// Package server exposes the AI transformation endpoint and the posts API
// over plain net/http.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"blog_ai_editor/generator"
	"blog_ai_editor/posts"
	"blog_ai_editor/transform"
)

const maxBodyBytes = 1 << 20

// Messages returned in {error}; the editor shows them to the user as is.
const (
	msgBadRequest       = "Petició no vàlida"
	msgRateLimited      = "Massa peticions a l'assistent d'IA. Espera uns segons i torna-ho a provar"
	msgModelFailed      = "L'assistent d'IA no ha pogut generar una resposta"
	msgNotFound         = "No s'ha trobat l'article"
	msgInternal         = "Error intern del servidor"
	msgMethodNotAllowed = "Mètode HTTP no permès"
)

// Transformer answers one transformation request. *generator.Agent
// implements it.
type Transformer interface {
	Transform(ctx context.Context, req transform.Request) (any, error)
}

type Options struct {
	// RateLimit is the sustained number of transformation requests per
	// second; zero disables limiting.
	RateLimit float64
	Burst     int
	// Timeout bounds one model call. Defaults to 60s.
	Timeout time.Duration
	Logger  *zap.Logger
}

type Server struct {
	agent   Transformer
	posts   posts.Repository
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

func New(agent Transformer, repo posts.Repository, opts Options) (*Server, error) {
	if agent == nil {
		return nil, errors.New("transformer required")
	}
	if repo == nil {
		return nil, errors.New("posts repository required")
	}
	s := &Server{agent: agent, posts: repo, timeout: opts.Timeout, logger: opts.Logger}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("server")
	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ai/transform", s.handleTransform)
	mux.HandleFunc("/api/posts", s.handlePosts)
	mux.HandleFunc("/api/posts/", s.handlePostByID)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type transformResp struct {
	Result any `json:"result"`
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}
	var req transform.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msgBadRequest, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	result, err := s.agent.Transform(ctx, req)
	switch {
	case errors.Is(err, generator.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msgBadRequest, err))
	case err != nil:
		s.logger.Warn("transformation failed", zap.String("action", string(req.Action)), zap.Error(err))
		writeError(w, http.StatusBadGateway, msgModelFailed)
	default:
		writeJSON(w, http.StatusOK, transformResp{Result: result})
	}
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.posts.List(r.Context())
		if err != nil {
			s.writePostError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var p posts.Post
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msgBadRequest, err))
			return
		}
		created, err := s.posts.Create(r.Context(), p)
		if err != nil {
			s.writePostError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

// handlePostByID serves /api/posts/{id} and /api/posts/{id}/reactions/{kind}.
func (s *Server) handlePostByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/posts/"), "/"), "/")
	if parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		s.handlePost(w, r, id)
	case len(parts) == 3 && parts[1] == "reactions":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
			return
		}
		kind, err := posts.ParseReactionKind(parts[2])
		if err != nil {
			s.writePostError(w, err)
			return
		}
		p, err := posts.React(r.Context(), s.posts, id, kind)
		if err != nil {
			s.writePostError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.posts.Get(r.Context(), id)
		if err != nil {
			s.writePostError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var p posts.Post
		if err := decodeBody(w, r, &p); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msgBadRequest, err))
			return
		}
		p.ID = id
		updated, err := s.posts.Update(r.Context(), p)
		if err != nil {
			s.writePostError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
}

// --- Helpers ---

func (s *Server) writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, posts.ErrInvalidPost), errors.Is(err, posts.ErrUnknownReaction):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", msgBadRequest, err))
	default:
		s.logger.Error("posts repository", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
