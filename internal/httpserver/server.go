// Package httpserver exposes post generation and the offline digest over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"thread-digest/internal/digest"
	"thread-digest/internal/model"
	"thread-digest/internal/pipeline"
	"thread-digest/internal/source"
	"thread-digest/internal/storage"
)

// maxThreadBytes caps the body accepted by POST /summarize.
const maxThreadBytes = 8 << 20

// PostService generates posts from live threads.
type PostService interface {
	RandomPost(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// RecentStore lists previously generated posts.
type RecentStore interface {
	RecentPosts(ctx context.Context, n int) ([]storage.StoredPost, error)
}

// Server is the HTTP front end.
type Server struct {
	posts      PostService
	recent     RecentStore // nil when redis is disabled
	digest     digest.Options
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer wires the routes. recent may be nil.
func NewServer(addr string, posts PostService, recent RecentStore, opts digest.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		posts:  posts,
		recent: recent,
		digest: opts,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /generate-post", s.handleGeneratePost)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	mux.HandleFunc("GET /posts/recent", s.handleRecent)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     withLogging(logger, mux),
		ReadTimeout: 10 * time.Second,
		// generation waits on the LLM
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks until the server is shut down or fails.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGeneratePost(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	res, err := s.posts.RandomPost(r.Context(), req)
	if err != nil {
		s.logger.Error("generate post failed", "boards", req.Boards, "error", err)
		if errors.Is(err, source.ErrNoSubmissions) {
			writeError(w, http.StatusNotFound, "NoSubmissions", err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "GenerationFailed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func requestFromQuery(r *http.Request) (pipeline.Request, error) {
	q := r.URL.Query()
	req := pipeline.Request{
		Prompt: q.Get("prompt"),
		Model:  q.Get("model"),
	}
	for _, b := range strings.Split(q.Get("board"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			req.Boards = append(req.Boards, b)
		}
	}
	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return req, errors.New("top_n must be a positive integer")
		}
		req.TopN = n
	}
	if v := q.Get("temperature"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || f < 0 || f > 2 {
			return req, errors.New("temperature must be between 0 and 2")
		}
		req.Temperature = float32(f)
	}
	return req, nil
}

type summarizeResponse struct {
	Summary model.PostSummary `json:"post_summary"`
	Stats   digest.Stats      `json:"stats"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var th model.Thread
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxThreadBytes))
	if err := dec.Decode(&th); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "body must be a thread JSON document")
		return
	}
	opts := s.digest
	opts.Logger = s.logger
	if v := r.URL.Query().Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "top_n must be a positive integer")
			return
		}
		opts.TopN = n
	}
	res, err := digest.Summarize(th, opts)
	if err != nil {
		if errors.Is(err, digest.ErrMalformedRecord) {
			writeError(w, http.StatusUnprocessableEntity, "MalformedRecord", err.Error())
			return
		}
		s.logger.Error("summarize failed", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to summarize thread")
		return
	}
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: res.Summary, Stats: res.Stats})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.recent == nil {
		writeError(w, http.StatusServiceUnavailable, "Unavailable", "redis is disabled")
		return
	}
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}
	posts, err := s.recent.RecentPosts(r.Context(), limit)
	if err != nil {
		s.logger.Error("list recent posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "failed to list posts")
		return
	}
	if posts == nil {
		posts = []storage.StoredPost{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errType,
		"message": message,
	})
}

func withLogging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
