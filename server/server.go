package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"auto_wp_seo_publisher/generator"
	"auto_wp_seo_publisher/logger"
	"auto_wp_seo_publisher/pipeline"
)

// Builder builds one document. *pipeline.Builder satisfies it.
type Builder interface {
	Build(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type Server struct {
	builder Builder
	store   *buildStore
	log     *logger.Logger
	wg      sync.WaitGroup
}

const (
	statusRunning = "running"
	statusDone    = "done"
	statusFailed  = "failed"
)

type build struct {
	ID        string           `json:"build_id"`
	Status    string           `json:"status"`
	Topic     string           `json:"topic"`
	Error     string           `json:"error,omitempty"`
	Failures  []string         `json:"failures,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
}

type buildStore struct {
	mu     sync.Mutex
	builds map[string]*build
}

func newStore() *buildStore {
	return &buildStore{builds: make(map[string]*build)}
}

func (s *buildStore) set(b *build) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds[b.ID] = b
}

// get returns a copy so handlers never read a build while it is updated.
func (s *buildStore) get(id string) (build, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.builds[id]
	if !ok {
		return build{}, false
	}
	return *b, true
}

func (s *buildStore) finish(id string, res pipeline.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.builds[id]
	now := time.Now()
	b.EndedAt = &now
	b.Failures = res.FailureStrings()
	if err != nil {
		b.Status = statusFailed
		b.Error = err.Error()
		return
	}
	b.Status = statusDone
	b.Result = &res
}

func New(b Builder, log *logger.Logger) (*Server, error) {
	if b == nil {
		return nil, errors.New("builder required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{builder: b, store: newStore(), log: log.Stage("server")}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logMiddleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/builds", s.handleBuildCreate)
	r.Get("/api/builds/{id}", s.handleBuildGet)
	return r
}

// Wait blocks until every background build has finished.
func (s *Server) Wait() { s.wg.Wait() }

// --- Handlers ---

type buildCreateReq struct {
	Topic         string                 `json:"topic"`
	InternalLinks []generator.LinkTarget `json:"internal_links"`
	CategoryIDs   []int                  `json:"category_ids"`
}

type buildCreateResp struct {
	BuildID string `json:"build_id"`
	Status  string `json:"status"`
}

func (s *Server) handleBuildCreate(w http.ResponseWriter, r *http.Request) {
	var req buildCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	id := uuid.NewString()
	s.store.set(&build{ID: id, Status: statusRunning, Topic: req.Topic, StartedAt: time.Now()})
	// the build outlives the request
	ctx := context.WithoutCancel(r.Context())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res, err := s.builder.Build(ctx, pipeline.Request{
			Topic:         req.Topic,
			InternalLinks: req.InternalLinks,
			CategoryIDs:   req.CategoryIDs,
		})
		if err != nil {
			s.log.Error("build failed", "build_id", id, "cause", err)
		}
		s.store.finish(id, res, err)
	}()
	writeJSON(w, http.StatusAccepted, buildCreateResp{BuildID: id, Status: statusRunning})
}

func (s *Server) handleBuildGet(w http.ResponseWriter, r *http.Request) {
	b, ok := s.store.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "build not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "elapsed", time.Since(start).String())
	})
}
