// Package server serves saved map documents over HTTP for local preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MapFile describes one saved document in the output directory.
type MapFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	URL      string    `json:"url"`
}

// Server is the preview HTTP server.
type Server struct {
	dir    string
	router *chi.Mux

	mu   sync.RWMutex
	live map[string]http.Handler
}

// New creates a Server that lists and serves the documents in dir.
func New(dir string) *Server {
	s := &Server{
		dir:    dir,
		router: chi.NewRouter(),
		live:   make(map[string]http.Handler),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/maps", s.handleListMaps)
	s.router.Get("/maps/{name}", s.handleMap)
	s.router.Get("/live/{name}", s.handleLive)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Publish mounts h at /live/{name}, replacing any handler already published under that name.
func (s *Server) Publish(name string, h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[name] = h
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting preview server", zap.String("addr", addr), zap.String("dir", s.dir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMaps(w http.ResponseWriter, _ *http.Request) {
	files, err := s.ListMaps()
	if err != nil {
		respondError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validName(name) {
		respondError(w, eris.Errorf("invalid map name %q", name), http.StatusBadRequest)
		return
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondError(w, eris.Errorf("map %q not found", name), http.StatusNotFound)
			return
		}
		respondError(w, err, http.StatusInternalServerError)
		return
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respondError(w, eris.Errorf("map %q not found", name), http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.mu.RLock()
	h, ok := s.live[name]
	s.mu.RUnlock()
	if !ok {
		respondError(w, eris.Errorf("live map %q not found", name), http.StatusNotFound)
		return
	}
	h.ServeHTTP(w, r)
}

// ListMaps returns the documents in the output directory, newest first. A missing directory
// yields an empty list.
func (s *Server) ListMaps() ([]MapFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []MapFile{}, nil
		}
		return nil, eris.Wrapf(err, "server: read %s", s.dir)
	}

	files := make([]MapFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isDocument(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, MapFile{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().UTC(),
			URL:      "/maps/" + e.Name(),
		})
	}

	slices.SortFunc(files, func(a, b MapFile) int {
		if c := b.Modified.Compare(a.Modified); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return files, nil
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".geojson":
		return true
	}
	return false
}

func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return name == filepath.Base(name) && isDocument(name)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("json encode error", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		zap.L().Error("request error", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Addr formats a listen address for port.
func Addr(port int) string { return fmt.Sprintf(":%d", port) }
