// Package server exposes the model query and clash detection
// operations over HTTP. Every request loads and evaluates its own
// scene script; nothing is cached or shared across requests, so
// handlers need no locking.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asegale/ashlar/pkg/model"
	"github.com/asegale/ashlar/pkg/scene"
	"github.com/gorilla/mux"
)

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	engine *scene.Engine
	srv    *http.Server
	router *mux.Router
}

// New builds a server with all routes registered.
func New(cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		engine: scene.NewEngine(),
		router: mux.NewRouter(),
	}
	s.srv = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.routes()
	return s
}

// Handler returns the route tree, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the listener in a background goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("http server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}
	log.Println("http server stopped")
}

func (s *Server) routes() {
	v1 := s.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/elements", s.handleElements).Methods("GET")
	v1.HandleFunc("/elements/{id}/geometry", s.handleGeometry).Methods("GET")
	v1.HandleFunc("/elements/{id}/volume", s.handleVolume).Methods("GET")
	v1.HandleFunc("/elements/{id}/surface-area", s.handleSurfaceArea).Methods("GET")
	v1.HandleFunc("/elements/{id}/material-usage", s.handleMaterialUsage).Methods("GET")
	v1.HandleFunc("/elements/{id}/embodied-carbon", s.handleEmbodiedCarbon).Methods("GET")
	v1.HandleFunc("/storeys", s.handleStoreys).Methods("GET")

	v1.HandleFunc("/clashes/detect", s.handleClashDetect).Methods("POST")
	v1.HandleFunc("/clashes/pair", s.handleClashPair).Methods("POST")
	v1.HandleFunc("/clashes/plan", s.handlePlanClash).Methods("POST")
	v1.HandleFunc("/clashes/plan/storey", s.handlePlanClashStorey).Methods("POST")

	v1.HandleFunc("/wkt/area", s.handleWKTArea).Methods("POST")
	v1.HandleFunc("/wkt/perimeter", s.handleWKTPerimeter).Methods("POST")
	v1.HandleFunc("/wkt/intersects", s.handleWKTIntersects).Methods("POST")

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// loadModel resolves a model name to a scene script under SceneDir and
// evaluates it. The name must stay inside the scene directory.
func (s *Server) loadModel(name string) (*model.Model, *httpError) {
	if name == "" {
		return nil, badRequest("model parameter is required")
	}

	path := filepath.Join(s.cfg.SceneDir, filepath.Clean("/"+name))
	rel, err := filepath.Rel(s.cfg.SceneDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, badRequest("invalid model path")
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(fmt.Sprintf("model %q not found", name))
		}
		return nil, internal(fmt.Errorf("read model %q: %w", name, err))
	}

	m, evalErrs, err := s.engine.Evaluate(string(src))
	if err != nil {
		return nil, internal(fmt.Errorf("evaluate model %q: %w", name, err))
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, 0, len(evalErrs))
		for _, e := range evalErrs {
			msgs = append(msgs, e.Error())
		}
		return nil, unprocessable(fmt.Sprintf("model %q: %s", name, strings.Join(msgs, "; ")))
	}
	return m, nil
}
