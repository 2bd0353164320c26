// Package server exposes a directory of compiled lexer/grammar/parser
// projects as a small HTTP service: POST /lex and POST /parse run input
// text through a named project's compiled tables, and a bearer-token-
// guarded POST /projects/{id}/recompile reloads a project from disk and
// refreshes its cached tables.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/gudgeon/internal/langconfig"
	"github.com/dekarrin/gudgeon/internal/store"
	"github.com/dekarrin/gudgeon/server/middle"
)

// Server is a compiler-as-a-service frontend over internal/store: each
// registered project is a ".toml" file directly under projectsDir, and
// every /lex or /parse call compiles (or cache-hits) that project's
// tables before running the request's input text through them.
type Server struct {
	store       *store.Store
	projectsDir string

	mu       sync.RWMutex
	projects map[string]*langconfig.Project
	paths    map[string]string

	apiKeyHash []byte
	jwtSecret  []byte

	// UnauthDelay is how long an HTTP-401/403/500 response is held before
	// being written, to deprioritize failed-auth and error traffic the
	// same way the donor server's Endpoint wrapper does.
	UnauthDelay time.Duration
}

// NewServer opens cacheFile as a compiled-table cache and loads every
// "*.toml" file directly under projectsDir as a registered project.
func NewServer(projectsDir, cacheFile string, apiKeyHash, jwtSecret []byte) (*Server, error) {
	st, err := store.Open(cacheFile)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:       st,
		projectsDir: projectsDir,
		projects:    map[string]*langconfig.Project{},
		paths:       map[string]string{},
		apiKeyHash:  apiKeyHash,
		jwtSecret:   jwtSecret,
		UnauthDelay: time.Second,
	}

	if err := s.reloadAll(); err != nil {
		st.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying table cache.
func (s *Server) Close() error {
	return s.store.Close()
}

func (s *Server) reloadAll() error {
	entries, err := os.ReadDir(s.projectsDir)
	if err != nil {
		return fmt.Errorf("read projects directory %q: %w", s.projectsDir, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		path := filepath.Join(s.projectsDir, e.Name())
		p, err := langconfig.Load(path)
		if err != nil {
			return fmt.Errorf("load project %q: %w", e.Name(), err)
		}
		s.projects[p.ID] = p
		s.paths[p.ID] = path
	}
	return nil
}

func (s *Server) project(id string) (*langconfig.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	return p, ok
}

// Routes builds the chi router for this server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middle.DontPanic())

	r.Post("/login", s.Endpoint(s.epLogin))
	r.Get("/projects", s.Endpoint(s.epListProjects))
	r.Post("/lex", s.Endpoint(s.epLex))
	r.Post("/parse", s.Endpoint(s.epParse))

	r.With(middle.RequireAuth(s.jwtSecret, s.UnauthDelay)).
		Post("/projects/{id}/recompile", s.Endpoint(s.epRecompile))

	return r
}
