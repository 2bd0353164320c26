package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dekarrin/gudgeon/internal/langconfig"
	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/dekarrin/gudgeon/server/result"
	"github.com/dekarrin/gudgeon/server/serr"
)

// EndpointFunc is a single request handler that returns its outcome as a
// result.Result rather than writing to the ResponseWriter directly, so
// Endpoint can apply the unauthorized-response delay uniformly.
type EndpointFunc func(req *http.Request) result.Result

// Endpoint adapts an EndpointFunc into an http.HandlerFunc, pausing
// before any HTTP-401, HTTP-403, or HTTP-500 response to deprioritize
// such requests the way the donor server's Endpoint wrapper does.
func (s *Server) Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		res := ep(req)

		if res.Status == http.StatusUnauthorized || res.Status == http.StatusForbidden || res.Status == http.StatusInternalServerError {
			time.Sleep(s.UnauthDelay)
		}

		res.WriteResponse(w)
	}
}

func errProjectNotFound(id string) error {
	return serr.New(fmt.Sprintf("project %q not registered", id), serr.ErrNotFound)
}

func decodeJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		return fmt.Errorf("request content-type is not application/json")
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON in request")
	}
	return nil
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) epLogin(req *http.Request) result.Result {
	var in loginRequest
	if err := decodeJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if in.APIKey == "" {
		return result.BadRequest("api_key: property is empty or missing from request", "empty api_key")
	}

	if err := s.checkAPIKey(in.APIKey); err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized("", "login: %s", err.Error())
		}
		return result.InternalServerError("login: %s", err.Error())
	}

	tok, err := s.mintToken()
	if err != nil {
		return result.InternalServerError("mint token: %s", err.Error())
	}

	return result.Created(loginResponse{Token: tok}, "issued token for operator")
}

type projectSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Start  string `json:"start"`
	Parser string `json:"parser"`
}

func (s *Server) epListProjects(req *http.Request) result.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]projectSummary, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, projectSummary{ID: p.ID, Name: p.Name, Start: p.Start, Parser: p.Parser})
	}
	return result.OK(out, "listed %d projects", len(out))
}

func (s *Server) epRecompile(req *http.Request) result.Result {
	id := chi.URLParam(req, "id")

	s.mu.RLock()
	path, ok := s.paths[id]
	s.mu.RUnlock()
	if !ok {
		return result.NotFound("recompile: %s", errProjectNotFound(id).Error())
	}

	reloaded, err := langconfig.Load(filepath.Clean(path))
	if err != nil {
		return result.BadRequest(err.Error(), "recompile: reload project %q: %s", id, err.Error())
	}

	compiled, err := s.store.Compile(reloaded)
	if err != nil {
		return result.BadRequest(err.Error(), "recompile: compile project %q: %s", id, err.Error())
	}

	s.mu.Lock()
	s.projects[id] = reloaded
	s.mu.Unlock()

	return result.OK(
		projectSummary{ID: reloaded.ID, Name: reloaded.Name, Start: reloaded.Start, Parser: reloaded.Parser},
		"recompiled project %q as %s parser", id, compiled.Parser.Type(),
	)
}

type compileRequest struct {
	Project string `json:"project"`
	Text    string `json:"text"`
}

type tokenDTO struct {
	Class   string `json:"class"`
	Lexeme  string `json:"lexeme"`
	Line    int    `json:"line"`
	LinePos int    `json:"col"`
}

func (s *Server) epLex(req *http.Request) result.Result {
	var in compileRequest
	if err := decodeJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	p, ok := s.project(in.Project)
	if !ok {
		return result.NotFound("lex: %s", errProjectNotFound(in.Project).Error())
	}

	compiled, err := s.store.Compile(p)
	if err != nil {
		return result.InternalServerError("compile project %q: %s", in.Project, err.Error())
	}

	stream, err := compiled.Lexer.Lex(strings.NewReader(in.Text))
	if err != nil {
		return result.BadRequest(err.Error(), "lex project %q: %s", in.Project, err.Error())
	}

	toks := make([]tokenDTO, 0)
	for stream.HasNext() {
		t := stream.Next()
		toks = append(toks, tokenDTO{Class: t.Class().ID(), Lexeme: t.Lexeme(), Line: t.Line(), LinePos: t.LinePos()})
	}

	return result.OK(toks, "lexed %d tokens for project %q", len(toks), in.Project)
}

type treeDTO struct {
	Terminal bool      `json:"terminal"`
	Value    string    `json:"value"`
	Lexeme   string    `json:"lexeme,omitempty"`
	Children []treeDTO `json:"children,omitempty"`
}

func toTreeDTO(t types.ParseTree) treeDTO {
	dto := treeDTO{Terminal: t.Terminal, Value: t.Value}
	if t.Terminal && t.Source != nil {
		dto.Lexeme = t.Source.Lexeme()
	}
	for _, c := range t.Children {
		if c != nil {
			dto.Children = append(dto.Children, toTreeDTO(*c))
		}
	}
	return dto
}

func (s *Server) epParse(req *http.Request) result.Result {
	var in compileRequest
	if err := decodeJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	p, ok := s.project(in.Project)
	if !ok {
		return result.NotFound("parse: %s", errProjectNotFound(in.Project).Error())
	}

	compiled, err := s.store.Compile(p)
	if err != nil {
		return result.InternalServerError("compile project %q: %s", in.Project, err.Error())
	}

	stream, err := compiled.Lexer.Lex(strings.NewReader(in.Text))
	if err != nil {
		return result.BadRequest(err.Error(), "lex project %q: %s", in.Project, err.Error())
	}

	tree, err := compiled.Parser.Parse(stream)
	if err != nil {
		if langerr.KindOf(err) == langerr.KindParseError {
			return result.BadRequest(err.Error(), "parse project %q: %s", in.Project, err.Error())
		}
		return result.InternalServerError("parse project %q: %s", in.Project, err.Error())
	}

	return result.OK(toTreeDTO(tree), "parsed project %q", in.Project)
}
