package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestProject(t *testing.T, dir string) {
	t.Helper()

	defs := "digit [0-9]+\n"
	grammarSrc := "EXPR -> 'num' REST\nREST -> 'plus' 'num'\n      |\n"
	proj := `
id = "calc-project"
name = "calc"
start = "EXPR"
parser = "lalr1"
regular_definitions = "calc.defs"
grammar = "calc.gr"

[[tokens]]
class = "num"
pattern = "{digit}"

[[tokens]]
class = "plus"
pattern = "\\+"

[[skip]]
pattern = "[ \t]+"
`

	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.defs"), []byte(defs), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.gr"), []byte(grammarSrc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.langproj.toml"), []byte(proj), 0644))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	writeTestProject(t, dir)

	keyHash, err := HashAPIKey("s3cret")
	require.NoError(t, err)

	s, err := NewServer(dir, filepath.Join(dir, "cache.db"), keyHash, []byte("jwt-test-secret"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_Server_lexAndParse(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	lexRec := doJSON(t, h, http.MethodPost, "/lex", compileRequest{Project: "calc-project", Text: "12 + 34"}, "")
	require.Equal(t, http.StatusOK, lexRec.Code)

	var toks []tokenDTO
	require.NoError(t, json.Unmarshal(lexRec.Body.Bytes(), &toks))
	require.Len(t, toks, 3)
	assert.Equal(t, "num", toks[0].Class)
	assert.Equal(t, "plus", toks[1].Class)

	parseRec := doJSON(t, h, http.MethodPost, "/parse", compileRequest{Project: "calc-project", Text: "12 + 34"}, "")
	require.Equal(t, http.StatusOK, parseRec.Code)

	var tree treeDTO
	require.NoError(t, json.Unmarshal(parseRec.Body.Bytes(), &tree))
	assert.Equal(t, "EXPR", tree.Value)
	assert.Len(t, tree.Children, 2)
}

func Test_Server_lex_unknownProject(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()
	s.UnauthDelay = 0

	rec := doJSON(t, h, http.MethodPost, "/lex", compileRequest{Project: "nope", Text: "1"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_Server_login_and_recompile(t *testing.T) {
	s := newTestServer(t)
	s.UnauthDelay = 0
	h := s.Routes()

	noAuth := doJSON(t, h, http.MethodPost, "/projects/calc-project/recompile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, noAuth.Code)

	badLogin := doJSON(t, h, http.MethodPost, "/login", loginRequest{APIKey: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, badLogin.Code)

	loginRec := doJSON(t, h, http.MethodPost, "/login", loginRequest{APIKey: "s3cret"}, "")
	require.Equal(t, http.StatusCreated, loginRec.Code)

	var loginResp loginResponse
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	recompileRec := doJSON(t, h, http.MethodPost, "/projects/calc-project/recompile", nil, loginResp.Token)
	assert.Equal(t, http.StatusOK, recompileRec.Code)
}

func Test_Server_listProjects(t *testing.T) {
	s := newTestServer(t)
	h := s.Routes()

	rec := doJSON(t, h, http.MethodGet, "/projects", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var projects []projectSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, "calc-project", projects[0].ID)
}
