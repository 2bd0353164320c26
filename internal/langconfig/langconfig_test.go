package langconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	defs := "digit [0-9]+\n"
	grammarSrc := "EXPR -> 'num' REST\nREST -> 'plus' 'num'\n      |\n"
	proj := `
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
	path := filepath.Join(dir, "calc.langproj.toml")
	require.NoError(t, os.WriteFile(path, []byte(proj), 0644))

	return path
}

func Test_Load(t *testing.T) {
	path := writeProjectFixture(t)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "calc", p.Name)
	assert.Equal(t, "EXPR", p.Start)
	assert.NotEmpty(t, p.ID, "a missing id should be generated")

	pt, err := p.ParserType()
	require.NoError(t, err)
	assert.Equal(t, "LALR(1)", pt.String())
}

func Test_Load_missingRequiredField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.langproj.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "x"`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func Test_Build(t *testing.T) {
	path := writeProjectFixture(t)
	p, err := Load(path)
	require.NoError(t, err)

	compiled, err := Build(p)
	require.NoError(t, err)

	stream, err := compiled.Lexer.Lex(strings.NewReader("12 + 34"))
	require.NoError(t, err)

	tree, err := compiled.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, "EXPR", tree.Value)
	assert.Len(t, tree.Children, 2)
}

func Test_SourceHash_changesWithSource(t *testing.T) {
	path := writeProjectFixture(t)
	p, err := Load(path)
	require.NoError(t, err)

	h1, err := p.SourceHash()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p.GrammarPath(), []byte("EXPR -> 'num'\n"), 0644))

	h2, err := p.SourceHash()
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
