package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gudgeon/internal/langconfig"
)

func writeProjectFixture(t *testing.T, parser string) *langconfig.Project {
	t.Helper()
	dir := t.TempDir()

	defs := "digit [0-9]+\n"
	grammarSrc := "EXPR -> 'num' REST\nREST -> 'plus' 'num'\n      |\n"

	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.defs"), []byte(defs), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc.gr"), []byte(grammarSrc), 0644))

	p := &langconfig.Project{
		ID:          "calc-project",
		Name:        "calc",
		Start:       "EXPR",
		Parser:      parser,
		Definitions: filepath.Join(dir, "calc.defs"),
		GrammarFile: filepath.Join(dir, "calc.gr"),
		Tokens: []langconfig.TokenRule{
			{Class: "num", Pattern: "{digit}"},
			{Class: "plus", Pattern: "\\+"},
		},
		Skip: []langconfig.SkipRule{
			{Pattern: "[ \t]+"},
		},
	}
	return p
}

func Test_Store_compileThenCacheHit(t *testing.T) {
	for _, flavor := range []string{"lalr1", "slr1", "clr1", "ll1"} {
		t.Run(flavor, func(t *testing.T) {
			p := writeProjectFixture(t, flavor)

			cacheFile := filepath.Join(t.TempDir(), "cache.db")
			st, err := Open(cacheFile)
			require.NoError(t, err)
			defer st.Close()

			first, err := st.Compile(p)
			require.NoError(t, err)
			assertParsesCalc(t, first)

			second, err := st.Compile(p)
			require.NoError(t, err)
			assertParsesCalc(t, second)

			assert.Equal(t, first.Parser.Type(), second.Parser.Type())
			assert.Equal(t, first.Parser.TableString(), second.Parser.TableString())
		})
	}
}

func Test_Store_cacheInvalidatesOnSourceChange(t *testing.T) {
	p := writeProjectFixture(t, "lalr1")
	cacheFile := filepath.Join(t.TempDir(), "cache.db")

	st, err := Open(cacheFile)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Compile(p)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(p.GrammarPath(), []byte("EXPR -> 'num'\n"), 0644))

	compiled, err := st.Compile(p)
	require.NoError(t, err)
	assert.Equal(t, "EXPR", compiled.Grammar.StartSymbol())

	stream, err := compiled.Lexer.Lex(strings.NewReader("7"))
	require.NoError(t, err)
	tree, err := compiled.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Len(t, tree.Children, 1)
}

func assertParsesCalc(t *testing.T, c *langconfig.Compiled) {
	t.Helper()
	stream, err := c.Lexer.Lex(strings.NewReader("12 + 34"))
	require.NoError(t, err)

	tree, err := c.Parser.Parse(stream)
	require.NoError(t, err)
	assert.Equal(t, "EXPR", tree.Value)
	assert.Len(t, tree.Children, 2)
}
