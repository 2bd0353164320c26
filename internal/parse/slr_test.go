package parse

import (
	"testing"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exprGrammar is the classic expression grammar from Dragon Book §4.6:
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> ( E ) | id
func exprGrammar() grammar.Grammar {
	var g grammar.Grammar
	g.Start = "E"

	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("(", types.MakeDefaultClass("("))
	g.AddTerm(")", types.MakeDefaultClass(")"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	g.AddRule("E", []string{"E", "+", "T"})
	g.AddRule("E", []string{"T"})
	g.AddRule("T", []string{"T", "*", "F"})
	g.AddRule("T", []string{"F"})
	g.AddRule("F", []string{"(", "E", ")"})
	g.AddRule("F", []string{"id"})

	return g
}

func Test_GenerateSimpleLRParser_buildsWithoutConflict(t *testing.T) {
	g := exprGrammar()

	_, warnings, err := GenerateSimpleLRParser(g, false)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func Test_lrParser_Parse_simpleExpression(t *testing.T) {
	g := exprGrammar()
	p, _, err := GenerateSimpleLRParser(g, false)
	require.NoError(t, err)

	stream := mockTokens("id", "+", "id", "*", "id")
	tree, err := p.Parse(stream)
	require.NoError(t, err)

	assert.Equal(t, "E", tree.Value)
	assert.False(t, tree.Terminal)
	// E -> E + T, so the top level has exactly 3 children.
	require.Len(t, tree.Children, 3)
	assert.Equal(t, "+", tree.Children[1].Value)
}

func Test_lrParser_Parse_reportsErrorOnBadInput(t *testing.T) {
	g := exprGrammar()
	p, _, err := GenerateSimpleLRParser(g, false)
	require.NoError(t, err)

	stream := mockTokens("id", "+", "+")
	_, err = p.Parse(stream)
	assert.Error(t, err)
}

func Test_GenerateCanonicalLR1Parser_parsesSameLanguage(t *testing.T) {
	g := exprGrammar()
	p, err := GenerateCanonicalLR1Parser(g)
	require.NoError(t, err)

	tree, err := p.Parse(mockTokens("(", "id", "+", "id", ")", "*", "id"))
	require.NoError(t, err)
	assert.Equal(t, "E", tree.Value)
}

func Test_GenerateLALR1Parser_parsesSameLanguage(t *testing.T) {
	g := exprGrammar()
	p, err := GenerateLALR1Parser(g)
	require.NoError(t, err)

	tree, err := p.Parse(mockTokens("id", "*", "id", "+", "id"))
	require.NoError(t, err)
	assert.Equal(t, "E", tree.Value)
}
