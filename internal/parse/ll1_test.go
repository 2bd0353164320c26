package parse

import (
	"testing"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ll1ExprGrammar is the left-factored, non-left-recursive expression
// grammar from Dragon Book §4.4.3, already in LL(1) form:
//
//	E  -> T E'
//	E' -> + T E' | ε
//	T  -> F T'
//	T' -> * F T' | ε
//	F  -> ( E ) | id
func ll1ExprGrammar() grammar.Grammar {
	var g grammar.Grammar
	g.Start = "E"

	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("(", types.MakeDefaultClass("("))
	g.AddTerm(")", types.MakeDefaultClass(")"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	g.AddRule("E", []string{"T", "E-P"})
	g.AddRule("E-P", []string{"+", "T", "E-P"})
	g.AddRule("E-P", []string{""})
	g.AddRule("T", []string{"F", "T-P"})
	g.AddRule("T-P", []string{"*", "F", "T-P"})
	g.AddRule("T-P", []string{""})
	g.AddRule("F", []string{"(", "E", ")"})
	g.AddRule("F", []string{"id"})

	return g
}

func Test_GenerateLL1Parser_buildsForLL1Grammar(t *testing.T) {
	g := ll1ExprGrammar()
	_, err := GenerateLL1Parser(g)
	require.NoError(t, err)
}

func Test_ll1Parser_Parse_simpleExpression(t *testing.T) {
	g := ll1ExprGrammar()
	p, err := GenerateLL1Parser(g)
	require.NoError(t, err)

	tree, err := p.Parse(mockTokens("id", "+", "id", "*", "id"))
	require.NoError(t, err)

	assert.Equal(t, "E", tree.Value)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "T", tree.Children[0].Value)
	assert.Equal(t, "E-P", tree.Children[1].Value)
}

func Test_ll1Parser_Parse_reportsErrorOnBadInput(t *testing.T) {
	g := ll1ExprGrammar()
	p, err := GenerateLL1Parser(g)
	require.NoError(t, err)

	_, err = p.Parse(mockTokens("+", "id"))
	assert.Error(t, err)
}
