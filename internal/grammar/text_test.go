package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseGrammarText(t *testing.T) {
	src := `
EXPR -> EXPR 'plus' TERM
      | TERM
TERM -> TERM 'star' FACTOR
      | FACTOR
FACTOR -> '(' EXPR ')'
        | 'id'
`
	g, err := ParseGrammarText(src)
	require.NoError(t, err)

	assert.Equal(t, "EXPR", g.StartSymbol())
	assert.True(t, g.IsTerminal("plus"))
	assert.True(t, g.IsTerminal("id"))
	assert.ElementsMatch(t, []string{"EXPR", "TERM", "FACTOR"}, g.NonTerminals())

	exprRule := g.Rule("EXPR")
	require.Len(t, exprRule.Productions, 2)
	assert.Equal(t, Production{"EXPR", "plus", "TERM"}, exprRule.Productions[0])
	assert.Equal(t, Production{"TERM"}, exprRule.Productions[1])
}

func Test_ParseGrammarText_actionTerminal(t *testing.T) {
	src := `STMT -> 'id' '=' EXPR {assign}
EXPR -> 'num'`

	g, err := ParseGrammarText(src)
	require.NoError(t, err)

	assert.True(t, g.IsTerminal("assign"))
	stmtRule := g.Rule("STMT")
	require.Len(t, stmtRule.Productions, 1)
	assert.Equal(t, Production{"id", "=", "EXPR", "assign"}, stmtRule.Productions[0])
}

func Test_ParseGrammarText_errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{name: "no arrow", src: "EXPR TERM"},
		{name: "continuation with no prior rule", src: "| 'x'"},
		{name: "lowercase nonterminal", src: "expr -> 'x'"},
		{name: "bare word in production is not uppercase", src: "EXPR -> term"},
		{name: "unterminated quote", src: "EXPR -> 'x"},
		{name: "unterminated action", src: "EXPR -> {foo"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGrammarText(tc.src)
			assert.Error(t, err)
		})
	}
}
