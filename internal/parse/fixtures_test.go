package parse

import "github.com/dekarrin/gudgeon/internal/types"

// mockStream is a token stream fed by a fixed slice, for driver tests that
// don't need a real lexer.
type mockStream struct {
	tokens []types.Token
	cur    int
}

func (ts *mockStream) Next() types.Token {
	t := ts.tokens[ts.cur]
	ts.cur++
	return t
}

func (ts *mockStream) Peek() types.Token {
	return ts.tokens[ts.cur]
}

func (ts *mockStream) HasNext() bool {
	return len(ts.tokens)-ts.cur > 0
}

type mockToken struct {
	class  types.TokenClass
	lexeme string
	line   int
	pos    int
	full   string
}

func (t mockToken) Class() types.TokenClass { return t.class }
func (t mockToken) Lexeme() string          { return t.lexeme }
func (t mockToken) Line() int               { return t.line }
func (t mockToken) LinePos() int            { return t.pos }
func (t mockToken) FullLine() string        { return t.full }

// mockTokens builds a token stream for each terminal ID given, ending with
// an implicit types.TokenEndOfText, with lexemes equal to the terminal ID.
func mockTokens(terms ...string) types.TokenStream {
	var toks []types.Token
	line := "(" + joinWithSpaces(terms) + ")"
	pos := 1
	for _, term := range terms {
		cl := types.MakeDefaultClass(term)
		toks = append(toks, mockToken{class: cl, lexeme: term, line: 1, pos: pos, full: line})
		pos += len(term) + 1
	}
	toks = append(toks, mockToken{class: types.TokenEndOfText, lexeme: "", line: 1, pos: pos, full: line})
	return &mockStream{tokens: toks}
}

func joinWithSpaces(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
