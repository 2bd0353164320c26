package lex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lex_singleState(t *testing.T) {
	testCases := []struct {
		name       string
		classes    []string
		patterns   []string
		lexActions []Action
		input      string
		expect     []lexerToken
	}{
		{
			name:       "single literal",
			classes:    []string{"ID"},
			patterns:   []string{"abc"},
			lexActions: []Action{LexAs("id")},
			input:      "abc",
			expect: []lexerToken{
				{class: NewTokenClass("id", "ID"), lexed: "abc", lineNum: 1, linePos: 1, line: "abc"},
			},
		},
		{
			name:       "whitespace discarded between two tokens",
			classes:    []string{"ID"},
			patterns:   []string{"[a-z]+", "[ \t]+"},
			lexActions: []Action{LexAs("id"), Discard()},
			input:      "foo bar",
			expect: []lexerToken{
				{class: NewTokenClass("id", "ID"), lexed: "foo", lineNum: 1, linePos: 1, line: "foo bar"},
				{class: NewTokenClass("id", "ID"), lexed: "bar", lineNum: 1, linePos: 5, line: "foo bar"},
			},
		},
		{
			name:       "longest match wins over an equally-valid shorter prefix",
			classes:    []string{"KEYWORD", "ID"},
			patterns:   []string{"if", "[a-z]+"},
			lexActions: []Action{LexAs("kw"), LexAs("id")},
			input:      "iffy",
			expect: []lexerToken{
				{class: NewTokenClass("id", "ID"), lexed: "iffy", lineNum: 1, linePos: 1, line: "iffy"},
			},
		},
		{
			name:       "equal-length match broken by declaration priority",
			classes:    []string{"KEYWORD", "ID"},
			patterns:   []string{"if", "[a-z]+"},
			lexActions: []Action{LexAs("kw"), LexAs("id")},
			input:      "if",
			expect: []lexerToken{
				{class: NewTokenClass("kw", "KEYWORD"), lexed: "if", lineNum: 1, linePos: 1, line: "if"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)

			lx := NewLexer()
			for i := range tc.classes {
				cl := NewTokenClass(strings.ToLower(tc.classes[i]), tc.classes[i])
				lx.AddClass(cl, "")
			}
			require.Equal(t, len(tc.patterns), len(tc.lexActions), "bad test case: pattern/action count mismatch")
			for i := range tc.patterns {
				err := lx.AddPattern(tc.patterns[i], tc.lexActions[i], "", nil)
				if !a.NoErrorf(err, "adding pattern %d to lexer failed", i) {
					return
				}
			}

			stream, err := lx.Lex(strings.NewReader(tc.input))
			if !a.NoError(err, "error while producing token stream") {
				return
			}

			tokNum := 0
			for stream.HasNext() {
				if tokNum >= len(tc.expect) {
					a.Failf("wrong number of produced tokens", "expected %d tokens but got more", len(tc.expect))
					break
				}

				expectTok := tc.expect[tokNum]
				actualTok := stream.Next()

				a.Equal(expectTok.Class().ID(), actualTok.Class().ID(), "token #%d class mismatch", tokNum)
				a.Equal(expectTok.Lexeme(), actualTok.Lexeme(), "token #%d lexeme mismatch", tokNum)
				a.Equal(expectTok.Line(), actualTok.Line(), "token #%d line mismatch", tokNum)
				a.Equal(expectTok.LinePos(), actualTok.LinePos(), "token #%d column mismatch", tokNum)

				tokNum++
			}
			a.Equal(len(tc.expect), tokNum, "produced fewer tokens than expected")
		})
	}
}
