package lex

import "github.com/dekarrin/gudgeon/internal/types"

// lexerClass is the lex package's own types.TokenClass implementation,
// handed back from AddClass/LexAs so callers never need their own.
type lexerClass struct {
	id    string
	human string
}

func (lc lexerClass) ID() string    { return lc.id }
func (lc lexerClass) Human() string { return lc.human }

func (lc lexerClass) Equal(o any) bool {
	other, ok := o.(types.TokenClass)
	if !ok {
		otherPtr, ok := o.(*types.TokenClass)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return other.ID() == lc.ID()
}

// NewTokenClass returns a types.TokenClass identified by id (used as the
// grammar terminal / ACTION-table key) with human as its display name.
func NewTokenClass(id string, human string) types.TokenClass {
	return lexerClass{id: id, human: human}
}

// lexerToken is the lex package's own types.Token implementation.
type lexerToken struct {
	class   types.TokenClass
	lexed   string
	linePos int
	lineNum int
	line    string
}

func (lt lexerToken) Class() types.TokenClass { return lt.class }
func (lt lexerToken) Lexeme() string          { return lt.lexed }
func (lt lexerToken) LinePos() int            { return lt.linePos }
func (lt lexerToken) Line() int               { return lt.lineNum }
func (lt lexerToken) FullLine() string        { return lt.line }
