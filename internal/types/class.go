package types

import "strings"

// TokenClass is the type discriminator used as the ACTION table key. The
// core treats tokens as opaque tagged values; it never looks past this
// interface and the Token interface below.
type TokenClass interface {
	// ID returns the ID of the token class. The ID must uniquely identify
	// the class within all terminals of a grammar.
	ID() string

	// Human returns a human-readable name for the class, for error
	// reporting.
	Human() string

	// Equal returns whether the TokenClass equals another. Two classes
	// with the same ID are always Equal.
	Equal(o any) bool
}

type simpleTokenClass string

func (class simpleTokenClass) ID() string {
	return strings.ToLower(string(class))
}

func (class simpleTokenClass) Human() string {
	return string(class)
}

func (class simpleTokenClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		otherPtr, ok := o.(*TokenClass)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return other.ID() == class.ID()
}

// The two distinguished sentinel token classes the core's external
// interfaces require: TokenUndefined for the zero-value slot,
// and TokenEndOfText standing in for the grammar's "$" terminal.
const (
	TokenUndefined = simpleTokenClass("undefined_token")
	TokenEndOfText = simpleTokenClass("$")
)

// TokenError is the class of a token manufactured by a lexer to report a
// lexing failure inline in the stream, carrying the failure message as its
// lexeme.
const TokenError = simpleTokenClass("error_token")

// MakeDefaultClass returns a TokenClass whose ID is the lower-cased s and
// whose Human name is s unmodified.
func MakeDefaultClass(s string) TokenClass {
	return simpleTokenClass(s)
}
