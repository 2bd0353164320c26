// Package regex implements the regex surface parser, Thompson's
// construction, and the regular-definition cross-referencing pass.
package regex

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/util"
)

// Kind discriminates the variants of Element.
type Kind int

const (
	// Literal is a single symbol; by default a character, but any
	// hashable value works given this package only ever stores runes.
	Literal Kind = iota

	// Empty is ε, matching the empty string. In a parse tree it appears
	// only as the body of an empty alternative (e.g. the right side of `a|`).
	Empty

	// Unmatchable is an atom no input can ever match; it represents an
	// empty character class while keeping the NFA well-formed.
	Unmatchable

	// Quantifier is a marker placed adjacent to the term it repeats,
	// carrying (Low, High); it is never itself a transition symbol.
	Quantifier

	// Reference is an unresolved name, valid only before a
	// RegularDefinition's cross-referencing pass substitutes it for the
	// RegExpr it names.
	Reference
)

// Unbounded is the High value of a Quantifier Element whose upper bound is
// infinite (the `*`, `+`, and `{n,}` forms).
const Unbounded = -1

// Element is a hashable language atom. Only Literal,
// Quantifier, and Reference carry payload; Empty and Unmatchable are
// identified by Kind alone.
type Element struct {
	Kind    Kind
	Literal rune
	Low     int
	High    int
	Name    string
}

// Lit builds a Literal Element.
func Lit(r rune) Element { return Element{Kind: Literal, Literal: r} }

// Quant builds a Quantifier marker Element.
func Quant(low, high int) Element { return Element{Kind: Quantifier, Low: low, High: high} }

// Ref builds an unresolved Reference Element.
func Ref(name string) Element { return Element{Kind: Reference, Name: name} }

func (e Element) String() string {
	switch e.Kind {
	case Literal:
		return string(e.Literal)
	case Empty:
		return "ε"
	case Unmatchable:
		return "∅"
	case Quantifier:
		if e.High == Unbounded {
			return fmt.Sprintf("{%d,}", e.Low)
		}
		return fmt.Sprintf("{%d,%d}", e.Low, e.High)
	case Reference:
		return "{" + e.Name + "}"
	default:
		return "?"
	}
}

// Alphabet is an unordered set of Elements, with union via Add/AddAll.
type Alphabet = util.KeySet[Element]

// NewAlphabet returns an empty, usable Alphabet.
func NewAlphabet() Alphabet {
	return util.NewKeySet[Element]()
}
