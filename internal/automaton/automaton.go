// Package automaton implements generic non-deterministic and deterministic
// finite automata over an arbitrary per-state value type, including subset
// construction (NFA.ToDFA) and epsilon-closure computation. It has no
// knowledge of what the automata represent — regex fragments, LR viable
// prefixes, or anything else — callers attach meaning via the generic value
// parameter and by choosing what State values to query.
package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/gudgeon/internal/util"
)

// Epsilon is the transition input symbol representing an ε-move: it
// consumes no input.
const Epsilon = ""

// FATransition is one edge of a finite automaton: the symbol it consumes
// and the state it leads to.
type FATransition struct {
	input string
	next  string
}

func (t FATransition) String() string {
	inp := t.input
	if inp == Epsilon {
		inp = "ε"
	}
	return fmt.Sprintf("=(%s)=> %s", inp, t.next)
}

// DFAState is one state of a DFA: its name, attached value, accepting
// flag, and at most one outgoing transition per input symbol.
type DFAState[E any] struct {
	ordering    uint64
	name        string
	value       E
	transitions map[string]FATransition
	accepting   bool
}

func (ns DFAState[E]) Copy() DFAState[E] {
	cp := DFAState[E]{
		ordering:    ns.ordering,
		name:        ns.name,
		value:       ns.value,
		accepting:   ns.accepting,
		transitions: make(map[string]FATransition, len(ns.transitions)),
	}
	for k, v := range ns.transitions {
		cp.transitions[k] = v
	}
	return cp
}

func (ns DFAState[E]) String() string {
	var moves strings.Builder

	inputs := util.OrderedKeys(ns.transitions)
	for i, input := range inputs {
		moves.WriteString(ns.transitions[input].String())
		if i+1 < len(inputs) {
			moves.WriteString(", ")
		}
	}

	str := fmt.Sprintf("(%s [%s])", ns.name, moves.String())
	if ns.accepting {
		str = "(" + str + ")"
	}
	return str
}

// NFAState is one state of an NFA: its name, attached value, accepting
// flag, and zero or more outgoing transitions per input symbol (including
// Epsilon).
type NFAState[E any] struct {
	name        string
	value       E
	transitions map[string][]FATransition
	accepting   bool
}

func (ns NFAState[E]) Copy() NFAState[E] {
	cp := NFAState[E]{
		name:        ns.name,
		value:       ns.value,
		accepting:   ns.accepting,
		transitions: make(map[string][]FATransition, len(ns.transitions)),
	}
	for k, v := range ns.transitions {
		cp.transitions[k] = append([]FATransition(nil), v...)
	}
	return cp
}

func (ns NFAState[E]) String() string {
	var moves strings.Builder

	inputs := util.OrderedKeys(ns.transitions)
	for i, input := range inputs {
		var tStrings []string
		for _, t := range ns.transitions[input] {
			tStrings = append(tStrings, t.String())
		}
		sort.Strings(tStrings)

		for tIdx, t := range tStrings {
			moves.WriteString(t)
			if tIdx+1 < len(tStrings) || i+1 < len(inputs) {
				moves.WriteString(", ")
			}
		}
	}

	str := fmt.Sprintf("(%s [%s])", ns.name, moves.String())
	if ns.accepting {
		str = "(" + str + ")"
	}
	return str
}
