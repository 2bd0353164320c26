package automaton

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gudgeon/internal/util"
)

// NFA is a non-deterministic finite automaton whose states carry a value
// of type E. Transitions may be non-deterministic and may include Epsilon
// moves.
type NFA[E any] struct {
	states map[string]NFAState[E]
	Start  string
}

// NFATransitionTo names one edge leading into a state: its source, the
// symbol consumed, and its index within that source's transition list for
// that symbol (used to rewrite a specific edge in place).
type NFATransitionTo struct {
	from  string
	input string
	index int
}

// From returns the source state of this transition.
func (t NFATransitionTo) From() string { return t.from }

// Input returns the input symbol consumed by this transition.
func (t NFATransitionTo) Input() string { return t.input }

// Index returns this transition's position within its source state's
// transition list for Input(), for rewriting a specific edge in place.
func (t NFATransitionTo) Index() int { return t.index }

func (nfa NFA[E]) AcceptingStates() util.StringSet {
	accepting := util.NewStringSet()
	for name, st := range nfa.states {
		if st.accepting {
			accepting.Add(name)
		}
	}
	return accepting
}

// AllTransitionsTo returns every (fromState, input, index) triple whose
// transition leads to toState.
func (nfa NFA[E]) AllTransitionsTo(toState string) []NFATransitionTo {
	if _, ok := nfa.states[toState]; !ok {
		return nil
	}

	var transitions []NFATransitionTo
	for _, sName := range util.OrderedKeys(nfa.states) {
		state := nfa.states[sName]
		for k := range state.transitions {
			for i := range state.transitions[k] {
				if state.transitions[k][i].next == toState {
					transitions = append(transitions, NFATransitionTo{from: sName, input: k, index: i})
				}
			}
		}
	}
	return transitions
}

// Copy returns a duplicate of this NFA.
func (nfa NFA[E]) Copy() NFA[E] {
	copied := NFA[E]{Start: nfa.Start, states: make(map[string]NFAState[E], len(nfa.states))}
	for k := range nfa.states {
		copied.states[k] = nfa.states[k].Copy()
	}
	return copied
}

// States returns the name of every state in the NFA.
func (nfa NFA[E]) States() util.StringSet {
	states := util.NewStringSet()
	for k := range nfa.states {
		states.Add(k)
	}
	return states
}

// ToDFA converts the NFA into a deterministic automaton accepting the same
// language via subset construction (Dragon Book Algorithm 3.20): each DFA
// state is the ε-closure of a set of NFA states, reachable by MOVE-then-
// ε-closure on each input symbol from the start state's own closure.
func (nfa NFA[E]) ToDFA() DFA[util.SVSet[E]] {
	inputSymbols := nfa.InputSymbols()

	Dstart := nfa.EpsilonClosure(nfa.Start)

	markedStates := util.NewStringSet()
	Dstates := map[string]util.StringSet{}
	Dstates[Dstart.StringOrdered()] = Dstart

	dfa := DFA[util.SVSet[E]]{states: map[string]DFAState[util.SVSet[E]]{}}

	for {
		DstateNames := util.StringSetOf(util.OrderedKeys(Dstates))
		unmarkedStates := DstateNames.Difference(markedStates)

		if unmarkedStates.Len() < 1 {
			break
		}

		for _, Tname := range unmarkedStates.Elements() {
			T := Dstates[Tname]
			markedStates.Add(Tname)

			stateValues := util.NewSVSet[E]()
			for nfaStateName := range T {
				stateValues.Set(nfaStateName, nfa.GetValue(nfaStateName))
			}

			newDFAState := DFAState[util.SVSet[E]]{name: Tname, value: stateValues, transitions: map[string]FATransition{}}

			if T.Any(func(v string) bool { return nfa.states[v].accepting }) {
				newDFAState.accepting = true
			}

			for _, a := range util.Alphabetized(inputSymbols.Elements()) {
				if a == Epsilon {
					continue
				}

				U := nfa.EpsilonClosureOfSet(nfa.MOVE(T, a))
				if U.Empty() {
					continue
				}

				if !DstateNames.Has(U.StringOrdered()) {
					DstateNames.Add(U.StringOrdered())
					Dstates[U.StringOrdered()] = U
				}

				newDFAState.transitions[a] = FATransition{input: a, next: U.StringOrdered()}
			}

			dfa.states[Tname] = newDFAState
			if dfa.Start == "" {
				dfa.Start = Tname
			}
		}
	}

	return dfa
}

// InputSymbols returns every input symbol processed by some transition in
// the NFA (Epsilon excluded only from ToDFA's consumption, not from this
// listing).
func (nfa NFA[E]) InputSymbols() util.StringSet {
	symbols := util.NewStringSet()
	for sName := range nfa.states {
		for a := range nfa.states[sName].transitions {
			symbols.Add(a)
		}
	}
	return symbols
}

// MOVE returns the set of states reachable with exactly one transition on
// input a from some state in X (Dragon Book Algorithm 3.20, MOVE(T, a)).
func (nfa NFA[E]) MOVE(X util.ISet[string], a string) util.StringSet {
	moves := util.NewStringSet()
	for _, s := range X.Elements() {
		stateItem, ok := nfa.states[s]
		if !ok {
			continue
		}
		for _, t := range stateItem.transitions[a] {
			moves.Add(t.next)
		}
	}
	return moves
}

// directNFAToDFA converts nfa to a DFA without merging any states. It is
// not a construction algorithm; it fails if nfa is not already
// deterministic (at most one transition per state per symbol).
func directNFAToDFA[E any](nfa NFA[E]) (DFA[E], error) {
	dfa := DFA[E]{Start: nfa.Start, states: map[string]DFAState[E]{}}

	for sName := range nfa.states {
		nState := nfa.states[sName]
		dState := DFAState[E]{name: nState.name, value: nState.value, transitions: map[string]FATransition{}, accepting: nState.accepting}

		for sym := range nState.transitions {
			nTransList := nState.transitions[sym]
			goesTo := ""
			for i := range nTransList {
				if nTransList[i].next == "" {
					return DFA[E]{}, fmt.Errorf("state %q has empty transition-to for %q", nState.name, sym)
				}
				if goesTo == "" {
					goesTo = nTransList[i].next
					dState.transitions[sym] = FATransition{input: sym, next: nTransList[i].next}
				} else if nTransList[i].next != goesTo {
					return DFA[E]{}, fmt.Errorf("state %q has non-deterministic transition for symbol %q", nState.name, sym)
				}
			}
		}

		dfa.states[sName] = dState
	}

	return dfa, nil
}

// EpsilonClosureOfSet gives the set of states reachable from some state in
// X via zero or more ε-moves.
func (nfa NFA[E]) EpsilonClosureOfSet(X util.ISet[string]) util.StringSet {
	allClosures := util.NewStringSet()
	for _, s := range X.Elements() {
		allClosures.AddAll(nfa.EpsilonClosure(s))
	}
	return allClosures
}

// EpsilonClosure gives the set of states reachable from s via zero or more
// ε-moves.
func (nfa NFA[E]) EpsilonClosure(s string) util.StringSet {
	stateItem, ok := nfa.states[s]
	if !ok {
		return nil
	}

	closure := util.NewStringSet()
	checkingStates := util.Stack[NFAState[E]]{}
	checkingStates.Push(stateItem)

	for checkingStates.Len() > 0 {
		checking := checkingStates.Pop()
		if closure.Has(checking.name) {
			continue
		}
		closure.Add(checking.name)

		epsilonMoves, hasEpsilons := checking.transitions[Epsilon]
		if !hasEpsilons {
			continue
		}
		for _, move := range epsilonMoves {
			state, ok := nfa.states[move.next]
			if !ok {
				panic(fmt.Sprintf("points to invalid state: %q", move.next))
			}
			checkingStates.Push(state)
		}
	}

	return closure
}

func (nfa NFA[E]) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<START: %q, STATES:", nfa.Start))

	orderedStates := util.OrderedKeys(nfa.states)
	for i := range orderedStates {
		sb.WriteString("\n\t")
		sb.WriteString(nfa.states[orderedStates[i]].String())
		if i+1 < len(nfa.states) {
			sb.WriteRune(',')
		} else {
			sb.WriteRune('\n')
		}
	}
	sb.WriteRune('>')
	return sb.String()
}

// NumberStates renames every state to a small increasing integer; the
// start state is always renumbered to "0".
func (nfa *NFA[E]) NumberStates() {
	if _, ok := nfa.states[nfa.Start]; !ok {
		panic("can't number states of NFA with no start state set")
	}
	origStateNames := util.OrderedKeys(nfa.States())

	startIdx := -1
	for i := range origStateNames {
		if origStateNames[i] == nfa.Start {
			startIdx = i
			break
		}
	}
	origStateNames = append(origStateNames[:startIdx], origStateNames[startIdx+1:]...)
	origStateNames = append([]string{nfa.Start}, origStateNames...)

	numMapping := map[string]string{}
	for i, name := range origStateNames {
		numMapping[name] = fmt.Sprintf("%d", i)
	}

	newNfa := NFA[E]{states: make(map[string]NFAState[E]), Start: numMapping[nfa.Start]}

	for _, name := range origStateNames {
		st := nfa.states[name]
		newName := numMapping[name]
		newNfa.AddState(newName, st.accepting)
		newNfa.SetValue(newName, st.value)
	}
	for _, name := range origStateNames {
		st := nfa.states[name]
		from := numMapping[name]
		for sym := range st.transitions {
			for _, t := range st.transitions[sym] {
				newNfa.AddTransition(from, sym, numMapping[t.next])
			}
		}
	}

	nfa.states = newNfa.states
	nfa.Start = newNfa.Start
}

// Join combines two NFAs into one. fromToOther and otherToFrom give extra
// cross-NFA transitions as (fromState, symbol, toState) triples, addressed
// using each NFA's original state names. States from nfa are renamed
// "1:<name>" in the result; states from other are renamed "2:<name>".
// addAccept/removeAccept then override accepting status using the new,
// prefixed names.
func (nfa NFA[E]) Join(other NFA[E], fromToOther [][3]string, otherToFrom [][3]string, addAccept []string, removeAccept []string) (NFA[E], error) {
	if len(fromToOther) < 1 {
		return NFA[E]{}, fmt.Errorf("need to provide at least one mapping in fromToOther")
	}

	joined := NFA[E]{states: make(map[string]NFAState[E]), Start: "1:" + nfa.Start}

	addAcceptSet := util.StringSetOf(addAccept)
	removeAcceptSet := util.StringSetOf(removeAccept)

	for _, stateName := range util.OrderedKeys(nfa.states) {
		st := nfa.states[stateName]
		newName := "1:" + stateName
		accept := st.accepting
		if addAcceptSet.Has(newName) {
			accept = true
		} else if removeAcceptSet.Has(newName) {
			accept = false
		}
		joined.AddState(newName, accept)
		joined.SetValue(newName, st.value)
	}
	for _, stateName := range util.OrderedKeys(nfa.states) {
		st := nfa.states[stateName]
		from := "1:" + stateName
		for sym := range st.transitions {
			for _, t := range st.transitions[sym] {
				joined.AddTransition(from, sym, "1:"+t.next)
			}
		}
	}

	for _, stateName := range util.OrderedKeys(other.states) {
		st := other.states[stateName]
		newName := "2:" + stateName
		accept := st.accepting
		if addAcceptSet.Has(newName) {
			accept = true
		} else if removeAcceptSet.Has(newName) {
			accept = false
		}
		joined.AddState(newName, accept)
		joined.SetValue(newName, st.value)
	}
	for _, stateName := range util.OrderedKeys(other.states) {
		st := other.states[stateName]
		from := "2:" + stateName
		for sym := range st.transitions {
			for _, t := range st.transitions[sym] {
				joined.AddTransition(from, sym, "2:"+t.next)
			}
		}
	}

	for _, link := range fromToOther {
		joined.AddTransition("1:"+link[0], link[1], "2:"+link[2])
	}
	for _, link := range otherToFrom {
		joined.AddTransition("2:"+link[0], link[1], "1:"+link[2])
	}

	return joined, nil
}

func (nfa *NFA[E]) AddState(state string, accepting bool) {
	if _, ok := nfa.states[state]; ok {
		return
	}
	if nfa.states == nil {
		nfa.states = map[string]NFAState[E]{}
	}
	nfa.states[state] = NFAState[E]{name: state, transitions: make(map[string][]FATransition), accepting: accepting}
}

func (nfa *NFA[E]) SetValue(state string, v E) {
	s, ok := nfa.states[state]
	if !ok {
		panic(fmt.Sprintf("setting value on non-existing state: %q", state))
	}
	s.value = v
	nfa.states[state] = s
}

// SetAccepting changes whether state is an accepting state. Used by
// constructions (such as Thompson's) that build every state as
// non-accepting and only know which one is the true exit state once the
// whole fragment is assembled.
func (nfa *NFA[E]) SetAccepting(state string, accepting bool) {
	s, ok := nfa.states[state]
	if !ok {
		panic(fmt.Sprintf("setting accepting on non-existing state: %q", state))
	}
	s.accepting = accepting
	nfa.states[state] = s
}

func (nfa *NFA[E]) GetValue(state string) E {
	s, ok := nfa.states[state]
	if !ok {
		panic(fmt.Sprintf("getting value on non-existing state: %q", state))
	}
	return s.value
}

func (nfa *NFA[E]) AddTransition(fromState string, input string, toState string) {
	curFromState, ok := nfa.states[fromState]
	if !ok {
		panic(fmt.Sprintf("add transition from non-existent state %q", fromState))
	}
	if _, ok := nfa.states[toState]; !ok {
		panic(fmt.Sprintf("add transition to non-existent state %q", toState))
	}

	curFromState.transitions[input] = append(curFromState.transitions[input], FATransition{input: input, next: toState})
	nfa.states[fromState] = curFromState
}
