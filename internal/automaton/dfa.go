package automaton

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gudgeon/internal/util"
)

// DFA is a deterministic finite automaton whose states carry a value of
// type E.
type DFA[E any] struct {
	order  uint64
	states map[string]DFAState[E]
	Start  string
}

// Copy returns a duplicate of this DFA.
func (dfa DFA[E]) Copy() DFA[E] {
	copied := DFA[E]{Start: dfa.Start, states: make(map[string]DFAState[E], len(dfa.states)), order: dfa.order}
	for k := range dfa.states {
		copied.states[k] = dfa.states[k].Copy()
	}
	return copied
}

// TransformDFA builds a new DFA with the same shape as dfa but with every
// state's value passed through transform.
func TransformDFA[E1, E2 any](dfa DFA[E1], transform func(old E1) E2) DFA[E2] {
	copied := DFA[E2]{states: make(map[string]DFAState[E2], len(dfa.states)), Start: dfa.Start, order: dfa.order}
	for k := range dfa.states {
		old := dfa.states[k]
		ns := DFAState[E2]{name: old.name, value: transform(old.value), transitions: make(map[string]FATransition, len(old.transitions)), accepting: old.accepting, ordering: old.ordering}
		for sym := range old.transitions {
			ns.transitions[sym] = old.transitions[sym]
		}
		copied.states[k] = ns
	}
	return copied
}

// DFAToNFA widens dfa into the NFA type (still de-facto deterministic,
// but now able to accept non-deterministic transitions if added to).
func DFAToNFA[E any](dfa DFA[E]) NFA[E] {
	nfa := NFA[E]{Start: dfa.Start, states: map[string]NFAState[E]{}}
	for sName := range dfa.states {
		dState := dfa.states[sName]
		nState := NFAState[E]{name: dState.name, value: dState.value, transitions: map[string][]FATransition{}, accepting: dState.accepting}
		for sym := range dState.transitions {
			t := dState.transitions[sym]
			nState.transitions[sym] = []FATransition{{input: t.input, next: t.next}}
		}
		nfa.states[sName] = nState
	}
	return nfa
}

// NumberStates renames every state to a small increasing integer; the
// start state is always renumbered to "0".
func (dfa *DFA[E]) NumberStates() {
	if _, ok := dfa.states[dfa.Start]; !ok {
		panic("can't number states of DFA with no start state set")
	}
	origStateNames := util.OrderedKeys(dfa.States())

	startIdx := -1
	for i := range origStateNames {
		if origStateNames[i] == dfa.Start {
			startIdx = i
			break
		}
	}
	origStateNames = append(origStateNames[:startIdx], origStateNames[startIdx+1:]...)
	origStateNames = append([]string{dfa.Start}, origStateNames...)

	numMapping := map[string]string{}
	for i, name := range origStateNames {
		numMapping[name] = fmt.Sprintf("%d", i)
	}

	newDfa := &DFA[E]{states: make(map[string]DFAState[E]), Start: numMapping[dfa.Start]}

	for _, name := range origStateNames {
		st := dfa.states[name]
		newName := numMapping[name]
		newDfa.AddState(newName, st.accepting)
		newSt := newDfa.states[newName]
		newSt.ordering = st.ordering
		newDfa.states[newName] = newSt
		newDfa.SetValue(newName, st.value)
	}
	for _, name := range origStateNames {
		st := dfa.states[name]
		from := numMapping[name]
		for sym := range st.transitions {
			newDfa.AddTransition(from, sym, numMapping[st.transitions[sym].next])
		}
	}

	dfa.states = newDfa.states
	dfa.Start = newDfa.Start
}

func (dfa *DFA[E]) SetValue(state string, v E) {
	s, ok := dfa.states[state]
	if !ok {
		panic(fmt.Sprintf("setting value on non-existing state: %q", state))
	}
	s.value = v
	dfa.states[state] = s
}

func (dfa *DFA[E]) GetValue(state string) E {
	s, ok := dfa.states[state]
	if !ok {
		panic(fmt.Sprintf("getting value on non-existing state: %q", state))
	}
	return s.value
}

// IsAccepting returns whether state is an accepting state. Returns false
// if the state does not exist.
func (dfa DFA[E]) IsAccepting(state string) bool {
	s, ok := dfa.states[state]
	return ok && s.accepting
}

// Validate reports unreachable non-start states, transitions to states
// that do not exist, or a start state that does not exist.
func (dfa DFA[E]) Validate() error {
	var errs []string

	for sName := range dfa.states {
		if sName == dfa.Start {
			continue
		}
		reachable := false
		for otherName, st := range dfa.states {
			if otherName == sName {
				continue
			}
			for _, t := range st.transitions {
				if t.next == sName {
					reachable = true
					break
				}
			}
			if reachable {
				break
			}
		}
		if !reachable {
			errs = append(errs, fmt.Sprintf("no transitions to non-start state %q", sName))
		}
	}

	for sName, st := range dfa.states {
		for symbol, t := range st.transitions {
			if _, ok := dfa.states[t.next]; !ok {
				errs = append(errs, fmt.Sprintf("state %q transitions to non-existing state on %q: %q", sName, symbol, t.next))
			}
		}
	}

	if _, ok := dfa.states[dfa.Start]; !ok {
		errs = append(errs, fmt.Sprintf("start state does not exist: %q", dfa.Start))
	}

	if len(errs) > 0 {
		return fmt.Errorf(strings.Join(errs, "\n"))
	}
	return nil
}

// States returns the name of every state in the DFA.
func (dfa DFA[E]) States() util.StringSet {
	states := util.NewStringSet()
	for k := range dfa.states {
		states.Add(k)
	}
	return states
}

// Next returns the state reached from fromState on input, or "" if there
// is none.
func (dfa DFA[E]) Next(fromState string, input string) string {
	state, ok := dfa.states[fromState]
	if !ok {
		return ""
	}
	return state.transitions[input].next
}

// AllTransitionsTo returns every (fromState, input) pair whose transition
// leads to toState.
func (dfa DFA[E]) AllTransitionsTo(toState string) [][2]string {
	if _, ok := dfa.states[toState]; !ok {
		return nil
	}
	var transitions [][2]string
	for _, sName := range util.OrderedKeys(dfa.states) {
		st := dfa.states[sName]
		for k := range st.transitions {
			if st.transitions[k].next == toState {
				transitions = append(transitions, [2]string{sName, k})
			}
		}
	}
	return transitions
}

func (dfa *DFA[E]) RemoveState(state string) {
	if _, ok := dfa.states[state]; !ok {
		return
	}
	if len(dfa.AllTransitionsTo(state)) > 0 {
		panic("can't remove state that is currently traversed to")
	}
	delete(dfa.states, state)
}

func (dfa *DFA[E]) AddState(state string, accepting bool) {
	if _, ok := dfa.states[state]; ok {
		return
	}
	if dfa.states == nil {
		dfa.states = map[string]DFAState[E]{}
	}
	dfa.states[state] = DFAState[E]{ordering: dfa.order, name: state, transitions: make(map[string]FATransition), accepting: accepting}
	dfa.order++
}

func (dfa *DFA[E]) RemoveTransition(fromState string, input string, toState string) {
	curFromState, ok := dfa.states[fromState]
	if !ok {
		return
	}
	if curFromState.transitions[input].next != toState {
		return
	}
	delete(curFromState.transitions, input)
}

func (dfa *DFA[E]) AddTransition(fromState string, input string, toState string) {
	curFromState, ok := dfa.states[fromState]
	if !ok {
		panic(fmt.Sprintf("add transition from non-existent state %q", fromState))
	}
	if _, ok := dfa.states[toState]; !ok {
		panic(fmt.Sprintf("add transition to non-existent state %q", toState))
	}
	curFromState.transitions[input] = FATransition{input: input, next: toState}
	dfa.states[fromState] = curFromState
}

func (dfa DFA[E]) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<START: %q, STATES:", dfa.Start))

	orderedStates := util.OrderedKeys(dfa.states)
	for i := range orderedStates {
		sb.WriteString("\n\t")
		sb.WriteString(dfa.states[orderedStates[i]].String())
		if i+1 < len(dfa.states) {
			sb.WriteRune(',')
		} else {
			sb.WriteRune('\n')
		}
	}
	sb.WriteRune('>')
	return sb.String()
}
