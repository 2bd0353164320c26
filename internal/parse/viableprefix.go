package parse

import (
	"sort"
	"strings"

	"github.com/dekarrin/gudgeon/internal/automaton"
	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/util"
)

// newLR0ViablePrefixNFA builds the NFA of LR(0) items for g: one state per
// item, with a move on X from A -> α.Xβ to A -> αX.β, and an ε-move from
// A -> α.Xβ to every X -> .γ when X is a non-terminal. g is augmented
// first, so callers get the S' -> S start item for free.
func newLR0ViablePrefixNFA(g grammar.Grammar) automaton.NFA[grammar.LR0Item] {
	oldStart := g.StartSymbol()
	g = g.Augmented()

	nfa := automaton.NFA[grammar.LR0Item]{}
	nfa.Start = grammar.LR0Item{NonTerminal: g.StartSymbol(), Right: []string{oldStart}}.String()

	items := g.LR0Items()
	for i := range items {
		nfa.AddState(items[i].String(), true)
		nfa.SetValue(items[i].String(), items[i])
	}

	for i := range items {
		item := items[i]
		if len(item.Right) < 1 {
			continue
		}

		alpha := item.Left
		X := item.Right[0]
		beta := item.Right[1:]

		toItem := grammar.LR0Item{
			NonTerminal: item.NonTerminal,
			Left:        append(append([]string{}, alpha...), X),
			Right:       beta,
		}
		nfa.AddTransition(item.String(), X, toItem.String())

		if g.IsTerminal(X) {
			continue
		}
		for _, gamma := range g.Rule(X).Productions {
			prodState := grammar.LR0Item{NonTerminal: X, Right: gamma}
			nfa.AddTransition(item.String(), automaton.Epsilon, prodState.String())
		}
	}

	return nfa
}

// newLR1ViablePrefixDFA builds the canonical collection of sets of LR(1)
// items for g directly (closure + GOTO on item sets, not by simulating an
// NFA), per the worklist construction every canonical-LR(1) and LALR(1)
// table builder starts from.
func newLR1ViablePrefixDFA(g grammar.Grammar) automaton.DFA[util.SVSet[grammar.LR1Item]] {
	oldStart := g.StartSymbol()
	g = g.Augmented()

	initialItem := grammar.LR1Item{
		LR0Item:   grammar.LR0Item{NonTerminal: g.StartSymbol(), Right: []string{oldStart}},
		Lookahead: "$",
	}

	startSet := g.LR1_CLOSURE(util.SVSet[grammar.LR1Item]{initialItem.String(): initialItem})

	stateSets := util.NewSVSet[util.SVSet[grammar.LR1Item]]()
	stateSets.Set(startSet.StringOrdered(), startSet)
	type trans struct {
		sym, to string
	}
	transitions := map[string]map[string]trans{}

	updates := true
	for updates {
		updates = false

		for _, I := range stateSets {
			for _, item := range I {
				if len(item.Right) == 0 || item.Right[0] == grammar.Epsilon[0] {
					continue
				}
				s := item.Right[0]

				newSet := g.LR1_GOTO(I, s)
				if newSet.Empty() {
					continue
				}

				if !stateSets.Has(newSet.StringOrdered()) {
					updates = true
					stateSets.Set(newSet.StringOrdered(), newSet)
				}

				stateTransitions, ok := transitions[I.StringOrdered()]
				if !ok {
					stateTransitions = map[string]trans{}
				}
				if stateTransitions[s].to != newSet.StringOrdered() {
					updates = true
					stateTransitions[s] = trans{sym: s, to: newSet.StringOrdered()}
					transitions[I.StringOrdered()] = stateTransitions
				}
			}
		}
	}

	dfa := automaton.DFA[util.SVSet[grammar.LR1Item]]{}
	for sName, state := range stateSets {
		dfa.AddState(sName, true)
		dfa.SetValue(sName, state)
	}
	for onState, stateTrans := range transitions {
		for _, t := range stateTrans {
			dfa.AddTransition(onState, t.sym, t.to)
		}
	}
	dfa.Start = startSet.StringOrdered()

	return dfa
}

// newLALR1ViablePrefixDFA builds the LALR(1) automaton for g by building
// the full canonical-LR(1) collection and merging every pair of states
// whose LR(0) cores agree (Dragon Book's state-merging construction of
// LALR(1) sets of items, §4.7.3). A grammar whose merge introduces a
// reduce/reduce conflict absent from the canonical collection is reported
// as such by the table builder, not here.
func newLALR1ViablePrefixDFA(g grammar.Grammar) automaton.DFA[util.SVSet[grammar.LR1Item]] {
	lr1 := newLR1ViablePrefixDFA(g)

	coreOf := map[string]string{}
	groups := map[string][]string{}
	for _, s := range lr1.States().Elements() {
		key := grammar.CoreSet(lr1.GetValue(s)).StringOrdered()
		coreOf[s] = key
		groups[key] = append(groups[key], s)
	}

	mergedName := map[string]string{}
	mergedValue := map[string]util.SVSet[grammar.LR1Item]{}
	for key, members := range groups {
		sort.Strings(members)
		merged := util.NewSVSet[grammar.LR1Item]()
		for _, m := range members {
			merged.AddAll(lr1.GetValue(m))
		}
		mergedValue[key] = merged
		mergedName[key] = strings.Join(members, "+")
	}

	out := automaton.DFA[util.SVSet[grammar.LR1Item]]{}
	for key := range groups {
		out.AddState(mergedName[key], true)
		out.SetValue(mergedName[key], mergedValue[key])
	}
	out.Start = mergedName[coreOf[lr1.Start]]

	type edge struct{ from, sym, to string }
	var edges []edge
	for _, d := range lr1.States().Elements() {
		for _, ft := range lr1.AllTransitionsTo(d) {
			edges = append(edges, edge{from: ft[0], sym: ft[1], to: d})
		}
	}
	seen := map[[3]string]bool{}
	for _, e := range edges {
		key := [3]string{mergedName[coreOf[e.from]], e.sym, mergedName[coreOf[e.to]]}
		if seen[key] {
			continue
		}
		seen[key] = true
		out.AddTransition(key[0], key[1], key[2])
	}

	return out
}
