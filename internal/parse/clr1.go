package parse

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/automaton"
	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/dekarrin/gudgeon/internal/util"
)

// GenerateCanonicalLR1Parser builds a parser from the canonical collection
// of LR(1) items of g. g must be in the LR(1) class or a conflict error is
// returned.
func GenerateCanonicalLR1Parser(g grammar.Grammar) (Parser, error) {
	table, err := constructCanonicalLR1ParseTable(g)
	if err != nil {
		return nil, err
	}
	return &lrParser{table: table, parseType: types.ParserCLR1, gram: g}, nil
}

// constructCanonicalLR1ParseTable is Algorithm 4.56, "Construction of
// canonical-LR parsing tables": GOTO comes straight from the LR(1) DFA's
// transitions, and ACTION is populated per state by checking which of
// shift/reduce/accept each item in that state's set predicts.
func constructCanonicalLR1ParseTable(g grammar.Grammar) (LRParseTable, error) {
	lr1 := newLR1ViablePrefixDFA(g)

	table := &lr1Table{
		class:     "canonical-LR(1)",
		gPrime:    g.Augmented(),
		gStart:    g.StartSymbol(),
		gTerms:    g.Terminals(),
		gNonTerms: g.NonTerminals(),
		dfa:       lr1,
		itemCache: map[string]grammar.LR1Item{},
	}
	for _, s := range table.dfa.States().Elements() {
		for k, item := range table.dfa.GetValue(s) {
			table.itemCache[k] = item
		}
	}

	for _, i := range table.dfa.States().Elements() {
		for _, a := range append(table.gPrime.Terminals(), "$") {
			if _, err := table.resolveAction(i, a); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}

// lr1Table is the ACTION/GOTO pair shared by the canonical-LR(1) and
// LALR(1) builders; they differ only in which DFA backs them (the full
// canonical collection vs. its core-merged reduction) and in the
// human-readable class name used in conflict messages.
type lr1Table struct {
	class     string
	gPrime    grammar.Grammar
	gStart    string
	dfa       automaton.DFA[util.SVSet[grammar.LR1Item]]
	itemCache map[string]grammar.LR1Item
	gTerms    []string
	gNonTerms []string
}

func (t *lr1Table) resolveAction(i, a string) (LRAction, error) {
	itemSet := t.dfa.GetValue(i)

	var found bool
	var act LRAction

	for itemStr := range itemSet {
		item := t.itemCache[itemStr]
		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right
		b := item.Lookahead

		if t.gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			j := t.dfa.Next(i, a)
			if j != "" {
				newAct := LRAction{Type: LRShift, State: j}
				if found && !newAct.Equal(act) {
					return LRAction{}, makeLRConflictError(t.class, act, newAct, a)
				}
				act = newAct
				found = true
			}
		}

		if len(beta) == 0 && A != t.gPrime.StartSymbol() && a == b {
			newAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if found && !newAct.Equal(act) {
				return LRAction{}, makeLRConflictError(t.class, act, newAct, a)
			}
			act = newAct
			found = true
		}

		if a == "$" && b == "$" && A == t.gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == t.gStart && len(beta) == 0 {
			newAct := LRAction{Type: LRAccept}
			if found && !newAct.Equal(act) {
				return LRAction{}, makeLRConflictError(t.class, act, newAct, a)
			}
			act = newAct
			found = true
		}
	}

	if !found {
		act.Type = LRError
	}
	return act, nil
}

func (t *lr1Table) Action(i, a string) LRAction {
	act, err := t.resolveAction(i, a)
	if err != nil {
		panic(err)
	}
	return act
}

func (t *lr1Table) Goto(state, symbol string) (string, error) {
	newState := t.dfa.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (t *lr1Table) Initial() string {
	return t.dfa.Start
}

func (t *lr1Table) String() string {
	return renderLRTable(t.dfa.States(), t.dfa.Start, t.gTerms, t.gNonTerms, t.Action, t.Goto)
}
