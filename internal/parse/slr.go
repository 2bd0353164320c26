package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gudgeon/internal/automaton"
	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/dekarrin/gudgeon/internal/util"
	"github.com/dekarrin/rosed"
)

// GenerateSimpleLRParser builds an SLR(1) parser for g. allowAmbig permits
// shift/reduce conflicts to resolve in favor of shift (reduce/reduce
// conflicts are always rejected); warnings records each conflict resolved
// this way.
func GenerateSimpleLRParser(g grammar.Grammar, allowAmbig bool) (Parser, []string, error) {
	table, warnings, err := constructSimpleLRParseTable(g, allowAmbig)
	if err != nil {
		return nil, warnings, err
	}
	return &lrParser{table: table, parseType: types.ParserSLR1, gram: g}, warnings, nil
}

// constructSimpleLRParseTable is Algorithm 4.46, "Constructing an
// SLR-parsing table": the LR(0) automaton of g' supplies GOTO directly, and
// ACTION is populated by checking, for every item in every state, whether
// it predicts a shift, a FOLLOW-guarded reduce, or accept.
func constructSimpleLRParseTable(g grammar.Grammar, allowAmbig bool) (LRParseTable, []string, error) {
	lr0 := newLR0ViablePrefixNFA(g).ToDFA()
	lr0.NumberStates()

	table := &slrTable{
		gPrime:     g.Augmented(),
		gStart:     g.StartSymbol(),
		gTerms:     g.Terminals(),
		gNonTerms:  g.NonTerminals(),
		lr0:        lr0,
		itemCache:  map[string]grammar.LR0Item{},
		allowAmbig: allowAmbig,
	}
	for _, item := range table.gPrime.LR0Items() {
		table.itemCache[item.String()] = item
	}

	var warnings []string
	for _, i := range table.lr0.States().Elements() {
		for _, a := range append(table.gPrime.Terminals(), "$") {
			if _, _, err := table.resolveAction(i, a, &warnings); err != nil {
				return nil, warnings, err
			}
		}
	}

	return table, warnings, nil
}

type slrTable struct {
	gPrime     grammar.Grammar
	gStart     string
	lr0        automaton.DFA[util.SVSet[grammar.LR0Item]]
	itemCache  map[string]grammar.LR0Item
	gTerms     []string
	gNonTerms  []string
	allowAmbig bool
}

// resolveAction computes (and, on the construction pass, validates) the
// ACTION table cell for (i, a), sharing logic between the pre-flight
// conflict scan and the live Action lookup.
func (slr *slrTable) resolveAction(i, a string, warnings *[]string) (LRAction, bool, error) {
	itemSet := slr.lr0.GetValue(i)

	var found bool
	var act LRAction

	for itemStr := range itemSet {
		item := slr.itemCache[itemStr]
		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right

		var followA util.StringSet
		if A != slr.gPrime.StartSymbol() {
			followA = slr.gPrime.FOLLOW(A)
		}

		if slr.gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			j := slr.lr0.Next(i, a)
			if j != "" {
				shiftAct := LRAction{Type: LRShift, State: j}
				if found && !shiftAct.Equal(act) {
					if isSR, _ := isShiftReduceConflict(act, shiftAct); isSR && slr.allowAmbig {
						if warnings != nil {
							*warnings = append(*warnings, makeLRConflictError("SLR(1)", act, shiftAct, a).Error())
						}
						act = shiftAct
					} else {
						return LRAction{}, false, makeLRConflictError("SLR(1)", act, shiftAct, a)
					}
				} else {
					act = shiftAct
					found = true
				}
			}
		}

		if len(beta) == 0 && A != slr.gPrime.StartSymbol() && followA.Has(a) {
			reduceAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if found && !reduceAct.Equal(act) {
				if isSR, _ := isShiftReduceConflict(act, reduceAct); isSR && slr.allowAmbig {
					if warnings != nil {
						*warnings = append(*warnings, makeLRConflictError("SLR(1)", act, reduceAct, a).Error())
					}
				} else {
					return LRAction{}, false, makeLRConflictError("SLR(1)", act, reduceAct, a)
				}
			} else {
				act = reduceAct
				found = true
			}
		}

		if a == "$" && A == slr.gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == slr.gStart && len(beta) == 0 {
			acceptAct := LRAction{Type: LRAccept}
			if found && !acceptAct.Equal(act) {
				return LRAction{}, false, makeLRConflictError("SLR(1)", act, acceptAct, a)
			}
			act = acceptAct
			found = true
		}
	}

	if !found {
		act.Type = LRError
	}
	return act, found, nil
}

func (slr *slrTable) Initial() string {
	return slr.lr0.Start
}

func (slr *slrTable) Goto(state, symbol string) (string, error) {
	newState := slr.lr0.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (slr *slrTable) Action(i, a string) LRAction {
	act, _, err := slr.resolveAction(i, a, nil)
	if err != nil {
		panic(err)
	}
	return act
}

func (slr *slrTable) GetDFA() automaton.DFA[util.StringSet] {
	return automaton.TransformDFA(slr.lr0, func(old util.SVSet[grammar.LR0Item]) util.StringSet {
		s := util.NewStringSet()
		for _, name := range old.Elements() {
			s.Add(old.Get(name).String())
		}
		return s
	})
}

func (slr *slrTable) String() string {
	return renderLRTable(slr.lr0.States(), slr.lr0.Start, slr.gTerms, slr.gNonTerms, slr.Action, slr.Goto)
}

// renderLRTable is the shared ACTION/GOTO pretty-printer used by every
// table flavor: one row per state (start state first), one column per
// terminal-then-nonterminal.
func renderLRTable(states util.StringSet, start string, terms, nonTerms []string, action func(state, term string) LRAction, gotoFn func(state, sym string) (string, error)) string {
	stateRefs := map[string]string{}
	stateNames := states.Elements()
	sort.Strings(stateNames)
	for i := range stateNames {
		if stateNames[i] == start {
			stateNames[0], stateNames[i] = stateNames[i], stateNames[0]
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := append(append([]string{}, terms...), "$")

	data := [][]string{}
	headers := []string{"S", "|"}
	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}
	headers = append(headers, "|")
	for _, nt := range nonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for _, i := range stateNames {
		row := []string{stateRefs[i], "|"}
		for _, t := range allTerms {
			act := action(i, t)
			cell := ""
			switch act.Type {
			case LRAccept:
				cell = "acc"
			case LRReduce:
				cell = fmt.Sprintf("r%s -> %s", act.Symbol, act.Production.String())
			case LRShift:
				cell = fmt.Sprintf("s%s", stateRefs[act.State])
			}
			row = append(row, cell)
		}
		row = append(row, "|")
		for _, nt := range nonTerms {
			cell := ""
			if gs, err := gotoFn(i, nt); err == nil {
				cell = stateRefs[gs]
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
