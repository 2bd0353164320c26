package parse

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/types"
)

// LL1Snapshot and LRSnapshot are flattened, serialization-friendly copies
// of the two table shapes this package builds, used by a cache (internal/
// store) that wants to persist a compiled table without depending on the
// unexported table-builder types. A snapshot carries no reference back to
// the grammar it was built from; NewParser takes that separately, since
// reparsing a grammar source is cheap and the whole point of caching is to
// avoid redoing the expensive part (item-set/table construction).

// LL1Snapshot is a flattened copy of a grammar.LL1Table.
type LL1Snapshot struct {
	Table    map[string]map[string][]string
	Rendered string
}

// SnapshotLL1 flattens p's table if p is an LL(1) parser built by this
// package. ok is false for any other Parser.
func SnapshotLL1(p Parser) (LL1Snapshot, bool) {
	lp, ok := p.(*ll1Parser)
	if !ok {
		return LL1Snapshot{}, false
	}

	snap := LL1Snapshot{Table: map[string]map[string][]string{}, Rendered: lp.table.String()}
	for _, nt := range lp.table.NonTerminals() {
		row := map[string][]string{}
		for _, term := range lp.table.Terminals() {
			prod := lp.table.Get(nt, term)
			if prod.Equal(grammar.ErrorProduction) {
				continue
			}
			row[term] = []string(prod.Copy())
		}
		snap.Table[nt] = row
	}
	return snap, true
}

// NewParser rehydrates an LL(1) Parser from the snapshot without rerunning
// LLParseTable construction.
func (snap LL1Snapshot) NewParser(g grammar.Grammar) Parser {
	t := grammar.NewLL1Table()
	for nt, row := range snap.Table {
		for term, prod := range row {
			t.Set(nt, term, grammar.Production(prod))
		}
	}
	return NewLL1Parser(t, g)
}

// ActionSnapshot is one flattened ACTION table cell.
type ActionSnapshot struct {
	Type       LRActionType
	State      string
	Symbol     string
	Production []string
}

// LRSnapshot is a flattened copy of an ACTION/GOTO table pair, independent
// of which of the three LR builders produced it.
type LRSnapshot struct {
	Initial  string
	Actions  map[string]map[string]ActionSnapshot
	Gotos    map[string]map[string]string
	Rendered string
}

// stateEnumerator is implemented by every concrete LRParseTable this
// package builds. It's the one piece of information Snapshot needs that
// the public LRParseTable interface doesn't expose: every state name, so
// the full table can be walked rather than just queried cell-by-cell.
type stateEnumerator interface {
	states() []string
}

func (t *slrTable) states() []string {
	return t.lr0.States().Elements()
}

func (t *lr1Table) states() []string {
	return t.dfa.States().Elements()
}

// Snapshot flattens p's table if p is an LR parser (SLR(1), canonical-
// LR(1), or LALR(1)) built by this package. ok is false for an LL(1)
// parser or a Parser from elsewhere.
func Snapshot(p Parser) (LRSnapshot, bool) {
	lp, ok := p.(*lrParser)
	if !ok {
		return LRSnapshot{}, false
	}
	se, ok := lp.table.(stateEnumerator)
	if !ok {
		return LRSnapshot{}, false
	}

	terms := append(append([]string{}, lp.gram.Terminals()...), "$")
	nonTerms := lp.gram.NonTerminals()

	snap := LRSnapshot{
		Initial:  lp.table.Initial(),
		Actions:  map[string]map[string]ActionSnapshot{},
		Gotos:    map[string]map[string]string{},
		Rendered: lp.table.String(),
	}

	for _, s := range se.states() {
		actRow := map[string]ActionSnapshot{}
		for _, a := range terms {
			act := lp.table.Action(s, a)
			if act.Type == LRError {
				continue
			}
			actRow[a] = ActionSnapshot{
				Type:       act.Type,
				State:      act.State,
				Symbol:     act.Symbol,
				Production: []string(act.Production.Copy()),
			}
		}
		snap.Actions[s] = actRow

		gotoRow := map[string]string{}
		for _, nt := range nonTerms {
			if gs, err := lp.table.Goto(s, nt); err == nil {
				gotoRow[nt] = gs
			}
		}
		snap.Gotos[s] = gotoRow
	}

	return snap, true
}

// flatLRTable is an LRParseTable backed directly by an LRSnapshot's maps,
// with no DFA or item-set machinery behind it.
type flatLRTable struct {
	initial  string
	actions  map[string]map[string]ActionSnapshot
	gotos    map[string]map[string]string
	rendered string
}

func (f *flatLRTable) Initial() string {
	return f.initial
}

func (f *flatLRTable) Action(state, symbol string) LRAction {
	row, ok := f.actions[state]
	if !ok {
		return LRAction{Type: LRError}
	}
	a, ok := row[symbol]
	if !ok {
		return LRAction{Type: LRError}
	}
	return LRAction{Type: a.Type, State: a.State, Symbol: a.Symbol, Production: grammar.Production(a.Production)}
}

func (f *flatLRTable) Goto(state, symbol string) (string, error) {
	row, ok := f.gotos[state]
	if !ok {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	s, ok := row[symbol]
	if !ok {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return s, nil
}

func (f *flatLRTable) String() string {
	return f.rendered
}

// NewParser rehydrates an LR Parser from the snapshot without rerunning
// item-set/table construction. pt names the flavor the snapshot was
// originally built as.
func (snap LRSnapshot) NewParser(pt types.ParserType, g grammar.Grammar) Parser {
	table := &flatLRTable{
		initial:  snap.Initial,
		actions:  snap.Actions,
		gotos:    snap.Gotos,
		rendered: snap.Rendered,
	}
	return NewLRParser(table, pt, g)
}
