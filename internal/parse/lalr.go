package parse

import (
	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/types"
)

// GenerateLALR1Parser builds a parser from the LALR(1) collection of items
// of g (the canonical-LR(1) collection with same-core states merged). g
// must be in the LALR(1) class or a conflict error is returned — most
// commonly a reduce/reduce conflict introduced by a merge that would not
// have existed in the full canonical-LR(1) collection.
func GenerateLALR1Parser(g grammar.Grammar) (Parser, error) {
	table, err := constructLALR1ParseTable(g)
	if err != nil {
		return nil, err
	}
	return &lrParser{table: table, parseType: types.ParserLALR1, gram: g}, nil
}

// constructLALR1ParseTable is Algorithm 4.59, "An easy, but space-consuming
// LALR table construction": build the canonical-LR(1) collection, merge
// states with identical LR(0) cores, then build ACTION/GOTO from the
// result exactly as Algorithm 4.56 does for the unmerged collection.
func constructLALR1ParseTable(g grammar.Grammar) (LRParseTable, error) {
	dfa := newLALR1ViablePrefixDFA(g)

	table := &lr1Table{
		class:     "LALR(1)",
		gPrime:    g.Augmented(),
		gStart:    g.StartSymbol(),
		gTerms:    g.Terminals(),
		gNonTerms: g.NonTerminals(),
		dfa:       dfa,
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
