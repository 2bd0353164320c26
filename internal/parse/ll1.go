package parse

import (
	"strings"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/dekarrin/gudgeon/internal/util"
)

// ll1Parser drives a grammar.LL1Table through the standard table-driven
// predictive parse (Algorithm 4.31 builds the table; this is the
// accompanying driver from that same section of the purple dragon book).
type ll1Parser struct {
	table grammar.LL1Table
	gram  grammar.Grammar
}

// GenerateLL1Parser builds an LL(1) parser for g. g must already be LL(1);
// this does not perform left-recursion removal or left-factoring.
func GenerateLL1Parser(g grammar.Grammar) (Parser, error) {
	table, err := g.LLParseTable()
	if err != nil {
		return nil, err
	}
	return &ll1Parser{table: table, gram: g.Copy()}, nil
}

// NewLL1Parser builds a driver around a table constructed elsewhere (for
// instance one rehydrated from a cache rather than built fresh by
// GenerateLL1Parser).
func NewLL1Parser(table grammar.LL1Table, g grammar.Grammar) Parser {
	return &ll1Parser{table: table, gram: g}
}

func (ll1 *ll1Parser) Type() types.ParserType {
	return types.ParserLL1
}

func (ll1 *ll1Parser) TableString() string {
	return ll1.table.String()
}

// Parse drives stream against the predictive table, maintaining a symbol
// stack terminated by "$" and a parallel stack of the parse-tree nodes each
// stack symbol will become once expanded.
func (ll1 *ll1Parser) Parse(stream types.TokenStream) (types.ParseTree, error) {
	stack := util.Stack[string]{Of: []string{"$", ll1.gram.StartSymbol()}}
	pt := types.ParseTree{Value: ll1.gram.StartSymbol()}
	ptStack := util.Stack[*types.ParseTree]{Of: []*types.ParseTree{&pt}}

	next := stream.Peek()
	X := stack.Peek()
	node := ptStack.Peek()

	for X != "$" {
		if strings.ToLower(X) == X {
			t := ll1.gram.Term(X)
			if next.Class().ID() != t.ID() {
				return pt, langerr.ParseErrorf("expected %s but found %q at line %d col %d", t.Human(), next.Lexeme(), next.Line(), next.LinePos())
			}
			stream.Next()
			node.Terminal = true
			node.Source = next

			stack.Pop()
			ptStack.Pop()
			X = stack.Peek()
			if X != "$" {
				node = ptStack.Peek()
			}
			next = stream.Peek()
			continue
		}

		prod := ll1.table.Get(X, ll1.gram.TermFor(next.Class()))
		if prod.Equal(grammar.ErrorProduction) {
			return pt, langerr.ParseErrorf("unexpected %s at line %d col %d", next.Class().Human(), next.Line(), next.LinePos())
		}

		stack.Pop()
		ptStack.Pop()
		for i := len(prod) - 1; i >= 0; i-- {
			sym := prod[i]
			child := &types.ParseTree{Value: sym}
			if sym == grammar.Epsilon[0] {
				child.Terminal = true
			} else {
				stack.Push(sym)
			}
			node.Children = append([]*types.ParseTree{child}, node.Children...)
			if sym != grammar.Epsilon[0] {
				ptStack.Push(child)
			}
		}

		X = stack.Peek()
		if X != "$" {
			node = ptStack.Peek()
		}
	}

	return pt, nil
}
