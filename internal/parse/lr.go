package parse

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/dekarrin/gudgeon/internal/util"
)

// LRParseTable is the ACTION/GOTO pair an LR driver consumes. Table flavor
// (SLR(1), canonical-LR(1), LALR(1)) is an implementation detail behind
// this interface; the driver below is shared by all three.
type LRParseTable interface {
	// Initial returns the state the driver starts in.
	Initial() string

	// Action returns what to do given the current state and the lookahead
	// terminal's symbol.
	Action(state, symbol string) LRAction

	// Goto returns the state to push after a reduce to non-terminal symbol
	// from state, or an error if that transition is undefined.
	Goto(state, symbol string) (string, error)

	// String renders the table for debugging/display.
	String() string
}

// lrParser drives any LRParseTable through Algorithm 4.44, "LR-parsing
// algorithm".
type lrParser struct {
	table     LRParseTable
	parseType types.ParserType
	gram      grammar.Grammar
	trace     io.Writer
}

// NewLRParser builds a driver around a table constructed elsewhere (for
// instance one rehydrated from a cache rather than built fresh by
// GenerateSimpleLRParser/GenerateCanonicalLR1Parser/GenerateLALR1Parser).
// pt should name the flavor the table was actually built as, since the
// driver itself has no way to tell SLR(1), canonical-LR(1), and LALR(1)
// tables apart.
func NewLRParser(table LRParseTable, pt types.ParserType, g grammar.Grammar) Parser {
	return &lrParser{table: table, parseType: pt, gram: g}
}

// SetTrace directs progress output (states pushed/popped, actions taken) to
// w. A nil w (the default) disables tracing.
func (lr *lrParser) SetTrace(w io.Writer) {
	lr.trace = w
}

func (lr *lrParser) Type() types.ParserType {
	return lr.parseType
}

func (lr *lrParser) TableString() string {
	return lr.table.String()
}

func (lr lrParser) notifyTrace(fmtStr string, args ...any) {
	if lr.trace == nil {
		return
	}
	fmt.Fprintf(lr.trace, fmtStr+"\n", args...)
}

// Parse consumes stream using the shift-reduce driver of Algorithm 4.44,
// building a parse tree bottom-up out of a token buffer and a stack of
// completed subtree roots.
func (lr *lrParser) Parse(stream types.TokenStream) (types.ParseTree, error) {
	stateStack := util.Stack[string]{Of: []string{lr.table.Initial()}}
	tokenBuffer := util.Stack[types.Token]{}
	subTreeRoots := util.Stack[*types.ParseTree]{}

	a := stream.Next()
	lr.notifyTrace("next token: %s %q", a.Class().ID(), a.Lexeme())

	for {
		s := stateStack.Peek()
		act := lr.table.Action(s, a.Class().ID())
		lr.notifyTrace("state %s, action %s", s, act.String())

		switch act.Type {
		case LRShift:
			tokenBuffer.Push(a)
			stateStack.Push(act.State)
			a = stream.Next()
			lr.notifyTrace("next token: %s %q", a.Class().ID(), a.Lexeme())
		case LRReduce:
			A := act.Symbol
			beta := act.Production

			node := &types.ParseTree{Value: A}
			for i := len(beta) - 1; i >= 0; i-- {
				sym := beta[i]
				var sub *types.ParseTree
				if strings.ToLower(sym) == sym {
					tok := tokenBuffer.Pop()
					sub = &types.ParseTree{Terminal: true, Value: tok.Class().ID(), Source: tok}
				} else {
					sub = subTreeRoots.Pop()
				}
				node.Children = append([]*types.ParseTree{sub}, node.Children...)
			}
			subTreeRoots.Push(node)

			for i := 0; i < len(beta); i++ {
				stateStack.Pop()
			}

			t := stateStack.Peek()
			toPush, err := lr.table.Goto(t, A)
			if err != nil {
				return types.ParseTree{}, langerr.ParseErrorf("no valid transition on %q at line %d col %d", A, a.Line(), a.LinePos())
			}
			stateStack.Push(toPush)
		case LRAccept:
			pt := subTreeRoots.Pop()
			return *pt, nil
		case LRError:
			expected := lr.findExpectedTokens(s)
			return types.ParseTree{}, langerr.ParseErrorf("unexpected %s at line %d col %d; %s", a.Class().Human(), a.Line(), a.LinePos(), lr.expectedString(expected))
		}
	}
}

func (lr lrParser) expectedString(expected []types.TokenClass) string {
	var sb strings.Builder
	sb.WriteString("expected ")

	finalOr := len(expected) > 1
	commas := len(expected) > 2

	for i := range expected {
		t := expected[i]
		if i == 0 {
			sb.WriteString(util.ArticleFor(t.Human(), false))
			sb.WriteRune(' ')
		}
		if finalOr && i+1 == len(expected) {
			sb.WriteString(" or ")
		}
		sb.WriteString(t.Human())
		if commas && i+1 < len(expected) {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// findExpectedTokens returns every terminal class whose ACTION entry at
// stateName is not LRError.
func (lr lrParser) findExpectedTokens(stateName string) []types.TokenClass {
	terms := lr.gram.Terminals()

	var classes []types.TokenClass
	for _, term := range terms {
		t := lr.gram.Term(term)
		if lr.table.Action(stateName, term).Type != LRError {
			classes = append(classes, t)
		}
	}
	return classes
}
