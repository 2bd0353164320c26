package parse

import "github.com/dekarrin/gudgeon/internal/types"

// Parser is the common surface of the LL(1) and LR (SLR(1)/canonical-LR(1)/
// LALR(1)) drivers: given a token stream, produce a parse tree, and report
// what flavor of table is driving it. Callers that only need to run a
// parser built elsewhere (a cached table rehydrated by internal/store, for
// instance) can hold one of these without caring which table construction
// produced it.
type Parser interface {
	// Type reports which table-construction flavor built this parser.
	Type() types.ParserType

	// TableString renders the underlying table for debugging/display.
	TableString() string

	// Parse consumes stream and returns the resulting parse tree.
	Parse(stream types.TokenStream) (types.ParseTree, error)
}
