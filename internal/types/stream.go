package types

// ParserType names the table-construction flavor a grammar was compiled
// with, for diagnostics and for the langconfig project format.
type ParserType int

const (
	ParserLL1 ParserType = iota
	ParserSLR1
	ParserCLR1
	ParserLALR1
)

func (pt ParserType) String() string {
	switch pt {
	case ParserLL1:
		return "LL(1)"
	case ParserSLR1:
		return "SLR(1)"
	case ParserCLR1:
		return "CLR(1)"
	case ParserLALR1:
		return "LALR(1)"
	default:
		return "UNKNOWN"
	}
}
