package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gudgeon/internal/util"
)

// LR0Item is a grammar rule with a dot marking how much of its right-hand
// side has been matched so far: NonTerminal -> Left . Right.
type LR0Item struct {
	NonTerminal string
	Left        []string
	Right       []string
}

func (lr0 LR0Item) Equal(o any) bool {
	other, ok := o.(LR0Item)
	if !ok {
		otherPtr, ok := o.(*LR0Item)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if lr0.NonTerminal != other.NonTerminal {
		return false
	} else if len(lr0.Left) != len(other.Left) || len(lr0.Right) != len(other.Right) {
		return false
	}
	for i := range lr0.Left {
		if lr0.Left[i] != other.Left[i] {
			return false
		}
	}
	for i := range lr0.Right {
		if lr0.Right[i] != other.Right[i] {
			return false
		}
	}
	return true
}

// LR1Item is an LR0Item with an attached lookahead terminal.
type LR1Item struct {
	LR0Item
	Lookahead string
}

// EqualCoreSets reports whether s1 and s2 contain the same LR0 cores,
// ignoring lookaheads — the test LALR(1) state merging uses.
func EqualCoreSets(s1, s2 util.VSet[string, LR1Item]) bool {
	return CoreSet(s1).Equal(CoreSet(s2))
}

// CoreSet strips the lookaheads from a set of LR1Items, leaving the LR0
// core used to decide whether two canonical-LR(1) states should be
// merged into one LALR(1) state.
func CoreSet(s util.VSet[string, LR1Item]) util.SVSet[LR0Item] {
	cores := util.NewSVSet[LR0Item]()
	for _, elem := range s.Elements() {
		lr1 := s.Get(elem)
		cores.Set(lr1.LR0Item.String(), lr1.LR0Item)
	}
	return cores
}

func (lr1 LR1Item) Equal(o any) bool {
	other, ok := o.(LR1Item)
	if !ok {
		otherPtr, ok := o.(*LR1Item)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	return lr1.LR0Item.Equal(other.LR0Item) && lr1.Lookahead == other.Lookahead
}

func (lr1 LR1Item) Copy() LR1Item {
	cp := LR1Item{Lookahead: lr1.Lookahead}
	cp.NonTerminal = lr1.NonTerminal
	cp.Left = append([]string(nil), lr1.Left...)
	cp.Right = append([]string(nil), lr1.Right...)
	return cp
}

func MustParseLR0Item(s string) LR0Item {
	i, err := ParseLR0Item(s)
	if err != nil {
		panic(err.Error())
	}
	return i
}

func MustParseLR1Item(s string) LR1Item {
	i, err := ParseLR1Item(s)
	if err != nil {
		panic(err.Error())
	}
	return i
}

func ParseLR0Item(s string) (LR0Item, error) {
	sides := strings.Split(s, "->")
	if len(sides) != 2 {
		return LR0Item{}, fmt.Errorf("not an item of form 'NONTERM -> ALPHA.BETA': %q", s)
	}
	nonTerminal := strings.TrimSpace(sides[0])
	if nonTerminal == "" {
		return LR0Item{}, fmt.Errorf("empty nonterminal name not allowed for item")
	}

	parsedItem := LR0Item{NonTerminal: nonTerminal}

	prodStrings := strings.Split(strings.TrimSpace(sides[1]), ".")
	if len(prodStrings) != 2 {
		return LR0Item{}, fmt.Errorf("item must have exactly one dot")
	}

	alphaStr := strings.TrimSpace(prodStrings[0])
	betaStr := strings.TrimSpace(prodStrings[1])

	var parsedAlpha, parsedBeta []string
	for _, aSym := range strings.Split(alphaStr, " ") {
		aSym = strings.TrimSpace(aSym)
		if aSym == "" {
			continue
		}
		if strings.ToLower(aSym) == "ε" {
			aSym = ""
		}
		parsedAlpha = append(parsedAlpha, aSym)
	}
	for _, bSym := range strings.Split(betaStr, " ") {
		bSym = strings.TrimSpace(bSym)
		if bSym == "" {
			continue
		}
		if strings.ToLower(bSym) == "ε" {
			bSym = ""
		}
		parsedBeta = append(parsedBeta, bSym)
	}

	parsedItem.Left = parsedAlpha
	parsedItem.Right = parsedBeta
	return parsedItem, nil
}

func ParseLR1Item(s string) (LR1Item, error) {
	sides := strings.Split(s, ",")
	if len(sides) != 2 {
		return LR1Item{}, fmt.Errorf("not an item of form 'NONTERM -> ALPHA.BETA, a': %q", s)
	}

	item := LR1Item{}
	var err error
	item.LR0Item, err = ParseLR0Item(sides[0])
	if err != nil {
		return item, err
	}
	item.Lookahead = strings.TrimSpace(sides[1])
	return item, nil
}

func (item LR0Item) String() string {
	nonTermPhrase := ""
	if item.NonTerminal != "" {
		nonTermPhrase = fmt.Sprintf("%s -> ", item.NonTerminal)
	}

	left := strings.Join(item.Left, " ")
	right := strings.Join(item.Right, " ")
	if len(left) > 0 {
		left += " "
	}
	if len(right) > 0 {
		right = " " + right
	}

	return fmt.Sprintf("%s%s.%s", nonTermPhrase, left, right)
}

func (item LR1Item) String() string {
	return fmt.Sprintf("%s, %s", item.LR0Item.String(), item.Lookahead)
}
