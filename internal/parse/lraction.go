package parse

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/langerr"
)

// LRActionType discriminates the four things an LR table cell can tell the
// driver to do.
type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

// LRAction is one ACTION table cell: what to do on a given (state, symbol)
// pair.
type LRAction struct {
	Type LRActionType

	// Production is used when Type is LRReduce: the β of A -> β.
	Production grammar.Production

	// Symbol is used when Type is LRReduce: the A of A -> β.
	Symbol string

	// State is the state to shift to; used only when Type is LRShift.
	State string
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRError:
		return "ACTION<error>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce %s -> %s>", act.Symbol, act.Production.String())
	case LRShift:
		return fmt.Sprintf("ACTION<shift %s>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

func (act LRAction) Equal(o any) bool {
	other, ok := o.(LRAction)
	if !ok {
		otherPtr, ok := o.(*LRAction)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return act.Type == other.Type &&
		act.Production.Equal(other.Production) &&
		act.State == other.State &&
		act.Symbol == other.Symbol
}

// isShiftReduceConflict reports whether act1/act2 form a shift/reduce pair
// and, if so, returns the shift action (the one allowAmbig resolution
// prefers).
func isShiftReduceConflict(act1, act2 LRAction) (isSR bool, shiftAct LRAction) {
	if act1.Type == LRReduce && act2.Type == LRShift {
		return true, act2
	}
	if act2.Type == LRReduce && act1.Type == LRShift {
		return true, act1
	}
	return false, act1
}

// makeLRConflictError builds a langerr KindLRConflict error describing why
// act1 and act2 cannot both occupy the same ACTION cell for onInput.
func makeLRConflictError(class string, act1, act2 LRAction, onInput string) error {
	switch {
	case act1.Type == LRReduce && act2.Type == LRShift || act1.Type == LRShift && act2.Type == LRReduce:
		reduceRule := act1.Symbol + " -> " + act1.Production.String()
		if act1.Type != LRReduce {
			reduceRule = act2.Symbol + " -> " + act2.Production.String()
		}
		return langerr.LRConflictf(class, "shift/reduce conflict on terminal %q (shift or reduce %s)", onInput, reduceRule)
	case act1.Type == LRReduce && act2.Type == LRReduce:
		reduce1 := act1.Symbol + " -> " + act1.Production.String()
		reduce2 := act2.Symbol + " -> " + act2.Production.String()
		return langerr.LRConflictf(class, "reduce/reduce conflict on terminal %q (reduce %s or reduce %s)", onInput, reduce1, reduce2)
	case act1.Type == LRAccept || act2.Type == LRAccept:
		nonAccept := act2
		if act2.Type == LRAccept {
			nonAccept = act1
		}
		if nonAccept.Type == LRShift {
			return langerr.LRConflictf(class, "accept/shift conflict on terminal %q", onInput)
		}
		if nonAccept.Type == LRReduce {
			reduce := nonAccept.Symbol + " -> " + nonAccept.Production.String()
			return langerr.LRConflictf(class, "accept/reduce conflict on terminal %q (accept or reduce %s)", onInput, reduce)
		}
	case act1.Type == LRShift && act2.Type == LRShift:
		return langerr.LRConflictf(class, "shift/shift conflict on terminal %q", onInput)
	}
	return langerr.LRConflictf(class, "action conflict on terminal %q (%s or %s)", onInput, act1.String(), act2.String())
}
