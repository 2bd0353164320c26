package grammar

import "github.com/dekarrin/gudgeon/internal/util"

// LR1_CLOSURE computes the closure of a set of canonical LR(1) items
// (Dragon Book Algorithm 4.42): for every item [A -> α.Bβ, a] in the set,
// for every production B -> γ, and for every terminal b in FIRST(βa), add
// [B -> .γ, b] to the set, repeating until nothing new is added.
func (g Grammar) LR1_CLOSURE(I util.SVSet[LR1Item]) util.SVSet[LR1Item] {
	closure := util.NewSVSet[LR1Item]()
	for _, k := range I.Elements() {
		closure.Set(k, I.Get(k))
	}

	updated := true
	for updated {
		updated = false

		for _, k := range closure.Elements() {
			item := closure.Get(k)
			if len(item.Right) == 0 {
				continue
			}
			B := item.Right[0]
			if strOrLowerIsTerminal(B) {
				continue
			}

			beta := item.Right[1:]
			lookaheads := g.FirstOfSequence(append(append([]string{}, beta...), item.Lookahead))

			rule := g.Rule(B)
			for _, gamma := range rule.Productions {
				var right []string
				if !gamma.Equal(Epsilon) {
					right = append([]string{}, gamma...)
				}
				for _, b := range lookaheads.Elements() {
					if b == "" {
						continue
					}
					newItem := LR1Item{
						LR0Item:   LR0Item{NonTerminal: B, Right: right},
						Lookahead: b,
					}
					key := newItem.String()
					if !closure.Has(key) {
						closure.Set(key, newItem)
						updated = true
					}
				}
			}
		}
	}

	return closure
}

// LR1_GOTO computes GOTO(I, X): the closure of the kernel obtained by
// advancing the dot over X in every item of I where X immediately
// follows the dot.
func (g Grammar) LR1_GOTO(I util.SVSet[LR1Item], X string) util.SVSet[LR1Item] {
	kernel := util.NewSVSet[LR1Item]()
	for _, k := range I.Elements() {
		item := I.Get(k)
		if len(item.Right) == 0 || item.Right[0] != X {
			continue
		}
		moved := item.Copy()
		moved.Left = append(append([]string{}, item.Left...), X)
		moved.Right = append([]string{}, item.Right[1:]...)
		kernel.Set(moved.String(), moved)
	}
	return g.LR1_CLOSURE(kernel)
}

// strOrLowerIsTerminal reports whether sym is a terminal symbol (lowercase
// by grammar convention) or epsilon, rather than a non-terminal.
func strOrLowerIsTerminal(sym string) bool {
	if sym == "" {
		return true
	}
	for _, ch := range sym {
		if ch >= 'A' && ch <= 'Z' {
			return false
		}
	}
	return true
}
