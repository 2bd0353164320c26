// Package grammar implements context-free grammar representation and the
// classic transformation and analysis passes needed to turn one into a
// parser: FIRST/FOLLOW, epsilon and unit-production elimination, left-
// recursion removal, left-factoring, LL(1) table construction, and the
// LR(0)/LR(1) item-set machinery used by the parse package's table
// builders.
package grammar

import (
	"fmt"
	"math"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/dekarrin/gudgeon/internal/util"
)

// Production is a sequence of grammar symbols on the right-hand side of a
// rule. The sole-element slice containing "" represents an ε-production.
type Production []string

var (
	// Epsilon is the production that derives only the empty string.
	Epsilon = Production{""}

	// ErrorProduction is returned by lookups that found no matching
	// production.
	ErrorProduction = Production{}
)

func (p Production) Copy() Production {
	p2 := make(Production, len(p))
	copy(p2, p)
	return p2
}

// AllItems returns every LR0 item obtainable by placing a dot somewhere
// in p; NonTerminal is left blank since a Production does not know which
// rule it belongs to.
func (p Production) AllItems() []LR0Item {
	if p.Equal(Epsilon) {
		return nil
	}
	var items []LR0Item
	for dot := 0; dot < len(p); dot++ {
		items = append(items, LR0Item{Left: p[:dot], Right: p[dot:]})
	}
	items = append(items, LR0Item{Left: p})
	return items
}

func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		if otherPtr, ok := o.(*Production); ok {
			if otherPtr == nil {
				return false
			}
			other = *otherPtr
		} else if otherSlice, ok := o.([]string); ok {
			other = Production(otherSlice)
		} else if otherSlicePtr, ok := o.(*[]string); ok {
			if otherSlicePtr == nil {
				return false
			}
			other = Production(*otherSlicePtr)
		} else {
			return false
		}
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Production) String() string {
	if p.Equal(Epsilon) {
		return "ε"
	}
	return strings.Join(p, " ")
}

// IsUnit reports whether p is a single non-terminal (A -> B form).
func (p Production) IsUnit() bool {
	return len(p) == 1 && !p.Equal(Epsilon) && strings.ToUpper(p[0]) == p[0]
}

func (p Production) HasSymbol(sym string) bool {
	return util.InSlice(sym, p)
}

// Rule is every alternative production for one non-terminal.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// LRItems returns every LR0 item of r with NonTerminal correctly set.
func (r Rule) LRItems() []LR0Item {
	var items []LR0Item
	for _, p := range r.Productions {
		for _, item := range p.AllItems() {
			item.NonTerminal = r.NonTerminal
			items = append(items, item)
		}
	}
	return items
}

func (r Rule) Copy() Rule {
	r2 := Rule{NonTerminal: r.NonTerminal, Productions: make([]Production, len(r.Productions))}
	for i := range r.Productions {
		r2.Productions[i] = r.Productions[i].Copy()
	}
	return r2
}

func (r Rule) String() string {
	var parts []string
	for _, p := range r.Productions {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("%s -> %s", r.NonTerminal, strings.Join(parts, " | "))
}

// ReplaceProduction returns a Rule with p removed and replacements
// substituted in its place (appended if p was not present).
func (r Rule) ReplaceProduction(p Production, replacements ...Production) Rule {
	var added bool
	var newProds []Production
	for _, existing := range r.Productions {
		if !existing.Equal(p) {
			newProds = append(newProds, existing)
		} else if len(replacements) > 0 {
			newProds = append(newProds, replacements...)
			added = true
		}
	}
	if !added {
		newProds = append(newProds, replacements...)
	}
	r.Productions = newProds
	return r
}

func (r Rule) Equal(o any) bool {
	other, ok := o.(Rule)
	if !ok {
		otherPtr, ok := o.(*Rule)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}
	if r.NonTerminal != other.NonTerminal {
		return false
	}
	return util.EqualSlices(wrapProds(r.Productions), wrapProds(other.Productions))
}

type eqProduction struct{ Production }

func (p eqProduction) Equal(o any) bool {
	other, ok := o.(eqProduction)
	if !ok {
		return false
	}
	return p.Production.Equal(other.Production)
}

func wrapProds(ps []Production) []eqProduction {
	wrapped := make([]eqProduction, len(ps))
	for i, p := range ps {
		wrapped[i] = eqProduction{p}
	}
	return wrapped
}

func (r Rule) CanProduce(p Production) bool {
	for _, alt := range r.Productions {
		if alt.Equal(p) {
			return true
		}
	}
	return false
}

func (r Rule) CanProduceSymbol(termOrNonTerm string) bool {
	for _, alt := range r.Productions {
		for _, sym := range alt {
			if sym == termOrNonTerm {
				return true
			}
		}
	}
	return false
}

func (r Rule) HasProduction(prod Production) bool {
	for _, alt := range r.Productions {
		if alt.Equal(prod) {
			return true
		}
	}
	return false
}

// UnitProductions returns every production of r of the form A -> B.
func (r Rule) UnitProductions() []Production {
	var prods []Production
	for _, alt := range r.Productions {
		if alt.IsUnit() {
			prods = append(prods, alt)
		}
	}
	return prods
}

// Grammar is a context-free grammar: an ordered set of rules over a set
// of terminals, each terminal mapped to the token class a lexer emits
// for it.
type Grammar struct {
	rulesByName map[string]int
	rules       []Rule
	terminals   map[string]types.TokenClass

	// actionTerminals are terminals that parse and carry through as
	// ordinary grammar symbols but can never be produced by a lexer, so
	// they never SHIFT; runtime semantics for them are not implemented.
	actionTerminals map[string]bool

	firstCache map[string]util.StringSet

	// Start names the start symbol. "S" is assumed if unset.
	Start string
}

func (g Grammar) LR0Items() []LR0Item {
	var items []LR0Item
	for _, nt := range g.NonTerminals() {
		items = append(items, g.Rule(nt).LRItems()...)
	}
	return items
}

func (g Grammar) Copy() Grammar {
	g2 := Grammar{
		rulesByName:     make(map[string]int, len(g.rulesByName)),
		rules:           make([]Rule, len(g.rules)),
		terminals:       make(map[string]types.TokenClass, len(g.terminals)),
		actionTerminals: make(map[string]bool, len(g.actionTerminals)),
		Start:           g.Start,
	}
	for k, v := range g.rulesByName {
		g2.rulesByName[k] = v
	}
	for i := range g.rules {
		g2.rules[i] = g.rules[i].Copy()
	}
	for k, v := range g.terminals {
		g2.terminals[k] = v
	}
	for k, v := range g.actionTerminals {
		g2.actionTerminals[k] = v
	}
	return g2
}

func (g Grammar) StartSymbol() string {
	if g.Start == "" {
		return "S"
	}
	return g.Start
}

// Augmented returns a copy of g with a fresh start symbol S' whose sole
// production is S' -> S, where S is g's current start symbol — the
// standard precondition for LR item-set construction.
func (g Grammar) Augmented() Grammar {
	g = g.Copy()
	oldStart := g.StartSymbol()
	newStart := oldStart + "-START"
	for g.Rule(newStart).NonTerminal != "" {
		newStart += "-START"
	}
	g.AddRule(newStart, []string{oldStart})
	g.Start = newStart
	return g
}

func (g Grammar) String() string {
	return fmt.Sprintf("(%v, R=%v)", util.OrderedKeys(g.terminals), g.rules)
}

// Rule returns the rule for nonterminal, or a zero Rule if none is
// defined.
func (g Grammar) Rule(nonterminal string) Rule {
	if g.rulesByName == nil {
		return Rule{}
	}
	idx, ok := g.rulesByName[nonterminal]
	if !ok {
		return Rule{}
	}
	return g.rules[idx]
}

// Term returns the token class mapped to terminal, or types.TokenUndefined
// if terminal is not defined.
func (g Grammar) Term(terminal string) types.TokenClass {
	if g.terminals == nil {
		return types.TokenUndefined
	}
	class, ok := g.terminals[terminal]
	if !ok {
		return types.TokenUndefined
	}
	return class
}

// TermFor returns the terminal symbol mapped to tc, or "" if none maps to
// it. types.TokenEndOfText always resolves to "$".
func (g Grammar) TermFor(tc types.TokenClass) string {
	if tc.Equal(types.TokenEndOfText) {
		return "$"
	}
	for k, v := range g.terminals {
		if v.Equal(tc) {
			return k
		}
	}
	return ""
}

// IsAction reports whether terminal was declared with AddActionTerm: it
// parses as an ordinary terminal but a lexer can never produce it, so it
// never participates in a SHIFT.
func (g Grammar) IsAction(terminal string) bool {
	return g.actionTerminals[terminal]
}

// AddTerm adds terminal, mapped to the token class a matching lexeme must
// carry. Terminal names may be any non-empty string that doesn't read as a
// nonterminal (no uppercase letters) — lowercase words ("id", "num") and
// punctuation literals ("+", "(", ")") pulled straight out of a quoted
// grammar-text terminal are both valid.
func (g *Grammar) AddTerm(terminal string, class types.TokenClass) {
	if terminal == "" {
		panic("empty terminal not allowed")
	}
	if class.Equal(types.TokenEndOfText) {
		panic("can't add out-of-band signal $ as defined terminal")
	}
	for _, ch := range terminal {
		if 'A' <= ch && ch <= 'Z' {
			panic(fmt.Sprintf("invalid terminal name %q; must not contain uppercase letters (those name nonterminals)", terminal))
		}
	}
	if class.Equal(types.TokenUndefined) {
		panic("cannot explicitly map a terminal to the undefined token class")
	}
	if g.terminals == nil {
		g.terminals = map[string]types.TokenClass{}
	}
	g.terminals[terminal] = class
	g.firstCache = nil
}

// AddActionTerm adds terminal as an action terminal (see IsAction).
func (g *Grammar) AddActionTerm(terminal string, class types.TokenClass) {
	g.AddTerm(terminal, class)
	if g.actionTerminals == nil {
		g.actionTerminals = map[string]bool{}
	}
	g.actionTerminals[terminal] = true
}

// RemoveRule deletes every production of nonterminal.
func (g *Grammar) RemoveRule(nonterminal string) {
	ruleIdx, ok := g.rulesByName[nonterminal]
	if !ok {
		return
	}
	delete(g.rulesByName, nonterminal)
	if ruleIdx+1 < len(g.rules) {
		g.rules = append(g.rules[:ruleIdx], g.rules[ruleIdx+1:]...)
		for i := ruleIdx; i < len(g.rules); i++ {
			g.rulesByName[g.rules[i].NonTerminal] = i
		}
	} else {
		g.rules = g.rules[:ruleIdx]
	}
	g.firstCache = nil
}

// AddRule adds production as an alternative for nonterminal, appended
// after any existing alternatives. Give []string{""} for an ε-production.
func (g *Grammar) AddRule(nonterminal string, production []string) {
	if nonterminal == "" {
		panic("empty nonterminal name not allowed for production rule")
	}
	for _, ch := range nonterminal {
		if ('A' > ch || ch > 'Z') && ch != '_' && ch != '-' {
			panic(fmt.Sprintf("invalid nonterminal name %q; must only be chars A-Z, \"_\", or \"-\"", nonterminal))
		}
	}
	if len(production) < 1 {
		panic("for epsilon production give []string{\"\"}; all rules must have productions")
	}
	if len(production) != 1 {
		for _, sym := range production {
			if sym == "" {
				panic("epsilon production only allowed as sole production of an alternative")
			}
		}
	}

	if g.rulesByName == nil {
		g.rulesByName = map[string]int{}
	}
	curIdx, ok := g.rulesByName[nonterminal]
	if !ok {
		g.rules = append(g.rules, Rule{NonTerminal: nonterminal})
		curIdx = len(g.rules) - 1
		g.rulesByName[nonterminal] = curIdx
	}
	curRule := g.rules[curIdx]
	curRule.Productions = append(curRule.Productions, production)
	g.rules[curIdx] = curRule
	g.firstCache = nil
}

func (g Grammar) NonTerminals() []string {
	return util.OrderedKeys(g.rulesByName)
}

// Terminals returns every terminal symbol declared in g via AddTerm or
// AddActionTerm, in a stable order.
func (g Grammar) Terminals() []string {
	return util.OrderedKeys(g.terminals)
}

// IsTerminal reports whether sym was declared as a terminal (ordinary or
// action) rather than a non-terminal.
func (g Grammar) IsTerminal(sym string) bool {
	_, ok := g.terminals[sym]
	return ok
}

// ReversePriorityNonTerminals returns non-terminals in the reverse of
// their declaration order, the order Algorithm 4.19 walks them in.
func (g Grammar) ReversePriorityNonTerminals() []string {
	var names []string
	for _, r := range g.rules {
		names = append([]string{r.NonTerminal}, names...)
	}
	return names
}

func (g Grammar) UnitProductions() []Rule {
	var all []Rule
	for _, nt := range g.NonTerminals() {
		units := g.Rule(nt).UnitProductions()
		if len(units) > 0 {
			all = append(all, Rule{NonTerminal: nt, Productions: units})
		}
	}
	return all
}

func (g Grammar) HasUnreachableNonTerminals() bool {
	return len(g.UnreachableNonTerminals()) > 0
}

func (g Grammar) UnreachableNonTerminals() []string {
	var unreachable []string
	for _, nt := range g.NonTerminals() {
		if nt == g.StartSymbol() {
			continue
		}
		reachable := false
		for _, other := range g.NonTerminals() {
			if other == nt {
				continue
			}
			if g.Rule(other).CanProduceSymbol(nt) {
				reachable = true
				break
			}
		}
		if !reachable {
			unreachable = append(unreachable, nt)
		}
	}
	return unreachable
}

// RemoveUnitProductions returns an equivalent grammar with every unit
// production (A -> B) eliminated by hoisting B's own productions into A.
func (g Grammar) RemoveUnitProductions() Grammar {
	g = g.Copy()
	for _, nt := range g.NonTerminals() {
		rule := g.Rule(nt)
		resolved := map[string]bool{}
		for len(rule.UnitProductions()) > 0 {
			var newProds []Production
			for _, p := range rule.Productions {
				if p.IsUnit() && p[0] != nt {
					hoisted := g.Rule(p[0])
					var included []Production
					for _, hp := range hoisted.Productions {
						if len(hp) == 1 && hp[0] == nt {
							continue
						} else if rule.CanProduce(hp) {
							continue
						} else if resolved[p[0]] {
							continue
						}
						included = append(included, hp)
					}
					newProds = append(newProds, included...)
					resolved[p[0]] = true
				} else {
					newProds = append(newProds, p)
				}
			}
			rule.Productions = newProds
		}
		g.rules[g.rulesByName[rule.NonTerminal]] = rule
	}
	return g.RemoveUnreachableNonTerminals()
}

func (g Grammar) RemoveUnreachableNonTerminals() Grammar {
	g = g.Copy()
	for g.HasUnreachableNonTerminals() {
		for _, nt := range g.UnreachableNonTerminals() {
			g.RemoveRule(nt)
		}
	}
	return g
}

func removeEpsilons(from []Production) []Production {
	var newProds []Production
	for _, p := range from {
		if !p.Equal(Epsilon) {
			newProds = append(newProds, p)
		}
	}
	return newProds
}

// getEpsilonRewrites generates every production obtainable by deleting
// each occurrence of epsilonableNonterm from prod independently (the
// 2^n rewrite set Algorithm triggers when propagating an ε-production
// out of a referencing rule), deduplicated.
func getEpsilonRewrites(epsilonableNonterm string, prod Production) []Production {
	var numOccurrences int
	for _, sym := range prod {
		if sym == epsilonableNonterm {
			numOccurrences++
		}
	}
	if numOccurrences == 0 {
		return []Production{prod}
	}

	perms := int(math.Pow(2, float64(numOccurrences)))
	positions := make([]string, numOccurrences)

	var newProds []Production
	for i := perms - 1; i >= 0; i-- {
		for j := range positions {
			if (i>>j)&1 > 0 {
				positions[j] = epsilonableNonterm
			} else {
				positions[j] = ""
			}
		}

		var newProd Production
		var curOcc int
		for _, sym := range prod {
			if sym == epsilonableNonterm {
				if positions[curOcc] != "" {
					newProd = append(newProd, positions[curOcc])
				}
				curOcc++
			} else {
				newProd = append(newProd, sym)
			}
		}
		if len(newProd) == 0 {
			newProd = Epsilon
		}
		newProds = append(newProds, newProd)
	}

	var unique []Production
	seen := map[string]bool{}
	for _, p := range newProds {
		key := strings.Join(p, " ")
		if seen[key] {
			continue
		}
		unique = append(unique, p)
		seen[key] = true
	}
	return unique
}

// RemoveEpsilons returns a grammar deriving the same language (aside from
// the empty string) with every ε-production eliminated, by propagating
// each one out to every rule that references the producing non-terminal.
func (g Grammar) RemoveEpsilons() Grammar {
	g = g.Copy()
	propagated := map[string]bool{}

	for {
		toPropagate := ""
		for _, nt := range g.NonTerminals() {
			if g.rules[g.rulesByName[nt]].HasProduction(Epsilon) {
				toPropagate = nt
				break
			}
		}
		if toPropagate == "" {
			break
		}
		A := toPropagate

		producesA := map[string]bool{}
		ruleA := g.Rule(A)
		for _, B := range g.NonTerminals() {
			if g.rules[g.rulesByName[B]].CanProduceSymbol(A) {
				producesA[B] = true
			}
		}

		for B := range producesA {
			ruleB := g.Rule(B)

			if len(ruleA.Productions) == 1 {
				for i, bProd := range ruleB.Productions {
					var newProd Production
					if len(bProd) == 1 && bProd[0] == A {
						newProd = Epsilon
					} else {
						for _, sym := range bProd {
							if sym != A {
								newProd = append(newProd, sym)
							}
						}
					}
					ruleB.Productions[i] = newProd
				}
			} else {
				var newProds []Production
				for _, bProd := range ruleB.Productions {
					if util.InSlice(A, bProd) {
						newProds = append(newProds, getEpsilonRewrites(A, bProd)...)
					} else {
						newProds = append(newProds, bProd)
					}
				}
				if propagated[B] {
					newProds = removeEpsilons(newProds)
				}
				ruleB.Productions = newProds
			}

			if A == B {
				ruleA = ruleB
			}
			g.rules[g.rulesByName[B]] = ruleB
		}

		propagated[A] = true
		ruleA.Productions = removeEpsilons(ruleA.Productions)
		g.rules[g.rulesByName[A]] = ruleA
	}

	return g
}

func (g *Grammar) insertRule(r Rule, idx int) {
	postList := make([]Rule, len(g.rules)-(idx+1))
	copy(postList, g.rules[idx+1:])
	g.rules = append(g.rules[:idx+1], r)
	g.rules = append(g.rules, postList...)

	for i := idx + 1; i < len(g.rules); i++ {
		g.rulesByName[g.rules[i].NonTerminal] = i
	}
}

// RemoveLeftRecursion returns a grammar with no direct or indirect left
// recursion, suitable for LL(1) table construction (Dragon Book Algorithm
// 4.19). It first forces epsilon and unit production removal, which the
// algorithm requires as a precondition.
func (g Grammar) RemoveLeftRecursion() Grammar {
	g = g.RemoveEpsilons().RemoveUnitProductions()

	updated := true
	for updated {
		updated = false
		A := g.ReversePriorityNonTerminals()

		for i := range A {
			AiRule := g.Rule(A[i])
			for j := 0; j < i; j++ {
				AjRule := g.Rule(A[j])
				var newProds []Production
				for _, prod := range AiRule.Productions {
					if prod[0] == A[j] {
						updated = true
						gamma := prod[1:]
						for _, delta := range AjRule.Productions {
							newProds = append(newProds, append(append(Production{}, delta...), gamma...))
						}
					} else {
						newProds = append(newProds, prod)
					}
				}
				AiRule.Productions = newProds
				g.rules[g.rulesByName[A[i]]] = AiRule
			}

			var alphas, betas []Production
			for _, prod := range AiRule.Productions {
				if prod[0] == AiRule.NonTerminal {
					alphas = append(alphas, prod[1:])
				} else {
					betas = append(betas, prod)
				}
			}

			if len(alphas) > 0 {
				updated = true

				if len(betas) < 1 {
					newARule := Rule{NonTerminal: AiRule.NonTerminal}
					for _, a := range alphas {
						newARule.Productions = append(newARule.Productions, append(append(Production{}, a...), AiRule.NonTerminal))
					}
					newARule.Productions = append(newARule.Productions, Epsilon)
					AiRule = newARule
					g.rules[g.rulesByName[A[i]]] = AiRule
				} else {
					APrime := g.GenerateUniqueName(AiRule.NonTerminal)
					newARule := Rule{NonTerminal: AiRule.NonTerminal}
					newAPrimeRule := Rule{NonTerminal: APrime}

					for _, b := range betas {
						newARule.Productions = append(newARule.Productions, append(append(Production{}, b...), APrime))
					}
					for _, a := range alphas {
						newAPrimeRule.Productions = append(newAPrimeRule.Productions, append(append(Production{}, a...), APrime))
					}
					newAPrimeRule.Productions = append(newAPrimeRule.Productions, Epsilon)

					AiRule = newARule
					g.rules[g.rulesByName[A[i]]] = AiRule
					g.insertRule(newAPrimeRule, g.rulesByName[A[i]])
				}
			}
		}
	}

	return g.RemoveUnreachableNonTerminals()
}

// LeftFactor returns a grammar equivalent to g but with every pair of
// alternatives sharing a common prefix factored apart, so a top-down
// parser need not look further than one symbol ahead to choose between
// them (Dragon Book Algorithm 4.21).
func (g Grammar) LeftFactor() Grammar {
	g = g.Copy()
	changes := true
	for changes {
		changes = false
		for _, nt := range g.NonTerminals() {
			AiRule := g.Rule(nt)

			var alpha []string
			for j := range AiRule.Productions {
				for k := j + 1; k < len(AiRule.Productions); k++ {
					prefix := util.LongestCommonPrefix(AiRule.Productions[j], AiRule.Productions[k])
					if len(prefix) > len(alpha) {
						alpha = prefix
					}
				}
			}

			if len(alpha) > 0 && !Epsilon.Equal(alpha) {
				changes = true

				var gamma, betas []Production
				for _, alt := range AiRule.Productions {
					if util.HasPrefix(alt, alpha) {
						beta := Production(alt[len(alpha):])
						if len(beta) == 0 {
							beta = Epsilon
						}
						betas = append(betas, beta)
					} else {
						gamma = append(gamma, alt)
					}
				}

				APrime := g.GenerateUniqueName(AiRule.NonTerminal)
				APrimeRule := Rule{NonTerminal: APrime, Productions: betas}

				AiRule.Productions = append([]Production{append(Production(alpha), APrime)}, gamma...)
				g.rules[g.rulesByName[nt]] = AiRule
				g.insertRule(APrimeRule, g.rulesByName[nt])
			}
		}
	}
	return g
}

// FIRST returns the FIRST set of the single grammar symbol X: itself if X
// is a terminal or ε, otherwise the union of FIRST over X's productions.
func (g Grammar) FIRST(X string) util.StringSet {
	if strings.ToLower(X) == X {
		return util.NewStringSet(map[string]bool{X: true})
	}

	firsts := util.NewStringSet()
	r := g.Rule(X)
	for _, Y := range r.Productions {
		var gotToEnd bool
		for k := 0; k < len(Y); k++ {
			firstY := g.FIRST(Y[k])
			for _, str := range firstY.Elements() {
				if str != "" {
					firsts.Add(str)
				}
			}
			if !firstY.Has("") {
				break
			}
			if k+1 >= len(Y) {
				gotToEnd = true
			}
		}
		if gotToEnd {
			firsts.Add("")
		}
	}
	return firsts
}

// FirstOfSequence computes FIRST(X1 X2 ... Xn) for a whole symbol
// sequence, caching by the sequence joined with a unit-separator byte —
// the same cache key shape is used whether the sequence has one symbol or
// many, so a single-symbol lookup is never special-cased out of the
// cache.
func (g *Grammar) FirstOfSequence(seq []string) util.StringSet {
	if g.firstCache == nil {
		g.firstCache = map[string]util.StringSet{}
	}
	key := strings.Join(seq, "\x1f")
	if cached, ok := g.firstCache[key]; ok {
		return cached
	}

	result := util.NewStringSet()
	allEpsilon := true
	for _, sym := range seq {
		symFirst := g.FIRST(sym)
		for _, s := range symFirst.Elements() {
			if s != "" {
				result.Add(s)
			}
		}
		if !symFirst.Has("") {
			allEpsilon = false
			break
		}
	}
	if allEpsilon {
		result.Add("")
	}

	g.firstCache[key] = result
	return result
}

// FOLLOW computes the FOLLOW set of grammar symbol X by recursively
// examining every place X appears on the right-hand side of a production.
func (g Grammar) FOLLOW(X string) util.StringSet {
	return g.recursiveFollow(X, map[string]bool{})
}

func (g Grammar) recursiveFollow(X string, prevChecks map[string]bool) util.StringSet {
	if X == "" {
		return nil
	}
	followSet := util.NewStringSet()
	if X == g.StartSymbol() {
		followSet.Add("$")
	}

	for _, A := range g.NonTerminals() {
		AiRule := g.Rule(A)
		for _, prod := range AiRule.Productions {
			if !prod.HasSymbol(X) {
				continue
			}
			var xCount int
			for _, sym := range prod {
				if sym == X {
					xCount++
				}
			}

			for occ := 0; occ < xCount; occ++ {
				var alpha, beta []string
				var doneAlpha bool
				var encountered int
				for _, sym := range prod {
					if sym == X {
						encountered++
						if encountered > occ && !doneAlpha {
							doneAlpha = true
							continue
						}
					}
					if !doneAlpha {
						alpha = append(alpha, sym)
					} else {
						beta = append(beta, sym)
					}
				}
				_ = alpha

				for _, b := range beta {
					betaFirst := g.FIRST(b)
					for _, k := range betaFirst.Elements() {
						if k != "" {
							followSet.Add(k)
						}
					}
					if !betaFirst.Has("") {
						break
					}
				}

				canBeAtEnd := true
				for _, b := range beta {
					if !g.FIRST(b).Has("") {
						canBeAtEnd = false
						break
					}
				}
				if canBeAtEnd {
					if _, ok := prevChecks[A]; A != X && !ok {
						prevChecks[X] = true
						followA := g.recursiveFollow(A, prevChecks)
						followSet.AddAll(followA)
					}
				}
			}
		}
	}

	return followSet
}

// LL1Table is an LL(1) predictive parsing table: nonterminal x terminal
// -> production to apply.
type LL1Table util.Matrix2[string, string, Production]

func NewLL1Table() LL1Table { return LL1Table(util.NewMatrix2[string, string, Production]()) }

func (M LL1Table) Set(A, a string, alpha Production) {
	util.Matrix2[string, string, Production](M).Set(A, a, alpha)
}

func (M LL1Table) Get(A, a string) Production {
	v := util.Matrix2[string, string, Production](M).Get(A, a)
	if v == nil {
		return ErrorProduction
	}
	return *v
}

func (M LL1Table) NonTerminals() []string { return util.OrderedKeys(M) }

func (M LL1Table) Terminals() []string {
	termSet := map[string]bool{}
	for k := range M {
		for term := range map[string]Production(M[k]) {
			termSet[term] = true
		}
	}
	return util.OrderedKeys(termSet)
}

func (M LL1Table) String() string {
	terms := M.Terminals()
	nts := M.NonTerminals()

	data := [][]string{append([]string{""}, terms...)}
	for _, nt := range nts {
		row := []string{nt}
		for _, t := range terms {
			row = append(row, M.Get(nt, t).String())
		}
		data = append(data, row)
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{TableBorders: true}).
		String()
}

// LLParseTable builds the LL(1) predictive parsing table for g (Dragon
// Book Algorithm 4.31). Returns an error if g is not LL(1).
func (g *Grammar) LLParseTable() (LL1Table, error) {
	if !g.IsLL1() {
		return nil, langerr.LLConflictf("grammar is not LL(1): some pair of alternatives shares a lookahead terminal")
	}

	M := NewLL1Table()
	for _, A := range g.NonTerminals() {
		for _, alpha := range g.Rule(A).Productions {
			firstAlpha := g.FirstOfSequence(alpha)
			for _, a := range firstAlpha.Elements() {
				if a != "" {
					M.Set(A, a, alpha)
				}
			}
			if firstAlpha.Has("") {
				for _, b := range g.FOLLOW(A).Elements() {
					M.Set(A, b, alpha)
				}
			}
		}
	}
	return M, nil
}

// IsLL1 reports whether g satisfies the three LL(1) conditions (Dragon
// Book, Section 4.4.3) for every pair of distinct alternatives of every
// non-terminal.
func (g *Grammar) IsLL1() bool {
	for _, A := range g.NonTerminals() {
		AiRule := g.Rule(A)
		followA := g.FOLLOW(A)

		for i := range AiRule.Productions {
			for j := i + 1; j < len(AiRule.Productions); j++ {
				aFirst := g.FirstOfSequence(AiRule.Productions[i])
				bFirst := g.FirstOfSequence(AiRule.Productions[j])

				if !aFirst.DisjointWith(bFirst) {
					return false
				}
				if bFirst.Has("") && !followA.DisjointWith(aFirst) {
					return false
				}
				if aFirst.Has("") && !followA.DisjointWith(bFirst) {
					return false
				}
			}
		}
	}
	return true
}

// GenerateUniqueName returns a non-terminal name guaranteed unused in g,
// derived from original by appending "-P" and then further "P"s until
// unique (A-P, A-PP, ...).
func (g Grammar) GenerateUniqueName(original string) string {
	newName := original + "-P"
	for g.Rule(newName).NonTerminal != "" {
		newName += "P"
	}
	return newName
}

// Validate checks that the grammar is well-formed: at least one rule and
// terminal, every produced symbol defined, every terminal used and
// mapped to a distinct token class, every non-terminal reachable, and a
// start symbol defined.
func (g Grammar) Validate() error {
	if g.rulesByName == nil {
		g.rulesByName = map[string]int{}
	}
	if len(g.rules) < 1 {
		return langerr.Grammarf("no rules defined in grammar")
	}
	if len(g.terminals) < 1 {
		return langerr.Grammarf("no terminals defined in grammar")
	}

	var errs []string
	producedNonTerms := map[string]bool{}
	producedTerms := map[string]bool{}

	for _, rule := range g.rules {
		for _, alt := range rule.Productions {
			for _, sym := range alt {
				if sym == "" {
					continue
				}
				if strings.ToUpper(sym) == sym {
					if _, ok := g.rulesByName[sym]; !ok {
						errs = append(errs, fmt.Sprintf("no production defined for nonterminal %q produced by %q", sym, rule.NonTerminal))
					}
					producedNonTerms[sym] = true
				} else {
					if _, ok := g.terminals[sym]; !ok {
						errs = append(errs, fmt.Sprintf("undefined terminal %q produced by %q", sym, rule.NonTerminal))
					}
					producedTerms[sym] = true
				}
			}
		}
	}

	seenClasses := map[types.TokenClass]string{}
	for _, term := range util.OrderedKeys(g.terminals) {
		if !producedTerms[term] {
			errs = append(errs, fmt.Sprintf("terminal %q is not produced by any rule", term))
		}
		cl := g.terminals[term]
		if mappedBy, ok := seenClasses[cl]; ok {
			errs = append(errs, fmt.Sprintf("terminal %q maps to same class as terminal %q", term, mappedBy))
		}
		seenClasses[cl] = term
	}

	for _, r := range g.rules {
		if r.NonTerminal == g.StartSymbol() {
			continue
		}
		if !producedNonTerms[r.NonTerminal] {
			errs = append(errs, fmt.Sprintf("non-terminal %q not produced by any rule", r.NonTerminal))
		}
	}

	if _, ok := g.rulesByName[g.StartSymbol()]; !ok {
		errs = append(errs, fmt.Sprintf("no rules defined for productions of start symbol %q", g.StartSymbol()))
	}

	if len(errs) > 0 {
		return langerr.Grammarf("%s", strings.Join(errs, "\n"))
	}
	return nil
}
