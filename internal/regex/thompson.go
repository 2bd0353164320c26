package regex

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/automaton"
	"github.com/dekarrin/gudgeon/internal/langerr"
)

// fragment is an NFA fragment under construction: a start state and a
// single accepting state, per the invariant of Thompson's construction
// (every fragment has exactly one entry and one exit).
type fragment struct {
	start, accept string
}

// thompsonBuilder accumulates states and transitions into a shared NFA as
// it walks a parse tree, handing out fresh state names from a counter.
type thompsonBuilder struct {
	nfa     automaton.NFA[struct{}]
	counter int
}

func (b *thompsonBuilder) newState() string {
	name := fmt.Sprintf("q%d", b.counter)
	b.counter++
	b.nfa.AddState(name, false)
	return name
}

// ToNFA runs Thompson's construction (Dragon Book Algorithm 3.23) over
// re's parse tree, building states named q0, q1, ... and then renumbering
// them, so the returned ε-NFA's states are numbered with the start as 0.
func (re *RegExpr) ToNFA() (automaton.NFA[struct{}], error) {
	b := &thompsonBuilder{}
	frag, err := b.build(re.Tree)
	if err != nil {
		return automaton.NFA[struct{}]{}, err
	}

	b.nfa.Start = frag.start
	b.nfa.SetAccepting(frag.accept, true)

	b.nfa.NumberStates()
	return b.nfa, nil
}

func (b *thompsonBuilder) build(n *Node) (fragment, error) {
	if n == nil {
		start := b.newState()
		accept := b.newState()
		b.nfa.AddTransition(start, automaton.Epsilon, accept)
		return fragment{start, accept}, nil
	}

	switch n.Op {
	case OpIdentity:
		return b.buildIdentity(n)
	case OpCharClass:
		return b.buildCharClass(n)
	case OpConcat:
		left, err := b.build(n.Children[0])
		if err != nil {
			return fragment{}, err
		}
		right, err := b.build(n.Children[1])
		if err != nil {
			return fragment{}, err
		}
		b.nfa.AddTransition(left.accept, automaton.Epsilon, right.start)
		return fragment{left.start, right.accept}, nil
	case OpUnion:
		left, err := b.build(n.Children[0])
		if err != nil {
			return fragment{}, err
		}
		right, err := b.build(n.Children[1])
		if err != nil {
			return fragment{}, err
		}
		start := b.newState()
		accept := b.newState()
		b.nfa.AddTransition(start, automaton.Epsilon, left.start)
		b.nfa.AddTransition(start, automaton.Epsilon, right.start)
		b.nfa.AddTransition(left.accept, automaton.Epsilon, accept)
		b.nfa.AddTransition(right.accept, automaton.Epsilon, accept)
		return fragment{start, accept}, nil
	case OpGroup:
		return b.build(n.Children[0])
	case OpQuantifier:
		return b.buildQuantifier(n.Children[0], n.Children[1].Elem.Low, n.Children[1].Elem.High)
	default:
		return fragment{}, langerr.RegexSyntaxf("unhandled parse tree node kind %d in Thompson construction", n.Op)
	}
}

func (b *thompsonBuilder) buildIdentity(n *Node) (fragment, error) {
	start := b.newState()
	accept := b.newState()

	switch n.Elem.Kind {
	case Literal:
		b.nfa.AddTransition(start, string(n.Elem.Literal), accept)
	case Empty:
		b.nfa.AddTransition(start, automaton.Epsilon, accept)
	case Unmatchable:
		// no transition: this fragment can never reach its accept state.
	case Reference:
		return fragment{}, langerr.RegularDefinitionf("unresolved reference %q reached Thompson construction", n.Elem.Name)
	default:
		return fragment{}, langerr.RegexSyntaxf("unexpected atomic element kind %d", n.Elem.Kind)
	}

	return fragment{start, accept}, nil
}

func (b *thompsonBuilder) buildCharClass(n *Node) (fragment, error) {
	start := b.newState()
	accept := b.newState()
	if len(n.Chars) == 0 {
		// an empty resolved class is Unmatchable: no outgoing edges.
		return fragment{start, accept}, nil
	}
	for _, r := range n.Chars {
		b.nfa.AddTransition(start, string(r), accept)
	}
	return fragment{start, accept}, nil
}

// buildQuantifier implements the repetition operators {low,high} as a
// sequence of `low` mandatory copies of child followed by either a single
// star-closure copy (when high is Unbounded) or `high-low` further
// optional copies, each copy compiled fresh so that every repetition has
// its own states. low==0 and high==Unbounded collapses to a plain
// Kleene-star fragment over a single copy.
func (b *thompsonBuilder) buildQuantifier(child *Node, low, high int) (fragment, error) {
	if low == 0 && high == Unbounded {
		return b.buildStar(child)
	}

	var result *fragment

	appendFrag := func(f fragment) {
		if result == nil {
			result = &f
			return
		}
		b.nfa.AddTransition(result.accept, automaton.Epsilon, f.start)
		result = &fragment{result.start, f.accept}
	}

	for i := 0; i < low; i++ {
		f, err := b.build(child)
		if err != nil {
			return fragment{}, err
		}
		appendFrag(f)
	}

	if high == Unbounded {
		tail, err := b.buildStar(child)
		if err != nil {
			return fragment{}, err
		}
		appendFrag(tail)
	} else {
		for i := 0; i < high-low; i++ {
			f, err := b.build(child)
			if err != nil {
				return fragment{}, err
			}
			appendFrag(b.optional(f))
		}
	}

	if result == nil {
		// low == 0, high == 0: matches only the empty string.
		start := b.newState()
		accept := b.newState()
		b.nfa.AddTransition(start, automaton.Epsilon, accept)
		return fragment{start, accept}, nil
	}

	return *result, nil
}

// buildStar wraps a fresh copy of child in the standard Thompson Kleene
// star fragment: a new start/accept pair bypassable via ε, with the
// child's accept looping back to its own start.
func (b *thompsonBuilder) buildStar(child *Node) (fragment, error) {
	inner, err := b.build(child)
	if err != nil {
		return fragment{}, err
	}
	start := b.newState()
	accept := b.newState()
	b.nfa.AddTransition(start, automaton.Epsilon, inner.start)
	b.nfa.AddTransition(start, automaton.Epsilon, accept)
	b.nfa.AddTransition(inner.accept, automaton.Epsilon, inner.start)
	b.nfa.AddTransition(inner.accept, automaton.Epsilon, accept)
	return fragment{start, accept}, nil
}

// optional wraps an already-built fragment so it may be skipped via ε (the
// `?` construction), used for the `high-low` trailing optional copies of a
// bounded quantifier.
func (b *thompsonBuilder) optional(f fragment) fragment {
	start := b.newState()
	accept := b.newState()
	b.nfa.AddTransition(start, automaton.Epsilon, f.start)
	b.nfa.AddTransition(start, automaton.Epsilon, accept)
	b.nfa.AddTransition(f.accept, automaton.Epsilon, accept)
	return fragment{start, accept}
}
