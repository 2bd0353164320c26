// Package lex builds a multi-pattern lexer from a set of named regular
// definitions and (pattern, action) rules: one composite NFA per lexer
// state, a longest-match simulator with declaration-order priority
// tie-break, and semantic-action token emission.
package lex

import (
	"fmt"
	"io"

	"github.com/dekarrin/gudgeon/internal/automaton"
	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/regex"
	"github.com/dekarrin/gudgeon/internal/types"
)

// patAct is one (pattern, action) rule as declared, retaining its
// declaration order for use as a tie-break priority.
type patAct struct {
	src      string
	re       *regex.RegExpr
	act      Action
	priority int
}

// Lexer accumulates pattern rules for one or more lexer states and
// compiles them, on request, into a running token stream.
type Lexer interface {
	// Lex returns a token stream over input.
	Lex(input io.Reader) (types.TokenStream, error)

	// AddClass registers a token class usable by AddPattern's actions in
	// the named state.
	AddClass(cl types.TokenClass, forState string)

	// AddPattern compiles pat (consulting defs for any named references)
	// and appends it, in priority order, to the named state's rule list.
	AddPattern(pat string, action Action, forState string, defs *regex.RegularDefinition) error

	// SetStartingState sets the state Lex begins in. Defaults to "".
	SetStartingState(state string)
}

type lexerTemplate struct {
	patterns   map[string][]patAct
	startState string
	classes    map[string]map[string]types.TokenClass
}

// NewLexer returns an empty Lexer ready for AddClass/AddPattern calls.
func NewLexer() Lexer {
	return &lexerTemplate{
		patterns: map[string][]patAct{},
		classes:  map[string]map[string]types.TokenClass{},
	}
}

func (lx *lexerTemplate) SetStartingState(state string) {
	lx.startState = state
}

func (lx *lexerTemplate) AddClass(cl types.TokenClass, forState string) {
	stateClasses, ok := lx.classes[forState]
	if !ok {
		stateClasses = map[string]types.TokenClass{}
	}
	stateClasses[cl.ID()] = cl
	lx.classes[forState] = stateClasses
}

func (lx *lexerTemplate) AddPattern(pat string, action Action, forState string, defs *regex.RegularDefinition) error {
	stateClasses := lx.classes[forState]

	re, err := regex.Parse(pat)
	if err == nil && defs != nil {
		err = defs.ResolvePattern(re)
	}
	if err != nil {
		return langerr.Wrap(langerr.KindRegexSyntax, err, "cannot compile pattern %q", pat)
	}

	if action.Type == ActionScan || action.Type == ActionScanAndState {
		if _, ok := stateClasses[action.ClassID]; !ok {
			return langerr.RegularDefinitionf("%q is not a defined token class on state %q; add it with AddClass first", action.ClassID, forState)
		}
	}
	if action.Type == ActionState || action.Type == ActionScanAndState {
		if action.State == "" {
			return langerr.RegularDefinitionf("action includes a state shift but does not name a target state")
		}
	}

	statePatterns := lx.patterns[forState]
	record := patAct{src: pat, re: re, act: action, priority: len(statePatterns)}
	lx.patterns[forState] = append(statePatterns, record)
	return nil
}

func (lx *lexerTemplate) Lex(input io.Reader) (types.TokenStream, error) {
	e := &engine{
		classes: map[string]map[string]types.TokenClass{},
		state:   lx.startState,
	}

	composites := map[string]*compositeNFA{}
	for state, pats := range lx.patterns {
		comp, err := buildComposite(pats)
		if err != nil {
			return nil, fmt.Errorf("building composite automaton for state %q: %w", state, err)
		}
		composites[state] = comp
	}
	e.composites = composites

	for state, cl := range lx.classes {
		cp := map[string]types.TokenClass{}
		for k, v := range cl {
			cp[k] = v
		}
		e.classes[state] = cp
	}

	data, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("reading lexer input: %w", err)
	}
	e.runes = []rune(string(data))
	e.positions = computePositions(e.runes)
	e.curLine, e.curPos = 1, 1

	return e, nil
}

// prodInfo is the payload attached to a composite automaton's accepting
// states: which pattern won (for priority tie-break) and what to do once
// it has (scan, discard, or shift state).
type prodInfo struct {
	priority int
	action   Action
}

// compositeNFA is one lexer state's patterns merged into a single NFA
// with a fresh root state ε-connected to each pattern's start.
type compositeNFA struct {
	nfa       automaton.NFA[*prodInfo]
	accepting map[string]bool
}

func buildComposite(pats []patAct) (*compositeNFA, error) {
	comp := &compositeNFA{nfa: automaton.NFA[*prodInfo]{}, accepting: map[string]bool{}}
	root := "root"
	comp.nfa.AddState(root, false)
	comp.nfa.Start = root

	for i, pa := range pats {
		patNFA, err := pa.re.ToNFA()
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", pa.src, err)
		}

		prefix := fmt.Sprintf("p%d:", i)
		for _, s := range patNFA.States().Elements() {
			comp.nfa.AddState(prefix+s, false)
		}
		for _, s := range patNFA.States().Elements() {
			for _, edge := range patNFA.AllTransitionsTo(s) {
				comp.nfa.AddTransition(prefix+edge.From(), edge.Input(), prefix+s)
			}
		}

		info := &prodInfo{priority: pa.priority, action: pa.act}
		for _, accept := range patNFA.AcceptingStates().Elements() {
			name := prefix + accept
			comp.nfa.SetAccepting(name, true)
			comp.nfa.SetValue(name, info)
			comp.accepting[name] = true
		}

		comp.nfa.AddTransition(root, automaton.Epsilon, prefix+patNFA.Start)
	}

	return comp, nil
}
