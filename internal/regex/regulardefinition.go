package regex

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/util"
)

// RegularDefinition is an ordered list of named patterns, each of which
// may reference an earlier name in the list via `{name}`.
// Each Define call parses its pattern, substitutes every reference with a
// copy of the named, already-defined pattern (so a definition can only use
// names declared above it), and then rebuilds that pattern's Alphabet to
// include the literals pulled in from its substitutions.
type RegularDefinition struct {
	order   []string
	byName  map[string]*RegExpr
}

// NewRegularDefinition returns an empty RegularDefinition ready for Define
// calls.
func NewRegularDefinition() *RegularDefinition {
	return &RegularDefinition{byName: map[string]*RegExpr{}}
}

// Define parses pattern and adds it under name, resolving any `{ref}`
// reference it contains against names already defined earlier in this
// RegularDefinition. Order matters: a pattern may only reference a name
// declared strictly before it.
func (rd *RegularDefinition) Define(name, pattern string) error {
	if _, exists := rd.byName[name]; exists {
		return langerr.RegularDefinitionf("regular definition %q already defined", name)
	}

	re, err := Parse(pattern)
	if err != nil {
		return langerr.Wrap(langerr.KindRegularDefinition, err, "regular definition %q", name)
	}

	if err := rd.resolveReferences(re.Tree, name); err != nil {
		return err
	}

	newAlpha := NewAlphabet()
	collectAlphabet(re.Tree, newAlpha)
	re.Alphabet = newAlpha

	rd.byName[name] = re
	rd.order = append(rd.order, name)
	return nil
}

// resolveReferences walks n in place, replacing every OpIdentity node
// whose Element is a Reference with a deep copy of the named definition's
// parse tree. self is the name currently being defined, used to reject
// self-reference and forward-reference as undefined.
func (rd *RegularDefinition) resolveReferences(n *Node, self string) error {
	if n == nil {
		return nil
	}
	if n.Op == OpIdentity && n.Elem.Kind == Reference {
		refName := n.Elem.Name
		if refName == self {
			return langerr.RegularDefinitionf("regular definition %q references itself", self)
		}
		target, ok := rd.byName[refName]
		if !ok {
			return langerr.RegularDefinitionf("regular definition %q references undefined name %q (must be declared earlier)", self, refName)
		}
		resolved := copyNode(target.Tree)
		*n = *resolved
		return nil
	}
	for _, c := range n.Children {
		if err := rd.resolveReferences(c, self); err != nil {
			return err
		}
	}
	return nil
}

func copyNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		Op:    n.Op,
		Elem:  n.Elem,
		Chars: append([]rune(nil), n.Chars...),
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = copyNode(c)
		}
	}
	return cp
}

// ResolvePattern resolves every {name} reference in re against rd's
// already-defined names, for a pattern that wants to reuse a named
// sub-pattern without itself becoming part of the RegularDefinition (as
// a lexer rule does).
func (rd *RegularDefinition) ResolvePattern(re *RegExpr) error {
	if err := rd.resolveReferences(re.Tree, ""); err != nil {
		return err
	}
	newAlpha := NewAlphabet()
	collectAlphabet(re.Tree, newAlpha)
	re.Alphabet = newAlpha
	return nil
}

// Get returns the fully-resolved RegExpr declared under name, or false if
// no such name was defined.
func (rd *RegularDefinition) Get(name string) (*RegExpr, bool) {
	re, ok := rd.byName[name]
	return re, ok
}

// Names returns every defined name in declaration order.
func (rd *RegularDefinition) Names() []string {
	return append([]string(nil), rd.order...)
}

// Alphabet returns the union of every defined pattern's Alphabet.
func (rd *RegularDefinition) Alphabet() Alphabet {
	all := NewAlphabet()
	for _, name := range rd.order {
		all.AddAll(rd.byName[name].Alphabet)
	}
	return all
}

func (rd *RegularDefinition) String() string {
	names := util.Alphabetized(rd.order)
	s := ""
	for _, n := range names {
		s += fmt.Sprintf("%s = %s\n", n, rd.byName[n].Pattern)
	}
	return s
}
