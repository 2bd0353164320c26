package types

import (
	"fmt"
	"strings"
)

const (
	treeLevelEmpty               = "        "
	treeLevelOngoing             = "  |     "
	treeLevelPrefix              = "  |%s: "
	treeLevelPrefixLast          = `  \%s: `
	treeLevelPrefixNamePadChar   = '-'
	treeLevelPrefixNamePadAmount = 3
)

func makeTreeLevelPrefix(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefix, msg)
}

func makeTreeLevelPrefixLast(msg string) string {
	for len([]rune(msg)) < treeLevelPrefixNamePadAmount {
		msg = string(treeLevelPrefixNamePadChar) + msg
	}
	return fmt.Sprintf(treeLevelPrefixLast, msg)
}

// ParseTree is a rose tree whose nodes are GrammarSymbols: inner nodes are
// nonterminals produced by reductions, leaves are terminals holding the
// token that matched them.
type ParseTree struct {
	// Terminal is whether this node is for a terminal symbol.
	Terminal bool

	// Value is the symbol at this node (a terminal or nonterminal name).
	Value string

	// Source is the token this node was built from; only meaningful when
	// Terminal is true.
	Source Token

	// Children is every child of this node, left to right.
	Children []*ParseTree
}

// String returns a prettified representation suitable for line-by-line
// comparison. Two parse trees are considered structurally identical if
// they produce identical String output.
func (pt ParseTree) String() string {
	return pt.leveledStr("", "")
}

// Copy returns a duplicate, deeply-copied parse tree.
func (pt ParseTree) Copy() ParseTree {
	newPt := ParseTree{
		Terminal: pt.Terminal,
		Value:    pt.Value,
		Source:   pt.Source,
		Children: make([]*ParseTree, len(pt.Children)),
	}

	for i := range pt.Children {
		if pt.Children[i] != nil {
			newChild := pt.Children[i].Copy()
			newPt.Children[i] = &newChild
		}
	}

	return newPt
}

func (pt ParseTree) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder

	sb.WriteString(firstPrefix)
	if pt.Terminal {
		sb.WriteString(fmt.Sprintf("(TERM %q)", pt.Value))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", pt.Value))
	}

	for i := range pt.Children {
		sb.WriteRune('\n')
		var leveledFirstPrefix string
		var leveledContPrefix string
		if i+1 < len(pt.Children) {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefix("")
			leveledContPrefix = contPrefix + treeLevelOngoing
		} else {
			leveledFirstPrefix = contPrefix + makeTreeLevelPrefixLast("")
			leveledContPrefix = contPrefix + treeLevelEmpty
		}
		itemOut := pt.Children[i].leveledStr(leveledFirstPrefix, leveledContPrefix)
		sb.WriteString(itemOut)
	}

	return sb.String()
}

// Equal returns whether pt and o have exactly the same structure: same
// Terminal flags, Values, and recursively-equal Children in the same
// order. Source tokens are not compared.
func (pt ParseTree) Equal(o any) bool {
	other, ok := o.(ParseTree)
	if !ok {
		otherPtr, ok := o.(*ParseTree)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if pt.Terminal != other.Terminal || pt.Value != other.Value {
		return false
	}
	if len(pt.Children) != len(other.Children) {
		return false
	}
	for i := range pt.Children {
		if !pt.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Yield returns the leaves of the tree in left-to-right order — the
// terminal sequence the tree was built from.
func (pt ParseTree) Yield() []*ParseTree {
	if pt.Terminal {
		return []*ParseTree{&pt}
	}
	var leaves []*ParseTree
	for _, c := range pt.Children {
		if c != nil {
			leaves = append(leaves, c.Yield()...)
		}
	}
	return leaves
}
