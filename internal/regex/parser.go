package regex

import (
	"strconv"
	"strings"

	"github.com/dekarrin/gudgeon/internal/langerr"
)

// RegExpr is a compiled regular expression: its source pattern, the
// alphabet of literal elements it ranges over, and its parse tree. The
// parse tree round-trips to Pattern up to normalization (escaped forms
// and character classes are expanded, not preserved verbatim).
type RegExpr struct {
	Pattern  string
	Alphabet Alphabet
	Tree     *Node
}

// Parse compiles pattern into a RegExpr following the extended regex
// dialect and fixed construction ordering (character classes and escapes
// resolved first, then grouping, then quantifiers, then union, then
// concatenation).
func Parse(pattern string) (*RegExpr, error) {
	p := &parser{src: []rune(pattern)}

	tree, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.more() {
		return nil, langerr.RegexSyntaxf("unexpected %q at position %d in %q", p.peek(), p.pos, pattern)
	}

	re := &RegExpr{
		Pattern:  pattern,
		Alphabet: NewAlphabet(),
		Tree:     tree,
	}
	collectAlphabet(tree, re.Alphabet)

	return re, nil
}

// MustParse is like Parse but panics on error; intended for grammar/lexer
// spec literals known to be valid at compile time.
func MustParse(pattern string) *RegExpr {
	re, err := Parse(pattern)
	if err != nil {
		panic(err.Error())
	}
	return re
}

func collectAlphabet(n *Node, into Alphabet) {
	if n == nil {
		return
	}
	switch n.Op {
	case OpIdentity:
		switch n.Elem.Kind {
		case Literal, Reference:
			into.Add(n.Elem)
		}
	case OpCharClass:
		for _, r := range n.Chars {
			into.Add(Lit(r))
		}
	}
	for _, c := range n.Children {
		collectAlphabet(c, into)
	}
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) more() bool       { return p.pos < len(p.src) }
func (p *parser) peek() rune       { return p.src[p.pos] }
func (p *parser) next() rune       { c := p.src[p.pos]; p.pos++; return c }
func (p *parser) peekAt(i int) (rune, bool) {
	idx := p.pos + i
	if idx < 0 || idx >= len(p.src) {
		return 0, false
	}
	return p.src[idx], true
}

// parseUnion implements step 6: union, lowest precedence.
func (p *parser) parseUnion() (*Node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for p.more() && p.peek() == '|' {
		p.next()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = union(left, right)
	}
	return left, nil
}

// parseConcat implements step 7: concatenate remaining adjacent terms.
func (p *parser) parseConcat() (*Node, error) {
	var result *Node
	for p.more() && p.peek() != '|' && p.peek() != ')' {
		term, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		result = concat(result, term)
	}
	if result == nil {
		// empty alternative: matches the empty string.
		result = identity(Element{Kind: Empty})
	}
	return result, nil
}

// parseQuantified implements step 5: attach quantifiers to their left
// neighbor.
func (p *parser) parseQuantified() (*Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	if !p.more() {
		return atom, nil
	}

	switch p.peek() {
	case '*':
		p.next()
		return quantified(atom, 0, Unbounded), nil
	case '+':
		p.next()
		return quantified(atom, 1, Unbounded), nil
	case '?':
		p.next()
		return quantified(atom, 0, 1), nil
	case '{':
		save := p.pos
		low, high, ok, err := p.tryParseQuantifierBraces()
		if err != nil {
			return nil, err
		}
		if ok {
			return quantified(atom, low, high), nil
		}
		// not a valid quantifier body; leave the brace for atom parsing
		// on the next call (it will be treated as a name reference).
		p.pos = save
		return atom, nil
	default:
		return atom, nil
	}
}

// tryParseQuantifierBraces attempts to parse a `{n}`, `{n,}`, or `{n,m}`
// body starting at the current `{`. If the body is not a valid quantifier
// (non-numeric), ok is false and no input is consumed from the caller's
// perspective (the caller is responsible for resetting p.pos).
func (p *parser) tryParseQuantifierBraces() (low, high int, ok bool, err error) {
	p.next() // consume '{'
	start := p.pos
	for p.more() && p.peek() != '}' {
		p.next()
	}
	if !p.more() {
		return 0, 0, false, langerr.RegexSyntaxf("unbalanced '{' at position %d", start-1)
	}
	body := string(p.src[start:p.pos])
	p.next() // consume '}'

	parts := strings.SplitN(body, ",", 2)
	n, convErr := strconv.Atoi(strings.TrimSpace(parts[0]))
	if convErr != nil {
		return 0, 0, false, nil
	}
	if len(parts) == 1 {
		return n, n, true, nil
	}
	mStr := strings.TrimSpace(parts[1])
	if mStr == "" {
		return n, Unbounded, true, nil
	}
	m, convErr := strconv.Atoi(mStr)
	if convErr != nil {
		return 0, 0, false, nil
	}
	if m < n {
		return 0, 0, false, langerr.RegexSyntaxf("invalid quantifier {%d,%d}: upper bound less than lower bound", n, m)
	}
	return n, m, true, nil
}

// parseAtom implements steps 1-4: resolve classes and escapes, wrap
// atomic elements in Identity, and recurse into groups.
func (p *parser) parseAtom() (*Node, error) {
	if !p.more() {
		return nil, langerr.RegexSyntaxf("unexpected end of pattern")
	}

	c := p.next()
	switch c {
	case '(':
		inner, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if !p.more() || p.peek() != ')' {
			return nil, langerr.RegexSyntaxf("unbalanced '(' at position %d", p.pos)
		}
		p.next()
		return group(inner), nil
	case ')':
		return nil, langerr.RegexSyntaxf("unbalanced ')' at position %d", p.pos-1)
	case '[':
		return p.parseCharClass()
	case '.':
		return charClass(append([]rune(nil), printableSet...)), nil
	case '\\':
		return p.parseEscape()
	case '{':
		start := p.pos
		for p.more() && p.peek() != '}' {
			p.next()
		}
		if !p.more() {
			return nil, langerr.RegexSyntaxf("unbalanced '{' at position %d", start-1)
		}
		name := string(p.src[start:p.pos])
		p.next()
		return identity(Ref(name)), nil
	default:
		return identity(Lit(c)), nil
	}
}

func (p *parser) parseEscape() (*Node, error) {
	if !p.more() {
		return nil, langerr.RegexSyntaxf("dangling '\\' at end of pattern")
	}
	c := p.next()
	switch c {
	case 't':
		return identity(Lit('\t')), nil
	case 'n':
		return identity(Lit('\n')), nil
	}
	if runes, ok := shorthandClass(c); ok {
		return charClass(runes), nil
	}
	// any other escaped character (including the regex metacharacters
	// themselves) is literal.
	return identity(Lit(c)), nil
}

// parseCharClass implements step 2: resolve `[...]` into a union of
// literal characters, applying `^` negation against the printable set.
func (p *parser) parseCharClass() (*Node, error) {
	negate := false
	if p.more() && p.peek() == '^' {
		negate = true
		p.next()
	}

	var members []rune
	first := true
	for {
		if !p.more() {
			return nil, langerr.RegexSyntaxf("unbalanced '[' in character class")
		}
		c := p.next()
		if c == ']' && !first {
			break
		}
		first = false

		if c == ']' {
			members = append(members, ']')
			continue
		}

		if c == '\\' {
			if !p.more() {
				return nil, langerr.RegexSyntaxf("dangling '\\' in character class")
			}
			e := p.next()
			switch e {
			case 't':
				members = append(members, '\t')
				continue
			case 'n':
				members = append(members, '\n')
				continue
			}
			if runes, ok := shorthandClass(e); ok {
				members = append(members, runes...)
				continue
			}
			members = append(members, e)
			continue
		}

		if r, ok := p.peekAt(0); ok && r == '-' {
			if r2, ok2 := p.peekAt(1); ok2 && r2 != ']' {
				p.next() // consume '-'
				end := p.next()
				if end == '\\' {
					if !p.more() {
						return nil, langerr.RegexSyntaxf("dangling '\\' in character class range")
					}
					end = p.next()
				}
				if end < c {
					return nil, langerr.RegexSyntaxf("invalid character range %q-%q: backwards range", c, end)
				}
				for run := c; run <= end; run++ {
					members = append(members, run)
				}
				continue
			}
		}

		members = append(members, c)
	}

	set := sortedUniqueRunes(members)
	if negate {
		set = negateAgainstPrintable(set)
	}
	// an empty resolved class (e.g. "[^<every printable char>]") collapses
	// to Unmatchable, represented here as a charClass node with no chars;
	// Thompson construction maps that to the Unmatchable fragment.
	return charClass(set), nil
}
