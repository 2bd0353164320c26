package lex

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/types"
)

// position records where in the source a rune sits, for token line/column
// reporting.
type position struct {
	line     int
	col      int
	fullLine string
}

// computePositions returns one position per rune in src plus a trailing
// entry for the position just past the end, built by splitting on '\n'
// so FullLine can be reported without re-scanning the source per token.
func computePositions(src []rune) []position {
	positions := make([]position, len(src)+1)

	line, col := 1, 1
	var lineStart int
	lineOf := func(start int) string {
		end := start
		for end < len(src) && src[end] != '\n' {
			end++
		}
		return string(src[start:end])
	}

	for i := 0; i <= len(src); i++ {
		positions[i] = position{line: line, col: col, fullLine: lineOf(lineStart)}
		if i < len(src) && src[i] == '\n' {
			line++
			col = 1
			lineStart = i + 1
		} else {
			col++
		}
	}
	return positions
}

// engine is the running token stream produced by lexerTemplate.Lex: the
// whole input buffered as runes (a composite-NFA simulator needs
// unbounded lookahead to find the longest match, unlike a regexp engine
// that resolves that internally) plus one composite automaton per lexer
// state.
type engine struct {
	composites map[string]*compositeNFA
	classes    map[string]map[string]types.TokenClass
	state      string

	runes     []rune
	positions []position
	idx       int

	curLine int
	curPos  int

	done bool
}

func (e *engine) HasNext() bool {
	if e.done {
		return false
	}
	return !e.Peek().Class().Equal(types.TokenEndOfText)
}

func (e *engine) Peek() types.Token {
	savedIdx, savedState, savedDone := e.idx, e.state, e.done
	tok := e.Next()
	e.idx, e.state, e.done = savedIdx, savedState, savedDone
	return tok
}

func (e *engine) Next() types.Token {
	for {
		if e.done {
			return e.eotToken()
		}
		if e.idx >= len(e.runes) {
			e.done = true
			return e.eotToken()
		}

		comp, ok := e.composites[e.state]
		if !ok {
			e.done = true
			return e.errorToken(fmt.Sprintf("no lexer patterns defined for state %q", e.state))
		}

		length, info, found := e.longestMatch(comp)
		if !found {
			err := langerr.LexerCannotProduceTokenf("no pattern matches input at line %d col %d", e.positions[e.idx].line, e.positions[e.idx].col)
			tok := e.errorToken(err.Error())
			e.idx++
			return tok
		}

		lexeme := string(e.runes[e.idx : e.idx+length])
		startIdx := e.idx
		e.idx += length

		switch info.action.Type {
		case ActionNone:
			continue
		case ActionState:
			e.state = info.action.State
			continue
		case ActionScan:
			return e.makeToken(info.action.ClassID, lexeme, startIdx)
		case ActionScanAndState:
			tok := e.makeToken(info.action.ClassID, lexeme, startIdx)
			e.state = info.action.State
			return tok
		default:
			continue
		}
	}
}

// longestMatch runs the composite NFA simulator forward from e.idx,
// recording the winning production at every prefix length where some
// current state is accepting, then returns the longest such prefix. Ties
// at the same length are broken by the lowest declared priority.
func (e *engine) longestMatch(comp *compositeNFA) (int, *prodInfo, bool) {
	current := comp.nfa.EpsilonClosure(comp.nfa.Start)

	var bestLen int
	var bestInfo *prodInfo
	found := false

	considerPrefix := func(length int) {
		var winner *prodInfo
		for _, s := range current.Elements() {
			if !comp.accepting[s] {
				continue
			}
			info := comp.nfa.GetValue(s)
			if info == nil {
				continue
			}
			if winner == nil || info.priority < winner.priority {
				winner = info
			}
		}
		if winner != nil {
			bestLen = length
			bestInfo = winner
			found = true
		}
	}

	considerPrefix(0)

	pos := e.idx
	for pos < len(e.runes) && current.Len() > 0 {
		r := e.runes[pos]
		moved := comp.nfa.EpsilonClosureOfSet(comp.nfa.MOVE(current, string(r)))
		if moved.Empty() {
			break
		}
		current = moved
		pos++
		considerPrefix(pos - e.idx)
	}

	return bestLen, bestInfo, found
}

func (e *engine) makeToken(classID, lexeme string, startIdx int) lexerToken {
	pos := e.positions[startIdx]
	class, ok := e.classes[e.state][classID]
	if !ok {
		class = types.MakeDefaultClass(classID)
	}
	return lexerToken{class: class, lexed: lexeme, lineNum: pos.line, linePos: pos.col, line: pos.fullLine}
}

func (e *engine) eotToken() lexerToken {
	pos := e.positions[len(e.positions)-1]
	return lexerToken{class: types.TokenEndOfText, lineNum: pos.line, linePos: pos.col, line: pos.fullLine}
}

func (e *engine) errorToken(msg string) lexerToken {
	pos := e.positions[e.idx]
	return lexerToken{class: types.TokenError, lexed: msg, lineNum: pos.line, linePos: pos.col, line: pos.fullLine}
}
