package grammar

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dekarrin/gudgeon/internal/langerr"
	"github.com/dekarrin/gudgeon/internal/types"
)

// titleCaser renders a terminal's raw text as a human-readable class name
// ("plus" -> "Plus") for use in generated parse-error messages; it never
// changes a TokenClass's ID, which stays the lower-cased raw text (see
// types.MakeDefaultClass), only how it reads in prose.
var titleCaser = cases.Title(language.English)

// ParseGrammarFile reads path and parses it with ParseGrammarText.
func ParseGrammarFile(path string) (Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Grammar{}, langerr.Wrap(langerr.KindGrammar, err, "read grammar file %q", path)
	}
	return ParseGrammarText(string(data))
}

// ParseGrammarText builds a Grammar from the plain-text production
// dialect:
//
//	NAME -> 'terminal' NONTERM | ...
//	      | ...
//
// Nonterminals are bare identifiers of uppercase letters, '_' and '-'
// (anything else is rejected); terminals are single-quoted literals, registered
// automatically the first time they're seen; `|` separates alternatives for
// the rule currently being defined, and a continuation line beginning with
// `|` extends that same rule across lines. `{action-name}` inserts an
// action terminal (AddActionTerm), registered the same way. The first
// nonterminal defined becomes the grammar's start symbol.
func ParseGrammarText(src string) (Grammar, error) {
	var g Grammar
	declaredTerms := map[string]bool{}
	declaredActions := map[string]bool{}

	var curName string
	started := false
	lineNo := 0

	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		lineNo++
		raw := sc.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var body string
		if strings.HasPrefix(line, "|") {
			if curName == "" {
				return Grammar{}, langerr.Grammarf("line %d: continuation line %q has no preceding rule", lineNo, raw)
			}
			body = strings.TrimPrefix(line, "|")
		} else {
			arrow := strings.Index(line, "->")
			if arrow < 0 {
				return Grammar{}, langerr.Grammarf("line %d: expected \"NAME -> production\", got %q", lineNo, raw)
			}
			name := strings.TrimSpace(line[:arrow])
			if !isBareIdentifier(name) {
				return Grammar{}, langerr.Grammarf("line %d: %q is not a valid nonterminal name", lineNo, name)
			}
			curName = name
			if !started {
				g.Start = name
				started = true
			}
			body = line[arrow+2:]
			// the rest of body may itself begin with a leading |
			// separating the first alternative, which tokenizeAlts
			// already treats as a separator so no special-casing needed.
		}

		alts, err := tokenizeAlternatives(body)
		if err != nil {
			return Grammar{}, langerr.Wrap(langerr.KindGrammar, err, "line %d", lineNo)
		}

		for _, alt := range alts {
			prod := make([]string, 0, len(alt))
			for _, sym := range alt {
				resolved, err := registerSymbol(&g, sym, declaredTerms, declaredActions)
				if err != nil {
					return Grammar{}, langerr.Wrap(langerr.KindGrammar, err, "line %d", lineNo)
				}
				prod = append(prod, resolved)
			}
			if len(prod) == 0 {
				prod = []string{""}
			}
			g.AddRule(curName, prod)
		}
	}
	if err := sc.Err(); err != nil {
		return Grammar{}, langerr.Grammarf("reading grammar text: %s", err.Error())
	}
	if !started {
		return Grammar{}, langerr.Grammarf("grammar text defines no rules")
	}

	return g, nil
}

// symToken distinguishes the three things a production symbol can be
// lexed as in the text dialect.
type symToken struct {
	kind symKind
	text string
}

type symKind int

const (
	symWord symKind = iota
	symQuotedTerm
	symAction
)

// registerSymbol resolves one parsed symbol token into the grammar symbol
// name AddRule expects, registering new terminals/action-terms on first
// sight.
func registerSymbol(g *Grammar, tok symToken, declaredTerms, declaredActions map[string]bool) (string, error) {
	switch tok.kind {
	case symQuotedTerm:
		if !declaredTerms[tok.text] {
			g.AddTerm(tok.text, types.MakeDefaultClass(titleCaser.String(tok.text)))
			declaredTerms[tok.text] = true
		}
		return tok.text, nil
	case symAction:
		if !declaredActions[tok.text] {
			g.AddActionTerm(tok.text, types.MakeDefaultClass(titleCaser.String(tok.text)))
			declaredActions[tok.text] = true
		}
		return tok.text, nil
	default:
		if !isBareIdentifier(tok.text) {
			return "", langerr.Grammarf("bare identifier %q is not a valid nonterminal (terminals must be quoted)", tok.text)
		}
		return tok.text, nil
	}
}

// tokenizeAlternatives splits body into its `|`-separated alternatives and
// lexes each into a sequence of symTokens: 'quoted' terminals, {action}
// names, and bare words.
func tokenizeAlternatives(body string) ([][]symToken, error) {
	var alts [][]symToken
	var cur []symToken

	runes := []rune(body)
	i, n := 0, len(runes)
	for i < n {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '|':
			alts = append(alts, cur)
			cur = nil
			i++
		case c == '\'':
			j := i + 1
			var sb strings.Builder
			for j < n && runes[j] != '\'' {
				if runes[j] == '\\' && j+1 < n {
					sb.WriteRune(runes[j+1])
					j += 2
					continue
				}
				sb.WriteRune(runes[j])
				j++
			}
			if j >= n {
				return nil, langerr.Grammarf("unterminated quoted terminal")
			}
			cur = append(cur, symToken{kind: symQuotedTerm, text: sb.String()})
			i = j + 1
		case c == '{':
			j := i + 1
			for j < n && runes[j] != '}' {
				j++
			}
			if j >= n {
				return nil, langerr.Grammarf("unterminated action name")
			}
			cur = append(cur, symToken{kind: symAction, text: string(runes[i+1 : j])})
			i = j + 1
		default:
			j := i
			for j < n && !unicode.IsSpace(runes[j]) && runes[j] != '|' && runes[j] != '\'' && runes[j] != '{' {
				j++
			}
			cur = append(cur, symToken{kind: symWord, text: string(runes[i:j])})
			i = j
		}
	}
	alts = append(alts, cur)
	return alts, nil
}

// isBareIdentifier reports whether s is a valid nonterminal name: one or
// more of A-Z, '_', or '-'.
func isBareIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !('A' <= ch && ch <= 'Z') && ch != '_' && ch != '-' {
			return false
		}
	}
	return true
}
