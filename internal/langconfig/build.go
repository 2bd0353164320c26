package langconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/lex"
	"github.com/dekarrin/gudgeon/internal/parse"
	"github.com/dekarrin/gudgeon/internal/regex"
	"github.com/dekarrin/gudgeon/internal/types"
)

// Compiled is everything Build produces from a Project: the lexicon, the
// grammar it feeds, and the parser built over that grammar, plus any
// non-fatal warnings the table construction emitted. BuildParser runs
// every table builder with conflicts treated as errors, so Warnings is
// empty for every project it builds.
type Compiled struct {
	Project  *Project
	Lexer    lex.Lexer
	Grammar  grammar.Grammar
	Parser   parse.Parser
	Warnings []string
}

// BuildLexer compiles p's lexicon (regular definitions plus token/skip
// rules) into a ready-to-use Lexer. Cheap relative to parser-table
// construction; internal/store rebuilds this on every compile, cache hit
// or not.
func BuildLexer(p *Project) (lex.Lexer, error) {
	defs, err := regex.ParseRegularDefinitionFile(p.DefinitionsPath())
	if err != nil {
		return nil, fmt.Errorf("parse regular definitions: %w", err)
	}

	lx := lex.NewLexer()
	for _, t := range p.Tokens {
		if t.Class == "" {
			return nil, fmt.Errorf("token rule with pattern %q has no class", t.Pattern)
		}
		lx.AddClass(types.MakeDefaultClass(t.Class), t.State)

		act := lex.LexAs(t.Class)
		if t.NextState != "" {
			act = lex.LexAndSwapState(t.Class, t.NextState)
		}
		if err := lx.AddPattern(t.Pattern, act, t.State, defs); err != nil {
			return nil, fmt.Errorf("token %q: %w", t.Class, err)
		}
	}
	for _, s := range p.Skip {
		if err := lx.AddPattern(s.Pattern, lex.Discard(), s.State, defs); err != nil {
			return nil, fmt.Errorf("skip pattern %q: %w", s.Pattern, err)
		}
	}
	return lx, nil
}

// BuildGrammar parses p's grammar source and applies its declared start
// symbol. Also cheap relative to table construction.
func BuildGrammar(p *Project) (grammar.Grammar, error) {
	g, err := grammar.ParseGrammarFile(p.GrammarPath())
	if err != nil {
		return grammar.Grammar{}, fmt.Errorf("parse grammar: %w", err)
	}
	if p.Start != "" {
		g.Start = p.Start
	}
	return g, nil
}

// BuildParser runs the table construction named by p.Parser over g. This
// is the expensive step internal/store exists to let a caller skip on a
// cache hit.
func BuildParser(p *Project, g grammar.Grammar) (parse.Parser, []string, error) {
	pt, _ := p.ParserType()

	var parser parse.Parser
	var warnings []string
	var err error
	switch pt {
	case types.ParserLL1:
		parser, err = parse.GenerateLL1Parser(g)
	case types.ParserSLR1:
		parser, warnings, err = parse.GenerateSimpleLRParser(g, false)
	case types.ParserCLR1:
		parser, err = parse.GenerateCanonicalLR1Parser(g)
	case types.ParserLALR1:
		parser, err = parse.GenerateLALR1Parser(g)
	}
	if err != nil {
		return nil, warnings, fmt.Errorf("build %s parser: %w", pt, err)
	}
	return parser, warnings, nil
}

// Build reads a Project's source files from disk and compiles them into a
// working Lexer and Parser. This is the only place the project-level
// TOML config, the plain-text regular-definition/grammar dialects, and
// the table constructors meet.
func Build(p *Project) (*Compiled, error) {
	lx, err := BuildLexer(p)
	if err != nil {
		return nil, err
	}

	g, err := BuildGrammar(p)
	if err != nil {
		return nil, err
	}

	parser, warnings, err := BuildParser(p, g)
	if err != nil {
		return nil, err
	}

	return &Compiled{Project: p, Lexer: lx, Grammar: g, Parser: parser, Warnings: warnings}, nil
}

// SourceHash hashes the project's parser flavor, start symbol, and two
// source files, giving internal/store a cache key that changes whenever
// any of those change. Token and skip rules are not part of the hash.
func (p *Project) SourceHash() (string, error) {
	defsText, err := os.ReadFile(p.DefinitionsPath())
	if err != nil {
		return "", fmt.Errorf("read regular definitions: %w", err)
	}
	grammarText, err := os.ReadFile(p.GrammarPath())
	if err != nil {
		return "", fmt.Errorf("read grammar: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(p.Parser))
	h.Write([]byte{0})
	h.Write([]byte(p.Start))
	h.Write([]byte{0})
	h.Write(defsText)
	h.Write([]byte{0})
	h.Write(grammarText)

	return hex.EncodeToString(h.Sum(nil)), nil
}
