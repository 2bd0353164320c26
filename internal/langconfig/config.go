// Package langconfig bundles a regular-definition source, a grammar
// source, and a parser-table flavor into a single named project,
// described by a small TOML document (a ".langproj.toml" file). It is the
// layer above the plain-text regex/grammar dialects: those describe one
// lexicon or one grammar, this describes a compilable project built out
// of a pair of them plus the token-class wiring between the two.
package langconfig

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/gudgeon/internal/types"
	"github.com/google/uuid"
)

// TokenRule maps one token class to the pattern that produces it, in the
// priority order AddPattern expects (declaration order in the TOML array
// is the tie-break priority the lexer engine's longest-match simulator
// uses).
type TokenRule struct {
	// Class is the token class name; also used as its TokenClass ID.
	Class string `toml:"class"`

	// Pattern is a regex surface-syntax string, optionally referencing a
	// name from the project's regular-definition file via `{name}`.
	Pattern string `toml:"pattern"`

	// State is the lexer state this rule applies in. Empty means the
	// default starting state.
	State string `toml:"state"`

	// NextState, if set, makes this rule a combined scan-and-swap action
	// instead of a plain scan.
	NextState string `toml:"next_state"`
}

// SkipRule is a pattern whose match is discarded rather than scanned into
// a token (whitespace, comments).
type SkipRule struct {
	Pattern string `toml:"pattern"`
	State   string `toml:"state"`
}

// Project is one "*.langproj.toml" document: a named, addressable
// compilation unit pairing a lexicon with a grammar.
type Project struct {
	// ID stably identifies this project across rebuilds; generated on
	// first Load if the document doesn't already carry one.
	ID string `toml:"id"`

	Name  string `toml:"name"`
	Start string `toml:"start"`

	// Parser names the table flavor to build: "ll1", "slr1", "clr1", or
	// "lalr1".
	Parser string `toml:"parser"`

	// Definitions is the path (relative to the project file, unless
	// absolute) to a plain-text regular-definition source.
	Definitions string `toml:"regular_definitions"`

	// GrammarFile is the path (relative to the project file, unless
	// absolute) to a plain-text grammar source.
	GrammarFile string `toml:"grammar"`

	Tokens []TokenRule `toml:"tokens"`
	Skip   []SkipRule  `toml:"skip"`

	// dir is the directory Load read the document from, used to resolve
	// Definitions/GrammarFile.
	dir string
}

// Load reads and validates a project document from path. A missing ID is
// filled in with a freshly generated one; callers that want the generated
// ID persisted must re-marshal the Project themselves.
func Load(path string) (*Project, error) {
	var p Project
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("parse project %q: %w", path, err)
	}
	p.dir = filepath.Dir(path)

	if p.Name == "" {
		return nil, fmt.Errorf("project %q: missing required field %q", path, "name")
	}
	if p.Start == "" {
		return nil, fmt.Errorf("project %q: missing required field %q", path, "start")
	}
	if p.Definitions == "" {
		return nil, fmt.Errorf("project %q: missing required field %q", path, "regular_definitions")
	}
	if p.GrammarFile == "" {
		return nil, fmt.Errorf("project %q: missing required field %q", path, "grammar")
	}
	if _, err := p.ParserType(); err != nil {
		return nil, fmt.Errorf("project %q: %w", path, err)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return &p, nil
}

// ParserType resolves the Parser field to the types.ParserType it names.
// An empty field defaults to LALR(1), which accepts every SLR(1) grammar
// with tables no larger than SLR(1)'s; canonical LR(1) (clr1) accepts
// more grammars still.
func (p *Project) ParserType() (types.ParserType, error) {
	switch p.Parser {
	case "", "lalr1":
		return types.ParserLALR1, nil
	case "ll1":
		return types.ParserLL1, nil
	case "slr1":
		return types.ParserSLR1, nil
	case "clr1":
		return types.ParserCLR1, nil
	default:
		return 0, fmt.Errorf("unrecognized parser flavor %q; want one of ll1, slr1, clr1, lalr1", p.Parser)
	}
}

// DefinitionsPath returns the regular-definition source path, resolved
// relative to the project document's own directory if it was given as a
// relative path.
func (p *Project) DefinitionsPath() string {
	return p.resolve(p.Definitions)
}

// GrammarPath returns the grammar source path, resolved relative to the
// project document's own directory if it was given as a relative path.
func (p *Project) GrammarPath() string {
	return p.resolve(p.GrammarFile)
}

func (p *Project) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.dir, rel)
}
