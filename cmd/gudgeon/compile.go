package main

import (
	"fmt"

	"github.com/dekarrin/gudgeon/internal/langconfig"
	"github.com/dekarrin/gudgeon/internal/regex"
	"github.com/dekarrin/gudgeon/internal/store"
)

// loadProject builds a langconfig.Project either from a TOML project
// bundle (-p) or directly from -g/-l/-t, auto-deriving one token class per
// named regular definition (in declaration order, so the longest-match
// priority tie-break still does what the lexspec's ordering implies).
func loadProject() (*langconfig.Project, error) {
	if *projectFile != "" {
		return langconfig.Load(*projectFile)
	}

	if *grammarFile == "" || *lexspecFile == "" {
		return nil, fmt.Errorf("either --project, or both --grammar and --lexspec, are required")
	}

	defs, err := regex.ParseRegularDefinitionFile(*lexspecFile)
	if err != nil {
		return nil, fmt.Errorf("read lexspec: %w", err)
	}

	var tokens []langconfig.TokenRule
	for _, name := range defs.Names() {
		tokens = append(tokens, langconfig.TokenRule{Class: name, Pattern: "{" + name + "}"})
	}

	p := &langconfig.Project{
		ID:          "adhoc",
		Name:        "adhoc",
		Parser:      *tableFlavor,
		Definitions: *lexspecFile,
		GrammarFile: *grammarFile,
		Tokens:      tokens,
	}
	if _, err := p.ParserType(); err != nil {
		return nil, err
	}

	return p, nil
}

// compileProject runs the project through internal/store's cache if -c
// was given, or straight through langconfig.Build otherwise.
func compileProject(p *langconfig.Project) (*langconfig.Compiled, error) {
	if *cacheFile == "" {
		return langconfig.Build(p)
	}

	st, err := store.Open(*cacheFile)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.Compile(p)
}
