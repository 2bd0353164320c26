// Package store caches compiled parser tables in a sqlite database, keyed
// by project ID plus a hash of the source the table was compiled from.
// Compiling a grammar's lexicon and parsing its production rules is cheap;
// walking FIRST/FOLLOW sets and building the LR item-set automaton is not,
// and this package exists so repeated compiles of an unchanged project
// skip straight to a working parse.Parser.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dekarrin/gudgeon/internal/grammar"
	"github.com/dekarrin/gudgeon/internal/langconfig"
	"github.com/dekarrin/gudgeon/internal/parse"
	"github.com/dekarrin/gudgeon/internal/types"
)

// Store is a sqlite-backed cache of compiled parser tables.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite-backed cache at file.
func Open(file string) (*Store, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("open cache database %q: %w", file, err)
	}
	st := &Store{db: db}
	if err := st.init(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func (st *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS compiled_tables (
		project_id  TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		parser_type INTEGER NOT NULL,
		table_data  BLOB NOT NULL,
		PRIMARY KEY (project_id, source_hash)
	);`
	if _, err := st.db.Exec(stmt); err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (st *Store) Close() error {
	return st.db.Close()
}

// Compile returns a langconfig.Compiled for p, rehydrating its parser from
// the cache when a row matching p's current source hash already exists,
// and compiling + caching it fresh otherwise. The lexicon and grammar are
// always rebuilt directly from source; they're cheap, and rebuilding them
// avoids needing to cache anything but the expensive table itself.
func (st *Store) Compile(p *langconfig.Project) (*langconfig.Compiled, error) {
	lx, err := langconfig.BuildLexer(p)
	if err != nil {
		return nil, err
	}
	g, err := langconfig.BuildGrammar(p)
	if err != nil {
		return nil, err
	}

	hash, err := p.SourceHash()
	if err != nil {
		return nil, err
	}

	if cached, ok, err := st.load(p, g, hash); err != nil {
		return nil, err
	} else if ok {
		return &langconfig.Compiled{Project: p, Lexer: lx, Grammar: g, Parser: cached}, nil
	}

	parser, warnings, err := langconfig.BuildParser(p, g)
	if err != nil {
		return nil, err
	}
	if err := st.save(p, hash, parser); err != nil {
		return nil, err
	}

	return &langconfig.Compiled{Project: p, Lexer: lx, Grammar: g, Parser: parser, Warnings: warnings}, nil
}

func (st *Store) load(p *langconfig.Project, g grammar.Grammar, hash string) (parse.Parser, bool, error) {
	row := st.db.QueryRow(
		`SELECT parser_type, table_data FROM compiled_tables WHERE project_id = ? AND source_hash = ?`,
		p.ID, hash,
	)

	var ptInt int
	var raw []byte
	if err := row.Scan(&ptInt, &raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query compiled-table cache: %w", err)
	}

	payload, err := decodePayload(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode cached table: %w", err)
	}

	pt := types.ParserType(ptInt)
	if pt == types.ParserLL1 {
		if payload.LL1 == nil {
			return nil, false, fmt.Errorf("cached row for project %q has no LL(1) table but is marked LL(1)", p.ID)
		}
		return payload.LL1.NewParser(g), true, nil
	}
	if payload.LR == nil {
		return nil, false, fmt.Errorf("cached row for project %q has no LR table but is marked %s", p.ID, pt)
	}
	return payload.LR.NewParser(pt, g), true, nil
}

func (st *Store) save(p *langconfig.Project, hash string, parser parse.Parser) error {
	pt := parser.Type()

	payload := tablePayload{Kind: pt}
	if ll1, ok := parse.SnapshotLL1(parser); ok {
		payload.LL1 = &ll1
	} else if lr, ok := parse.Snapshot(parser); ok {
		payload.LR = &lr
	} else {
		return fmt.Errorf("parser for project %q cannot be snapshotted", p.ID)
	}

	raw, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode compiled table: %w", err)
	}

	_, err = st.db.Exec(
		`INSERT OR REPLACE INTO compiled_tables (project_id, source_hash, parser_type, table_data) VALUES (?, ?, ?, ?)`,
		p.ID, hash, int(pt), raw,
	)
	if err != nil {
		return fmt.Errorf("write compiled-table cache: %w", err)
	}
	return nil
}
