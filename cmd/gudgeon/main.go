/*
Gudgeon compiles a regular-definition/grammar pair into a running lexer and
parser, and drives it against input text.

Usage:

	gudgeon [flags] <command> [input-file]

The flags are:

	-p, --project FILE
		Load a ".langproj.toml" bundling a regular-definition source, a
		grammar source, a start symbol, and a parser-table flavor.
		Overrides -g/-l/-t below.

	-g, --grammar FILE
		Grammar source, in the plain-text production dialect. Required
		unless -p is given.

	-l, --lexspec FILE
		Regular-definition source, in the plain-text dialect. Required
		unless -p is given. Every named definition becomes a same-named
		token class, in declaration order, when used this way.

	-t, --table FLAVOR
		Parser-table flavor to build: ll1, slr1, clr1, or lalr1. Defaults
		to lalr1. Ignored when -p is given.

	-c, --cache FILE
		Sqlite cache of compiled tables. If given, a project whose source
		hasn't changed since the last run skips table construction
		entirely.

	-v, --version
		Print the version and exit.

The commands are:

	tokens    lex input-file (or stdin) and print the resulting token stream.
	parse     lex and parse input-file (or stdin) and print the parse tree.
	table     print the compiled ACTION/GOTO or LL(1) table.
	repl      start an interactive read-lex-parse-print loop.
	serve     run the HTTP compiler-as-a-service surface over a directory
	          of project bundles. Takes --projects-dir, --api-key, --jwt-secret, and
	          --addr in place of -p/-g/-l/-t.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const version = "0.1.0"

const (
	ExitSuccess = iota
	ExitUsageError
	ExitCompileError
	ExitRunError
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Print the version and exit")
	projectFile = pflag.StringP("project", "p", "", "A .langproj.toml project bundle")
	grammarFile = pflag.StringP("grammar", "g", "", "Grammar source, plain-text dialect")
	lexspecFile = pflag.StringP("lexspec", "l", "", "Regular-definition source, plain-text dialect")
	tableFlavor = pflag.StringP("table", "t", "lalr1", "Parser-table flavor: ll1, slr1, clr1, lalr1")
	cacheFile   = pflag.StringP("cache", "c", "", "Sqlite cache file for compiled tables")

	projectsDir = pflag.String("projects-dir", "", "Directory of .langproj.toml bundles, for the serve command")
	apiKey      = pflag.String("api-key", "", "Static API key clients exchange for a bearer token, for the serve command")
	jwtSecret   = pflag.String("jwt-secret", "", "Secret used to sign bearer tokens, for the serve command")
	listenAddr  = pflag.String("addr", ":8080", "Address to listen on, for the serve command")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()

	if *flagVersion {
		fmt.Println(version)
		return ExitSuccess
	}

	args := pflag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "ERROR: expected a command (tokens, parse, table, repl)")
		return ExitUsageError
	}
	cmd := args[0]
	rest := args[1:]

	if cmd == "serve" {
		if err := cmdServe(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			return ExitRunError
		}
		return ExitSuccess
	}

	proj, err := loadProject()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitUsageError
	}

	compiled, err := compileProject(proj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitCompileError
	}
	for _, w := range compiled.Warnings {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
	}

	switch cmd {
	case "tokens":
		err = cmdTokens(compiled, rest)
	case "parse":
		err = cmdParse(compiled, rest)
	case "table":
		err = cmdTable(compiled, rest)
	case "repl":
		err = cmdRepl(compiled)
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown command %q\n", cmd)
		return ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return ExitRunError
	}
	return ExitSuccess
}
