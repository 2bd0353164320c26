package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/gudgeon/internal/langconfig"
)

// openInput opens args[0] if given, otherwise stdin.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func cmdTokens(c *langconfig.Compiled, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	stream, err := c.Lexer.Lex(in)
	if err != nil {
		return err
	}

	for stream.HasNext() {
		tok := stream.Next()
		fmt.Printf("%-20s %q (line %d, col %d)\n", tok.Class().ID(), tok.Lexeme(), tok.Line(), tok.LinePos())
	}
	return nil
}

func cmdParse(c *langconfig.Compiled, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	stream, err := c.Lexer.Lex(in)
	if err != nil {
		return err
	}

	tree, err := c.Parser.Parse(stream)
	if err != nil {
		return err
	}
	fmt.Println(tree.String())
	return nil
}

func cmdTable(c *langconfig.Compiled, args []string) error {
	fmt.Printf("%s parser for %q, start symbol %q\n", c.Parser.Type(), c.Project.Name, c.Grammar.StartSymbol())
	fmt.Println(c.Parser.TableString())
	return nil
}

// parseOneLine runs one line of REPL input through the lexer and parser,
// tolerating a LexerCannotProduceToken or ParseError by reporting it
// instead of aborting the session.
func parseOneLine(c *langconfig.Compiled, line string) {
	stream, err := c.Lexer.Lex(strings.NewReader(line))
	if err != nil {
		fmt.Printf("lex error: %s\n", err.Error())
		return
	}

	tree, err := c.Parser.Parse(stream)
	if err != nil {
		fmt.Printf("parse error: %s\n", err.Error())
		return
	}
	fmt.Println(tree.String())
}
