package main

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"

	"github.com/dekarrin/gudgeon/internal/langconfig"
)

// cmdRepl runs an interactive read-lex-parse-print loop: each line typed
// is lexed and parsed against c's compiled project, and the resulting
// parse tree (or error) is printed immediately.
func cmdRepl(c *langconfig.Compiled) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: fmt.Sprintf("%s> ", c.Project.Name),
	})
	if err != nil {
		return fmt.Errorf("start readline: %w", err)
	}
	defer rl.Close()

	fmt.Printf("gudgeon repl: %s parser for %q (Ctrl-D to quit)\n", c.Parser.Type(), c.Project.Name)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		parseOneLine(c, line)
	}
}
