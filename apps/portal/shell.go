package main

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const shellPrompt = "masomo> "

// shell reads commands until "exit" or the end of input. The store lives across commands,
// so lists fetched by one command are reused by the next ones.
func (cli *commandLine) shell() error {
	cli.println("Type \"help\" for the list of commands, \"exit\" to quit.")
	for {
		cli.printf(shellPrompt)
		line, err := cli.in.ReadString('\n')
		if err != nil && line == "" {
			cli.println()
			return nil // end of input
		}

		args, splitErr := splitArgs(line)
		switch {
		case splitErr != nil:
			cli.printError(splitErr)
			continue
		case len(args) == 0:
			continue
		case args[0] == "exit" || args[0] == "quit":
			return nil
		case args[0] == "shell":
			continue
		}

		if err := cli.run(append([]string{"shell"}, args...)); err != nil {
			cli.printError(err)
		}
	}
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits a command line on whitespace; single or double quotes group words.
func splitArgs(line string) ([]string, error) {
	var args []string
	var cur strings.Builder
	var quote rune
	var inArg bool

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
