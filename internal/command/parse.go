package command

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// verbAliases maps shorthand verbs (which must be the first word of a
// ":"-command) to their canonical forms. They are all uppercase.
var verbAliases = map[string]string{
	"T":   VerbTokens,
	"TOK": VerbTokens,
	"A":   VerbAST,
	"P":   VerbAST,
	"C":   VerbCheck,
	"L":   VerbLoad,
	"B":   VerbBuild,
	"H":   VerbHelp,
	"?":   VerbHelp,
	"Q":   VerbQuit,
	"BYE": VerbQuit,
}

// Parse parses a command from the given text. A line starting with ":" is a
// session command; anything else is an EVAL of the line as source. If an
// empty string or a string composed only of whitespace is passed in, nil
// error is returned and a zero value for Command will be returned.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, nil
	}

	if !strings.HasPrefix(line, ":") {
		return Command{Verb: VerbEval, Payload: line}, nil
	}

	rest := strings.TrimPrefix(line, ":")
	verb := rest
	payload := ""
	if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
		verb = rest[:idx]
		payload = strings.TrimSpace(rest[idx+1:])
	}

	verb = strings.ToUpper(verb)
	if canonical, ok := verbAliases[verb]; ok {
		verb = canonical
	}

	switch verb {
	case VerbTokens, VerbAST, VerbCheck:
		if payload == "" {
			return Command{}, fmt.Errorf("%s needs source text after it", strings.ToLower(verb))
		}
		return Command{Verb: verb, Payload: payload}, nil
	case VerbLoad:
		args, err := shellquote.Split(payload)
		if err != nil {
			return Command{}, fmt.Errorf("parse arguments: %w", err)
		}
		if len(args) != 1 {
			return Command{}, fmt.Errorf("load needs exactly one file argument")
		}
		return Command{Verb: verb, Args: args}, nil
	case VerbBuild, VerbHelp, VerbQuit:
		return Command{Verb: verb}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q; try :help", verb)
	}
}
