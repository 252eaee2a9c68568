package lang

import (
	"errors"
	"fmt"

	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/faults"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/fe/parser"
)

// BuildLexer compiles the source language's token rules into a lexer.
func BuildLexer() (*lex.Lexer, error) {
	return lex.Build(Rules())
}

// BuildTable constructs the source language's LR(1) parse table. A conflict
// anywhere in the grammar is a fatal build error.
func BuildTable() (*lr.Table, error) {
	return lr.Build(GrammarName, Grammar())
}

// Tokenize lexes source, returning categorized faults for unmatched input.
func Tokenize(lx *lex.Lexer, source string) ([]lex.Token, error) {
	toks, err := lx.Lex(source)
	if err != nil {
		var lexErr *lex.LexError
		if errors.As(err, &lexErr) {
			return nil, faults.Wrap(err, faults.Lexical, lexErr.Row, lexErr.Col,
				"no token rule matches %q.", lexErr.Snippet)
		}
		return nil, err
	}
	return toks, nil
}

// Parse lexes and parses source against a previously built (possibly
// cache-loaded) table, evaluating the derivation tree into the program AST.
func Parse(lx *lex.Lexer, table *lr.Table, source string) (ast.Program, error) {
	toks, err := Tokenize(lx, source)
	if err != nil {
		return ast.Program{}, err
	}

	tree, err := parser.Parse(table, ToParserTokens(toks))
	if err != nil {
		var synErr *parser.SyntaxError
		if errors.As(err, &synErr) {
			return ast.Program{}, faults.Wrap(err, faults.Syntactic, synErr.Token.Row, synErr.Token.Col,
				"unexpected %s.", synErr.Token)
		}
		return ast.Program{}, err
	}

	prog, ok := parser.Evaluate(tree, Grammar().AllProductions()).(ast.Program)
	if !ok {
		return ast.Program{}, fmt.Errorf("lang: derivation did not evaluate to a program")
	}
	return prog, nil
}
