package regexfe

import (
	"fmt"
	"sync"

	"github.com/dekarrin/gizzard/internal/fe/grammar"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/fe/parser"
)

// GrammarName keys the regex grammar's cached parse table.
const GrammarName = "regex"

// Grammar returns the regex surface-syntax grammar. Alternation binds
// loosest, then concatenation, then repetition; atoms are single
// characters, classes, dot, and parenthesized groups:
//
//	Expr -> Expr '|' Cat | Cat
//	Cat  -> Cat Rep | ε
//	Rep  -> Atom '*' | Atom '+' | Atom '?' | Atom
//	Atom -> ch | class | '.' | '(' Expr ')'
//
// The builders produce the regex AST of this package directly, so
// evaluating a derivation of this grammar yields a Node.
func Grammar() *grammar.Grammar {
	g := grammar.New()
	for _, t := range []string{TermChar, TermClass, "|", "*", "+", "?", "(", ")", "."} {
		g.AddTerminal(t)
	}

	g.AddProduction("Expr", []string{"Expr", "|", "Cat"}, func(children []any) any {
		left := children[0].(Node)
		right := children[2].(Node)
		if alt, ok := left.(Alt); ok {
			return Alt{Options: append(alt.Options, right)}
		}
		return Alt{Options: []Node{left, right}}
	})
	g.AddProduction("Expr", []string{"Cat"}, passthrough)

	g.AddProduction("Cat", []string{"Cat", "Rep"}, func(children []any) any {
		left := children[0].(Node)
		right := children[1].(Node)
		if cat, ok := left.(Concat); ok {
			return Concat{Parts: append(cat.Parts, right)}
		}
		return Concat{Parts: []Node{left, right}}
	})
	g.AddProduction("Cat", nil, func(children []any) any {
		// empty sequence: matches epsilon.
		return Concat{}
	})

	g.AddProduction("Rep", []string{"Atom", "*"}, func(children []any) any {
		return Star{Sub: children[0].(Node)}
	})
	g.AddProduction("Rep", []string{"Atom", "+"}, func(children []any) any {
		return Plus{Sub: children[0].(Node)}
	})
	g.AddProduction("Rep", []string{"Atom", "?"}, func(children []any) any {
		return Opt{Sub: children[0].(Node)}
	})
	g.AddProduction("Rep", []string{"Atom"}, passthrough)

	g.AddProduction("Atom", []string{TermChar}, func(children []any) any {
		tok := children[0].(parser.Token)
		return Literal{Ch: []rune(tok.Lexeme)[0]}
	})
	g.AddProduction("Atom", []string{TermClass}, func(children []any) any {
		tok := children[0].(parser.Token)
		cls, err := classFromText(tok.Lexeme)
		if err != nil {
			// the tokenizer validated the class text already.
			panic(fmt.Sprintf("regexfe: %v", err))
		}
		return cls
	})
	g.AddProduction("Atom", []string{"."}, func(children []any) any {
		return Any{}
	})
	g.AddProduction("Atom", []string{"(", "Expr", ")"}, func(children []any) any {
		return children[1]
	})

	g.SetStart("Expr")
	return g
}

func passthrough(children []any) any { return children[0] }

// unwrapSingles strips the redundant one-element Concat/Alt wrappers the
// merge builders avoid creating but a lone Cat of one Rep still produces.
func unwrapSingles(n Node) Node {
	switch v := n.(type) {
	case Concat:
		if len(v.Parts) == 1 {
			return unwrapSingles(v.Parts[0])
		}
	case Alt:
		if len(v.Options) == 1 {
			return unwrapSingles(v.Options[0])
		}
	}
	return n
}

var (
	tableOnce sync.Once
	table     *lr.Table
	tableErr  error
)

// BuildTable constructs a fresh parse table for the regex grammar. It is
// what the cache regeneration path persists.
func BuildTable() (*lr.Table, error) {
	return lr.Build(GrammarName, Grammar())
}

// Parse parses a regex surface-syntax string into a regex AST, building the
// grammar's parse table on first use.
func Parse(src string) (Node, error) {
	tableOnce.Do(func() {
		table, tableErr = BuildTable()
	})
	if tableErr != nil {
		return nil, fmt.Errorf("regexfe: building parse table: %w", tableErr)
	}
	return ParseWithTable(table, src)
}

// ParseWithTable parses src against a previously built (possibly
// cache-loaded) regex parse table.
func ParseWithTable(t *lr.Table, src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	tree, err := parser.Parse(t, toks)
	if err != nil {
		if synErr, ok := err.(*parser.SyntaxError); ok {
			return nil, fmt.Errorf("regexfe: unexpected %s at position %d in %q", synErr.Token, synErr.Token.Col, src)
		}
		return nil, err
	}
	n := parser.Evaluate(tree, Grammar().AllProductions()).(Node)
	return unwrapSingles(n), nil
}
