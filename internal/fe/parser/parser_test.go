package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gizzard/internal/fe/grammar"
	"github.com/dekarrin/gizzard/internal/fe/lr"
)

// calcGrammar is the dragon-book expression grammar with builders that
// evaluate the expression numerically, so a parse's Evaluate result can be
// checked directly.
func calcGrammar() *grammar.Grammar {
	g := grammar.New()
	for _, t := range []string{"+", "*", "(", ")", "num"} {
		g.AddTerminal(t)
	}
	g.AddProduction("E", []string{"E", "+", "T"}, func(c []any) any {
		return c[0].(int) + c[2].(int)
	})
	g.AddProduction("E", []string{"T"}, func(c []any) any { return c[0] })
	g.AddProduction("T", []string{"T", "*", "F"}, func(c []any) any {
		return c[0].(int) * c[2].(int)
	})
	g.AddProduction("T", []string{"F"}, func(c []any) any { return c[0] })
	g.AddProduction("F", []string{"(", "E", ")"}, func(c []any) any { return c[1] })
	g.AddProduction("F", []string{"num"}, func(c []any) any {
		tok := c[0].(Token)
		n := 0
		for _, d := range tok.Lexeme {
			n = n*10 + int(d-'0')
		}
		return n
	})
	g.SetStart("E")
	return g
}

func toks(terms ...string) []Token {
	out := make([]Token, len(terms))
	for i, term := range terms {
		out[i] = Token{Terminal: term, Lexeme: term, Row: 1, Col: i + 1}
	}
	return out
}

func Test_Parser_ShiftReduceAndEvaluate(t *testing.T) {
	g := calcGrammar()
	table, err := lr.Build("calc", g)
	require.NoError(t, err)

	input := []Token{
		{Terminal: "num", Lexeme: "2", Row: 1, Col: 1},
		{Terminal: "+", Lexeme: "+", Row: 1, Col: 3},
		{Terminal: "num", Lexeme: "3", Row: 1, Col: 5},
		{Terminal: "*", Lexeme: "*", Row: 1, Col: 7},
		{Terminal: "num", Lexeme: "4", Row: 1, Col: 9},
	}

	tree, err := Parse(table, input)
	require.NoError(t, err)

	got := Evaluate(tree, g.AllProductions())
	assert.Equal(t, 14, got)
}

func Test_Parser_Parenthesized(t *testing.T) {
	g := calcGrammar()
	table, err := lr.Build("calc", g)
	require.NoError(t, err)

	input := []Token{
		{Terminal: "(", Lexeme: "(", Row: 1, Col: 1},
		{Terminal: "num", Lexeme: "2", Row: 1, Col: 2},
		{Terminal: "+", Lexeme: "+", Row: 1, Col: 3},
		{Terminal: "num", Lexeme: "3", Row: 1, Col: 4},
		{Terminal: ")", Lexeme: ")", Row: 1, Col: 5},
		{Terminal: "*", Lexeme: "*", Row: 1, Col: 6},
		{Terminal: "num", Lexeme: "4", Row: 1, Col: 7},
	}

	tree, err := Parse(table, input)
	require.NoError(t, err)
	assert.Equal(t, 20, Evaluate(tree, g.AllProductions()))
}

func Test_Parser_SyntaxErrorNamesExpectedTerminals(t *testing.T) {
	g := calcGrammar()
	table, err := lr.Build("calc", g)
	require.NoError(t, err)

	// "num +" then end of input: the parser wants an operand.
	input := []Token{
		{Terminal: "num", Lexeme: "1", Row: 1, Col: 1},
		{Terminal: "+", Lexeme: "+", Row: 1, Col: 3},
	}

	_, err = Parse(table, input)
	require.Error(t, err)

	synErr, ok := err.(*SyntaxError)
	require.True(t, ok, "expected a *SyntaxError, got %T", err)
	assert.Equal(t, grammar.EndOfInput, synErr.Token.Terminal)
	assert.Contains(t, synErr.Expected, "num")
	assert.Contains(t, synErr.Expected, "(")
}

func Test_Parser_EmptyInputIsSyntaxError(t *testing.T) {
	g := calcGrammar()
	table, err := lr.Build("calc", g)
	require.NoError(t, err)

	_, err = Parse(table, nil)
	require.Error(t, err)
	assert.IsType(t, &SyntaxError{}, err)
}

func Test_Parser_EpsilonProduction(t *testing.T) {
	// S -> a B ; B -> b | ε, checking reduce-by-empty pops nothing.
	g := grammar.New()
	g.AddTerminal("a")
	g.AddTerminal("b")
	g.AddProduction("S", []string{"a", "B"}, func(c []any) any {
		return "a" + c[1].(string)
	})
	g.AddProduction("B", []string{"b"}, func(c []any) any { return "b" })
	g.AddProduction("B", nil, func(c []any) any { return "" })
	g.SetStart("S")

	table, err := lr.Build("epsilon", g)
	require.NoError(t, err)

	tree, err := Parse(table, toks("a"))
	require.NoError(t, err)
	assert.Equal(t, "a", Evaluate(tree, g.AllProductions()))

	tree, err = Parse(table, toks("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "ab", Evaluate(tree, g.AllProductions()))
}
