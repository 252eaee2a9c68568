package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildExprGrammar builds the classic dragon-book expression grammar:
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> ( E ) | id
func buildExprGrammar() *Grammar {
	g := New()
	for _, t := range []string{"+", "*", "(", ")", "id"} {
		g.AddTerminal(t)
	}
	noop := func(children []any) any { return nil }
	g.AddProduction("E", []string{"E", "+", "T"}, noop)
	g.AddProduction("E", []string{"T"}, noop)
	g.AddProduction("T", []string{"T", "*", "F"}, noop)
	g.AddProduction("T", []string{"F"}, noop)
	g.AddProduction("F", []string{"(", "E", ")"}, noop)
	g.AddProduction("F", []string{"id"}, noop)
	g.SetStart("E")
	return g
}

func Test_Grammar_Validate(t *testing.T) {
	g := buildExprGrammar()
	assert.NoError(t, g.Validate())
}

func Test_Grammar_FIRST(t *testing.T) {
	g := buildExprGrammar()

	for _, nt := range []string{"E", "T", "F"} {
		first := g.FIRST(nt)
		assert.True(t, first["("], "FIRST(%s) should contain (", nt)
		assert.True(t, first["id"], "FIRST(%s) should contain id", nt)
		assert.False(t, first[Epsilon], "FIRST(%s) should not contain epsilon", nt)
	}
}

func Test_Grammar_FOLLOW(t *testing.T) {
	g := buildExprGrammar()

	followE := g.FOLLOW("E")
	assert.True(t, followE[EndOfInput])
	assert.True(t, followE["+"])
	assert.True(t, followE[")"])

	followF := g.FOLLOW("F")
	assert.True(t, followF["*"])
	assert.True(t, followF["+"])
	assert.True(t, followF[EndOfInput])
	assert.True(t, followF[")"])
}

func Test_Grammar_ClosureAndGoto(t *testing.T) {
	g := buildExprGrammar().Augmented()

	start := NewItemSet(LR1Item{
		LR0Item:   LR0Item{NonTerminal: g.StartSymbol(), Right: []string{"E"}},
		Lookahead: EndOfInput,
	})
	I0 := Closure(g, start)

	// I0 must contain items for every production reachable from E.
	assert.True(t, I0.Has(LR1Item{LR0Item: LR0Item{NonTerminal: "F", Right: []string{"id"}}, Lookahead: "+"}))
	assert.True(t, I0.Has(LR1Item{LR0Item: LR0Item{NonTerminal: "F", Right: []string{"id"}}, Lookahead: "*"}))

	I1 := Goto(g, I0, "id")
	assert.True(t, I1.Has(LR1Item{LR0Item: LR0Item{NonTerminal: "F", Left: []string{"id"}}, Lookahead: "+"}))
}

func Test_Grammar_EpsilonProduction(t *testing.T) {
	g := New()
	g.AddTerminal("a")
	noop := func(children []any) any { return nil }
	g.AddProduction("S", []string{"a", "B"}, noop)
	g.AddProduction("B", nil, noop)
	g.SetStart("S")

	firstB := g.FIRST("B")
	assert.True(t, firstB[Epsilon])

	followB := g.FOLLOW("B")
	assert.True(t, followB[EndOfInput])
}
