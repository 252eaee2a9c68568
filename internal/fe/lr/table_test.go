package lr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gizzard/internal/fe/grammar"
)

func noop(children []any) any { return nil }

func exprGrammar() *grammar.Grammar {
	g := grammar.New()
	for _, t := range []string{"+", "*", "(", ")", "id"} {
		g.AddTerminal(t)
	}
	g.AddProduction("E", []string{"E", "+", "T"}, noop)
	g.AddProduction("E", []string{"T"}, noop)
	g.AddProduction("T", []string{"T", "*", "F"}, noop)
	g.AddProduction("T", []string{"F"}, noop)
	g.AddProduction("F", []string{"(", "E", ")"}, noop)
	g.AddProduction("F", []string{"id"}, noop)
	g.SetStart("E")
	return g
}

func Test_Build_ExpressionGrammar(t *testing.T) {
	table, err := Build("expr", exprGrammar())
	require.NoError(t, err)

	assert.Equal(t, "expr", table.GrammarName)
	assert.Greater(t, table.NumStates, 1)
	assert.Len(t, table.Productions, 6)

	// state 0 must shift on the FIRST set of E and have gotos for every
	// nonterminal reachable at start.
	assert.Equal(t, ActionShift, table.Action[0]["id"].Kind)
	assert.Equal(t, ActionShift, table.Action[0]["("].Kind)
	_, hasGotoE := table.Goto[0]["E"]
	assert.True(t, hasGotoE)
}

func Test_Build_AmbiguousGrammarIsConflict(t *testing.T) {
	// E -> E E | id is ambiguous; canonical construction must report the
	// collision rather than resolve it.
	g := grammar.New()
	g.AddTerminal("id")
	g.AddProduction("E", []string{"E", "E"}, noop)
	g.AddProduction("E", []string{"id"}, noop)
	g.SetStart("E")

	_, err := Build("ambiguous", g)
	require.Error(t, err)

	confErr, ok := err.(*ConflictError)
	require.True(t, ok, "expected *ConflictError, got %T: %v", err, err)
	assert.NotEmpty(t, confErr.Lookahead)
	assert.NotEmpty(t, confErr.Existing)
	assert.NotEmpty(t, confErr.Incoming)
}

func Test_Build_DanglingElseIsConflict(t *testing.T) {
	// the classic dangling-else grammar has a shift/reduce conflict.
	g := grammar.New()
	for _, term := range []string{"if", "then", "else", "e"} {
		g.AddTerminal(term)
	}
	g.AddProduction("S", []string{"if", "e", "then", "S"}, noop)
	g.AddProduction("S", []string{"if", "e", "then", "S", "else", "S"}, noop)
	g.AddProduction("S", []string{"e"}, noop)
	g.SetStart("S")

	_, err := Build("dangling", g)
	require.Error(t, err)
	assert.IsType(t, &ConflictError{}, err)
}

func Test_Build_UnregisteredSymbolFailsValidation(t *testing.T) {
	g := grammar.New()
	g.AddProduction("S", []string{"mystery"}, noop)
	g.SetStart("S")

	_, err := Build("invalid", g)
	assert.Error(t, err)
}

func Test_Table_AcceptedTerminals(t *testing.T) {
	table, err := Build("expr", exprGrammar())
	require.NoError(t, err)

	accepted := table.AcceptedTerminals(0)
	assert.Contains(t, accepted, "id")
	assert.Contains(t, accepted, "(")
	assert.NotContains(t, accepted, "+")
}

func Test_Table_String(t *testing.T) {
	table, err := Build("expr", exprGrammar())
	require.NoError(t, err)

	dump := table.String()
	assert.Contains(t, dump, "A:id")
	assert.Contains(t, dump, "G:E")
}
