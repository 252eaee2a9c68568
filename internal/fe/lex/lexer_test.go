package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() []Rule {
	return []Rule{
		{Name: "ws", Pattern: "[ \t\n]+", Skip: true},
		{Name: "if", Pattern: "if"},
		{Name: "boolean", Pattern: "true|false"},
		{Name: "identifier", Pattern: "[a-zA-Z_][a-zA-Z0-9_]*"},
		{Name: "number", Pattern: "[0-9]+"},
		{Name: "+", Pattern: `\+`},
		{Name: "(", Pattern: `\(`},
		{Name: ")", Pattern: `\)`},
		{Name: ";", Pattern: ";"},
	}
}

func Test_Lexer_MaximalMunch(t *testing.T) {
	lx, err := Build(testRules())
	require.NoError(t, err)

	toks, err := lx.Lex("if iffy true false123 1 + 2;")
	require.NoError(t, err)

	var kinds []Kind
	var values []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
		values = append(values, tok.Value)
	}

	assert.Equal(t, []Kind{
		"if", "identifier", "boolean", "identifier", "number", "+", "number", ";", KindEOF,
	}, kinds)
	assert.Equal(t, []string{
		"if", "iffy", "true", "false123", "1", "+", "2", ";", "",
	}, values)
}

func Test_Lexer_KeywordBeatsIdentifierOnTie(t *testing.T) {
	lx, err := Build(testRules())
	require.NoError(t, err)

	toks, err := lx.Lex("if")
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, Kind("if"), toks[0].Kind)
}

func Test_Lexer_Positions(t *testing.T) {
	lx, err := Build(testRules())
	require.NoError(t, err)

	toks, err := lx.Lex("1\n22")
	require.NoError(t, err)
	require.Len(t, toks, 3)

	assert.Equal(t, 1, toks[0].Row)
	assert.Equal(t, 1, toks[0].Col)
	assert.Equal(t, 2, toks[1].Row)
	assert.Equal(t, 1, toks[1].Col)
}

func Test_Lexer_ErrorOnUnmatchedInput(t *testing.T) {
	lx, err := Build(testRules())
	require.NoError(t, err)

	_, err = lx.Lex("1 @ 2")
	require.Error(t, err)

	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 1, lexErr.Row)
	assert.Equal(t, 3, lexErr.Col)
}
