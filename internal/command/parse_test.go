package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_BareLineIsEval(t *testing.T) {
	cmd, err := Parse("print(2 + 2);")
	require.NoError(t, err)
	assert.Equal(t, VerbEval, cmd.Verb)
	assert.Equal(t, "print(2 + 2);", cmd.Payload)
}

func Test_Parse_EmptyLineIsZeroCommand(t *testing.T) {
	cmd, err := Parse("   ")
	require.NoError(t, err)
	assert.Equal(t, Command{}, cmd)
}

func Test_Parse_PayloadVerbs(t *testing.T) {
	cmd, err := Parse(":tokens let x = 1 in x")
	require.NoError(t, err)
	assert.Equal(t, VerbTokens, cmd.Verb)
	assert.Equal(t, "let x = 1 in x", cmd.Payload)

	cmd, err = Parse(":AST 2 + 2;")
	require.NoError(t, err)
	assert.Equal(t, VerbAST, cmd.Verb)

	_, err = Parse(":check")
	assert.Error(t, err, "check with no source is an error")
}

func Test_Parse_Aliases(t *testing.T) {
	cmd, err := Parse(":t 1 + 1;")
	require.NoError(t, err)
	assert.Equal(t, VerbTokens, cmd.Verb)

	cmd, err = Parse(":q")
	require.NoError(t, err)
	assert.Equal(t, VerbQuit, cmd.Verb)

	cmd, err = Parse(":bye")
	require.NoError(t, err)
	assert.Equal(t, VerbQuit, cmd.Verb)
}

func Test_Parse_LoadUsesShellQuoting(t *testing.T) {
	cmd, err := Parse(`:load "my program.giz"`)
	require.NoError(t, err)
	assert.Equal(t, VerbLoad, cmd.Verb)
	assert.Equal(t, []string{"my program.giz"}, cmd.Args)

	_, err = Parse(":load one two")
	assert.Error(t, err)

	_, err = Parse(":load")
	assert.Error(t, err)
}

func Test_Parse_UnknownVerb(t *testing.T) {
	_, err := Parse(":frobnicate")
	assert.Error(t, err)
}
