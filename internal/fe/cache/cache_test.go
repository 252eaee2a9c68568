package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/gizzard/internal/fe/lang"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/fe/regexfe"
)

func testRules() []lex.Rule {
	return []lex.Rule{
		{Name: "ws", Pattern: "[ \t\n]+", Skip: true},
		{Name: "number", Pattern: "[0-9]+"},
		{Name: "identifier", Pattern: "[a-z]+"},
	}
}

func Test_Lexer_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	lx, err := lex.Build(testRules())
	require.NoError(t, err)

	require.NoError(t, SaveLexer(dir, "test", lx.Snapshot()))

	snap, err := LoadLexer(dir, "test")
	require.NoError(t, err)
	restored, err := lex.FromSnapshot(snap)
	require.NoError(t, err)

	input := "abc 123 xyz"
	want, err := lx.Lex(input)
	require.NoError(t, err)
	got, err := restored.Lex(input)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func Test_Table_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	table, err := regexfe.BuildTable()
	require.NoError(t, err)

	require.NoError(t, SaveTable(dir, regexfe.GrammarName, table))

	loaded, err := LoadTable(dir, regexfe.GrammarName)
	require.NoError(t, err)

	assert.Equal(t, table.GrammarName, loaded.GrammarName)
	assert.Equal(t, table.NumStates, loaded.NumStates)
	assert.Equal(t, table.Terminals, loaded.Terminals)
	assert.Equal(t, table.NonTerms, loaded.NonTerms)
	assert.Equal(t, table.Action, loaded.Action)
	assert.Equal(t, table.Goto, loaded.Goto)

	// the reloaded table drives the parser identically.
	n, err := regexfe.ParseWithTable(loaded, "a(b|c)*d")
	require.NoError(t, err)
	auto := regexfe.ToAutomaton(n)
	assert.True(t, auto.Match("abbcd"))
	assert.False(t, auto.Match("abx"))
}

func Test_Table_CacheDeterminism(t *testing.T) {
	// building and persisting the same grammar twice yields byte-identical
	// files.
	first, err := lang.BuildTable()
	require.NoError(t, err)
	second, err := lang.BuildTable()
	require.NoError(t, err)

	bytesA, err := tableFile{table: first}.MarshalBinary()
	require.NoError(t, err)
	bytesB, err := tableFile{table: second}.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, bytesA, bytesB)
}

func Test_Lexer_CacheDeterminism(t *testing.T) {
	first, err := lang.BuildLexer()
	require.NoError(t, err)
	second, err := lang.BuildLexer()
	require.NoError(t, err)

	bytesA, err := lexerFile{snap: first.Snapshot()}.MarshalBinary()
	require.NoError(t, err)
	bytesB, err := lexerFile{snap: second.Snapshot()}.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, bytesA, bytesB)
}

func Test_Load_MissingFileIsError(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTable(dir, "nope")
	assert.Error(t, err)
}

func Test_Load_TruncatedFileIsError(t *testing.T) {
	dir := t.TempDir()

	table, err := regexfe.BuildTable()
	require.NoError(t, err)
	require.NoError(t, SaveTable(dir, "truncated", table))

	path := filepath.Join(dir, "truncated_lr.bin")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0664))

	_, err = LoadTable(dir, "truncated")
	assert.Error(t, err)
}

func Test_Tag_MismatchIsInvalid(t *testing.T) {
	// a payload carrying the wrong tag must be rejected with ErrInvalid.
	table, err := regexfe.BuildTable()
	require.NoError(t, err)

	data, err := tableFile{table: table}.MarshalBinary()
	require.NoError(t, err)

	// the tag is the first encoded int of the payload.
	data[7] ^= 0xFF

	f := tableFile{table: &lr.Table{}}
	err = f.UnmarshalBinary(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}
