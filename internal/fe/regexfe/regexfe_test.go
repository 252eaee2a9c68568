package regexfe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustMatch(t *testing.T, pattern, input string) bool {
	t.Helper()
	n, err := Parse(pattern)
	if !assert.NoError(t, err) {
		return false
	}
	return ToAutomaton(n).Match(input)
}

func Test_Regex_AlternationClosure(t *testing.T) {
	// a(b|c)*d on "abbcd" matches; on "abx" does not. spec.md section 8.
	assert.True(t, mustMatch(t, "a(b|c)*d", "abbcd"))
	assert.False(t, mustMatch(t, "a(b|c)*d", "abx"))
}

func Test_Regex_Plus(t *testing.T) {
	assert.False(t, mustMatch(t, "a+", ""))
	assert.True(t, mustMatch(t, "a+", "a"))
	assert.True(t, mustMatch(t, "a+", "aaaa"))
}

func Test_Regex_Optional(t *testing.T) {
	assert.True(t, mustMatch(t, "colou?r", "color"))
	assert.True(t, mustMatch(t, "colou?r", "colour"))
	assert.False(t, mustMatch(t, "colou?r", "colouur"))
}

func Test_Regex_CharacterClass(t *testing.T) {
	assert.True(t, mustMatch(t, "[a-z0-9]+", "abc123"))
	assert.False(t, mustMatch(t, "[a-z0-9]+", "ABC"))
}

func Test_Regex_NegatedCharacterClass(t *testing.T) {
	assert.True(t, mustMatch(t, "[^0-9]+", "abc"))
	assert.False(t, mustMatch(t, "[^0-9]+", "123"))
}

func Test_Regex_Dot(t *testing.T) {
	assert.True(t, mustMatch(t, "a.c", "abc"))
	assert.True(t, mustMatch(t, "a.c", "azc"))
	assert.False(t, mustMatch(t, "a.c", "ac"))
}

func Test_Regex_Escape(t *testing.T) {
	assert.True(t, mustMatch(t, `a\.b`, "a.b"))
	assert.False(t, mustMatch(t, `a\.b`, "axb"))
}

func Test_Regex_UnclosedGroupIsError(t *testing.T) {
	_, err := Parse("a(b|c")
	assert.Error(t, err)
}

func Test_Regex_TableBuildsWithoutConflict(t *testing.T) {
	table, err := BuildTable()
	assert.NoError(t, err)
	if err == nil {
		assert.Equal(t, GrammarName, table.GrammarName)
	}
}

func Test_Regex_EmptyPatternMatchesEmpty(t *testing.T) {
	assert.True(t, mustMatch(t, "", ""))
	assert.False(t, mustMatch(t, "", "a"))
}

func Test_Regex_EmptyAlternationBranch(t *testing.T) {
	// "a|" has an empty right branch, which matches epsilon.
	assert.True(t, mustMatch(t, "a|", "a"))
	assert.True(t, mustMatch(t, "a|", ""))
	assert.False(t, mustMatch(t, "a|", "b"))
}
