package fa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func singleSymbol(c rune) *Automaton {
	a := New()
	b := a.AddState()
	a.AddTransition(0, c, b)
	a.MarkFinal(b)
	return a
}

func Test_Automaton_Match_singleSymbol(t *testing.T) {
	a := singleSymbol('x')

	assert.True(t, a.Match("x"))
	assert.False(t, a.Match("y"))
	assert.False(t, a.Match(""))
	assert.False(t, a.Match("xx"))
}

func Test_Automaton_Concat(t *testing.T) {
	ab := Concat(singleSymbol('a'), singleSymbol('b'))

	assert.True(t, ab.Match("ab"))
	assert.False(t, ab.Match("a"))
	assert.False(t, ab.Match("b"))
	assert.False(t, ab.Match("ba"))
}

func Test_Automaton_Union(t *testing.T) {
	aOrB := Union(singleSymbol('a'), singleSymbol('b'))

	assert.True(t, aOrB.Match("a"))
	assert.True(t, aOrB.Match("b"))
	assert.False(t, aOrB.Match("c"))
	assert.False(t, aOrB.Match("ab"))
}

func Test_Automaton_Closure(t *testing.T) {
	aStar := Closure(singleSymbol('a'))

	assert.True(t, aStar.Match(""))
	assert.True(t, aStar.Match("a"))
	assert.True(t, aStar.Match("aaaa"))
	assert.False(t, aStar.Match("aab"))
}

func Test_Automaton_Complement(t *testing.T) {
	// "." semantics: any single character.
	a := New()
	b := a.AddState()
	a.AddComplement(0, b)
	a.MarkFinal(b)

	assert.True(t, a.Match("x"))
	assert.True(t, a.Match("9"))
	assert.False(t, a.Match(""))
	assert.False(t, a.Match("xy"))
}

func Test_Automaton_ComplementYieldsToExplicit(t *testing.T) {
	// state 0: explicit 'a' -> final 1, complement -> final 2 (dead end on
	// anything else). Explicit transitions take priority over complement.
	a := New()
	final1 := a.AddState()
	final2 := a.AddState()
	a.AddTransition(0, 'a', final1)
	a.AddComplement(0, final2)
	a.MarkFinal(final1)
	a.MarkFinal(final2)

	assert.True(t, a.Match("a"))
	assert.True(t, a.Match("z"))
}

// plusOp builds AA* for an automaton accepting exactly one occurrence of
// some language, matching spec.md's "+ as AA*".
func plusOp(one *Automaton) *Automaton {
	return Concat(one.Copy(), Closure(one.Copy()))
}

func Test_Automaton_PlusAsConcatOfClosure(t *testing.T) {
	aPlus := plusOp(singleSymbol('a'))

	assert.False(t, aPlus.Match(""))
	assert.True(t, aPlus.Match("a"))
	assert.True(t, aPlus.Match("aaaa"))
	assert.False(t, aPlus.Match("aab"))
}

// questionOp builds A|ε, matching spec.md's "? as A|ε".
func questionOp(one *Automaton) *Automaton {
	eps := New()
	eps.MarkFinal(0)
	return Union(one, eps)
}

func Test_Automaton_QuestionAsUnionWithEpsilon(t *testing.T) {
	aOpt := questionOp(singleSymbol('a'))

	assert.True(t, aOpt.Match(""))
	assert.True(t, aOpt.Match("a"))
	assert.False(t, aOpt.Match("aa"))
}

func Test_Automaton_Determinize_PreservesLanguage(t *testing.T) {
	// (a|b)*abb, the canonical dragon-book example.
	ab := Union(singleSymbol('a'), singleSymbol('b'))
	nfa := Concat(Closure(ab), Concat(singleSymbol('a'), Concat(singleSymbol('b'), singleSymbol('b'))))

	dfa, _ := nfa.Determinize()

	inputs := []string{"abb", "aabb", "babb", "ababb", "ab", "", "abbb", "a", "bbb"}
	for _, in := range inputs {
		assert.Equalf(t, nfa.Match(in), dfa.Match(in), "mismatch on %q", in)
	}

	// a determinized automaton has empty epsilon-sets on every state.
	for i, st := range dfa.States {
		assert.Emptyf(t, st.Epsilon, "state %d retained epsilon transitions after determinize", i)
	}
}

func Test_Automaton_SerializeRoundTrip(t *testing.T) {
	ab := Union(singleSymbol('a'), singleSymbol('b'))
	nfa := Concat(Closure(ab), Concat(singleSymbol('a'), Concat(singleSymbol('b'), singleSymbol('b'))))
	dfa, _ := nfa.Determinize()

	snap := dfa.Serialize()
	restored, err := Deserialize(snap)
	assert.NoError(t, err)

	inputs := []string{"abb", "aabb", "babb", "ababb", "ab", "", "abbb"}
	for _, in := range inputs {
		assert.Equalf(t, dfa.Match(in), restored.Match(in), "mismatch on %q", in)
	}
}
