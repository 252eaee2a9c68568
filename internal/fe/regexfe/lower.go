package regexfe

import "github.com/dekarrin/gizzard/internal/fe/fa"

// ToAutomaton lowers a parsed regex AST to an automaton using fa's Thompson
// combinators, per spec.md section 4.2. Naming follows the teacher's
// unfinished lex/regex.go stubs (createSingleSymbolFA, createJuxtapositionFA,
// createKleeneStarFA, createAlternationFA), finished here in the same idiom
// rather than invented anew.
func ToAutomaton(n Node) *fa.Automaton {
	switch v := n.(type) {
	case Literal:
		return createSingleSymbolFA(v.Ch)
	case Any:
		return createDotFA()
	case Class:
		return createClassFA(v)
	case Concat:
		return createConcatFA(v.Parts)
	case Alt:
		return createAlternationFA(v.Options)
	case Star:
		return fa.Closure(ToAutomaton(v.Sub))
	case Plus:
		sub := ToAutomaton(v.Sub)
		return fa.Concat(sub, fa.Closure(sub.Copy()))
	case Opt:
		return createOptionalFA(v.Sub)
	default:
		panic("regexfe: unhandled node type in ToAutomaton")
	}
}

// createSingleSymbolFA builds a two-state machine accepting exactly one
// occurrence of symbol.
func createSingleSymbolFA(symbol rune) *fa.Automaton {
	a := fa.New()
	accept := a.AddState()
	a.AddTransition(0, symbol, accept)
	a.MarkFinal(accept)
	return a
}

// createDotFA builds a state pair with a complement edge and no explicit
// symbol edges, per spec.md's definition of "." as "any other character".
func createDotFA() *fa.Automaton {
	a := fa.New()
	accept := a.AddState()
	a.AddComplement(0, accept)
	a.MarkFinal(accept)
	return a
}

// createClassFA builds a character class as a union of literal transitions
// on an otherwise identical state pair. A negated class is realized as a
// complement edge guarded by explicit dead-end transitions for every
// excluded rune, so that the complement (any OTHER character) only fires for
// characters not named in the class.
func createClassFA(c Class) *fa.Automaton {
	a := fa.New()
	accept := a.AddState()

	if !c.Negated {
		for _, r := range c.Ranges {
			for ch := r.Lo; ch <= r.Hi; ch++ {
				a.AddTransition(0, ch, accept)
			}
		}
		a.MarkFinal(accept)
		return a
	}

	dead := a.AddState() // not final: absorbs excluded characters.
	for _, r := range c.Ranges {
		for ch := r.Lo; ch <= r.Hi; ch++ {
			a.AddTransition(0, ch, dead)
		}
	}
	a.AddComplement(0, accept)
	a.MarkFinal(accept)
	return a
}

// createJuxtapositionFA builds the concatenation of left and right, i.e.
// "st" for regex subexpressions s and t.
func createJuxtapositionFA(left, right *fa.Automaton) *fa.Automaton {
	return fa.Concat(left, right)
}

func createConcatFA(parts []Node) *fa.Automaton {
	if len(parts) == 0 {
		a := fa.New()
		a.MarkFinal(0)
		return a
	}
	acc := ToAutomaton(parts[0])
	for _, p := range parts[1:] {
		acc = createJuxtapositionFA(acc, ToAutomaton(p))
	}
	return acc
}

func createAlternationFA(options []Node) *fa.Automaton {
	acc := ToAutomaton(options[0])
	for _, o := range options[1:] {
		acc = fa.Union(acc, ToAutomaton(o))
	}
	return acc
}

// createOptionalFA builds "s|ε" for regex subexpression s, per spec.md's
// "? as A|ε".
func createOptionalFA(sub Node) *fa.Automaton {
	eps := fa.New()
	eps.MarkFinal(0)
	return fa.Union(ToAutomaton(sub), eps)
}
