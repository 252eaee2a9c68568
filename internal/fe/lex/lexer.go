// Package lex implements spec.md section 4.3: a priority-ordered list of
// (name, regex) token rules combined into one DFA with priority, run with a
// maximal-munch scanner.
package lex

import (
	"fmt"

	"github.com/dekarrin/gizzard/internal/fe/fa"
	"github.com/dekarrin/gizzard/internal/fe/regexfe"
)

// Rule is one named token rule. Rules are tried in the priority order they
// were added: earlier rules win ties at the same maximal-munch length.
// Skip rules (whitespace, comments) are matched and discarded rather than
// emitted as tokens.
type Rule struct {
	Name    string
	Pattern string
	Skip    bool
}

// Lexer is a built, ready-to-run tokenizer: the union of every rule's
// automaton, determinized, with each final DFA state tagged with the
// rule whose automaton contributed it.
type Lexer struct {
	dfa   *fa.Automaton
	tag   map[int]int // dfa state index -> rule index, for every final state
	rules []Rule
}

// Build compiles rules into a Lexer. Each rule's pattern is parsed by
// internal/fe/regexfe and lowered to an automaton; the automata are unioned
// (priority-tagged) and determinized per spec.md section 4.3.
func Build(rules []Rule) (*Lexer, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("lex: no rules given")
	}

	combined := fa.New()
	newStart := combined.AddState()

	// finalRule maps a state index in `combined` (prior to determinizing)
	// to the index of the rule whose automaton that state belongs to.
	finalRule := map[int]int{}

	for i, r := range rules {
		n, err := regexfe.Parse(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("lex: rule %q: %w", r.Name, err)
		}
		sub := regexfe.ToAutomaton(n)
		offset := appendAutomaton(combined, sub)
		combined.AddEpsilon(newStart, offset+sub.Start)
		for si, st := range sub.States {
			if st.Finished {
				finalRule[offset+si] = i
			}
		}
	}
	combined.Start = newStart

	dfa, subsets := combined.Determinize()

	tag := map[int]int{}
	for dfaIdx, subset := range subsets {
		if !dfa.States[dfaIdx].Finished {
			continue
		}
		best := -1
		for _, origin := range subset {
			if ruleIdx, ok := finalRule[origin]; ok {
				if best == -1 || ruleIdx < best {
					best = ruleIdx
				}
			}
		}
		if best == -1 {
			// should not happen: a final DFA state must trace back to at
			// least one contributing rule's final state.
			continue
		}
		tag[dfaIdx] = best
	}

	return &Lexer{dfa: dfa, tag: tag, rules: rules}, nil
}

// appendAutomaton copies every state of src into dst (translating indices)
// and returns the offset at which src's states now live in dst. It does not
// touch dst.Start; the caller links src in via an epsilon transition.
func appendAutomaton(dst *fa.Automaton, src *fa.Automaton) int {
	offset := len(dst.States)
	for _, st := range src.States {
		ns := dst.AddState()
		if st.Finished {
			dst.MarkFinal(ns)
		}
	}
	for i, st := range src.States {
		from := offset + i
		for c, t := range st.Trans {
			dst.AddTransition(from, c, offset+t)
		}
		for _, e := range st.Epsilon {
			dst.AddEpsilon(from, offset+e)
		}
		if st.Complement != nil {
			dst.AddComplement(from, offset+*st.Complement)
		}
	}
	return offset
}

// LexError is a lexical error: no rule's automaton matched any non-empty
// prefix of the input starting at Row/Col.
type LexError struct {
	Row, Col int
	Snippet  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexical error at %d:%d: no token rule matches %q", e.Row, e.Col, e.Snippet)
}

// Lex runs the maximal-munch scanner over input and returns the resulting
// token stream, terminated by a KindEOF token positioned just past the
// input. Whitespace/comment (Skip) rules are dropped before the stream is
// returned. lexer output order equals source order.
func (lx *Lexer) Lex(input string) ([]Token, error) {
	runes := []rune(input)
	var out []Token

	row, col := 1, 1
	pos := 0

	advance := func(consumed []rune) {
		for _, c := range consumed {
			if c == '\n' {
				row++
				col = 1
			} else {
				col++
			}
		}
	}

	for pos < len(runes) {
		state := lx.dfa.Start
		lastFinal := -1
		lastFinalPos := pos
		cur := pos

		for cur < len(runes) {
			next := lx.dfa.Step(state, runes[cur])
			if next < 0 {
				break
			}
			state = next
			cur++
			if lx.dfa.States[state].Finished {
				lastFinal = state
				lastFinalPos = cur
			}
		}

		if lastFinal == -1 {
			snippet := string(runes[pos])
			return nil, &LexError{Row: row, Col: col, Snippet: snippet}
		}

		lexeme := string(runes[pos:lastFinalPos])
		rule := lx.rules[lx.tag[lastFinal]]

		if !rule.Skip {
			out = append(out, Token{Kind: Kind(rule.Name), Value: lexeme, Row: row, Col: col})
		}

		advance(runes[pos:lastFinalPos])
		pos = lastFinalPos
	}

	out = append(out, Token{Kind: KindEOF, Value: "", Row: row, Col: col})
	return out, nil
}
