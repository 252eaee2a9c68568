// Package grammar models spec.md section 4.4's grammar: terminals,
// nonterminals, productions with semantic builders, and the FIRST/FOLLOW
// fixed points the LR(1) generator in internal/fe/lr needs.
package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Epsilon is the empty right-hand side, denoting ε.
const Epsilon = ""

// EndOfInput is the implicit end-of-input terminal, $.
const EndOfInput = "$"

// Builder is a pure function from the sequence of child semantic values (in
// right-hand-side order) to a parent semantic value.
type Builder func(children []any) any

// Production associates a left-hand nonterminal with a right-hand sequence
// of symbols (empty denotes ε) and a semantic builder.
type Production struct {
	NonTerminal string
	Symbols     []string
	Build       Builder
}

func (p Production) String() string {
	rhs := strings.Join(p.Symbols, " ")
	if rhs == "" {
		rhs = "ε"
	}
	return fmt.Sprintf("%s -> %s", p.NonTerminal, rhs)
}

// Grammar is the full context-free grammar: terminals, nonterminals, their
// productions, and the start symbol.
type Grammar struct {
	productions map[string][]Production
	ntOrder     []string
	terminals   map[string]bool
	termOrder   []string
	start       string
}

// New returns an empty grammar.
func New() *Grammar {
	return &Grammar{
		productions: map[string][]Production{},
		terminals:   map[string]bool{},
	}
}

// AddTerminal registers name as a terminal symbol.
func (g *Grammar) AddTerminal(name string) {
	if !g.terminals[name] {
		g.terminals[name] = true
		g.termOrder = append(g.termOrder, name)
	}
}

// AddProduction registers a production of nt, in the order productions are
// added. That order fixes production indices (see AllProductions); it does
// not resolve conflicts, since the table generator reports every
// reduce/reduce collision as a fatal error.
func (g *Grammar) AddProduction(nt string, symbols []string, build Builder) {
	if _, ok := g.productions[nt]; !ok {
		g.ntOrder = append(g.ntOrder, nt)
	}
	g.productions[nt] = append(g.productions[nt], Production{NonTerminal: nt, Symbols: symbols, Build: build})
}

// SetStart designates nt as the start symbol.
func (g *Grammar) SetStart(nt string) { g.start = nt }

// StartSymbol returns the designated start symbol.
func (g *Grammar) StartSymbol() string { return g.start }

// IsTerminal reports whether sym was registered via AddTerminal. The empty
// string (Epsilon) is never a terminal.
func (g *Grammar) IsTerminal(sym string) bool {
	if sym == Epsilon {
		return false
	}
	return g.terminals[sym]
}

// IsNonTerminal reports whether sym has at least one production.
func (g *Grammar) IsNonTerminal(sym string) bool {
	_, ok := g.productions[sym]
	return ok
}

// NonTerminals returns every nonterminal, in the order first added.
func (g *Grammar) NonTerminals() []string {
	return append([]string(nil), g.ntOrder...)
}

// Terminals returns every terminal, in the order first added.
func (g *Grammar) Terminals() []string {
	return append([]string(nil), g.termOrder...)
}

// Productions returns the productions of nt, in declared order.
func (g *Grammar) Productions(nt string) []Production {
	return g.productions[nt]
}

// AllProductions returns every production of the grammar, nonterminals in
// declared order, each nonterminal's productions in declared order.
func (g *Grammar) AllProductions() []Production {
	var out []Production
	for _, nt := range g.ntOrder {
		out = append(out, g.productions[nt]...)
	}
	return out
}

// Validate checks the invariants of spec.md section 3: the start symbol
// appears as a left-hand side at least once, and every symbol on any
// right-hand side is registered (as a terminal or as a nonterminal with its
// own productions).
func (g *Grammar) Validate() error {
	if g.start == "" {
		return fmt.Errorf("grammar: no start symbol set")
	}
	if !g.IsNonTerminal(g.start) {
		return fmt.Errorf("grammar: start symbol %q has no productions", g.start)
	}
	for _, nt := range g.ntOrder {
		for _, p := range g.productions[nt] {
			for _, s := range p.Symbols {
				if s == Epsilon {
					continue
				}
				if !g.IsTerminal(s) && !g.IsNonTerminal(s) {
					return fmt.Errorf("grammar: production %s references unregistered symbol %q", p, s)
				}
			}
		}
	}
	return nil
}

// Augmented returns a copy of g with a fresh start symbol S' and a single
// production S' -> S added, where S is g's original start symbol. The new
// start symbol's name is guaranteed not to collide with any existing
// nonterminal.
func (g *Grammar) Augmented() *Grammar {
	newStart := g.start + "-aug"
	for g.IsNonTerminal(newStart) {
		newStart += "'"
	}

	cp := g.Copy()
	cp.ntOrder = append([]string{newStart}, cp.ntOrder...)
	cp.productions[newStart] = []Production{{
		NonTerminal: newStart,
		Symbols:     []string{g.start},
		Build:       func(children []any) any { return children[0] },
	}}
	cp.start = newStart
	return cp
}

// Copy returns a shallow duplicate of g (productions slices are copied;
// Builder closures are shared).
func (g *Grammar) Copy() *Grammar {
	cp := New()
	cp.start = g.start
	cp.ntOrder = append([]string(nil), g.ntOrder...)
	cp.termOrder = append([]string(nil), g.termOrder...)
	for k, v := range g.terminals {
		cp.terminals[k] = v
	}
	for nt, prods := range g.productions {
		cp.productions[nt] = append([]Production(nil), prods...)
	}
	return cp
}

// FIRST computes FIRST(sym): for a terminal or ε, that's {sym} itself; for a
// nonterminal, the union of FIRST of every production's leading symbols,
// propagating ε-membership across a wholly-nullable prefix. It is a
// depth-first walk that expands each nonterminal once; a nonterminal met
// again during the walk counts as nullable only if it has an ε-production
// of its own.
func (g *Grammar) FIRST(sym string) map[string]bool {
	return g.firstOfSequence([]string{sym})
}

// firstOfSequence computes FIRST(X1 X2 ... Xn): the standard sequence
// extension of FIRST used by LR(1) lookahead propagation.
func (g *Grammar) firstOfSequence(seq []string) map[string]bool {
	out := map[string]bool{}
	if len(seq) == 0 {
		out[Epsilon] = true
		return out
	}

	nullablePrefix := true
	for _, sym := range seq {
		symFirst := g.firstOfSymbol(sym, map[string]bool{})
		for k := range symFirst {
			if k != Epsilon {
				out[k] = true
			}
		}
		if !symFirst[Epsilon] {
			nullablePrefix = false
			break
		}
	}
	if nullablePrefix {
		out[Epsilon] = true
	}
	return out
}

func (g *Grammar) firstOfSymbol(sym string, visiting map[string]bool) map[string]bool {
	if sym == Epsilon {
		return map[string]bool{Epsilon: true}
	}
	if sym == EndOfInput || g.IsTerminal(sym) {
		// $ behaves as a terminal for lookahead propagation even though it
		// is never registered.
		return map[string]bool{sym: true}
	}
	if visiting[sym] {
		// sym was already expanded in this walk, which collected its
		// terminals. Report it as nullable when it has an ε-production, so
		// that in A -> A x with A -> ε the symbols after A still count.
		for _, p := range g.productions[sym] {
			if len(p.Symbols) == 0 {
				return map[string]bool{Epsilon: true}
			}
		}
		return map[string]bool{}
	}
	visiting[sym] = true

	out := map[string]bool{}
	for _, p := range g.productions[sym] {
		if len(p.Symbols) == 0 {
			out[Epsilon] = true
			continue
		}
		nullablePrefix := true
		for _, s := range p.Symbols {
			sFirst := g.firstOfSymbol(s, visiting)
			for k := range sFirst {
				if k != Epsilon {
					out[k] = true
				}
			}
			if !sFirst[Epsilon] {
				nullablePrefix = false
				break
			}
		}
		if nullablePrefix {
			out[Epsilon] = true
		}
	}
	return out
}

// FOLLOW computes FOLLOW(nt) as the standard fixed point over every
// production of the grammar.
func (g *Grammar) FOLLOW(nt string) map[string]bool {
	memo := map[string]map[string]bool{}
	changed := true
	for changed {
		changed = false
		for _, A := range g.ntOrder {
			set, ok := memo[A]
			if !ok {
				set = map[string]bool{}
				memo[A] = set
			}
			if A == g.start {
				if !set[EndOfInput] {
					set[EndOfInput] = true
					changed = true
				}
			}
			for _, otherNT := range g.ntOrder {
				for _, p := range g.productions[otherNT] {
					for i, sym := range p.Symbols {
						if sym != A {
							continue
						}
						beta := p.Symbols[i+1:]
						betaFirst := g.firstOfSequence(beta)
						for k := range betaFirst {
							if k != Epsilon && !set[k] {
								set[k] = true
								changed = true
							}
						}
						if betaFirst[Epsilon] {
							for k := range memo[otherNT] {
								if !set[k] {
									set[k] = true
									changed = true
								}
							}
						}
					}
				}
			}
		}
	}
	return memo[nt]
}

func (g *Grammar) String() string {
	var sb strings.Builder
	nts := append([]string(nil), g.ntOrder...)
	sort.Strings(nts)
	for _, nt := range nts {
		for _, p := range g.productions[nt] {
			sb.WriteString(p.String())
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}
