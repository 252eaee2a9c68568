// Package fa implements the finite-automaton engine: construction,
// combination (union, concatenation, Kleene closure), and determinization of
// NFAs with epsilon-transitions and a distinguished complement transition
// used for character-class matching.
package fa

import (
	"fmt"
	"sort"
	"strings"
)

// State is one node of an Automaton. States are referred to by their index
// into the owning Automaton's States slice; this keeps the automaton's
// (possibly cyclic) transition graph free of pointer ownership cycles.
type State struct {
	// Finished marks this as an accepting state.
	Finished bool

	// Trans maps an input symbol to the successor state index.
	Trans map[rune]int

	// Epsilon is the set of epsilon-successor state indices.
	Epsilon []int

	// Complement, when non-nil, is the successor taken when no entry in
	// Trans matches the current input symbol. It models "any other
	// character" for character-class/dot matching.
	Complement *int
}

func newState() State {
	return State{Trans: map[rune]int{}}
}

// Automaton is a directed multigraph of States with one designated initial
// state, per spec.md section 3.
type Automaton struct {
	States []State
	Start  int
}

// New returns a single-state automaton: state 0, initial, not finished.
func New() *Automaton {
	return &Automaton{States: []State{newState()}, Start: 0}
}

// AddState appends a fresh, transition-less state and returns its index.
func (a *Automaton) AddState() int {
	a.States = append(a.States, newState())
	return len(a.States) - 1
}

// AddTransition adds an explicit transition on input symbol c from s to t.
func (a *Automaton) AddTransition(s int, c rune, t int) {
	a.mustHave(s)
	a.mustHave(t)
	a.States[s].Trans[c] = t
}

// AddEpsilon adds an epsilon-transition from s to t.
func (a *Automaton) AddEpsilon(s, t int) {
	a.mustHave(s)
	a.mustHave(t)
	a.States[s].Epsilon = append(a.States[s].Epsilon, t)
}

// AddComplement sets the complement ("any other character") successor of s
// to t.
func (a *Automaton) AddComplement(s, t int) {
	a.mustHave(s)
	a.mustHave(t)
	idx := t
	a.States[s].Complement = &idx
}

// MarkFinal marks s as an accepting state.
func (a *Automaton) MarkFinal(s int) {
	a.mustHave(s)
	st := a.States[s]
	st.Finished = true
	a.States[s] = st
}

// unmarkFinal clears the accepting flag on s. Used internally by Concat,
// which per spec.md section 9's open question must clear the final flag of
// an intermediate final state once it has been epsilon-linked onward.
func (a *Automaton) unmarkFinal(s int) {
	st := a.States[s]
	st.Finished = false
	a.States[s] = st
}

func (a *Automaton) mustHave(s int) {
	if s < 0 || s >= len(a.States) {
		panic(fmt.Sprintf("fa: state index %d out of range (have %d states)", s, len(a.States)))
	}
}

// finalStates returns the indices of every accepting state.
func (a *Automaton) finalStates() []int {
	var out []int
	for i := range a.States {
		if a.States[i].Finished {
			out = append(out, i)
		}
	}
	return out
}

// Step returns the state reached from s on symbol c: the explicitly mapped
// state if one exists, otherwise the complement successor, otherwise -1 if
// neither applies. Explicit transitions always take priority.
//
// spec.md section 9 notes that the source's goTo returns the transition only
// when *absent*, which is inverted; this is the corrected semantics.
func (a *Automaton) Step(s int, c rune) int {
	st := a.States[s]
	if t, ok := st.Trans[c]; ok {
		return t
	}
	if st.Complement != nil {
		return *st.Complement
	}
	return -1
}

func (a *Automaton) goTo(s int, c rune) int { return a.Step(s, c) }

// EpsilonClosure returns the set of states reachable from s using zero or
// more epsilon-moves, as a sorted slice of indices.
func (a *Automaton) EpsilonClosure(s int) []int {
	seen := map[int]bool{}
	stack := []int{s}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, next := range a.States[cur].Epsilon {
			if !seen[next] {
				stack = append(stack, next)
			}
		}
	}
	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func epsilonClosureOfSet(a *Automaton, set []int) []int {
	union := map[int]bool{}
	for _, s := range set {
		for _, c := range a.EpsilonClosure(s) {
			union[c] = true
		}
	}
	out := make([]int, 0, len(union))
	for k := range union {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Match performs a non-deterministic walk of the automaton from its initial
// state, returning true iff some reachable state after consuming all of
// input is finished. Explicit symbol transitions take priority over the
// complement edge, which is consulted only when no explicit mapping exists
// for the current symbol.
//
// (state index, input index) pairs are memoized to avoid exponential
// blow-up on epsilon-cycles; a revisited pair is treated as a dead end.
func (a *Automaton) Match(input string) bool {
	runes := []rune(input)
	visited := map[[2]int]bool{}

	var walk func(state, pos int) bool
	walk = func(state, pos int) bool {
		key := [2]int{state, pos}
		if visited[key] {
			return false
		}
		visited[key] = true

		for _, s := range a.EpsilonClosure(state) {
			if pos == len(runes) && a.States[s].Finished {
				return true
			}
		}

		if pos >= len(runes) {
			return false
		}

		c := runes[pos]
		for _, s := range a.EpsilonClosure(state) {
			next := a.goTo(s, c)
			if next >= 0 && walk(next, pos+1) {
				return true
			}
		}
		return false
	}

	return walk(a.Start, 0)
}

// Copy returns a deep duplicate of the automaton.
func (a *Automaton) Copy() *Automaton {
	cp := &Automaton{States: make([]State, len(a.States)), Start: a.Start}
	for i, st := range a.States {
		ns := newState()
		ns.Finished = st.Finished
		for c, t := range st.Trans {
			ns.Trans[c] = t
		}
		ns.Epsilon = append([]int(nil), st.Epsilon...)
		if st.Complement != nil {
			v := *st.Complement
			ns.Complement = &v
		}
		cp.States[i] = ns
	}
	return cp
}

// absorb appends all states of other into a, offsetting every internal
// reference by the size of a prior to the append. It returns the offset, so
// callers can translate other's original state indices (e.g. other.Start)
// into the combined automaton's index space.
func (a *Automaton) absorb(other *Automaton) (offset int) {
	offset = len(a.States)
	for _, st := range other.States {
		ns := newState()
		ns.Finished = st.Finished
		for c, t := range st.Trans {
			ns.Trans[c] = t + offset
		}
		for _, e := range st.Epsilon {
			ns.Epsilon = append(ns.Epsilon, e+offset)
		}
		if st.Complement != nil {
			v := *st.Complement + offset
			ns.Complement = &v
		}
		a.States = append(a.States, ns)
	}
	return offset
}

// Union returns a new automaton accepting a's language union b's language.
// An epsilon-transition is introduced from the new automaton's initial
// state to both a's and (a copy of) b's initial states.
func Union(a, b *Automaton) *Automaton {
	out := a.Copy()
	offset := out.absorb(b)
	newStart := out.AddState()
	out.AddEpsilon(newStart, a.Start)
	out.AddEpsilon(newStart, b.Start+offset)
	out.Start = newStart
	return out
}

// Concat returns a new automaton accepting the concatenation of a's and b's
// languages. Every final state of a is epsilon-linked to b's initial state,
// and those final flags are cleared per spec.md section 9's open question
// on "clear final flag on intermediate final states when concatenating".
func Concat(a, b *Automaton) *Automaton {
	out := a.Copy()
	offset := out.absorb(b)
	for _, f := range a.finalStatesOf(out) {
		out.AddEpsilon(f, b.Start+offset)
		out.unmarkFinal(f)
	}
	out.Start = a.Start
	return out
}

// finalStatesOf returns the indices, within the combined automaton in, of
// the states that were final in the original a (before b was absorbed). It
// exists because Concat/Closure need a's final states evaluated against the
// still-intact flags in the copy, prior to any clearing.
func (a *Automaton) finalStatesOf(in *Automaton) []int {
	var out []int
	for i := 0; i < len(a.States); i++ {
		if in.States[i].Finished {
			out = append(out, i)
		}
	}
	return out
}

// Closure returns the Kleene closure of a: every final state of a is
// epsilon-linked back to a's initial state, and a's initial state is marked
// final.
func Closure(a *Automaton) *Automaton {
	out := a.Copy()
	for _, f := range out.finalStates() {
		out.AddEpsilon(f, out.Start)
	}
	out.MarkFinal(out.Start)
	return out
}

func (a *Automaton) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<START: %d, STATES:", a.Start)
	for i, st := range a.States {
		sb.WriteString("\n\t")
		fmt.Fprintf(&sb, "%d%s: ", i, finishedMark(st.Finished))
		var parts []string
		var syms []rune
		for c := range st.Trans {
			syms = append(syms, c)
		}
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
		for _, c := range syms {
			parts = append(parts, fmt.Sprintf("=(%c)=> %d", c, st.Trans[c]))
		}
		for _, e := range st.Epsilon {
			parts = append(parts, fmt.Sprintf("=(ε)=> %d", e))
		}
		if st.Complement != nil {
			parts = append(parts, fmt.Sprintf("=(*)=> %d", *st.Complement))
		}
		sb.WriteString(strings.Join(parts, ", "))
	}
	sb.WriteString("\n>")
	return sb.String()
}

func finishedMark(f bool) string {
	if f {
		return "*"
	}
	return ""
}
