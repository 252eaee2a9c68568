package fa

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Determinize performs subset construction with epsilon-closure, producing a
// deterministic automaton (no epsilon-sets on any state) accepting the same
// language as a.
//
// The complement edge is treated as a labeled "default" transition: for each
// subset S, the default successor is the epsilon-closure of the union of the
// complement targets of members of S. Equal subsets (as unordered sets of
// original state indices) are fused rather than given separate states: each
// subset is keyed by its sorted member list, and a subset met again maps to
// the state already made for that key.
//
// Subsets returns the membership of each produced state in terms of the
// source automaton's state indices, in the same order as the returned
// Automaton's States slice; callers that need to know which original
// (e.g. per-lexer-rule) states contributed to a given DFA state use this.
func (a *Automaton) Determinize() (dfa *Automaton, subsets [][]int) {
	key := func(set []int) string {
		cp := append([]int(nil), set...)
		sort.Ints(cp)
		parts := make([]string, len(cp))
		for i, v := range cp {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, ",")
	}

	start := a.EpsilonClosure(a.Start)

	order := []string{key(start)}
	sets := map[string][]int{key(start): start}
	marked := map[string]bool{}

	for {
		var unmarked string
		found := false
		for _, k := range order {
			if !marked[k] {
				unmarked = k
				found = true
				break
			}
		}
		if !found {
			break
		}
		marked[unmarked] = true
		T := sets[unmarked]

		symbols := map[rune]bool{}
		for _, s := range T {
			for c := range a.States[s].Trans {
				symbols[c] = true
			}
		}

		var complementTargets []int
		for _, s := range T {
			if a.States[s].Complement != nil {
				complementTargets = append(complementTargets, *a.States[s].Complement)
			}
		}
		if len(complementTargets) > 0 {
			def := epsilonClosureOfSet(a, complementTargets)
			if len(def) > 0 {
				k := key(def)
				if _, ok := sets[k]; !ok {
					sets[k] = def
					order = append(order, k)
				}
			}
		}

		// walk the symbols in rune order so that new subsets, and therefore
		// the DFA's state numbering, come out the same on every run.
		runes := make([]rune, 0, len(symbols))
		for c := range symbols {
			runes = append(runes, c)
		}
		sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })

		for _, c := range runes {
			var moved []int
			for _, s := range T {
				if t, ok := a.States[s].Trans[c]; ok {
					moved = append(moved, t)
				}
			}
			U := epsilonClosureOfSet(a, moved)
			if len(U) == 0 {
				continue
			}
			k := key(U)
			if _, ok := sets[k]; !ok {
				sets[k] = U
				order = append(order, k)
			}
		}
	}

	// assign dense indices in discovery order.
	indexOf := map[string]int{}
	for i, k := range order {
		indexOf[k] = i
	}

	dfa = &Automaton{States: make([]State, len(order))}
	subsets = make([][]int, len(order))
	for i, k := range order {
		st := newState()
		set := sets[k]
		subsets[i] = set
		for _, s := range set {
			if a.States[s].Finished {
				st.Finished = true
				break
			}
		}

		// explicit-symbol successors first.
		symbols := map[rune]bool{}
		for _, s := range set {
			for c := range a.States[s].Trans {
				symbols[c] = true
			}
		}
		for c := range symbols {
			var moved []int
			for _, s := range set {
				if t, ok := a.States[s].Trans[c]; ok {
					moved = append(moved, t)
				}
			}
			U := epsilonClosureOfSet(a, moved)
			if len(U) == 0 {
				continue
			}
			st.Trans[c] = indexOf[key(U)]
		}

		// then the default (complement) successor, last.
		var complementTargets []int
		for _, s := range set {
			if a.States[s].Complement != nil {
				complementTargets = append(complementTargets, *a.States[s].Complement)
			}
		}
		if len(complementTargets) > 0 {
			def := epsilonClosureOfSet(a, complementTargets)
			if len(def) > 0 {
				idx := indexOf[key(def)]
				st.Complement = &idx
			}
		}

		dfa.States[i] = st
	}
	dfa.Start = 0

	return dfa, subsets
}

// StateRecord is the on-disk shape of one fa.State, per spec.md section
// 4.1's persistence contract: per-symbol successor indices, epsilon
// successor indices, an optional default index, and the finished flag.
type StateRecord struct {
	Symbols  map[string]int
	Epsilon  []int
	Default  *int
	Finished bool
}

// Snapshot is the serializable form of an Automaton, an ordered list of
// StateRecords plus the start index.
type Snapshot struct {
	States []StateRecord
	Start  int
}

// Serialize converts a into its ordered-state-record form. Symbol keys are
// single runes rendered as strings so the structure survives a plain
// encoding round-trip without a custom rune codec.
func (a *Automaton) Serialize() Snapshot {
	snap := Snapshot{States: make([]StateRecord, len(a.States)), Start: a.Start}
	for i, st := range a.States {
		rec := StateRecord{Symbols: map[string]int{}, Finished: st.Finished}
		for c, t := range st.Trans {
			rec.Symbols[string(c)] = t
		}
		rec.Epsilon = append([]int(nil), st.Epsilon...)
		if st.Complement != nil {
			v := *st.Complement
			rec.Default = &v
		}
		snap.States[i] = rec
	}
	return snap
}

// Deserialize reproduces an Automaton whose Match behavior is bit-for-bit
// identical to the one that produced snap via Serialize.
func Deserialize(snap Snapshot) (*Automaton, error) {
	a := &Automaton{States: make([]State, len(snap.States)), Start: snap.Start}
	for i, rec := range snap.States {
		st := newState()
		st.Finished = rec.Finished
		for sym, t := range rec.Symbols {
			r := []rune(sym)
			if len(r) != 1 {
				return nil, fmt.Errorf("fa: invalid symbol record %q at state %d", sym, i)
			}
			st.Trans[r[0]] = t
		}
		st.Epsilon = append([]int(nil), rec.Epsilon...)
		if rec.Default != nil {
			v := *rec.Default
			st.Complement = &v
		}
		a.States[i] = st
	}
	return a, nil
}
