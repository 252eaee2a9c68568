// Package cache persists lexer DFAs and LR parse tables under a cache
// directory, two files per grammar. Every file is self-describing via the
// monotonic cache tag; a mismatched tag invalidates the file and the caller
// rebuilds.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/gizzard/internal/fe/fa"
	"github.com/dekarrin/gizzard/internal/fe/grammar"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/version"
)

// ErrInvalid is wrapped by load errors caused by a stale or mismatched
// cache file rather than an I/O failure; callers treat it as "rebuild".
var ErrInvalid = fmt.Errorf("cache file is not valid for this version")

func automatonPath(dir, name string) string {
	return filepath.Join(dir, name+"_automaton.bin")
}

func tablePath(dir, name string) string {
	return filepath.Join(dir, name+"_lr.bin")
}

// SaveLexer writes the lexer snapshot for grammar name under dir.
func SaveLexer(dir, name string, snap lex.Snapshot) error {
	data := rezi.EncBinary(lexerFile{snap: snap})
	if err := os.WriteFile(automatonPath(dir, name), data, 0664); err != nil {
		return fmt.Errorf("cache: write lexer %q: %w", name, err)
	}
	return nil
}

// LoadLexer reads the lexer snapshot for grammar name from dir.
func LoadLexer(dir, name string) (lex.Snapshot, error) {
	data, err := os.ReadFile(automatonPath(dir, name))
	if err != nil {
		return lex.Snapshot{}, fmt.Errorf("cache: read lexer %q: %w", name, err)
	}
	var f lexerFile
	if _, err := rezi.DecBinary(data, &f); err != nil {
		return lex.Snapshot{}, fmt.Errorf("cache: decode lexer %q: %w", name, err)
	}
	return f.snap, nil
}

// SaveTable writes the parse table for grammar name under dir.
func SaveTable(dir, name string, t *lr.Table) error {
	data := rezi.EncBinary(tableFile{table: t})
	if err := os.WriteFile(tablePath(dir, name), data, 0664); err != nil {
		return fmt.Errorf("cache: write table %q: %w", name, err)
	}
	return nil
}

// LoadTable reads the parse table for grammar name from dir. The loaded
// table's productions carry no semantic builders; evaluation uses the live
// grammar's production list, which Build persists in the same order.
func LoadTable(dir, name string) (*lr.Table, error) {
	data, err := os.ReadFile(tablePath(dir, name))
	if err != nil {
		return nil, fmt.Errorf("cache: read table %q: %w", name, err)
	}
	f := tableFile{table: &lr.Table{}}
	if _, err := rezi.DecBinary(data, &f); err != nil {
		return nil, fmt.Errorf("cache: decode table %q: %w", name, err)
	}
	return f.table, nil
}

// lexerFile wraps a lex.Snapshot for binary coding.
type lexerFile struct {
	snap lex.Snapshot
}

func (f lexerFile) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encBinaryInt(version.CacheTag)...)
	data = append(data, encAutomaton(f.snap.DFA)...)

	data = append(data, encBinaryInt(len(f.snap.Tags))...)
	states := make([]int, 0, len(f.snap.Tags))
	for s := range f.snap.Tags {
		states = append(states, s)
	}
	sort.Ints(states)
	for _, s := range states {
		data = append(data, encBinaryInt(s)...)
		data = append(data, encBinaryInt(f.snap.Tags[s])...)
	}

	data = append(data, encBinaryInt(len(f.snap.Rules))...)
	for _, r := range f.snap.Rules {
		data = append(data, encBinaryString(r.Name)...)
		data = append(data, encBinaryString(r.Pattern)...)
		data = append(data, encBinaryBool(r.Skip)...)
	}
	return data, nil
}

func (f *lexerFile) UnmarshalBinary(data []byte) error {
	r := &reader{data: data}

	tag, err := r.readInt()
	if err != nil {
		return err
	}
	if tag != version.CacheTag {
		return fmt.Errorf("%w: tag %d, want %d", ErrInvalid, tag, version.CacheTag)
	}

	f.snap.DFA, err = decAutomaton(r)
	if err != nil {
		return err
	}

	tagCount, err := r.readInt()
	if err != nil {
		return err
	}
	f.snap.Tags = map[int]int{}
	for i := 0; i < tagCount; i++ {
		state, err := r.readInt()
		if err != nil {
			return err
		}
		rule, err := r.readInt()
		if err != nil {
			return err
		}
		f.snap.Tags[state] = rule
	}

	ruleCount, err := r.readInt()
	if err != nil {
		return err
	}
	f.snap.Rules = make([]lex.Rule, ruleCount)
	for i := 0; i < ruleCount; i++ {
		if f.snap.Rules[i].Name, err = r.readString(); err != nil {
			return err
		}
		if f.snap.Rules[i].Pattern, err = r.readString(); err != nil {
			return err
		}
		if f.snap.Rules[i].Skip, err = r.readBool(); err != nil {
			return err
		}
	}
	return nil
}

// encAutomaton lays out the ordered state records of spec'd persistence:
// per-symbol successors (sorted for determinism), epsilon successors, the
// optional default successor, and the finished flag.
func encAutomaton(snap fa.Snapshot) []byte {
	var data []byte
	data = append(data, encBinaryInt(snap.Start)...)
	data = append(data, encBinaryInt(len(snap.States))...)
	for _, st := range snap.States {
		data = append(data, encBinaryBool(st.Finished)...)

		syms := make([]string, 0, len(st.Symbols))
		for s := range st.Symbols {
			syms = append(syms, s)
		}
		sort.Strings(syms)
		data = append(data, encBinaryInt(len(syms))...)
		for _, s := range syms {
			data = append(data, encBinaryString(s)...)
			data = append(data, encBinaryInt(st.Symbols[s])...)
		}

		data = append(data, encBinaryInt(len(st.Epsilon))...)
		for _, e := range st.Epsilon {
			data = append(data, encBinaryInt(e)...)
		}

		if st.Default != nil {
			data = append(data, encBinaryBool(true)...)
			data = append(data, encBinaryInt(*st.Default)...)
		} else {
			data = append(data, encBinaryBool(false)...)
		}
	}
	return data
}

func decAutomaton(r *reader) (fa.Snapshot, error) {
	var snap fa.Snapshot
	var err error

	if snap.Start, err = r.readInt(); err != nil {
		return snap, err
	}
	stateCount, err := r.readInt()
	if err != nil {
		return snap, err
	}
	snap.States = make([]fa.StateRecord, stateCount)
	for i := 0; i < stateCount; i++ {
		rec := fa.StateRecord{Symbols: map[string]int{}}
		if rec.Finished, err = r.readBool(); err != nil {
			return snap, err
		}

		symCount, err := r.readInt()
		if err != nil {
			return snap, err
		}
		for j := 0; j < symCount; j++ {
			sym, err := r.readString()
			if err != nil {
				return snap, err
			}
			target, err := r.readInt()
			if err != nil {
				return snap, err
			}
			rec.Symbols[sym] = target
		}

		epsCount, err := r.readInt()
		if err != nil {
			return snap, err
		}
		for j := 0; j < epsCount; j++ {
			e, err := r.readInt()
			if err != nil {
				return snap, err
			}
			rec.Epsilon = append(rec.Epsilon, e)
		}

		hasDefault, err := r.readBool()
		if err != nil {
			return snap, err
		}
		if hasDefault {
			d, err := r.readInt()
			if err != nil {
				return snap, err
			}
			rec.Default = &d
		}

		snap.States[i] = rec
	}
	return snap, nil
}

// tableFile wraps an lr.Table for binary coding.
type tableFile struct {
	table *lr.Table
}

func (f tableFile) MarshalBinary() ([]byte, error) {
	t := f.table
	var data []byte
	data = append(data, encBinaryInt(version.CacheTag)...)
	data = append(data, encBinaryString(t.GrammarName)...)
	data = append(data, encBinaryInt(t.NumStates)...)
	data = append(data, encBinaryInt(t.Start)...)

	encStrings := func(ss []string) {
		data = append(data, encBinaryInt(len(ss))...)
		for _, s := range ss {
			data = append(data, encBinaryString(s)...)
		}
	}
	encStrings(t.Terminals)
	encStrings(t.NonTerms)

	data = append(data, encBinaryInt(len(t.Productions))...)
	for _, p := range t.Productions {
		data = append(data, encBinaryString(p.NonTerminal)...)
		encStrings(p.Symbols)
	}

	states := make([]int, 0, len(t.Action))
	for s := range t.Action {
		states = append(states, s)
	}
	sort.Ints(states)
	data = append(data, encBinaryInt(len(states))...)
	for _, s := range states {
		row := t.Action[s]
		terms := make([]string, 0, len(row))
		for term := range row {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		data = append(data, encBinaryInt(s)...)
		data = append(data, encBinaryInt(len(terms))...)
		for _, term := range terms {
			act := row[term]
			data = append(data, encBinaryString(term)...)
			data = append(data, encBinaryInt(int(act.Kind))...)
			data = append(data, encBinaryInt(act.ShiftState)...)
			data = append(data, encBinaryInt(act.ReduceProd)...)
		}
	}

	gotoStates := make([]int, 0, len(t.Goto))
	for s := range t.Goto {
		gotoStates = append(gotoStates, s)
	}
	sort.Ints(gotoStates)
	data = append(data, encBinaryInt(len(gotoStates))...)
	for _, s := range gotoStates {
		row := t.Goto[s]
		nts := make([]string, 0, len(row))
		for nt := range row {
			nts = append(nts, nt)
		}
		sort.Strings(nts)
		data = append(data, encBinaryInt(s)...)
		data = append(data, encBinaryInt(len(nts))...)
		for _, nt := range nts {
			data = append(data, encBinaryString(nt)...)
			data = append(data, encBinaryInt(row[nt])...)
		}
	}

	return data, nil
}

func (f *tableFile) UnmarshalBinary(data []byte) error {
	r := &reader{data: data}
	t := f.table

	tag, err := r.readInt()
	if err != nil {
		return err
	}
	if tag != version.CacheTag {
		return fmt.Errorf("%w: tag %d, want %d", ErrInvalid, tag, version.CacheTag)
	}
	t.Version = tag

	if t.GrammarName, err = r.readString(); err != nil {
		return err
	}
	if t.NumStates, err = r.readInt(); err != nil {
		return err
	}
	if t.Start, err = r.readInt(); err != nil {
		return err
	}

	decStrings := func() ([]string, error) {
		n, err := r.readInt()
		if err != nil {
			return nil, err
		}
		out := make([]string, n)
		for i := 0; i < n; i++ {
			if out[i], err = r.readString(); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	if t.Terminals, err = decStrings(); err != nil {
		return err
	}
	if t.NonTerms, err = decStrings(); err != nil {
		return err
	}

	prodCount, err := r.readInt()
	if err != nil {
		return err
	}
	t.Productions = make([]grammar.Production, prodCount)
	for i := 0; i < prodCount; i++ {
		if t.Productions[i].NonTerminal, err = r.readString(); err != nil {
			return err
		}
		if t.Productions[i].Symbols, err = decStrings(); err != nil {
			return err
		}
		if len(t.Productions[i].Symbols) == 0 {
			t.Productions[i].Symbols = nil
		}
	}

	actionStates, err := r.readInt()
	if err != nil {
		return err
	}
	t.Action = map[int]map[string]lr.Action{}
	for i := 0; i < actionStates; i++ {
		s, err := r.readInt()
		if err != nil {
			return err
		}
		rowLen, err := r.readInt()
		if err != nil {
			return err
		}
		row := map[string]lr.Action{}
		for j := 0; j < rowLen; j++ {
			term, err := r.readString()
			if err != nil {
				return err
			}
			kind, err := r.readInt()
			if err != nil {
				return err
			}
			shiftState, err := r.readInt()
			if err != nil {
				return err
			}
			reduceProd, err := r.readInt()
			if err != nil {
				return err
			}
			row[term] = lr.Action{Kind: lr.ActionKind(kind), ShiftState: shiftState, ReduceProd: reduceProd}
		}
		t.Action[s] = row
	}

	gotoStates, err := r.readInt()
	if err != nil {
		return err
	}
	t.Goto = map[int]map[string]int{}
	for i := 0; i < gotoStates; i++ {
		s, err := r.readInt()
		if err != nil {
			return err
		}
		rowLen, err := r.readInt()
		if err != nil {
			return err
		}
		row := map[string]int{}
		for j := 0; j < rowLen; j++ {
			nt, err := r.readString()
			if err != nil {
				return err
			}
			target, err := r.readInt()
			if err != nil {
				return err
			}
			row[nt] = target
		}
		t.Goto[s] = row
	}

	return nil
}
