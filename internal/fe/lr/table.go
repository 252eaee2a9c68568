// Package lr implements spec.md section 4.4's canonical LR(1) table
// generator: item-set construction, shift/reduce/goto table assembly, and
// disk-cacheable tables.
package lr

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/gizzard/internal/fe/grammar"
)

// ActionKind is the kind of entry in a parse table cell.
type ActionKind int

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

func (k ActionKind) String() string {
	switch k {
	case ActionShift:
		return "shift"
	case ActionReduce:
		return "reduce"
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// Action is one cell of the ACTION table.
type Action struct {
	Kind       ActionKind
	ShiftState int
	ReduceProd int // index into Table.Productions
}

// Table is the assembled shift/reduce/goto table for a grammar, plus enough
// metadata to re-validate a cached copy against the grammar that produced
// it (spec.md section 6).
type Table struct {
	GrammarName string
	Version     int

	// Productions is every production of the grammar, in the stable order
	// AllProductions returns them; ReduceProd indices above refer into this
	// slice.
	Productions []grammar.Production

	NumStates int
	Terminals []string
	NonTerms  []string

	// Action[state][terminal] and Goto[state][nonterminal].
	Action map[int]map[string]Action
	Goto   map[int]map[string]int

	Start int
}

// ConflictError reports a shift/reduce or reduce/reduce collision: per
// spec.md section 4.4, any such collision is a fatal build-time error naming
// both productions and the lookahead.
type ConflictError struct {
	State      int
	Lookahead  string
	Existing   string
	Incoming   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("lr: conflict in state %d on lookahead %q: %s vs %s", e.State, e.Lookahead, e.Existing, e.Incoming)
}

// Build performs the canonical LR(1) construction of spec.md section 4.4
// and assembles the shift/reduce/goto table. g must be non-augmented; Build
// augments it internally.
func Build(name string, g *grammar.Grammar) (*Table, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	aug := g.Augmented()
	prods := g.AllProductions()
	// findProd looks up a production by left-hand side and exact symbol
	// sequence; productions never repeat verbatim in a well-formed grammar,
	// so this is unambiguous.
	findProd := func(nt string, symbols []string) int {
		for i, p := range prods {
			if p.NonTerminal != nt || len(p.Symbols) != len(symbols) {
				continue
			}
			match := true
			for j := range symbols {
				if p.Symbols[j] != symbols[j] {
					match = false
					break
				}
			}
			if match {
				return i
			}
		}
		return -1
	}

	startItem := grammar.LR1Item{
		LR0Item:   grammar.LR0Item{NonTerminal: aug.StartSymbol(), Right: []string{g.StartSymbol()}},
		Lookahead: grammar.EndOfInput,
	}
	startSet := grammar.Closure(aug, grammar.NewItemSet(startItem))

	type stateRec struct {
		set grammar.ItemSet
	}

	states := []stateRec{{set: startSet}}
	stateIndex := map[string]int{startSet.Key(): 0}

	transitions := map[int]map[string]int{}

	// discover states and transitions via repeated goto.
	for i := 0; i < len(states); i++ {
		I := states[i].set
		symbols := map[string]bool{}
		for _, it := range I {
			if len(it.Right) > 0 {
				symbols[it.Right[0]] = true
			}
		}
		syms := make([]string, 0, len(symbols))
		for s := range symbols {
			syms = append(syms, s)
		}
		sort.Strings(syms)

		for _, X := range syms {
			next := grammar.Goto(aug, I, X)
			if len(next) == 0 {
				continue
			}
			key := next.Key()
			j, ok := stateIndex[key]
			if !ok {
				j = len(states)
				states = append(states, stateRec{set: next})
				stateIndex[key] = j
			}
			if transitions[i] == nil {
				transitions[i] = map[string]int{}
			}
			transitions[i][X] = j
		}
	}

	t := &Table{
		GrammarName: name,
		Productions: prods,
		NumStates:   len(states),
		Terminals:   g.Terminals(),
		NonTerms:    g.NonTerminals(),
		Action:      map[int]map[string]Action{},
		Goto:        map[int]map[string]int{},
		Start:       0,
	}

	setAction := func(state int, term string, act Action) error {
		if t.Action[state] == nil {
			t.Action[state] = map[string]Action{}
		}
		if existing, ok := t.Action[state][term]; ok && !actionsEqual(existing, act) {
			return &ConflictError{
				State:     state,
				Lookahead: term,
				Existing:  describeAction(t, existing),
				Incoming:  describeAction(t, act),
			}
		}
		t.Action[state][term] = act
		return nil
	}

	for i, rec := range states {
		for _, it := range rec.set {
			if len(it.Right) == 0 {
				if it.NonTerminal == aug.StartSymbol() {
					if err := setAction(i, grammar.EndOfInput, Action{Kind: ActionAccept}); err != nil {
						return nil, err
					}
					continue
				}
				pIdx := findProd(it.NonTerminal, it.Left)
				if pIdx < 0 {
					return nil, fmt.Errorf("lr: internal error: no production found for reduce item %s", it)
				}
				if err := setAction(i, it.Lookahead, Action{Kind: ActionReduce, ReduceProd: pIdx}); err != nil {
					return nil, err
				}
				continue
			}

			a := it.Right[0]
			if g.IsTerminal(a) {
				j, ok := transitions[i][a]
				if !ok {
					continue
				}
				if err := setAction(i, a, Action{Kind: ActionShift, ShiftState: j}); err != nil {
					return nil, err
				}
			}
		}

		for _, nt := range g.NonTerminals() {
			if j, ok := transitions[i][nt]; ok {
				if t.Goto[i] == nil {
					t.Goto[i] = map[string]int{}
				}
				t.Goto[i][nt] = j
			}
		}
	}

	return t, nil
}

func actionsEqual(a, b Action) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ActionShift:
		return a.ShiftState == b.ShiftState
	case ActionReduce:
		return a.ReduceProd == b.ReduceProd
	default:
		return true
	}
}

func describeAction(t *Table, a Action) string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("shift %d", a.ShiftState)
	case ActionReduce:
		return fmt.Sprintf("reduce %s", t.Productions[a.ReduceProd])
	case ActionAccept:
		return "accept"
	default:
		return "error"
	}
}

// String renders the ACTION and GOTO halves of the table as one grid, a
// row per state.
func (t *Table) String() string {
	allTerms := append(append([]string(nil), t.Terminals...), grammar.EndOfInput)

	data := [][]string{}
	headers := []string{"S", "|"}
	for _, term := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", term))
	}
	headers = append(headers, "|")
	for _, nt := range t.NonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for i := 0; i < t.NumStates; i++ {
		row := []string{fmt.Sprint(i), "|"}

		for _, term := range allTerms {
			cell := ""
			if act, ok := t.Action[i][term]; ok {
				switch act.Kind {
				case ActionAccept:
					cell = "acc"
				case ActionReduce:
					cell = fmt.Sprintf("r %s", t.Productions[act.ReduceProd])
				case ActionShift:
					cell = fmt.Sprintf("s%d", act.ShiftState)
				}
			}
			row = append(row, cell)
		}

		row = append(row, "|")

		for _, nt := range t.NonTerms {
			cell := ""
			if j, ok := t.Goto[i][nt]; ok {
				cell = fmt.Sprint(j)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

// AcceptedTerminals returns, in sorted order, every terminal the table has
// an action for in state, used to build "terminals that would have been
// accepted" syntax error messages.
func (t *Table) AcceptedTerminals(state int) []string {
	row := t.Action[state]
	out := make([]string, 0, len(row))
	for term := range row {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}
