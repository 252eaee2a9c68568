package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// LR0Item is a production plus a dot position: NonTerminal -> Left . Right.
type LR0Item struct {
	NonTerminal string
	Left        []string
	Right       []string
}

func (item LR0Item) String() string {
	left := strings.Join(item.Left, " ")
	right := strings.Join(item.Right, " ")
	if left != "" {
		left += " "
	}
	if right != "" {
		right = " " + right
	}
	return fmt.Sprintf("%s -> %s.%s", item.NonTerminal, left, right)
}

// LR1Item is an LR0Item plus a one-terminal lookahead.
type LR1Item struct {
	LR0Item
	Lookahead string
}

func (item LR1Item) String() string {
	return fmt.Sprintf("%s, %s", item.LR0Item.String(), item.Lookahead)
}

// Copy returns a deep duplicate of item.
func (item LR1Item) Copy() LR1Item {
	cp := LR1Item{Lookahead: item.Lookahead}
	cp.NonTerminal = item.NonTerminal
	cp.Left = append([]string(nil), item.Left...)
	cp.Right = append([]string(nil), item.Right...)
	return cp
}

// Advanced returns the item with the dot moved one symbol to the right
// (Right[0] moved onto the end of Left). Panics if Right is empty.
func (item LR0Item) Advanced() LR0Item {
	return LR0Item{
		NonTerminal: item.NonTerminal,
		Left:        append(append([]string(nil), item.Left...), item.Right[0]),
		Right:       append([]string(nil), item.Right[1:]...),
	}
}

func (item LR1Item) Advanced() LR1Item {
	return LR1Item{LR0Item: item.LR0Item.Advanced(), Lookahead: item.Lookahead}
}

// ItemSet is a closure-saturated collection of LR1Items, keyed by their
// String() form for deduplication.
type ItemSet map[string]LR1Item

func NewItemSet(items ...LR1Item) ItemSet {
	s := ItemSet{}
	for _, it := range items {
		s[it.String()] = it
	}
	return s
}

func (s ItemSet) Add(it LR1Item) { s[it.String()] = it }
func (s ItemSet) Has(it LR1Item) bool {
	_, ok := s[it.String()]
	return ok
}

// Sorted returns the set's items ordered by their String() form, for
// deterministic iteration/output.
func (s ItemSet) Sorted() []LR1Item {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]LR1Item, len(keys))
	for i, k := range keys {
		out[i] = s[k]
	}
	return out
}

// Key returns a canonical string for the set, suitable for use as a map key
// identifying "this exact set of items" (used to dedupe LR(1) states).
func (s ItemSet) Key() string {
	items := s.Sorted()
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " | ")
}

// Core returns the LR0 core of the set: the dotted productions with
// lookaheads stripped, keyed by their String form.
func (s ItemSet) Core() map[string]LR0Item {
	out := map[string]LR0Item{}
	for _, it := range s {
		out[it.LR0Item.String()] = it.LR0Item
	}
	return out
}

// Closure computes the closure of item set I under g: repeatedly, for each
// item A -> α . B β, a with B a nonterminal, add B -> . γ, b for every
// production of B and every b in FIRST(β a).
func Closure(g *Grammar, I ItemSet) ItemSet {
	out := NewItemSet()
	for _, it := range I {
		out.Add(it)
	}

	changed := true
	for changed {
		changed = false
		for _, it := range out.Sorted() {
			if len(it.Right) == 0 {
				continue
			}
			B := it.Right[0]
			if !g.IsNonTerminal(B) {
				continue
			}
			beta := it.Right[1:]
			lookaheads := g.firstOfSequence(append(append([]string(nil), beta...), it.Lookahead))
			for _, p := range g.Productions(B) {
				right := p.Symbols
				if len(right) == 1 && right[0] == Epsilon {
					right = nil
				}
				for la := range lookaheads {
					if la == Epsilon {
						continue
					}
					newItem := LR1Item{
						LR0Item:   LR0Item{NonTerminal: B, Right: append([]string(nil), right...)},
						Lookahead: la,
					}
					if !out.Has(newItem) {
						out.Add(newItem)
						changed = true
					}
				}
			}
		}
	}
	return out
}

// Goto computes goto(I, X): the closure of the set of items in I advanced
// across symbol X.
func Goto(g *Grammar, I ItemSet, X string) ItemSet {
	moved := NewItemSet()
	for _, it := range I {
		if len(it.Right) > 0 && it.Right[0] == X {
			moved.Add(it.Advanced())
		}
	}
	return Closure(g, moved)
}
