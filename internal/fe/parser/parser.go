// Package parser implements the table-driven shift-reduce loop: it walks a
// token sequence against an LR(1) table, producing a derivation tree, and
// evaluates derivation trees bottom-up through the grammar's semantic
// builders.
package parser

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gizzard/internal/fe/grammar"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/util"
)

// Token is one terminal of parser input. Terminal is the grammar symbol the
// token maps to; Lexeme is the matched source text; Row and Col locate it.
type Token struct {
	Terminal string
	Lexeme   string
	Row      int
	Col      int
}

func (t Token) String() string {
	if t.Lexeme == "" || t.Lexeme == t.Terminal {
		return fmt.Sprintf("%q", t.Terminal)
	}
	return fmt.Sprintf("%s %q", t.Terminal, t.Lexeme)
}

// Tree is a node of a derivation tree: a leaf holding a shifted token, or an
// interior node holding the index of the production that reduced to it, with
// one child per right-hand-side symbol.
type Tree struct {
	Leaf     *Token
	Prod     int
	Children []*Tree
}

// Pos returns the position of the leftmost token under the tree. A tree with
// no tokens beneath it (an ε-reduction) reports 0, 0.
func (tr *Tree) Pos() (row, col int) {
	if tr.Leaf != nil {
		return tr.Leaf.Row, tr.Leaf.Col
	}
	for _, c := range tr.Children {
		if r, cl := c.Pos(); r != 0 || cl != 0 {
			return r, cl
		}
	}
	return 0, 0
}

func (tr *Tree) render(prods []grammar.Production, indent string, sb *strings.Builder) {
	if tr.Leaf != nil {
		fmt.Fprintf(sb, "%s(TERM %s)\n", indent, tr.Leaf)
		return
	}
	fmt.Fprintf(sb, "%s(%s)\n", indent, prods[tr.Prod])
	for _, c := range tr.Children {
		c.render(prods, indent+"  ", sb)
	}
}

// Render gives a readable form of the tree against the production list that
// produced it.
func (tr *Tree) Render(prods []grammar.Production) string {
	var sb strings.Builder
	tr.render(prods, "", &sb)
	return sb.String()
}

// SyntaxError is a parse failure: the offending token together with the
// terminals the parser would have accepted in the state it was in. There is
// no recovery; the first syntax error ends the parse.
type SyntaxError struct {
	Token    Token
	Expected []string
}

func (e *SyntaxError) Error() string {
	exp := make([]string, len(e.Expected))
	for i, t := range e.Expected {
		exp[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf(
		"syntax error at %d:%d: unexpected %s; expected %s",
		e.Token.Row, e.Token.Col, e.Token, util.MakeTextList(exp),
	)
}

// Parse runs the deterministic shift-reduce loop of t over input. The state
// stack starts as [0] and the symbol stack empty; input is consumed
// left-to-right with an end-of-input terminal appended if the caller did not
// provide one. On accept the derivation tree on the symbol stack is
// returned.
func Parse(t *lr.Table, input []Token) (*Tree, error) {
	toks := append([]Token(nil), input...)
	if len(toks) == 0 || toks[len(toks)-1].Terminal != grammar.EndOfInput {
		var endRow, endCol int
		if len(toks) > 0 {
			last := toks[len(toks)-1]
			endRow, endCol = last.Row, last.Col+len([]rune(last.Lexeme))
		}
		toks = append(toks, Token{Terminal: grammar.EndOfInput, Row: endRow, Col: endCol})
	}

	stateStack := []int{t.Start}
	var symStack []*Tree

	pos := 0
	for {
		state := stateStack[len(stateStack)-1]
		cur := toks[pos]

		act, ok := t.Action[state][cur.Terminal]
		if !ok {
			return nil, &SyntaxError{Token: cur, Expected: t.AcceptedTerminals(state)}
		}

		switch act.Kind {
		case lr.ActionShift:
			shifted := cur
			symStack = append(symStack, &Tree{Leaf: &shifted})
			stateStack = append(stateStack, act.ShiftState)
			pos++

		case lr.ActionReduce:
			p := t.Productions[act.ReduceProd]
			n := len(p.Symbols)
			if n > len(symStack) {
				return nil, fmt.Errorf("parser: internal error: reduce %s pops %d but stack has %d", p, n, len(symStack))
			}
			children := make([]*Tree, n)
			copy(children, symStack[len(symStack)-n:])
			symStack = symStack[:len(symStack)-n]
			stateStack = stateStack[:len(stateStack)-n]

			gotoState, ok := t.Goto[stateStack[len(stateStack)-1]][p.NonTerminal]
			if !ok {
				return nil, fmt.Errorf("parser: internal error: no goto from state %d on %s", stateStack[len(stateStack)-1], p.NonTerminal)
			}
			symStack = append(symStack, &Tree{Prod: act.ReduceProd, Children: children})
			stateStack = append(stateStack, gotoState)

		case lr.ActionAccept:
			if len(symStack) != 1 {
				return nil, fmt.Errorf("parser: internal error: accept with %d symbols on stack", len(symStack))
			}
			return symStack[0], nil

		default:
			return nil, &SyntaxError{Token: cur, Expected: t.AcceptedTerminals(state)}
		}
	}
}

// Evaluate folds a derivation tree bottom-up through the semantic builders
// of prods (the same production list, in the same order, as the table that
// produced the tree). Leaves evaluate to their Token; interior nodes
// evaluate to their production's builder applied to the children's values.
func Evaluate(tr *Tree, prods []grammar.Production) any {
	if tr.Leaf != nil {
		return *tr.Leaf
	}
	vals := make([]any, len(tr.Children))
	for i, c := range tr.Children {
		vals[i] = Evaluate(c, prods)
	}
	return prods[tr.Prod].Build(vals)
}
