package lex

import (
	"fmt"

	"github.com/dekarrin/gizzard/internal/fe/fa"
)

// Snapshot is the serializable form of a built Lexer: the determinized
// automaton, the final-state-to-rule tags, and the rules themselves (needed
// at runtime for names and skip flags; patterns ride along so a rebuilt
// cache can be diffed against source rules).
type Snapshot struct {
	DFA   fa.Snapshot
	Tags  map[int]int
	Rules []Rule
}

// Snapshot converts the lexer to its serializable form.
func (lx *Lexer) Snapshot() Snapshot {
	snap := Snapshot{
		DFA:   lx.dfa.Serialize(),
		Tags:  map[int]int{},
		Rules: append([]Rule(nil), lx.rules...),
	}
	for k, v := range lx.tag {
		snap.Tags[k] = v
	}
	return snap
}

// FromSnapshot reproduces a Lexer whose scan behavior is identical to the
// one that produced snap.
func FromSnapshot(snap Snapshot) (*Lexer, error) {
	dfa, err := fa.Deserialize(snap.DFA)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	tag := map[int]int{}
	for state, ruleIdx := range snap.Tags {
		if state < 0 || state >= len(dfa.States) {
			return nil, fmt.Errorf("lex: tag references state %d of %d", state, len(dfa.States))
		}
		if ruleIdx < 0 || ruleIdx >= len(snap.Rules) {
			return nil, fmt.Errorf("lex: tag references rule %d of %d", ruleIdx, len(snap.Rules))
		}
		tag[state] = ruleIdx
	}
	return &Lexer{dfa: dfa, tag: tag, rules: append([]Rule(nil), snap.Rules...)}, nil
}
