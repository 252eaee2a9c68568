package lang

import (
	"github.com/dekarrin/gizzard/internal/fe/grammar"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/parser"
)

// keywords of the source language, each of which is its own token rule and
// its own grammar terminal.
var keywords = []string{
	"function", "type", "protocol", "inherits", "extends",
	"let", "in", "if", "elif", "else", "while", "for",
	"new", "is", "as",
}

// symbols of the source language, rule name to pattern. Multi-character
// symbols need no priority trick: maximal munch already prefers the longer
// lexeme.
var symbols = []lex.Rule{
	{Name: ":=", Pattern: ":="},
	{Name: "==", Pattern: "=="},
	{Name: "!=", Pattern: "!="},
	{Name: "<=", Pattern: "<="},
	{Name: ">=", Pattern: ">="},
	{Name: "=>", Pattern: "=>"},
	{Name: "@@", Pattern: "@@"},
	{Name: "||", Pattern: `\|\|`},
	{Name: "(", Pattern: `\(`},
	{Name: ")", Pattern: `\)`},
	{Name: "{", Pattern: "{"},
	{Name: "}", Pattern: "}"},
	{Name: "[", Pattern: `\[`},
	{Name: "]", Pattern: `\]`},
	{Name: ";", Pattern: ";"},
	{Name: ",", Pattern: ","},
	{Name: ":", Pattern: ":"},
	{Name: ".", Pattern: `\.`},
	{Name: "=", Pattern: "="},
	{Name: "<", Pattern: "<"},
	{Name: ">", Pattern: ">"},
	{Name: "+", Pattern: `\+`},
	{Name: "-", Pattern: "-"},
	{Name: "*", Pattern: `\*`},
	{Name: "/", Pattern: "/"},
	{Name: "%", Pattern: "%"},
	{Name: "^", Pattern: "^"},
	{Name: "@", Pattern: "@"},
	{Name: "&", Pattern: "&"},
	{Name: "|", Pattern: `\|`},
	{Name: "!", Pattern: "!"},
}

// Rules returns the token rules of the source language in priority order:
// skip rules, keywords, the boolean literal, identifiers, number and string
// literals, then symbols. Keywords and the boolean literal come before the
// identifier rule so they win the tie at equal munch length.
func Rules() []lex.Rule {
	rules := []lex.Rule{
		{Name: "ws", Pattern: "[ \t\r\n]+", Skip: true},
		{Name: "comment", Pattern: "//[^\n]*", Skip: true},
	}
	for _, kw := range keywords {
		rules = append(rules, lex.Rule{Name: kw, Pattern: kw})
	}
	rules = append(rules,
		lex.Rule{Name: string(lex.KindBoolean), Pattern: "true|false"},
		lex.Rule{Name: string(lex.KindIdentifier), Pattern: "[a-zA-Z_][a-zA-Z0-9_]*"},
		lex.Rule{Name: string(lex.KindNumber), Pattern: `[0-9]+(\.[0-9]+)?`},
		lex.Rule{Name: string(lex.KindString), Pattern: `"([^"\\]|\\.)*"`},
	)
	rules = append(rules, symbols...)
	return rules
}

// ToParserTokens converts lexer output to parser input: value-class tokens
// map to the num/str/id/bool terminals, every keyword and symbol token maps
// to the terminal of the same name, and the eof token maps to $.
func ToParserTokens(toks []lex.Token) []parser.Token {
	out := make([]parser.Token, len(toks))
	for i, t := range toks {
		term := string(t.Kind)
		switch t.Kind {
		case lex.KindIdentifier:
			term = "id"
		case lex.KindNumber:
			term = "num"
		case lex.KindString:
			term = "str"
		case lex.KindBoolean:
			term = "bool"
		case lex.KindEOF:
			term = grammar.EndOfInput
		}
		out[i] = parser.Token{Terminal: term, Lexeme: t.Value, Row: t.Row, Col: t.Col}
	}
	return out
}
