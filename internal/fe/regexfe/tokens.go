package regexfe

import (
	"fmt"

	"github.com/dekarrin/gizzard/internal/fe/parser"
)

// Terminal names of the regex grammar. Every operator character is its own
// terminal; any other character (including escaped operators) maps to
// TermChar, and a whole bracketed character class maps to TermClass.
const (
	TermChar  = "ch"
	TermClass = "class"
)

var specials = map[rune]bool{
	'|': true, '*': true, '+': true, '?': true,
	'(': true, ')': true, '.': true,
}

// tokenize splits a regex pattern into parser tokens. The regex language
// sits beneath the lexer it bootstraps (the lexer's rules are themselves
// regexes), so this is a hand loop rather than a lex.Lexer.
//
// Escapes are resolved here: `\x` becomes a TermChar token for x no matter
// what x is. Character classes are consumed whole, validated, and carried as
// a single TermClass token whose lexeme is the bracketed source text.
func tokenize(src string) ([]parser.Token, error) {
	runes := []rune(src)
	var out []parser.Token

	for i := 0; i < len(runes); {
		c := runes[i]
		col := i + 1

		switch {
		case c == '\\':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("regexfe: dangling escape at end of pattern")
			}
			out = append(out, parser.Token{Terminal: TermChar, Lexeme: string(runes[i+1]), Row: 1, Col: col})
			i += 2

		case c == '[':
			end, err := scanClass(runes, i)
			if err != nil {
				return nil, err
			}
			text := string(runes[i : end+1])
			if _, err := classFromText(text); err != nil {
				return nil, err
			}
			out = append(out, parser.Token{Terminal: TermClass, Lexeme: text, Row: 1, Col: col})
			i = end + 1

		case specials[c]:
			out = append(out, parser.Token{Terminal: string(c), Lexeme: string(c), Row: 1, Col: col})
			i++

		default:
			out = append(out, parser.Token{Terminal: TermChar, Lexeme: string(c), Row: 1, Col: col})
			i++
		}
	}

	return out, nil
}

// scanClass finds the index of the ']' closing the class that opens at
// start. Escaped characters inside the class do not close it.
func scanClass(runes []rune, start int) (int, error) {
	for i := start + 1; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case ']':
			if i > start+1 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("regexfe: unclosed character class at position %d", start)
}

// classFromText parses the interior of a bracketed class ("[a-z0-9_]",
// "[^\"]") into a Class node.
func classFromText(text string) (Class, error) {
	runes := []rune(text)
	if len(runes) < 2 || runes[0] != '[' || runes[len(runes)-1] != ']' {
		return Class{}, fmt.Errorf("regexfe: malformed character class %q", text)
	}
	runes = runes[1 : len(runes)-1]

	cls := Class{}
	pos := 0
	if len(runes) > 0 && runes[0] == '^' {
		cls.Negated = true
		pos = 1
	}
	if pos >= len(runes) {
		return Class{}, fmt.Errorf("regexfe: empty character class %q", text)
	}

	next := func() (rune, error) {
		if pos >= len(runes) {
			return 0, fmt.Errorf("regexfe: dangling escape in character class %q", text)
		}
		c := runes[pos]
		pos++
		if c == '\\' {
			if pos >= len(runes) {
				return 0, fmt.Errorf("regexfe: dangling escape in character class %q", text)
			}
			c = runes[pos]
			pos++
		}
		return c, nil
	}

	for pos < len(runes) {
		lo, err := next()
		if err != nil {
			return Class{}, err
		}
		hi := lo
		if pos+1 < len(runes) && runes[pos] == '-' {
			pos++ // consume '-'
			hi, err = next()
			if err != nil {
				return Class{}, err
			}
		}
		if hi < lo {
			return Class{}, fmt.Errorf("regexfe: invalid range %q-%q in character class", lo, hi)
		}
		cls.Ranges = append(cls.Ranges, ClassRange{Lo: lo, Hi: hi})
	}

	return cls, nil
}
