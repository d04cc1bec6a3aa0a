package token

import (
	"fmt"
	"unicode"
)

type Type int

const (
	Newline Type = iota
	Ident
	Integer
	Float
	Imaginary
	String
	Label
	Variable
	LBracket
	RBracket
	LParen
	RParen
	Comma
	Colon
	Plus
	Minus
	Star
	Slash
	Caret
	Indent
)

func (t Type) String() string {
	switch t {
	case Newline:
		return "newline"
	case Ident:
		return "identifier"
	case Integer:
		return "integer"
	case Float:
		return "number"
	case Imaginary:
		return "imaginary number"
	case String:
		return "string"
	case Label:
		return "label"
	case Variable:
		return "variable"
	case LBracket:
		return "'['"
	case RBracket:
		return "']'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Plus:
		return "'+'"
	case Minus:
		return "'-'"
	case Star:
		return "'*'"
	case Slash:
		return "'/'"
	case Caret:
		return "'^'"
	case Indent:
		return "indentation"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Tokenize splits Quil source into tokens. Semicolons separate instructions
// the same way newlines do and are emitted as Newline tokens. An Indent token
// is emitted for a line that begins with whitespace, which DEFGATE bodies
// depend on.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	line := 1
	runes := []rune(input)
	lineStart := true

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			tokens = append(tokens, Token{"\n", Newline, line})
			line++
			lineStart = true
			continue
		}
		if r == ';' {
			tokens = append(tokens, Token{";", Newline, line})
			lineStart = false
			continue
		}
		if unicode.IsSpace(r) {
			if lineStart {
				j := i
				for j < len(runes) && runes[j] != '\n' && unicode.IsSpace(runes[j]) {
					j++
				}
				if j < len(runes) && runes[j] != '\n' && runes[j] != '#' {
					tokens = append(tokens, Token{"", Indent, line})
				}
				i = j - 1
				lineStart = false
			}
			continue
		}
		lineStart = false

		// Comment
		if r == '#' {
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
			continue
		}

		switch r {
		case '[':
			tokens = append(tokens, Token{"[", LBracket, line})
			continue
		case ']':
			tokens = append(tokens, Token{"]", RBracket, line})
			continue
		case '(':
			tokens = append(tokens, Token{"(", LParen, line})
			continue
		case ')':
			tokens = append(tokens, Token{")", RParen, line})
			continue
		case ',':
			tokens = append(tokens, Token{",", Comma, line})
			continue
		case ':':
			tokens = append(tokens, Token{":", Colon, line})
			continue
		case '+':
			tokens = append(tokens, Token{"+", Plus, line})
			continue
		case '-':
			tokens = append(tokens, Token{"-", Minus, line})
			continue
		case '*':
			tokens = append(tokens, Token{"*", Star, line})
			continue
		case '/':
			tokens = append(tokens, Token{"/", Slash, line})
			continue
		case '^':
			tokens = append(tokens, Token{"^", Caret, line})
			continue
		}

		// String literal
		if r == '"' {
			start := i + 1
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' {
					i++
				}
				if i < len(runes) && runes[i] == '\n' {
					return nil, fmt.Errorf("line %d: unterminated string", line)
				}
				i++
			}
			if i >= len(runes) {
				return nil, fmt.Errorf("line %d: unterminated string", line)
			}
			tokens = append(tokens, Token{string(runes[start:i]), String, line})
			continue
		}

		// Label or variable
		if r == '@' || r == '%' {
			start := i + 1
			i++
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("line %d: expected name after %q", line, r)
			}
			typ := Label
			if r == '%' {
				typ = Variable
			}
			tokens = append(tokens, Token{string(runes[start:i]), typ, line})
			i--
			continue
		}

		// Number
		if unicode.IsDigit(r) || (r == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
			start := i
			typ := Integer
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			if i < len(runes) && runes[i] == '.' {
				typ = Float
				i++
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					typ = Float
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			value := string(runes[start:i])
			if i < len(runes) && runes[i] == 'i' && (i+1 >= len(runes) || !isIdentRune(runes[i+1])) {
				typ = Imaginary
				i++
			}
			tokens = append(tokens, Token{value, typ, line})
			i--
			continue
		}

		// Identifier or keyword
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			// identifiers may contain but not end with '-'
			for i > start+1 && runes[i-1] == '-' {
				i--
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}

		return nil, fmt.Errorf("line %d: unexpected character %q", line, r)
	}

	return tokens, nil
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}
