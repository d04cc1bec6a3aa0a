package token

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"gate",
			"H 0",
			[]Token{{"H", Ident, 1}, {"0", Integer, 1}},
		},
		{
			"declare",
			"DECLARE ro BIT[2]",
			[]Token{
				{"DECLARE", Ident, 1}, {"ro", Ident, 1}, {"BIT", Ident, 1},
				{"[", LBracket, 1}, {"2", Integer, 1}, {"]", RBracket, 1},
			},
		},
		{
			"newlines",
			"H 0\nX 1",
			[]Token{{"H", Ident, 1}, {"0", Integer, 1}, {"\n", Newline, 1}, {"X", Ident, 2}, {"1", Integer, 2}},
		},
		{
			"semicolon",
			"H 0; X 1",
			[]Token{{"H", Ident, 1}, {"0", Integer, 1}, {";", Newline, 1}, {"X", Ident, 1}, {"1", Integer, 1}},
		},
		{
			"comment",
			"H 0 # hadamard\n",
			[]Token{{"H", Ident, 1}, {"0", Integer, 1}, {"\n", Newline, 1}},
		},
		{
			"float",
			"RX(1.5e-3) 0",
			[]Token{
				{"RX", Ident, 1}, {"(", LParen, 1}, {"1.5e-3", Float, 1},
				{")", RParen, 1}, {"0", Integer, 1},
			},
		},
		{
			"imaginary",
			"2.0i",
			[]Token{{"2.0", Imaginary, 1}},
		},
		{
			"operators",
			"-pi/2*theta^2+1",
			[]Token{
				{"-", Minus, 1}, {"pi", Ident, 1}, {"/", Slash, 1}, {"2", Integer, 1},
				{"*", Star, 1}, {"theta", Ident, 1}, {"^", Caret, 1}, {"2", Integer, 1},
				{"+", Plus, 1}, {"1", Integer, 1},
			},
		},
		{
			"label_and_variable",
			"LABEL @loop\nRX(%alpha) 0",
			[]Token{
				{"LABEL", Ident, 1}, {"loop", Label, 1}, {"\n", Newline, 1},
				{"RX", Ident, 2}, {"(", LParen, 2}, {"alpha", Variable, 2}, {")", RParen, 2}, {"0", Integer, 2},
			},
		},
		{
			"string",
			`PRAGMA INITIAL_REWIRING "NAIVE"`,
			[]Token{{"PRAGMA", Ident, 1}, {"INITIAL_REWIRING", Ident, 1}, {"NAIVE", String, 1}},
		},
		{
			"indent",
			"DEFGATE G:\n    1, 0\n",
			[]Token{
				{"DEFGATE", Ident, 1}, {"G", Ident, 1}, {":", Colon, 1}, {"\n", Newline, 1},
				{"", Indent, 2}, {"1", Integer, 2}, {",", Comma, 2}, {"0", Integer, 2}, {"\n", Newline, 2},
			},
		},
		{
			"blank_indented_line",
			"H 0\n   \nX 0",
			[]Token{
				{"H", Ident, 1}, {"0", Integer, 1}, {"\n", Newline, 1},
				{"\n", Newline, 2}, {"X", Ident, 3}, {"0", Integer, 3},
			},
		},
		{
			"hyphenated_identifier",
			"DEFGATE CAN-2",
			[]Token{{"DEFGATE", Ident, 1}, {"CAN-2", Ident, 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated_string", `PRAGMA X "abc`},
		{"bad_character", "H 0 $"},
		{"empty_label", "JUMP @"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Tokenize(tt.input); err == nil {
				t.Errorf("Tokenize(%q) expected error", tt.input)
			}
		})
	}
}

func TestTypeString(t *testing.T) {
	if Ident.String() != "identifier" {
		t.Errorf("Ident.String() = %q", Ident.String())
	}
	if Type(999).String() != "unknown" {
		t.Errorf("unknown type string = %q", Type(999).String())
	}
}
