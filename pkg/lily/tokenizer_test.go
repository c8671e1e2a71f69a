package lily

import (
	"errors"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []TokenKind
		texts []string
	}{
		{
			name:  "notes and bar line",
			input: "c'4 d e |",
			kinds: []TokenKind{TokenWord, TokenWord, TokenWord, TokenBarLine},
			texts: []string{"c'4", "d", "e", "|"},
		},
		{
			name:  "command with braces",
			input: "\\drummode { bd4 sn }",
			kinds: []TokenKind{TokenCommand, TokenOpenBrace, TokenWord, TokenWord, TokenCloseBrace},
			texts: []string{"drummode", "{", "bd4", "sn", "}"},
		},
		{
			name:  "tempo marking",
			input: "\\tempo 4 = 120",
			kinds: []TokenKind{TokenCommand, TokenNumber, TokenEquals, TokenNumber},
			texts: []string{"tempo", "4", "=", "120"},
		},
		{
			name:  "simultaneity brackets",
			input: "<< { c } >>",
			kinds: []TokenKind{TokenOpenSim, TokenOpenBrace, TokenWord, TokenCloseBrace, TokenCloseSim},
			texts: []string{"<<", "{", "c", "}", ">>"},
		},
		{
			name:  "chord brackets",
			input: "< c e g >4",
			kinds: []TokenKind{TokenOpenAngle, TokenWord, TokenWord, TokenWord, TokenCloseAngle, TokenNumber},
			texts: []string{"<", "c", "e", "g", ">", "4"},
		},
		{
			name:  "quoted string",
			input: `\version "2.24.4"`,
			kinds: []TokenKind{TokenCommand, TokenString},
			texts: []string{"version", "2.24.4"},
		},
		{
			name:  "octave marks stay attached",
			input: "fis,,8 ges'2",
			kinds: []TokenKind{TokenWord, TokenWord},
			texts: []string{"fis,,8", "ges'2"},
		},
		{
			name:  "plain comment dropped",
			input: "c4 % just a remark\nd4",
			kinds: []TokenKind{TokenWord, TokenWord},
			texts: []string{"c4", "d4"},
		},
		{
			name:  "directive comment kept",
			input: "% " + DirectiveTag + " blue punchcard\nbd4",
			kinds: []TokenKind{TokenDirective, TokenWord},
			texts: []string{"blue punchcard", "bd4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(toks) != len(tt.kinds) {
				t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(tt.kinds), toks)
			}
			for i, tok := range toks {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d kind = %v, want %v", i, tok.Kind, tt.kinds[i])
				}
				if tok.Text != tt.texts[i] {
					t.Errorf("token %d text = %q, want %q", i, tok.Text, tt.texts[i])
				}
			}
		})
	}
}

func TestTokenizeUnterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"open brace", "{ c4 d4"},
		{"open simultaneity", "<< { c4 }"},
		{"open chord", "< c e g"},
		{"open string", `\version "2.24`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatal("Tokenize() expected error, got nil")
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("error = %T, want *LexError", err)
			}
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	toks, err := Tokenize("c4\n  d4")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Line != 1 || toks[0].Col != 1 {
		t.Errorf("first token at %d:%d, want 1:1", toks[0].Line, toks[0].Col)
	}
	if toks[1].Line != 2 || toks[1].Col != 3 {
		t.Errorf("second token at %d:%d, want 2:3", toks[1].Line, toks[1].Col)
	}
}
