package lily

import (
	"strings"
)

// DirectiveTag marks a comment that carries tool directives instead of
// prose. Comments not starting with the tag are discarded.
const DirectiveTag = "@lily2strudel@"

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokenWord      TokenKind = iota // note, drum or identifier token, e.g. c'4, bd8, melody
	TokenCommand                    // \word
	TokenNumber                     // bare digit run
	TokenString                     // "quoted"
	TokenEquals                     // =
	TokenOpenBrace                  // {
	TokenCloseBrace                 // }
	TokenOpenAngle                  // <
	TokenCloseAngle                 // >
	TokenOpenSim                    // <<
	TokenCloseSim                   // >>
	TokenBarLine                    // |
	TokenDirective                  // % @lily2strudel@ payload
)

// Token is one lexical unit with its source position.
type Token struct {
	Kind      TokenKind
	Text      string
	Line, Col int
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// Tokenize turns raw notation text into a token stream. Braces, chord
// brackets and simultaneity brackets must balance by end of input;
// an unterminated opener is a LexError.
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []Token
	var open []Token // open nesting tokens, for the unterminated check

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '%':
			tok, ok := l.comment()
			if ok {
				toks = append(toks, tok)
			}
		case c == '{':
			toks = append(toks, l.single(TokenOpenBrace))
			open = append(open, toks[len(toks)-1])
		case c == '}':
			toks = append(toks, l.single(TokenCloseBrace))
			open = popMatching(open, TokenOpenBrace)
		case c == '<':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '<' {
				toks = append(toks, l.double(TokenOpenSim))
				open = append(open, toks[len(toks)-1])
			} else {
				toks = append(toks, l.single(TokenOpenAngle))
				open = append(open, toks[len(toks)-1])
			}
		case c == '>':
			if l.pos+1 < len(l.src) && l.src[l.pos+1] == '>' {
				toks = append(toks, l.double(TokenCloseSim))
				open = popMatching(open, TokenOpenSim)
			} else {
				toks = append(toks, l.single(TokenCloseAngle))
				open = popMatching(open, TokenOpenAngle)
			}
		case c == '|':
			toks = append(toks, l.single(TokenBarLine))
		case c == '=':
			toks = append(toks, l.single(TokenEquals))
		case c == '\\':
			toks = append(toks, l.command())
		case c == '"':
			tok, err := l.quoted()
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
		case c >= '0' && c <= '9':
			toks = append(toks, l.number())
		case isWordStart(c):
			toks = append(toks, l.word())
		default:
			// Stray punctuation (ties, dots between tokens) is dropped.
			l.advance()
		}
	}

	if len(open) > 0 {
		t := open[len(open)-1]
		return nil, &LexError{Line: t.Line, Col: t.Col, Msg: "unterminated " + t.Text}
	}
	return toks, nil
}

func popMatching(open []Token, kind TokenKind) []Token {
	if len(open) > 0 && open[len(open)-1].Kind == kind {
		return open[:len(open)-1]
	}
	return open
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9') ||
		c == '\'' || c == ',' || c == '.' || c == '~'
}

func (l *lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *lexer) single(kind TokenKind) Token {
	tok := Token{Kind: kind, Text: string(l.src[l.pos]), Line: l.line, Col: l.col}
	l.advance()
	return tok
}

func (l *lexer) double(kind TokenKind) Token {
	tok := Token{Kind: kind, Text: l.src[l.pos : l.pos+2], Line: l.line, Col: l.col}
	l.advance()
	l.advance()
	return tok
}

func (l *lexer) command() Token {
	line, col := l.line, l.col
	l.advance() // backslash
	start := l.pos
	for l.pos < len(l.src) && isLetter(l.src[l.pos]) {
		l.advance()
	}
	return Token{Kind: TokenCommand, Text: l.src[start:l.pos], Line: line, Col: col}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (l *lexer) number() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.advance()
	}
	// Trailing dots (dotted durations) and ties belong to the token but
	// carry no pattern meaning.
	for l.pos < len(l.src) && (l.src[l.pos] == '.' || l.src[l.pos] == '~') {
		l.advance()
	}
	return Token{Kind: TokenNumber, Text: l.src[start:l.pos], Line: line, Col: col}
}

func (l *lexer) word() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && isWordChar(l.src[l.pos]) {
		l.advance()
	}
	return Token{Kind: TokenWord, Text: l.src[start:l.pos], Line: line, Col: col}
}

func (l *lexer) quoted() (Token, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return Token{}, &LexError{Line: line, Col: col, Msg: "unterminated string"}
	}
	text := l.src[start:l.pos]
	l.advance() // closing quote
	return Token{Kind: TokenString, Text: text, Line: line, Col: col}, nil
}

// comment consumes a % comment to end of line. Directive comments carrying
// the tool tag become tokens with their payload; everything else is dropped.
func (l *lexer) comment() (Token, bool) {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance()
	}
	body := strings.TrimSpace(strings.TrimPrefix(l.src[start:l.pos], "%"))
	if !strings.HasPrefix(body, DirectiveTag) {
		return Token{}, false
	}
	payload := strings.TrimSpace(strings.TrimPrefix(body, DirectiveTag))
	return Token{Kind: TokenDirective, Text: payload, Line: line, Col: col}, true
}
