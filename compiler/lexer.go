package compiler

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for capscript source
// ---------------------------------------------------------------------------

// Lexer tokenizes capscript source code. Tokens are produced lazily, one
// per NextToken call. Whitespace is insignificant and there is no comment
// syntax.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// NextToken returns the next token. Malformed input yields a TokenError
// whose Literal is the message; the lexer does not recover past it.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position()

	if l.atEnd() {
		return Token{Type: TokenEOF, Pos: pos}
	}

	switch {
	case isLetter(l.ch):
		return l.readIdentifier(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case l.ch == '"':
		return l.readString(pos)
	}

	ch := l.ch
	switch ch {
	case '+':
		return l.oneOrTwo(pos, '+', TokenPlus, TokenPlusPlus)
	case '-':
		return l.oneOrTwo(pos, '-', TokenMinus, TokenMinusMinus)
	case '>':
		return l.oneOrTwo(pos, '=', TokenGT, TokenGE)
	case '<':
		return l.oneOrTwo(pos, '=', TokenLT, TokenLE)
	case '=':
		return l.oneOrTwo(pos, '=', TokenAssign, TokenEQ)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenNE, Literal: "!=", Pos: pos}
		}
	}

	if t, ok := singleCharTokens[ch]; ok {
		l.readChar()
		return Token{Type: t, Literal: string(ch), Pos: pos}
	}

	l.readChar()
	return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos}
}

var singleCharTokens = map[rune]TokenType{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'.': TokenDot,
	',': TokenComma,
	';': TokenSemicolon,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
}

// oneOrTwo lexes a one-character operator that becomes a two-character
// operator when followed by next.
func (l *Lexer) oneOrTwo(pos Position, next rune, one, two TokenType) Token {
	first := l.ch
	l.readChar()
	if l.ch == next {
		l.readChar()
		return Token{Type: two, Literal: string(first) + string(next), Pos: pos}
	}
	return Token{Type: one, Literal: string(first), Pos: pos}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for !l.atEnd() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	text := l.input[start:l.pos]
	if t, ok := reservedWords[text]; ok {
		return Token{Type: t, Literal: text, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Literal: text, Pos: pos}
}

func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) readString(pos Position) Token {
	l.readChar() // opening quote
	start := l.pos
	for !l.atEnd() && l.ch != '"' {
		l.readChar()
	}
	if l.atEnd() {
		return Token{Type: TokenError, Literal: "unterminated string literal", Pos: pos}
	}
	text := l.input[start:l.pos]
	l.readChar() // closing quote
	return Token{Type: TokenString, Literal: text, Pos: pos}
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens in input up to and including EOF. It stops
// at the first malformed token and returns it as a *LexError.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenError {
			return tokens, &LexError{Pos: tok.Pos, Msg: tok.Literal}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
