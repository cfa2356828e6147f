package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdentifier // obj, Print
	TokenString     // "hello"
	TokenNumber     // 42

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenDot       // .
	TokenComma     // ,
	TokenSemicolon // ;
	TokenAssign    // =

	// Operators
	TokenPlus       // +
	TokenMinus      // -
	TokenStar       // *
	TokenSlash      // /
	TokenPercent    // %
	TokenPlusPlus   // ++
	TokenMinusMinus // --
	TokenGT         // >
	TokenLT         // <
	TokenGE         // >=
	TokenLE         // <=
	TokenEQ         // ==
	TokenNE         // !=

	// Keywords
	TokenFor
	TokenWhile
	TokenIf
	TokenElse
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenIdentifier: "IDENTIFIER",
	TokenString:     "STRING",
	TokenNumber:     "NUMBER",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenDot:        ".",
	TokenComma:      ",",
	TokenSemicolon:  ";",
	TokenAssign:     "=",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenPercent:    "%",
	TokenPlusPlus:   "++",
	TokenMinusMinus: "--",
	TokenGT:         ">",
	TokenLT:         "<",
	TokenGE:         ">=",
	TokenLE:         "<=",
	TokenEQ:         "==",
	TokenNE:         "!=",
	TokenFor:        "for",
	TokenWhile:      "while",
	TokenIf:         "if",
	TokenElse:       "else",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text; string literals exclude the quotes
	Pos     Position // start position
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	case TokenIdentifier, TokenString, TokenNumber:
		if len(t.Literal) > 20 {
			return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
		}
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return fmt.Sprintf("%q", t.Type.String())
}

// Reserved words mapped to their token types. Print is not reserved; the
// parser recognizes it by identifier text.
var reservedWords = map[string]TokenType{
	"for":   TokenFor,
	"while": TokenWhile,
	"if":    TokenIf,
	"else":  TokenElse,
}
