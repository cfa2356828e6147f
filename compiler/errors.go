package compiler

import "fmt"

// LexError reports malformed input found by the tokenizer: an unexpected
// character or an unterminated string literal.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

// ParseError reports a token the grammar does not allow where it appears.
// Parsing stops at the first ParseError; no partial AST is returned.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Msg)
}

// GenerateError reports an AST the generator cannot lower. The parser never
// produces one; it guards hand-built trees.
type GenerateError struct {
	Pos Position
	Msg string
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("generate error at %s: %s", e.Pos, e.Msg)
}
