package compiler

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for capscript
// ---------------------------------------------------------------------------

// printBuiltin is the identifier text that starts a Print statement.
const printBuiltin = "Print"

// Parser parses capscript source one statement at a time. It is fail-fast:
// the first error ends the parse and is returned from every later call.
type Parser struct {
	lexer    *Lexer
	curToken Token
	err      error
}

// bailout carries a parse failure up to ParseStatement.
type bailout struct{ err error }

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.curToken = p.lexer.NextToken()
	return p
}

// IsEnd reports whether the input is exhausted or the parse has failed.
func (p *Parser) IsEnd() bool {
	return p.err != nil || p.curToken.Type == TokenEOF
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.lexer.NextToken()
	p.checkLex()
}

func (p *Parser) checkLex() {
	if p.curToken.Type == TokenError {
		panic(bailout{&LexError{Pos: p.curToken.Pos, Msg: p.curToken.Literal}})
	}
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect consumes a token of the given type or fails naming what was wanted.
func (p *Parser) expect(t TokenType, context string) Token {
	tok := p.curToken
	if tok.Type != t {
		p.errorf("expected %q %s, got %s", t.String(), context, tok)
	}
	p.nextToken()
	return tok
}

// errorf aborts the parse with a ParseError at the current token.
func (p *Parser) errorf(format string, args ...any) {
	p.errorAt(p.curToken.Pos, format, args...)
}

func (p *Parser) errorAt(pos Position, format string, args ...any) {
	panic(bailout{&ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}})
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseStatement parses the next top-level statement. The returned error is
// a *LexError or *ParseError.
func (p *Parser) ParseStatement() (stmt Stmt, err error) {
	if p.err != nil {
		return nil, p.err
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			p.err = b.err
			stmt, err = nil, b.err
		}
	}()
	p.checkLex()
	if p.curTokenIs(TokenEOF) {
		p.errorf("unexpected end of input")
	}
	return p.parseStatement(), nil
}

// ParseStatements parses every statement in the input.
func (p *Parser) ParseStatements() ([]Stmt, error) {
	var stmts []Stmt
	for !p.IsEnd() {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if p.err != nil {
		return nil, p.err
	}
	return stmts, nil
}

// Parse parses a complete source text.
func Parse(input string) ([]Stmt, error) {
	return NewParser(input).ParseStatements()
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	switch p.curToken.Type {
	case TokenLBrace:
		return p.parseBlock()
	case TokenSemicolon:
		pos := p.curToken.Pos
		p.nextToken()
		return &Block{PosVal: pos}
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenFor:
		return p.parseFor()
	case TokenIdentifier:
		if p.curToken.Literal == printBuiltin {
			stmt := p.parsePrint()
			p.skipTerminator()
			return stmt
		}
	}

	pos := p.curToken.Pos
	expr := p.parseExpression()
	p.skipTerminator()
	return &ExprStmt{PosVal: pos, Expr: expr}
}

// skipTerminator consumes an optional ';'.
func (p *Parser) skipTerminator() {
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
}

func (p *Parser) parsePrint() *Print {
	pos := p.curToken.Pos
	p.nextToken() // Print
	p.expect(TokenLParen, "after Print")
	arg := p.parseExpression()
	p.expect(TokenRParen, "after Print argument")
	return &Print{PosVal: pos, Arg: arg}
}

func (p *Parser) parseBlock() *Block {
	block := &Block{PosVal: p.curToken.Pos}
	p.nextToken() // {
	for !p.curTokenIs(TokenRBrace) {
		if p.curTokenIs(TokenEOF) {
			p.errorAt(block.PosVal, "unterminated block: expected \"}\"")
		}
		block.Statements = append(block.Statements, p.parseStatement())
	}
	p.nextToken() // }
	return block
}

func (p *Parser) parseIf() *If {
	stmt := &If{PosVal: p.curToken.Pos}
	p.nextToken() // if
	p.expect(TokenLParen, "after if")
	stmt.Cond = p.parseExpression()
	p.expect(TokenRParen, "after if condition")
	stmt.Then = p.parseStatement()
	if p.curTokenIs(TokenElse) {
		p.nextToken()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhile() *While {
	stmt := &While{PosVal: p.curToken.Pos}
	p.nextToken() // while
	p.expect(TokenLParen, "after while")
	stmt.Cond = p.parseExpression()
	p.expect(TokenRParen, "after while condition")
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseFor() *For {
	stmt := &For{PosVal: p.curToken.Pos}
	p.nextToken() // for
	p.expect(TokenLParen, "after for")

	if !p.curTokenIs(TokenSemicolon) {
		pos := p.curToken.Pos
		stmt.Init = &ExprStmt{PosVal: pos, Expr: p.parseExpression()}
	}
	p.expect(TokenSemicolon, "after for initializer")

	if !p.curTokenIs(TokenSemicolon) {
		stmt.Cond = p.parseExpression()
	}
	p.expect(TokenSemicolon, "after for condition")

	if !p.curTokenIs(TokenRParen) {
		stmt.Incr = p.parseExpression()
	}
	p.expect(TokenRParen, "after for clauses")

	stmt.Body = p.parseStatement()
	return stmt
}

// ---------------------------------------------------------------------------
// Expressions, lowest precedence first
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression() Expr {
	return p.parseAssignment()
}

// parseAssignment is right-associative: a.x = b.y = 1 assigns both.
func (p *Parser) parseAssignment() Expr {
	expr := p.parseComparison()
	if !p.curTokenIs(TokenAssign) {
		return expr
	}
	pos := p.curToken.Pos
	target := p.memberTarget(expr, "left side of assignment")
	p.nextToken() // =
	value := p.parseAssignment()
	return &Assignment{PosVal: pos, Target: target, Value: value}
}

var comparisonOps = map[TokenType]BinaryOp{
	TokenGT: OpGT,
	TokenLT: OpLT,
	TokenGE: OpGE,
	TokenLE: OpLE,
	TokenEQ: OpEQ,
	TokenNE: OpNE,
}

var additionOps = map[TokenType]BinaryOp{
	TokenPlus:  OpAdd,
	TokenMinus: OpSub,
}

var multiplicationOps = map[TokenType]BinaryOp{
	TokenStar:    OpMul,
	TokenSlash:   OpDiv,
	TokenPercent: OpMod,
}

func (p *Parser) parseComparison() Expr {
	return p.parseBinaryLevel(comparisonOps, p.parseAddition)
}

func (p *Parser) parseAddition() Expr {
	return p.parseBinaryLevel(additionOps, p.parseMultiplication)
}

func (p *Parser) parseMultiplication() Expr {
	return p.parseBinaryLevel(multiplicationOps, p.parseUnary)
}

// parseBinaryLevel left-folds operands of one precedence level.
func (p *Parser) parseBinaryLevel(ops map[TokenType]BinaryOp, operand func() Expr) Expr {
	left := operand()
	for {
		op, ok := ops[p.curToken.Type]
		if !ok {
			return left
		}
		pos := p.curToken.Pos
		p.nextToken()
		right := operand()
		left = &Binary{PosVal: pos, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() Expr {
	if p.curTokenIs(TokenPlusPlus) || p.curTokenIs(TokenMinusMinus) {
		pos := p.curToken.Pos
		op := incDecOp(p.curToken.Type)
		p.nextToken()
		operand := p.parsePrimary()
		target := p.memberTarget(operand, "operand of "+op.String())
		return &IncDec{PosVal: pos, Target: target, Op: op, Prefix: true}
	}
	return p.parsePrimary()
}

func incDecOp(t TokenType) IncDecOp {
	if t == TokenMinusMinus {
		return Decrement
	}
	return Increment
}

// memberTarget checks that expr can be written: a member of a named host
// object. Deeper chains such as a.b.c are readable but not writable.
func (p *Parser) memberTarget(expr Expr, what string) *MemberAccess {
	m, ok := expr.(*MemberAccess)
	if !ok {
		p.errorAt(expr.Pos(), "%s must be a member access", what)
	}
	if _, ok := m.Target.(*Identifier); !ok {
		p.errorAt(expr.Pos(), "%s must be a member of a named object, not a nested chain", what)
	}
	return m
}

func (p *Parser) parsePrimary() Expr {
	tok := p.curToken
	var expr Expr

	switch tok.Type {
	case TokenNumber:
		n, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			p.errorf("number %s out of 32-bit range", tok.Literal)
		}
		p.nextToken()
		expr = &NumberLiteral{PosVal: tok.Pos, Value: int32(n)}

	case TokenString:
		p.nextToken()
		expr = &StringLiteral{PosVal: tok.Pos, Value: tok.Literal}

	case TokenIdentifier:
		p.nextToken()
		expr = &Identifier{PosVal: tok.Pos, Name: tok.Literal}

	case TokenLParen:
		p.nextToken()
		expr = p.parseExpression()
		if !p.curTokenIs(TokenRParen) {
			p.errorf("unterminated group: expected \")\", got %s", p.curToken)
		}
		p.nextToken()

	default:
		p.errorf("unexpected %s at start of expression", tok)
	}

	return p.parsePostfix(expr)
}

// parsePostfix applies member access, calls and postfix ++/--.
func (p *Parser) parsePostfix(expr Expr) Expr {
	for {
		switch p.curToken.Type {
		case TokenDot:
			p.nextToken()
			name := p.curToken
			if name.Type != TokenIdentifier {
				p.errorf("expected member name after \".\", got %s", name)
			}
			p.nextToken()
			expr = &MemberAccess{PosVal: name.Pos, Target: expr, Member: name.Literal}

		case TokenLParen:
			pos := p.curToken.Pos
			if _, ok := expr.(*MemberAccess); !ok {
				p.errorf("only methods can be called: callee must be a member access")
			}
			p.nextToken()
			args := p.parseArguments()
			expr = &Invocation{PosVal: pos, Callee: expr, Args: args}

		case TokenPlusPlus, TokenMinusMinus:
			pos := p.curToken.Pos
			op := incDecOp(p.curToken.Type)
			target := p.memberTarget(expr, "operand of "+op.String())
			p.nextToken()
			return &IncDec{PosVal: pos, Target: target, Op: op, Prefix: false}

		default:
			return expr
		}
	}
}

// parseArguments parses a comma-separated list up to and including ')'.
func (p *Parser) parseArguments() []Expr {
	var args []Expr
	if p.curTokenIs(TokenRParen) {
		p.nextToken()
		return args
	}
	for {
		args = append(args, p.parseExpression())
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	p.expect(TokenRParen, "after arguments")
	return args
}
