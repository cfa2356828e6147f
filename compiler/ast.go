package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for capscript
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes. Every expression, when
// lowered, leaves exactly one value on the VM stack.
type Expr interface {
	Node
	expr() // marker method
}

// NumberLiteral represents a 32-bit signed integer literal.
type NumberLiteral struct {
	PosVal Position
	Value  int32
}

func (n *NumberLiteral) Pos() Position { return n.PosVal }
func (n *NumberLiteral) node()         {}
func (n *NumberLiteral) expr()         {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	PosVal Position
	Value  string
}

func (n *StringLiteral) Pos() Position { return n.PosVal }
func (n *StringLiteral) node()         {}
func (n *StringLiteral) expr()         {}

// Identifier names a host object, resolved at run time.
type Identifier struct {
	PosVal Position
	Name   string
}

func (n *Identifier) Pos() Position { return n.PosVal }
func (n *Identifier) node()         {}
func (n *Identifier) expr()         {}

// MemberAccess represents target.Member.
type MemberAccess struct {
	PosVal Position
	Target Expr
	Member string
}

func (n *MemberAccess) Pos() Position { return n.PosVal }
func (n *MemberAccess) node()         {}
func (n *MemberAccess) expr()         {}

// Invocation represents callee(args...). Only member callees are valid.
type Invocation struct {
	PosVal Position
	Callee Expr
	Args   []Expr
}

func (n *Invocation) Pos() Position { return n.PosVal }
func (n *Invocation) node()         {}
func (n *Invocation) expr()         {}

// Assignment represents target.Member = Value. It evaluates to Value.
type Assignment struct {
	PosVal Position
	Target *MemberAccess
	Value  Expr
}

func (n *Assignment) Pos() Position { return n.PosVal }
func (n *Assignment) node()         {}
func (n *Assignment) expr()         {}

// IncDecOp is the operator of an IncDec expression.
type IncDecOp int

const (
	Increment IncDecOp = iota
	Decrement
)

func (op IncDecOp) String() string {
	if op == Decrement {
		return "--"
	}
	return "++"
}

// IncDec represents ++x.m, --x.m, x.m++ or x.m--.
type IncDec struct {
	PosVal Position
	Target *MemberAccess
	Op     IncDecOp
	Prefix bool
}

func (n *IncDec) Pos() Position { return n.PosVal }
func (n *IncDec) node()         {}
func (n *IncDec) expr()         {}

// BinaryOp is an arithmetic or comparison operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpGT
	OpLT
	OpGE
	OpLE
	OpEQ
	OpNE
)

var binaryOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpGT: ">", OpLT: "<", OpGE: ">=", OpLE: "<=", OpEQ: "==", OpNE: "!=",
}

func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// Binary represents Left Op Right.
type Binary struct {
	PosVal Position
	Left   Expr
	Op     BinaryOp
	Right  Expr
}

func (n *Binary) Pos() Position { return n.PosVal }
func (n *Binary) node()         {}
func (n *Binary) expr()         {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes. Every statement has a net
// stack effect of zero.
type Stmt interface {
	Node
	stmt() // marker method
}

// Print represents the built-in Print(expr) statement.
type Print struct {
	PosVal Position
	Arg    Expr
}

func (n *Print) Pos() Position { return n.PosVal }
func (n *Print) node()         {}
func (n *Print) stmt()         {}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	PosVal Position
	Expr   Expr
}

func (n *ExprStmt) Pos() Position { return n.PosVal }
func (n *ExprStmt) node()         {}
func (n *ExprStmt) stmt()         {}

// Block is a braced statement list. A lone ';' parses as an empty Block.
type Block struct {
	PosVal     Position
	Statements []Stmt
}

func (n *Block) Pos() Position { return n.PosVal }
func (n *Block) node()         {}
func (n *Block) stmt()         {}

// If represents if (Cond) Then [else Else]. Else may be nil.
type If struct {
	PosVal Position
	Cond   Expr
	Then   Stmt
	Else   Stmt
}

func (n *If) Pos() Position { return n.PosVal }
func (n *If) node()         {}
func (n *If) stmt()         {}

// While represents while (Cond) Body.
type While struct {
	PosVal Position
	Cond   Expr
	Body   Stmt
}

func (n *While) Pos() Position { return n.PosVal }
func (n *While) node()         {}
func (n *While) stmt()         {}

// For represents for (Init; Cond; Incr) Body. Init, Cond and Incr may be nil.
type For struct {
	PosVal Position
	Init   Stmt
	Cond   Expr
	Incr   Expr
	Body   Stmt
}

func (n *For) Pos() Position { return n.PosVal }
func (n *For) node()         {}
func (n *For) stmt()         {}
