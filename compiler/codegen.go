package compiler

import (
	"fmt"

	"github.com/chazu/capscript/vm"
)

// ---------------------------------------------------------------------------
// Codegen: Lower AST to stack bytecode
// ---------------------------------------------------------------------------

// Generator lowers statements to stack bytecode. Its label counter runs for
// the lifetime of the Generator, so one Generator must be used for every
// top-level statement of a source text to keep labels unique.
type Generator struct {
	labelCounter int
	program      *vm.Program
}

// NewGenerator creates a new generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate lowers one statement into a new program. The result has a net
// stack effect of zero.
func (g *Generator) Generate(stmt Stmt) (prog *vm.Program, err error) {
	g.program = vm.NewProgram()
	defer func() {
		g.program = nil
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	g.genStmt(stmt)
	return g.program, nil
}

func (g *Generator) label(prefix string) string {
	name := fmt.Sprintf("%s_%d", prefix, g.labelCounter)
	g.labelCounter++
	return name
}

func (g *Generator) emit(ins ...vm.Instruction) {
	g.program.Append(ins...)
}

func (g *Generator) emitOp(op vm.Opcode) {
	g.emit(vm.Simple(op))
}

func (g *Generator) emitNamed(op vm.Opcode, name string) {
	g.emit(vm.Named(op, name))
}

func (g *Generator) errorf(n Node, format string, args ...any) {
	panic(bailout{&GenerateError{Pos: n.Pos(), Msg: fmt.Sprintf(format, args...)}})
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *Generator) genStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *Print:
		g.genExpr(s.Arg)
		g.emitOp(vm.OpCallPrint)

	case *ExprStmt:
		g.genExpr(s.Expr)
		g.emitOp(vm.OpPop)

	case *Block:
		for _, inner := range s.Statements {
			g.genStmt(inner)
		}

	case *If:
		g.genIf(s)

	case *While:
		start := g.label("while_start")
		end := g.label("while_end")
		g.emitNamed(vm.OpLabel, start)
		g.genExpr(s.Cond)
		g.emitNamed(vm.OpJumpIfFalse, end)
		g.genStmt(s.Body)
		g.emitNamed(vm.OpJump, start)
		g.emitNamed(vm.OpLabel, end)

	case *For:
		g.genFor(s)

	case nil:
		panic(bailout{&GenerateError{Msg: "nil statement"}})

	default:
		g.errorf(stmt, "unsupported statement %T", stmt)
	}
}

func (g *Generator) genIf(s *If) {
	elseLabel := g.label("else")
	endLabel := g.label("if_end")

	g.genExpr(s.Cond)
	if s.Else == nil {
		elseLabel = endLabel
	}
	g.emitNamed(vm.OpJumpIfFalse, elseLabel)
	g.genStmt(s.Then)
	if s.Else != nil {
		g.emitNamed(vm.OpJump, endLabel)
		g.emitNamed(vm.OpLabel, elseLabel)
		g.genStmt(s.Else)
	}
	g.emitNamed(vm.OpLabel, endLabel)
}

// genFor emits a continue label after the body. No instruction jumps to it
// yet; it marks where a continue statement would land.
func (g *Generator) genFor(s *For) {
	start := g.label("for_start")
	end := g.label("for_end")
	cont := g.label("for_continue")

	if s.Init != nil {
		g.genStmt(s.Init)
	}
	g.emitNamed(vm.OpLabel, start)
	if s.Cond != nil {
		g.genExpr(s.Cond)
		g.emitNamed(vm.OpJumpIfFalse, end)
	}
	g.genStmt(s.Body)
	g.emitNamed(vm.OpLabel, cont)
	if s.Incr != nil {
		g.genExpr(s.Incr)
		g.emitOp(vm.OpPop)
	}
	g.emitNamed(vm.OpJump, start)
	g.emitNamed(vm.OpLabel, end)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

var binaryOpcodes = map[BinaryOp]vm.Opcode{
	OpAdd: vm.OpAdd,
	OpSub: vm.OpSub,
	OpMul: vm.OpMul,
	OpDiv: vm.OpDiv,
	OpMod: vm.OpMod,
	OpGT:  vm.OpGT,
	OpLT:  vm.OpLT,
	OpGE:  vm.OpGE,
	OpLE:  vm.OpLE,
	OpEQ:  vm.OpEQ,
	OpNE:  vm.OpNE,
}

func (g *Generator) genExpr(expr Expr) {
	switch e := expr.(type) {
	case *NumberLiteral:
		g.emit(vm.PushInt(e.Value))

	case *StringLiteral:
		g.emit(vm.PushString(e.Value))

	case *Identifier:
		g.emitNamed(vm.OpLoadObject, e.Name)

	case *MemberAccess:
		g.genExpr(e.Target)
		g.emitNamed(vm.OpGetProperty, e.Member)

	case *Assignment:
		if e.Target == nil {
			g.errorf(e, "assignment without a target")
		}
		g.genExpr(e.Target.Target)
		g.genExpr(e.Value)
		g.emitNamed(vm.OpSetProperty, e.Target.Member)

	case *IncDec:
		if e.Target == nil {
			g.errorf(e, "%s without a target", e.Op)
		}
		g.genExpr(e.Target.Target)
		g.emitNamed(incDecOpcode(e.Op, e.Prefix), e.Target.Member)

	case *Invocation:
		callee, ok := e.Callee.(*MemberAccess)
		if !ok {
			g.errorf(e, "callee must be a member access, got %T", e.Callee)
		}
		g.genExpr(callee.Target)
		for _, arg := range e.Args {
			g.genExpr(arg)
		}
		g.emit(vm.CallMethod(callee.Member, len(e.Args)))

	case *Binary:
		op, ok := binaryOpcodes[e.Op]
		if !ok {
			g.errorf(e, "unknown operator %s", e.Op)
		}
		g.genExpr(e.Left)
		g.genExpr(e.Right)
		g.emitOp(op)

	case nil:
		panic(bailout{&GenerateError{Msg: "nil expression"}})

	default:
		g.errorf(expr, "unsupported expression %T", expr)
	}
}

func incDecOpcode(op IncDecOp, prefix bool) vm.Opcode {
	switch {
	case op == Increment && prefix:
		return vm.OpPreIncrement
	case op == Increment:
		return vm.OpPostIncrement
	case prefix:
		return vm.OpPreDecrement
	default:
		return vm.OpPostDecrement
	}
}
