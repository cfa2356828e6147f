package vm

import (
	"fmt"
	"slices"
	"strconv"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
type Opcode byte

// Stack Operations
const (
	OpPop Opcode = 0x01 // discard top of stack
)

// Push Constants
const (
	OpPushInt    Opcode = 0x14 // push 32-bit signed integer
	OpPushString Opcode = 0x16 // push string literal
)

// Host Access
const (
	OpLoadObject  Opcode = 0x22 // push host object resolved by name
	OpGetProperty Opcode = 0x23 // replace object on top with member value
	OpSetProperty Opcode = 0x24 // pop value and object, store, push value
)

// Calls
const (
	OpCallMethod Opcode = 0x30 // pop args and object, invoke, push result
	OpCallPrint  Opcode = 0x31 // pop and emit
)

// Arithmetic and Comparison (pop two ints, push one)
const (
	OpAdd Opcode = 0x40
	OpSub Opcode = 0x41
	OpMul Opcode = 0x42
	OpDiv Opcode = 0x43
	OpMod Opcode = 0x44
	OpLT  Opcode = 0x45
	OpGT  Opcode = 0x46
	OpLE  Opcode = 0x47
	OpGE  Opcode = 0x48
	OpEQ  Opcode = 0x49
	OpNE  Opcode = 0x4A
)

// Increment / Decrement of a host member (pop object, push int)
const (
	OpPreIncrement  Opcode = 0x50
	OpPreDecrement  Opcode = 0x51
	OpPostIncrement Opcode = 0x52
	OpPostDecrement Opcode = 0x53
)

// Control Flow
const (
	OpJump        Opcode = 0x60 // unconditional jump to label
	OpJumpIfFalse Opcode = 0x62 // pop int, jump to label if zero
	OpLabel       Opcode = 0x6F // jump target marker, no-op at run time
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OperandKind says which operand field an instruction carries.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandInt
	OperandString
	OperandCall
)

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name        string      // human-readable name
	Operand     OperandKind // operand carried by the instruction
	StackEffect int         // net effect on stack (OpCallMethod: -argc)
}

// opcodeTable maps opcodes to their metadata.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpPop: {"POP", OperandNone, -1},

	OpPushInt:    {"PUSH_INT", OperandInt, 1},
	OpPushString: {"PUSH_STRING", OperandString, 1},

	OpLoadObject:  {"LOAD_OBJECT", OperandString, 1},
	OpGetProperty: {"GET_PROPERTY", OperandString, 0},
	OpSetProperty: {"SET_PROPERTY", OperandString, -1},

	OpCallMethod: {"CALL_METHOD", OperandCall, 0},
	OpCallPrint:  {"CALL_PRINT", OperandNone, -1},

	OpAdd: {"ADD", OperandNone, -1},
	OpSub: {"SUB", OperandNone, -1},
	OpMul: {"MUL", OperandNone, -1},
	OpDiv: {"DIV", OperandNone, -1},
	OpMod: {"MOD", OperandNone, -1},
	OpLT:  {"LT", OperandNone, -1},
	OpGT:  {"GT", OperandNone, -1},
	OpLE:  {"LE", OperandNone, -1},
	OpGE:  {"GE", OperandNone, -1},
	OpEQ:  {"EQ", OperandNone, -1},
	OpNE:  {"NE", OperandNone, -1},

	OpPreIncrement:  {"PRE_INC", OperandString, 0},
	OpPreDecrement:  {"PRE_DEC", OperandString, 0},
	OpPostIncrement: {"POST_INC", OperandString, 0},
	OpPostDecrement: {"POST_DEC", OperandString, 0},

	OpJump:        {"JUMP", OperandString, 0},
	OpJumpIfFalse: {"JUMP_IF_FALSE", OperandString, -1},
	OpLabel:       {"LABEL", OperandString, 0},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op))}
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

func (op Opcode) String() string {
	return op.Info().Name
}

// IsArithmetic reports whether op is one of ADD, SUB, MUL, DIV, MOD.
func (op Opcode) IsArithmetic() bool {
	return op >= OpAdd && op <= OpMod
}

// IsComparison reports whether op compares two ints and pushes 1 or 0.
func (op Opcode) IsComparison() bool {
	return op >= OpLT && op <= OpNE
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// MethodCallInfo is the operand of OpCallMethod.
type MethodCallInfo struct {
	Name     string
	ArgCount int
}

func (m MethodCallInfo) String() string {
	return m.Name + "/" + strconv.Itoa(m.ArgCount)
}

// Instruction is a single opcode plus its operand. Which operand field is
// meaningful is determined by Op.Info().Operand. Instructions are values and
// compare with ==.
type Instruction struct {
	Op   Opcode `cbor:"1,keyasint"`
	Int  int32  `cbor:"2,keyasint,omitempty"`
	Str  string `cbor:"3,keyasint,omitempty"` // literal, label, object, member or method name
	Argc int    `cbor:"4,keyasint,omitempty"`
}

// Simple returns an instruction without an operand.
func Simple(op Opcode) Instruction {
	return Instruction{Op: op}
}

// PushInt returns a PUSH_INT instruction.
func PushInt(n int32) Instruction {
	return Instruction{Op: OpPushInt, Int: n}
}

// PushString returns a PUSH_STRING instruction.
func PushString(s string) Instruction {
	return Instruction{Op: OpPushString, Str: s}
}

// Named returns an instruction whose operand is a name (label, object or member).
func Named(op Opcode, name string) Instruction {
	return Instruction{Op: op, Str: name}
}

// CallMethod returns a CALL_METHOD instruction.
func CallMethod(name string, argc int) Instruction {
	return Instruction{Op: OpCallMethod, Str: name, Argc: argc}
}

// Call returns the method call operand of a CALL_METHOD instruction.
func (in Instruction) Call() MethodCallInfo {
	return MethodCallInfo{Name: in.Str, ArgCount: in.Argc}
}

func (in Instruction) String() string {
	switch in.Op.Info().Operand {
	case OperandInt:
		return fmt.Sprintf("%s %d", in.Op, in.Int)
	case OperandString:
		if in.Op == OpPushString {
			return fmt.Sprintf("%s %q", in.Op, in.Str)
		}
		return fmt.Sprintf("%s %s", in.Op, in.Str)
	case OperandCall:
		return fmt.Sprintf("%s %s", in.Op, in.Call())
	default:
		return in.Op.String()
	}
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is an ordered instruction sequence. It is append-only while being
// generated; once handed to the optimizer or cache it is treated as immutable
// and passes build new programs instead of editing in place.
type Program struct {
	Instructions []Instruction `cbor:"1,keyasint"`
}

// NewProgram creates a program from the given instructions.
func NewProgram(ins ...Instruction) *Program {
	return &Program{Instructions: ins}
}

// Append adds instructions to the end of the program.
func (p *Program) Append(ins ...Instruction) {
	p.Instructions = append(p.Instructions, ins...)
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Equal reports whether two programs have the same instruction sequence.
func (p *Program) Equal(other *Program) bool {
	if p == nil || other == nil {
		return p == other
	}
	return slices.Equal(p.Instructions, other.Instructions)
}

// Clone returns a copy that shares no backing storage with p.
func (p *Program) Clone() *Program {
	return &Program{Instructions: slices.Clone(p.Instructions)}
}
