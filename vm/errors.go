package vm

import (
	"errors"
	"fmt"
)

// Runtime fault kinds. Every RuntimeError wraps exactly one of these.
var (
	ErrObjectNotFound = errors.New("host object not found")
	ErrNotAccessible  = errors.New("member not accessible or not found")
	ErrNotWritable    = errors.New("member not writable or not found")
	ErrNoOverload     = errors.New("no accessible overload accepted the given arguments")
	ErrCoercion       = errors.New("value cannot be converted")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrUnknownLabel   = errors.New("unknown label")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrDivideByZero   = errors.New("division by zero")
	ErrStepLimit      = errors.New("step limit exceeded")
	ErrCancelled      = errors.New("execution cancelled")
)

// RuntimeError is a fault raised while executing a program. Execution stops
// at the faulting instruction; there is no resumption.
type RuntimeError struct {
	PC  int    // index of the faulting instruction, -1 before the first step
	Op  Opcode // faulting opcode
	Err error
}

func (e *RuntimeError) Error() string {
	if e.PC < 0 {
		return fmt.Sprintf("runtime error: %v", e.Err)
	}
	return fmt.Sprintf("runtime error at %d (%s): %v", e.PC, e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Arith applies an arithmetic or comparison opcode to two ints with Go's
// truncating int32 semantics. Comparisons yield 1 or 0. Shared by the
// interpreter and the constant folder so both agree on every result.
func Arith(op Opcode, a, b int32) (int32, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	case OpMod:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a % b, nil
	case OpLT:
		return boolInt(a < b), nil
	case OpGT:
		return boolInt(a > b), nil
	case OpLE:
		return boolInt(a <= b), nil
	case OpGE:
		return boolInt(a >= b), nil
	case OpEQ:
		return boolInt(a == b), nil
	case OpNE:
		return boolInt(a != b), nil
	}
	return 0, fmt.Errorf("%w: %s is not an arithmetic opcode", ErrUnknownOpcode, op)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
