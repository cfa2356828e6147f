package vm

import (
	"context"
	"fmt"
)

// ---------------------------------------------------------------------------
// Interpreter: per-execution state
// ---------------------------------------------------------------------------

// Interpreter holds the state of one execution: the operand stack, the
// label index and the program counter. It is never shared.
type Interpreter struct {
	vm      *VM
	program *Program
	host    Resolver

	stack  []Value
	labels map[string]int
	pc     int
	steps  int64
}

func newInterpreter(vm *VM, program *Program, host Resolver) (*Interpreter, error) {
	if host == nil {
		host = Objects(nil)
	}
	labels, err := linkLabels(program)
	if err != nil {
		return nil, &RuntimeError{PC: -1, Err: err}
	}
	return &Interpreter{
		vm:      vm,
		program: program,
		host:    host,
		stack:   make([]Value, 0, 16),
		labels:  labels,
	}, nil
}

// linkLabels scans the program once, mapping each label to its index and
// checking that every jump has a target.
func linkLabels(program *Program) (map[string]int, error) {
	labels := make(map[string]int)
	for i, in := range program.Instructions {
		if in.Op != OpLabel {
			continue
		}
		if _, dup := labels[in.Str]; dup {
			return nil, fmt.Errorf("%w: %q defined twice", ErrUnknownLabel, in.Str)
		}
		labels[in.Str] = i
	}
	for i, in := range program.Instructions {
		if in.Op != OpJump && in.Op != OpJumpIfFalse {
			continue
		}
		if _, ok := labels[in.Str]; !ok {
			return nil, fmt.Errorf("%w: %q referenced at %d", ErrUnknownLabel, in.Str, i)
		}
	}
	return labels, nil
}

// ---------------------------------------------------------------------------
// Stack operations
// ---------------------------------------------------------------------------

func (i *Interpreter) push(v Value) {
	i.stack = append(i.stack, v)
}

func (i *Interpreter) pop() (Value, error) {
	n := len(i.stack)
	if n == 0 {
		return Null, ErrStackUnderflow
	}
	v := i.stack[n-1]
	i.stack[n-1] = Null
	i.stack = i.stack[:n-1]
	return v, nil
}

func (i *Interpreter) popInt() (int32, error) {
	v, err := i.pop()
	if err != nil {
		return 0, err
	}
	n, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("%w: expected int, got %s", ErrTypeMismatch, v.Kind())
	}
	return n, nil
}

// popObject pops a host object together with its capability table.
func (i *Interpreter) popObject() (any, *HostType, error) {
	v, err := i.pop()
	if err != nil {
		return nil, nil, err
	}
	if v.Kind() != KindObject {
		return nil, nil, fmt.Errorf("%w: expected host object, got %s", ErrTypeMismatch, v.Kind())
	}
	obj := v.Object()
	t := i.vm.registry.Lookup(obj)
	if t == nil {
		return nil, nil, fmt.Errorf("%w: no capability table for %T", ErrNotAccessible, obj)
	}
	return obj, t, nil
}

// ---------------------------------------------------------------------------
// Execution loop
// ---------------------------------------------------------------------------

func (i *Interpreter) run(ctx context.Context) error {
	code := i.program.Instructions
	for i.pc < len(code) {
		if i.vm.stepLimit > 0 && i.steps >= i.vm.stepLimit {
			return i.fault(code[i.pc].Op, fmt.Errorf("%w (%d)", ErrStepLimit, i.vm.stepLimit))
		}
		if i.steps%i.vm.checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return i.fault(code[i.pc].Op, fmt.Errorf("%w: %w", ErrCancelled, err))
			}
		}
		i.steps++

		in := code[i.pc]
		target, jumped, err := i.step(in)
		if err != nil {
			return i.fault(in.Op, err)
		}
		if jumped {
			i.pc = target
		} else {
			i.pc++
		}
	}
	return nil
}

func (i *Interpreter) fault(op Opcode, err error) error {
	return &RuntimeError{PC: i.pc, Op: op, Err: err}
}

// step executes one instruction. When jumped is true, target is the index
// of the next instruction.
func (i *Interpreter) step(in Instruction) (target int, jumped bool, err error) {
	if in.Op.IsArithmetic() || in.Op.IsComparison() {
		return 0, false, i.binary(in.Op)
	}

	switch in.Op {
	case OpPushInt:
		i.push(Int(in.Int))

	case OpPushString:
		i.push(String(in.Str))

	case OpPop:
		if _, err := i.pop(); err != nil {
			return 0, false, err
		}

	case OpLoadObject:
		obj, ok := i.host.GetObject(in.Str)
		if !ok || obj == nil {
			return 0, false, fmt.Errorf("%w: %q", ErrObjectNotFound, in.Str)
		}
		i.push(Object(obj))

	case OpGetProperty:
		obj, t, err := i.popObject()
		if err != nil {
			return 0, false, err
		}
		v, err := t.Get(obj, in.Str)
		if err != nil {
			return 0, false, err
		}
		i.push(v)

	case OpSetProperty:
		v, err := i.pop()
		if err != nil {
			return 0, false, err
		}
		obj, t, err := i.popObject()
		if err != nil {
			return 0, false, err
		}
		if err := t.Set(obj, in.Str, v); err != nil {
			return 0, false, err
		}
		i.push(v)

	case OpPreIncrement, OpPreDecrement, OpPostIncrement, OpPostDecrement:
		if err := i.incDec(in); err != nil {
			return 0, false, err
		}

	case OpCallMethod:
		if err := i.callMethod(in.Call()); err != nil {
			return 0, false, err
		}

	case OpCallPrint:
		v, err := i.pop()
		if err != nil {
			return 0, false, err
		}
		if err := i.vm.out.Emit(v); err != nil {
			return 0, false, fmt.Errorf("emit: %w", err)
		}

	case OpJump:
		return i.labels[in.Str], true, nil

	case OpJumpIfFalse:
		cond, err := i.popInt()
		if err != nil {
			return 0, false, err
		}
		if cond == 0 {
			return i.labels[in.Str], true, nil
		}

	case OpLabel:
		// marker only

	default:
		return 0, false, fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(in.Op))
	}
	return 0, false, nil
}

// binary pops two ints and pushes the result of an arithmetic or
// comparison opcode.
func (i *Interpreter) binary(op Opcode) error {
	b, err := i.popInt()
	if err != nil {
		return err
	}
	a, err := i.popInt()
	if err != nil {
		return err
	}
	r, err := Arith(op, a, b)
	if err != nil {
		return err
	}
	i.push(Int(r))
	return nil
}

// incDec reads an int member, stores it plus or minus one, and pushes the
// new value (prefix) or the prior value (postfix).
func (i *Interpreter) incDec(in Instruction) error {
	obj, t, err := i.popObject()
	if err != nil {
		return err
	}
	cur, err := t.Get(obj, in.Str)
	if err != nil {
		return err
	}
	old, err := Coerce(cur, TypeInt)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", t.Name, in.Str, err)
	}

	delta := int32(1)
	if in.Op == OpPreDecrement || in.Op == OpPostDecrement {
		delta = -1
	}
	updated := Int(old.Int() + delta)
	if err := t.Set(obj, in.Str, updated); err != nil {
		return err
	}

	if in.Op == OpPreIncrement || in.Op == OpPreDecrement {
		i.push(updated)
	} else {
		i.push(old)
	}
	return nil
}

func (i *Interpreter) callMethod(call MethodCallInfo) error {
	if call.ArgCount < 0 || call.ArgCount > len(i.stack) {
		return ErrStackUnderflow
	}
	args := make([]Value, call.ArgCount)
	for n := call.ArgCount - 1; n >= 0; n-- {
		v, err := i.pop()
		if err != nil {
			return err
		}
		args[n] = v
	}
	obj, t, err := i.popObject()
	if err != nil {
		return err
	}
	result, err := t.Call(obj, call.Name, args)
	if err != nil {
		return err
	}
	i.push(result)
	return nil
}
