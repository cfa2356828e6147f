package optimize

import (
	"errors"
	"testing"

	"github.com/chazu/capscript/vm"
)

func op(o vm.Opcode) vm.Instruction { return vm.Simple(o) }

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		name string
		in   []vm.Instruction
		want []vm.Instruction
	}{
		{
			"add",
			[]vm.Instruction{vm.PushInt(2), vm.PushInt(3), op(vm.OpAdd), op(vm.OpCallPrint)},
			[]vm.Instruction{vm.PushInt(5), op(vm.OpCallPrint)},
		},
		{
			"truncating division",
			[]vm.Instruction{vm.PushInt(-7), vm.PushInt(2), op(vm.OpDiv)},
			[]vm.Instruction{vm.PushInt(-3)},
		},
		{
			"modulo",
			[]vm.Instruction{vm.PushInt(-7), vm.PushInt(2), op(vm.OpMod)},
			[]vm.Instruction{vm.PushInt(-1)},
		},
		{
			// 2 + 3 * 4 lowers to 2 3 4 MUL ADD; only 3 4 MUL is a triple
			"nested right operand",
			[]vm.Instruction{vm.PushInt(2), vm.PushInt(3), vm.PushInt(4), op(vm.OpMul), op(vm.OpAdd)},
			[]vm.Instruction{vm.PushInt(2), vm.PushInt(12), op(vm.OpAdd)},
		},
		{
			// 1 + 2 + 3 lowers to 1 2 ADD 3 ADD; the folded 3 is not revisited
			"single pass left chain",
			[]vm.Instruction{vm.PushInt(1), vm.PushInt(2), op(vm.OpAdd), vm.PushInt(3), op(vm.OpAdd)},
			[]vm.Instruction{vm.PushInt(3), vm.PushInt(3), op(vm.OpAdd)},
		},
		{
			"comparison untouched",
			[]vm.Instruction{vm.PushInt(1), vm.PushInt(2), op(vm.OpLT)},
			[]vm.Instruction{vm.PushInt(1), vm.PushInt(2), op(vm.OpLT)},
		},
		{
			"label breaks adjacency",
			[]vm.Instruction{vm.PushInt(1), vm.Named(vm.OpLabel, "l"), vm.PushInt(2), op(vm.OpAdd)},
			[]vm.Instruction{vm.PushInt(1), vm.Named(vm.OpLabel, "l"), vm.PushInt(2), op(vm.OpAdd)},
		},
		{
			"host operand untouched",
			[]vm.Instruction{vm.PushInt(4), vm.Named(vm.OpLoadObject, "obj"), vm.Named(vm.OpGetProperty, "Zero"), op(vm.OpDiv)},
			[]vm.Instruction{vm.PushInt(4), vm.Named(vm.OpLoadObject, "obj"), vm.Named(vm.OpGetProperty, "Zero"), op(vm.OpDiv)},
		},
		{
			"empty",
			nil,
			nil,
		},
	}

	for _, tc := range tests {
		in := vm.NewProgram(tc.in...)
		before := in.Clone()
		got, err := ConstantFolding{}.Run(in)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if !got.Equal(vm.NewProgram(tc.want...)) {
			t.Errorf("%s: got\n%s\nwant\n%s", tc.name, got.Disassemble(), vm.NewProgram(tc.want...).Disassemble())
		}
		if !in.Equal(before) {
			t.Errorf("%s: input was modified", tc.name)
		}
	}
}

func TestConstantFoldingDivideByZero(t *testing.T) {
	for _, o := range []vm.Opcode{vm.OpDiv, vm.OpMod} {
		p := vm.NewProgram(vm.PushInt(4), vm.PushInt(0), op(o), op(vm.OpCallPrint))
		_, err := ConstantFolding{}.Run(p)
		var cerr *CompileError
		if !errors.As(err, &cerr) {
			t.Fatalf("%s: err = %v, want *CompileError", o, err)
		}
		if !errors.Is(err, vm.ErrDivideByZero) {
			t.Errorf("%s: err = %v, want ErrDivideByZero", o, err)
		}
		if cerr.Index != 2 || cerr.Op != o || cerr.Pass != "constant-fold" {
			t.Errorf("%s: CompileError = %+v", o, cerr)
		}
	}
}

func TestFixedPointFoldsChains(t *testing.T) {
	p := vm.NewProgram(
		vm.PushInt(1), vm.PushInt(2), op(vm.OpAdd),
		vm.PushInt(3), op(vm.OpAdd),
		vm.PushInt(4), op(vm.OpMul),
		op(vm.OpCallPrint),
	)
	got, err := FixedPoint(ConstantFolding{}).Run(p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := vm.NewProgram(vm.PushInt(24), op(vm.OpCallPrint))
	if !got.Equal(want) {
		t.Errorf("got\n%s\nwant\n%s", got.Disassemble(), want.Disassemble())
	}
}
