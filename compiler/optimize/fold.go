package optimize

import "github.com/chazu/capscript/vm"

// ConstantFolding replaces each PUSH_INT a, PUSH_INT b, <arith> triple with
// PUSH_INT of the result. It scans left to right once and does not revisit
// a folded result, so 1 + 2 + 3 folds to 3 + 3 in one run; wrap it in
// FixedPoint to fold chains completely. Comparisons are left alone.
type ConstantFolding struct{}

// Name implements Pass.
func (ConstantFolding) Name() string { return "constant-fold" }

// Run implements Pass. A literal division or modulo by zero is a
// *CompileError wrapping vm.ErrDivideByZero.
func (f ConstantFolding) Run(program *vm.Program) (*vm.Program, error) {
	in := program.Instructions
	out := make([]vm.Instruction, 0, len(in))

	for i := 0; i < len(in); i++ {
		if i+2 < len(in) &&
			in[i].Op == vm.OpPushInt &&
			in[i+1].Op == vm.OpPushInt &&
			in[i+2].Op.IsArithmetic() {
			result, err := vm.Arith(in[i+2].Op, in[i].Int, in[i+1].Int)
			if err != nil {
				return nil, &CompileError{Pass: f.Name(), Index: i + 2, Op: in[i+2].Op, Err: err}
			}
			out = append(out, vm.PushInt(result))
			i += 2
			continue
		}
		out = append(out, in[i])
	}

	return vm.NewProgram(out...), nil
}
