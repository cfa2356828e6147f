package optimize

import (
	"fmt"

	"github.com/chazu/capscript/vm"
)

// CompileError reports a program a pass refuses to rewrite, such as a
// constant division by zero. The whole compilation fails with it.
type CompileError struct {
	Pass  string    // name of the failing pass
	Index int       // index of the offending instruction in the pass input
	Op    vm.Opcode // offending opcode
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error: %s at %d (%s): %v", e.Pass, e.Index, e.Op, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
