package vm

import (
	"context"
	"io"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// VM: The capscript Virtual Machine
// ---------------------------------------------------------------------------

// DefaultCheckInterval is the number of steps between context checks.
const DefaultCheckInterval = 1024

var log = commonlog.GetLogger("capscript.vm")

// VM executes programs against host objects. A VM holds only configuration;
// each Execute call gets its own Interpreter, so one VM may serve
// concurrent executions as long as their host objects are not shared.
type VM struct {
	registry      *HostRegistry
	out           Emitter
	stepLimit     int64
	checkInterval int64
}

// Option configures a VM.
type Option func(*VM)

// WithOutput sets the sink for CALL_PRINT.
func WithOutput(out Emitter) Option {
	return func(vm *VM) {
		if out != nil {
			vm.out = out
		}
	}
}

// WithStepLimit bounds the number of instructions one execution may run.
// Zero means unbounded.
func WithStepLimit(n int64) Option {
	return func(vm *VM) { vm.stepLimit = n }
}

// WithCheckInterval sets how many steps run between context checks.
func WithCheckInterval(n int) Option {
	return func(vm *VM) {
		if n > 0 {
			vm.checkInterval = int64(n)
		}
	}
}

// New creates a VM that resolves host capabilities through registry.
func New(registry *HostRegistry, opts ...Option) *VM {
	if registry == nil {
		registry = NewHostRegistry()
	}
	vm := &VM{
		registry:      registry,
		out:           NewWriterEmitter(io.Discard),
		checkInterval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Registry returns the host registry.
func (vm *VM) Registry() *HostRegistry {
	return vm.registry
}

// Execute runs program to completion or to the first fault. Output goes to
// the VM's emitter; host objects are looked up through host on every
// LOAD_OBJECT. The returned error is a *RuntimeError.
func (vm *VM) Execute(ctx context.Context, program *Program, host Resolver) error {
	_, err := vm.ExecuteWithStats(ctx, program, host)
	return err
}

// ExecuteWithStats is Execute that also reports the number of steps run.
func (vm *VM) ExecuteWithStats(ctx context.Context, program *Program, host Resolver) (int64, error) {
	interp, err := newInterpreter(vm, program, host)
	if err != nil {
		return 0, err
	}
	if err := interp.run(ctx); err != nil {
		log.Debugf("execution stopped after %d steps: %v", interp.steps, err)
		return interp.steps, err
	}
	return interp.steps, nil
}
