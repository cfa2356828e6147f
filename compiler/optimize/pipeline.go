package optimize

import (
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/capscript/vm"
)

// Pass is one program rewrite. Run must not modify its input.
type Pass interface {
	Name() string
	Run(program *vm.Program) (*vm.Program, error)
}

// Pipeline runs passes in declared order, feeding each the previous output.
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates a pipeline of the given passes.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Default returns the standard pipeline: constant folding, run once.
func Default() *Pipeline {
	return NewPipeline(ConstantFolding{})
}

// Passes returns the pass names in order.
func (p *Pipeline) Passes() []string {
	names := make([]string, len(p.passes))
	for i, pass := range p.passes {
		names[i] = pass.Name()
	}
	return names
}

func (p *Pipeline) String() string {
	return strings.Join(p.Passes(), ",")
}

// Run applies every pass. The first error stops the pipeline.
func (p *Pipeline) Run(program *vm.Program) (*vm.Program, error) {
	for _, pass := range p.passes {
		next, err := pass.Run(program)
		if err != nil {
			return nil, err
		}
		program = next
	}
	return program, nil
}

// ---------------------------------------------------------------------------
// FixedPoint
// ---------------------------------------------------------------------------

type fixedPoint struct {
	pass Pass
}

// FixedPoint repeats pass until its output stops changing.
func FixedPoint(pass Pass) Pass {
	return fixedPoint{pass: pass}
}

func (f fixedPoint) Name() string {
	return "fixed-point(" + f.pass.Name() + ")"
}

func (f fixedPoint) Run(program *vm.Program) (*vm.Program, error) {
	// A shrinking pass settles within Len()+1 rounds.
	limit := program.Len() + 1
	for round := 0; round < limit; round++ {
		next, err := f.pass.Run(program)
		if err != nil {
			return nil, err
		}
		if next.Equal(program) {
			return next, nil
		}
		program = next
	}
	return program, nil
}

// ---------------------------------------------------------------------------
// Pass lookup by name
// ---------------------------------------------------------------------------

var knownPasses = map[string]func() Pass{
	ConstantFolding{}.Name(): func() Pass { return ConstantFolding{} },
}

// KnownPasses returns the names accepted by FromNames.
func KnownPasses() []string {
	names := make([]string, 0, len(knownPasses))
	for name := range knownPasses {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// FromNames builds a pipeline from configured pass names. With repeat
// set, every pass is wrapped in FixedPoint.
func FromNames(names []string, repeat bool) (*Pipeline, error) {
	passes := make([]Pass, 0, len(names))
	for _, name := range names {
		ctor, ok := knownPasses[name]
		if !ok {
			return nil, fmt.Errorf("optimize: unknown pass %q", name)
		}
		pass := ctor()
		if repeat {
			pass = FixedPoint(pass)
		}
		passes = append(passes, pass)
	}
	return NewPipeline(passes...), nil
}
