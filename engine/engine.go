// Package engine is the compile-and-run entry point for capscript. An Engine
// owns its program cache, optional persistent store, optimizer pipeline and
// VM configuration; nothing is shared between engines.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/capscript/compiler"
	"github.com/chazu/capscript/compiler/hash"
	"github.com/chazu/capscript/compiler/optimize"
	"github.com/chazu/capscript/manifest"
	"github.com/chazu/capscript/vm"
)

var log = commonlog.GetLogger("capscript.engine")

// Engine compiles source text, caches the result and runs it.
type Engine struct {
	vm        *vm.VM
	pipeline  *optimize.Pipeline
	cache     *Cache
	store     *Store
	ownsStore bool

	registry      *vm.HostRegistry
	vmOpts        []vm.Option
	cacheDisabled bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry sets the host capability registry.
func WithRegistry(r *vm.HostRegistry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithOutput sets the sink for Print.
func WithOutput(out vm.Emitter) Option {
	return func(e *Engine) { e.vmOpts = append(e.vmOpts, vm.WithOutput(out)) }
}

// WithStepLimit bounds each execution. Zero means unbounded.
func WithStepLimit(n int64) Option {
	return func(e *Engine) { e.vmOpts = append(e.vmOpts, vm.WithStepLimit(n)) }
}

// WithCheckInterval sets the steps between context checks.
func WithCheckInterval(n int) Option {
	return func(e *Engine) { e.vmOpts = append(e.vmOpts, vm.WithCheckInterval(n)) }
}

// WithPipeline replaces the default optimizer pipeline.
func WithPipeline(p *optimize.Pipeline) Option {
	return func(e *Engine) {
		if p != nil {
			e.pipeline = p
		}
	}
}

// WithoutCache makes every Compile parse and generate afresh.
func WithoutCache() Option {
	return func(e *Engine) { e.cacheDisabled = true }
}

// WithStore backs the cache with a persistent store. The caller keeps
// ownership and must close it.
func WithStore(s *Store) Option {
	return func(e *Engine) { e.store = s }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{pipeline: optimize.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if !e.cacheDisabled {
		e.cache = NewCache()
	}
	e.vm = vm.New(e.registry, e.vmOpts...)
	return e
}

// NewFromConfig creates an engine configured by m. Options are applied
// after the configuration, so they can supply the registry and output. The
// engine owns any store it opens; call Close to release it.
func NewFromConfig(m *manifest.Manifest, opts ...Option) (*Engine, error) {
	if m == nil {
		m = manifest.Default()
	}

	pipeline, err := optimize.FromNames(m.Optimizer.Passes, m.Optimizer.FixedPoint)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithPipeline(pipeline),
		WithStepLimit(m.Engine.StepLimit),
		WithCheckInterval(m.Engine.CheckInterval),
	}
	if !m.Cache.Enabled {
		base = append(base, WithoutCache())
	}

	var store *Store
	if path := m.StorePath(); path != "" {
		store, err = OpenStore(path)
		if err != nil {
			return nil, fmt.Errorf("program store: %w", err)
		}
		base = append(base, WithStore(store))
	}

	e := New(append(base, opts...)...)
	e.ownsStore = store != nil && e.store == store
	if store != nil && !e.ownsStore {
		store.Close()
	}
	return e, nil
}

// VM returns the engine's virtual machine.
func (e *Engine) VM() *vm.VM {
	return e.vm
}

// Pipeline returns the optimizer pipeline.
func (e *Engine) Pipeline() *optimize.Pipeline {
	return e.pipeline
}

// Compile returns the optimized program for source. Identical source text
// is compiled once per engine; the returned program is shared and must not
// be modified.
func (e *Engine) Compile(source string) (*vm.Program, error) {
	if e.cache == nil {
		return e.compile(source)
	}
	program, hit, err := e.cache.GetOrCompile(source, func() (*vm.Program, error) {
		return e.compile(source)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		log.Debugf("cache hit %s (%d instructions)", hash.SourceKey(source), program.Len())
	}
	return program, nil
}

// compile consults the store, then falls back to a full compile whose
// result is saved back to the store.
func (e *Engine) compile(source string) (*vm.Program, error) {
	if e.store != nil {
		stored, err := e.store.Load(source, e.pipeline.String())
		switch {
		case err == nil:
			log.Debugf("store hit %s (%d instructions)", stored.SourceKey, stored.Program.Len())
			return stored.Program, nil
		case !errors.Is(err, ErrProgramNotFound):
			log.Warningf("program store: %v", err)
		}
	}

	stmts, err := compiler.Parse(source)
	if err != nil {
		return nil, err
	}
	lowered, err := compiler.Lower(stmts)
	if err != nil {
		return nil, err
	}
	program, err := e.pipeline.Run(lowered)
	if err != nil {
		return nil, err
	}
	log.Debugf("compiled %s: %d instructions, %d after %s",
		hash.SourceKey(source), lowered.Len(), program.Len(), e.pipeline)

	if e.store != nil {
		e.save(source, stmts, program)
	}
	return program, nil
}

// save writes a freshly compiled program to the store. Failures are
// logged; the program is still usable.
func (e *Engine) save(source string, stmts []compiler.Stmt, program *vm.Program) {
	astHash, err := hash.HashStatements(stmts)
	if err != nil {
		log.Warningf("program store: %v", err)
		return
	}
	programHash, err := hash.ProgramHash(program)
	if err != nil {
		log.Warningf("program store: %v", err)
		return
	}
	err = e.store.Save(&StoredProgram{
		SourceKey:   hash.SourceKey(source),
		Source:      source,
		Pipeline:    e.pipeline.String(),
		ASTHash:     astHash,
		ProgramHash: programHash,
		Program:     program,
	})
	if err != nil {
		log.Warningf("program store: %v", err)
	}
}

// Execute runs an already compiled program against host.
func (e *Engine) Execute(ctx context.Context, program *vm.Program, host vm.Resolver) error {
	runID := uuid.NewString()
	log.Debugf("run %s: start (%d instructions)", runID, program.Len())

	steps, err := e.vm.ExecuteWithStats(ctx, program, host)
	if err != nil {
		log.Debugf("run %s: fault after %d steps: %v", runID, steps, err)
		return err
	}
	log.Debugf("run %s: done in %d steps", runID, steps)
	return nil
}

// Run compiles source (through the cache) and executes it against host.
// Compile failures come back as *compiler.LexError, *compiler.ParseError,
// *compiler.GenerateError or *optimize.CompileError; execution faults as
// *vm.RuntimeError.
func (e *Engine) Run(ctx context.Context, source string, host vm.Resolver) error {
	program, err := e.Compile(source)
	if err != nil {
		return err
	}
	return e.Execute(ctx, program, host)
}

// Stats returns the cache counters. A disabled cache reports zeros.
func (e *Engine) Stats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Close releases the store if the engine opened it.
func (e *Engine) Close() error {
	if e.ownsStore {
		return e.store.Close()
	}
	return nil
}
