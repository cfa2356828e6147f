package vm

import (
	"io"
	"sync"
)

// Emitter receives values printed by CALL_PRINT.
type Emitter interface {
	Emit(v Value) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(v Value) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(v Value) error { return f(v) }

// WriterEmitter writes one line per value in its natural string form.
type WriterEmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterEmitter creates an emitter writing to w.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{w: w}
}

// Emit implements Emitter.
func (e *WriterEmitter) Emit(v Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := io.WriteString(e.w, v.String()+"\n")
	return err
}

// Recorder collects emitted values in memory.
type Recorder struct {
	mu     sync.Mutex
	values []Value
}

// Emit implements Emitter.
func (r *Recorder) Emit(v Value) error {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	return nil
}

// Values returns the emitted values in order.
func (r *Recorder) Values() []Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Value, len(r.values))
	copy(out, r.values)
	return out
}

// Lines returns the emitted values rendered as strings.
func (r *Recorder) Lines() []string {
	vals := r.Values()
	lines := make([]string, len(vals))
	for i, v := range vals {
		lines[i] = v.String()
	}
	return lines
}
