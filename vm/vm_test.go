package vm

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	vm := New(nil)
	if vm.Registry() == nil {
		t.Fatal("New(nil) should create a registry")
	}
	if vm.checkInterval != DefaultCheckInterval {
		t.Errorf("checkInterval = %d, want %d", vm.checkInterval, DefaultCheckInterval)
	}
	// Output defaults to a discarding sink.
	if err := vm.Execute(context.Background(), NewProgram(PushInt(1), Simple(OpCallPrint)), nil); err != nil {
		t.Errorf("Execute: %v", err)
	}
}

func TestWriterEmitter(t *testing.T) {
	var buf bytes.Buffer
	vm := New(nil, WithOutput(NewWriterEmitter(&buf)))
	p := NewProgram(
		PushInt(14), Simple(OpCallPrint),
		PushString("ok"), Simple(OpCallPrint),
	)
	if err := vm.Execute(context.Background(), p, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := buf.String(); got != "14\nok\n" {
		t.Errorf("output = %q", got)
	}
}

func TestEmitterErrorFaults(t *testing.T) {
	sink := EmitterFunc(func(Value) error { return errors.New("closed") })
	vm := New(nil, WithOutput(sink))
	err := vm.Execute(context.Background(), NewProgram(PushInt(1), Simple(OpCallPrint)), nil)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Op != OpCallPrint {
		t.Errorf("err = %v, want RuntimeError at CALL_PRINT", err)
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	err := &RuntimeError{PC: 3, Op: OpDiv, Err: ErrDivideByZero}
	if got := err.Error(); got != "runtime error at 3 (DIV): division by zero" {
		t.Errorf("Error() = %q", got)
	}
	err = &RuntimeError{PC: -1, Err: ErrUnknownLabel}
	if got := err.Error(); got != "runtime error: unknown label" {
		t.Errorf("Error() = %q", got)
	}
}

func TestConcurrentExecutions(t *testing.T) {
	rec := &Recorder{}
	vm := newTestVM(rec)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := &unit{Score: 3}
			if err := vm.Execute(context.Background(), countdown(), Objects{"obj": u}); err != nil {
				t.Errorf("Execute: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := len(rec.Lines()); n != 24 {
		t.Errorf("lines = %d, want 24", n)
	}
}
