package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/chazu/capscript/vm"
)

func TestWorkerSerializesRuns(t *testing.T) {
	rec := &vm.Recorder{}
	e := newTestEngine(rec)
	obj := &target{}
	w := NewWorker(e, vm.Objects{"obj": obj})
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Do(context.Background(), "obj.Counter++"); err != nil {
				t.Errorf("Do: %v", err)
			}
		}()
	}
	wg.Wait()

	if obj.Counter != 50 {
		t.Errorf("Counter = %d, want 50", obj.Counter)
	}
}

func TestWorkerReturnsErrors(t *testing.T) {
	e := newTestEngine(&vm.Recorder{})
	w := NewWorker(e, vm.Objects{})
	defer w.Stop()

	err := w.Do(context.Background(), "Print(obj.I)")
	if !errors.Is(err, vm.ErrObjectNotFound) {
		t.Errorf("error = %v, want ErrObjectNotFound", err)
	}
}

func TestWorkerRecoversHostPanic(t *testing.T) {
	r := vm.NewHostRegistry()
	r.Register(vm.DefineHostType[*target]("Target", true).
		AddMethod(vm.Method{
			Name: "Explode", Returns: vm.TypeVoid,
			Invoke: func(o any, args []vm.Value) (vm.Value, error) {
				panic("kaboom")
			},
		}))
	w := NewWorker(New(WithRegistry(r)), vm.Objects{"obj": &target{}})
	defer w.Stop()

	if err := w.Do(context.Background(), "obj.Explode()"); err == nil {
		t.Fatal("expected error from panicking host method")
	}
	// The worker keeps serving after a panic.
	if err := w.Do(context.Background(), "Print(1)"); err != nil {
		t.Errorf("Do after panic: %v", err)
	}
}

func TestWorkerStop(t *testing.T) {
	w := NewWorker(newTestEngine(&vm.Recorder{}), nil)
	w.Stop()
	w.Stop()

	if err := w.Do(context.Background(), "Print(1)"); !errors.Is(err, ErrWorkerStopped) {
		t.Errorf("error = %v, want ErrWorkerStopped", err)
	}
}

func TestWorkerContextCancelled(t *testing.T) {
	w := NewWorker(newTestEngine(&vm.Recorder{}, WithCheckInterval(8)), nil)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Do(ctx, "while (1) ;")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
