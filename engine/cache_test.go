package engine

import (
	"errors"
	"testing"

	"github.com/chazu/capscript/vm"
)

func TestCacheGetPut(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("Print(1)"); ok {
		t.Fatal("empty cache should miss")
	}

	p := vm.NewProgram(vm.PushInt(1), vm.Simple(vm.OpCallPrint))
	c.Put("Print(1)", p)

	got, ok := c.Get("Print(1)")
	if !ok || got != p {
		t.Fatalf("Get = %v, %v; want cached program", got, ok)
	}
	if _, ok := c.Get("Print(1) "); ok {
		t.Error("keys must match exactly")
	}

	stats := c.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheGetOrCompile(t *testing.T) {
	c := NewCache()
	calls := 0
	compile := func() (*vm.Program, error) {
		calls++
		return vm.NewProgram(vm.PushInt(int32(calls))), nil
	}

	p1, hit, err := c.GetOrCompile("src", compile)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	p2, hit, err := c.GetOrCompile("src", compile)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if p1 != p2 || calls != 1 {
		t.Errorf("compile ran %d times", calls)
	}
}

func TestCacheGetOrCompileError(t *testing.T) {
	c := NewCache()
	boom := errors.New("boom")

	_, _, err := c.GetOrCompile("bad", func() (*vm.Program, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed compile should not be cached")
	}
}
