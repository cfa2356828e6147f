package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chazu/capscript/compiler/hash"
	"github.com/chazu/capscript/compiler/optimize"
	"github.com/chazu/capscript/vm"
)

func TestStoreSaveLoad(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()

	source := "Print(obj.Heal(5))"
	program := vm.NewProgram(
		vm.Named(vm.OpLoadObject, "obj"),
		vm.PushInt(5),
		vm.CallMethod("Heal", 1),
		vm.Simple(vm.OpCallPrint),
	)
	programHash, err := hash.ProgramHash(program)
	if err != nil {
		t.Fatal(err)
	}
	astHash, err := hash.HashSource(source)
	if err != nil {
		t.Fatal(err)
	}

	err = s.Save(&StoredProgram{
		SourceKey:   hash.SourceKey(source),
		Source:      source,
		Pipeline:    "constant-fold",
		ASTHash:     astHash,
		ProgramHash: programHash,
		Program:     program,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(source, "constant-fold")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Program.Equal(program) {
		t.Errorf("loaded program differs:\n%s", got.Program.Disassemble())
	}
	if got.ASTHash != astHash || got.ProgramHash != programHash {
		t.Error("hashes not preserved")
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if got.Pipeline != "constant-fold" {
		t.Errorf("pipeline = %q, want constant-fold", got.Pipeline)
	}
	if _, err := s.Load(source, ""); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("Load under another pipeline: error = %v, want ErrProgramNotFound", err)
	}

	if n, err := s.Count(); err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Load("Print(1)", "constant-fold"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("error = %v, want ErrProgramNotFound", err)
	}
}

func TestStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")
	source := "Print(2 + 3 * 4)"

	s1, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	e1 := New(WithStore(s1))
	if _, err := e1.Compile(source); err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	rec := &vm.Recorder{}
	e2 := New(WithStore(s2), WithOutput(rec))
	if err := e2.Run(context.Background(), source, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rec.Lines(); !equalLines(got, []string{"14"}) {
		t.Errorf("output = %v, want [14]", got)
	}

	// The second engine compiled nothing itself; the program came from disk.
	if n, _ := s2.Count(); n != 1 {
		t.Errorf("stored programs = %d, want 1", n)
	}
}

func TestStoreSeparatesPipelines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")
	source := "Print(4 / 0)"

	s1, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	unoptimized := New(WithStore(s1), WithPipeline(optimize.NewPipeline()))
	if _, err := unoptimized.Compile(source); err != nil {
		t.Fatalf("Compile without passes: %v", err)
	}
	s1.Close()

	s2, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	folding := New(WithStore(s2))
	_, err = folding.Compile(source)
	var ce *optimize.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile with folding: error = %v, want *optimize.CompileError", err)
	}
	if !errors.Is(err, vm.ErrDivideByZero) {
		t.Errorf("error = %v, want ErrDivideByZero", err)
	}

	if n, _ := s2.Count(); n != 1 {
		t.Errorf("stored programs = %d, want 1", n)
	}
}
