package compiler

import (
	"context"
	"testing"

	"github.com/chazu/capscript/vm"
)

var fuzzSeeds = []string{
	// Tokens
	`( ) { } . , ; = + - * / % ++ -- > < >= <= == !=`,
	`42`, `0`, `2147483647`, `2147483648`,
	`"hello"`, `""`, `"unterminated`,
	`for while if else Print`,
	// Expressions
	`Print(2 + 3 * 4)`,
	`Print("hi")`,
	`obj.Score = 5`,
	`Print(obj.Score = obj.Health)`,
	`++obj.Counter`, `obj.Counter--`,
	`obj.Add(1, 2)`,
	`obj.Child.Run()`,
	`Print(4 / 0)`, `Print(7 % 0)`,
	// Statements
	`{ Print(1); Print(2); }`,
	`if (1) Print(1) else Print(2)`,
	`while (0) Print(1)`,
	`for (;;) ;`,
	`for (obj.I = 0; obj.I < 3; obj.I++) Print(obj.I)`,
	// Malformed
	`x = 1`, `(1 + 2`, `{`, `obj.`, `f(1)`, `#`, `!`,
	``,
}

// ---------------------------------------------------------------------------
// FuzzLexer: ensure the lexer never panics on arbitrary input.
// ---------------------------------------------------------------------------

func FuzzLexer(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("lexer panicked on input %q: %v", data, r)
			}
		}()

		l := NewLexer(data)
		for i := 0; i < len(data)+100; i++ {
			tok := l.NextToken()
			if tok.Type == TokenEOF || tok.Type == TokenError {
				break
			}
		}
	})
}

// ---------------------------------------------------------------------------
// FuzzParser: ensure the parser never panics on arbitrary input.
// Parse errors are acceptable; panics are not.
// ---------------------------------------------------------------------------

func FuzzParser(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("parser panicked on input %q: %v", data, r)
			}
		}()

		p := NewParser(data)
		for i := 0; !p.IsEnd() && i < len(data)+1; i++ {
			if _, err := p.ParseStatement(); err != nil {
				return
			}
		}
	})
}

// ---------------------------------------------------------------------------
// FuzzCompileAndRun: compile arbitrary input and run whatever compiles,
// bounded by a step limit. Errors are fine; panics are not.
// ---------------------------------------------------------------------------

func FuzzCompileAndRun(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("compile/run panicked on input %q: %v", data, r)
			}
		}()

		prog, err := CompileSource(data)
		if err != nil {
			return
		}
		machine := vm.New(nil, vm.WithStepLimit(10_000))
		_ = machine.Execute(context.Background(), prog, vm.Objects{})
	})
}
