package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chazu/capscript/compiler"
	"github.com/chazu/capscript/compiler/hash"
	"github.com/chazu/capscript/engine"
	"github.com/chazu/capscript/vm"
)

// scriptFlags are shared by run and dump.
type scriptFlags struct {
	expr      string
	config    string
	verbosity int
}

func (f *scriptFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.expr, "e", "", "Script source (instead of a file)")
	fs.StringVar(&f.config, "config", "", "Config file (default: capscript.toml found upward)")
	fs.IntVar(&f.verbosity, "v", -1, "Log verbosity 0-5 (default from config)")
}

// source returns the script text from -e, a file argument, or stdin.
func (f *scriptFlags) source(args []string, stdin io.Reader) (string, error) {
	switch {
	case f.expr != "":
		return f.expr, nil
	case len(args) > 0 && args[0] != "-":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
}

// newEngine loads config, configures logging and builds an engine that
// prints to stdout and knows the demo host types.
func (f *scriptFlags) newEngine(stdout io.Writer) (*engine.Engine, error) {
	m, err := loadConfig(f.config)
	if err != nil {
		return nil, err
	}
	configureLogging(m, f.verbosity)

	registry := vm.NewHostRegistry()
	RegisterHostTypes(registry)

	return engine.NewFromConfig(m,
		engine.WithRegistry(registry),
		engine.WithOutput(vm.NewWriterEmitter(stdout)),
	)
}

func runCommand(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var sf scriptFlags
	sf.register(fs)
	dump := fs.Bool("dump", false, "Print the optimized program before running")
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, err := sf.source(fs.Args(), stdin)
	if err != nil {
		return err
	}
	e, err := sf.newEngine(stdout)
	if err != nil {
		return err
	}
	defer e.Close()

	program, err := e.Compile(source)
	if err != nil {
		return err
	}
	if *dump {
		fmt.Fprint(stdout, program.Disassemble())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	host := vm.Objects{"player": NewPlayer("player")}
	return e.Execute(ctx, program, host)
}

func dumpCommand(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	var sf scriptFlags
	sf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	source, err := sf.source(fs.Args(), stdin)
	if err != nil {
		return err
	}
	e, err := sf.newEngine(stdout)
	if err != nil {
		return err
	}
	defer e.Close()

	stmts, err := compiler.Parse(source)
	if err != nil {
		return err
	}
	astHash, err := hash.HashStatements(stmts)
	if err != nil {
		return err
	}
	program, err := e.Compile(source)
	if err != nil {
		return err
	}
	programHash, err := hash.ProgramHash(program)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "; source  %s\n", hash.SourceKey(source).Hex())
	fmt.Fprintf(stdout, "; ast     %s\n", astHash.Hex())
	fmt.Fprintf(stdout, "; program %s\n", programHash.Hex())
	fmt.Fprintf(stdout, "; passes  %s\n", e.Pipeline())
	fmt.Fprint(stdout, program.Disassemble())
	return nil
}
