package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chazu/capscript/gowrap"
)

// wrapCommand processes the `capscript wrap` subcommand.
// Usage:
//
//	capscript wrap                       # all packages from capscript.toml
//	capscript wrap ./game                # single package, ad-hoc
//	capscript wrap -in-package ./game    # write bindings next to the sources
//	capscript wrap -o ./bindings ./game  # custom output dir
func wrapCommand(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wrap", flag.ContinueOnError)
	outputDir := fs.String("o", "", "Output directory (default from config)")
	inPackage := fs.Bool("in-package", false, "Write bindings into the wrapped package")
	configPath := fs.String("config", "", "Config file (default: capscript.toml found upward)")
	verbose := fs.Bool("verbose", false, "Report each generated file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configureLogging(m, -1)

	var targets []wrapTarget
	if fs.NArg() > 0 {
		for _, pkg := range fs.Args() {
			targets = append(targets, wrapTarget{ImportPath: pkg})
		}
	} else {
		if len(m.Wrap.Packages) == 0 {
			return fmt.Errorf("no packages given and no [[wrap.packages]] configured")
		}
		for _, pkg := range m.Wrap.Packages {
			targets = append(targets, wrapTarget{ImportPath: pkg.Import, Include: pkg.Include})
		}
	}

	if *outputDir == "" {
		*outputDir = m.Resolve(m.Wrap.Output)
	}

	for _, target := range targets {
		if err := wrapPackage(target, *outputDir, *inPackage, *verbose, stdout); err != nil {
			return fmt.Errorf("wrapping %s: %w", target.ImportPath, err)
		}
	}

	if *verbose {
		fmt.Fprintf(stdout, "Wrapped %d package(s)\n", len(targets))
	}
	return nil
}

type wrapTarget struct {
	ImportPath string
	Include    []string
}

func wrapPackage(target wrapTarget, outputDir string, inPackage, verbose bool, stdout io.Writer) error {
	// Build include filter
	var filter map[string]bool
	if len(target.Include) > 0 {
		filter = make(map[string]bool)
		for _, name := range target.Include {
			filter[name] = true
		}
	}

	model, err := gowrap.IntrospectPackage(target.ImportPath, filter)
	if err != nil {
		return fmt.Errorf("introspecting: %w", err)
	}
	for _, w := range model.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", model.ImportPath, w)
	}

	code, err := gowrap.Generate(model, gowrap.Options{InPackage: inPackage})
	if err != nil {
		return err
	}

	dir := model.Dir
	if !inPackage {
		dir = filepath.Join(outputDir, gowrap.OutputPackageName(model.Name))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(dir, gowrap.OutputFileName(model.Name))
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if verbose {
		fmt.Fprintf(stdout, "  %s: %d type(s) -> %s\n", model.ImportPath, len(model.Types), path)
	}
	return nil
}
