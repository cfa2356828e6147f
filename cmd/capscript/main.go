// capscript CLI - compile and run scripts against the demo host object,
// and generate host bindings for Go packages.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/capscript/manifest"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "run":
		err = runCommand(args, os.Stdin, os.Stdout)
	case "dump":
		err = dumpCommand(args, os.Stdin, os.Stdout)
	case "wrap":
		err = wrapCommand(args, os.Stdout)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: capscript <command> [options]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  run  [-e src] [-config file] [-dump] [-v n] [file]  compile and run a script\n")
	fmt.Fprintf(w, "  dump [-e src] [-config file] [file]                 print the optimized program\n")
	fmt.Fprintf(w, "  wrap [-o dir] [-in-package] [packages...]           generate host bindings\n")
	fmt.Fprintf(w, "\nScripts see one host object, \"player\". With no file or -e, the script\n")
	fmt.Fprintf(w, "is read from stdin.\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  capscript run -e 'player.Heal(5); Print(player.Health)'\n")
	fmt.Fprintf(w, "  capscript dump script.cap\n")
	fmt.Fprintf(w, "  capscript wrap -in-package ./game\n")
}

// loadConfig reads an explicit config file, or searches upward from the
// working directory, falling back to defaults.
func loadConfig(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}

// configureLogging applies the [log] section; verbosity >= 0 overrides it.
func configureLogging(m *manifest.Manifest, verbosity int) {
	if verbosity < 0 {
		verbosity = m.Log.Verbosity
	}
	var path *string
	if m.Log.File != "" {
		file := m.Resolve(m.Log.File)
		path = &file
	}
	commonlog.Configure(verbosity, path)
}
