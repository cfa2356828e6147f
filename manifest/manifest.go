// Package manifest handles capscript.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "capscript.toml"

// Manifest represents a capscript.toml configuration.
type Manifest struct {
	Engine    Engine    `toml:"engine" json:"engine"`
	Optimizer Optimizer `toml:"optimizer" json:"optimizer"`
	Cache     Cache     `toml:"cache" json:"cache"`
	Log       Log       `toml:"log" json:"log"`
	Wrap      Wrap      `toml:"wrap" json:"wrap"`

	// Dir is the directory containing the capscript.toml file (set at load
	// time; empty for defaults).
	Dir string `toml:"-" json:"-"`
}

// Engine bounds script execution.
type Engine struct {
	StepLimit     int64 `toml:"step-limit" json:"step-limit"`
	CheckInterval int   `toml:"check-interval" json:"check-interval"`
}

// Optimizer selects the optimization passes, in order.
type Optimizer struct {
	Passes     []string `toml:"passes" json:"passes"`
	FixedPoint bool     `toml:"fixed-point" json:"fixed-point"`
}

// Cache configures program caching.
type Cache struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Store   string `toml:"store" json:"store"` // SQLite path; empty for memory only
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	File      string `toml:"file" json:"file"`
}

// Wrap configures host binding generation.
type Wrap struct {
	Output   string        `toml:"output" json:"output"`
	Packages []WrapPackage `toml:"packages" json:"packages"`
}

// WrapPackage names a Go package to generate bindings for.
type WrapPackage struct {
	Import  string   `toml:"import" json:"import"`
	Include []string `toml:"include" json:"include"` // type names; empty means all marked types
}

// Default returns the configuration used when no file exists.
func Default() *Manifest {
	return &Manifest{
		Engine: Engine{
			CheckInterval: 1024,
		},
		Optimizer: Optimizer{
			Passes: []string{"constant-fold"},
		},
		Cache: Cache{
			Enabled: true,
		},
		Log: Log{
			Verbosity: 1,
		},
		Wrap: Wrap{
			Output: "capscript_bindings",
		},
	}
}

// Load parses a capscript.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	m, err := LoadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFile parses and validates a configuration file at path. Keys absent
// from the file keep their defaults.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a capscript.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Resolve returns path relative to the manifest directory, unless it is
// empty or already absolute.
func (m *Manifest) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// StorePath returns the resolved SQLite store path, or "" when the
// persistent store is disabled.
func (m *Manifest) StorePath() string {
	if !m.Cache.Enabled {
		return ""
	}
	return m.Resolve(m.Cache.Store)
}
