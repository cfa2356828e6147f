package manifest

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Validate checks the configuration against the embedded CUE schema.
func (m *Manifest) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("manifest: compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(m.normalized())
	if err := value.Err(); err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("manifest: %s", errors.Details(err, nil))
	}
	return nil
}

// normalized returns a copy whose nil lists are empty, since CUE encodes a
// nil slice as null rather than as an empty list.
func (m *Manifest) normalized() Manifest {
	c := *m
	if c.Optimizer.Passes == nil {
		c.Optimizer.Passes = []string{}
	}
	c.Wrap.Packages = make([]WrapPackage, len(m.Wrap.Packages))
	for i, p := range m.Wrap.Packages {
		if p.Include == nil {
			p.Include = []string{}
		}
		c.Wrap.Packages[i] = p
	}
	return c
}
