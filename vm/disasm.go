package vm

import (
	"fmt"
	"strings"
)

// Disassemble renders the program one instruction per line. Labels are
// printed flush left; other instructions are indented under their index.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i, in := range p.Instructions {
		if in.Op == OpLabel {
			fmt.Fprintf(&sb, "%s:\n", in.Str)
			continue
		}
		fmt.Fprintf(&sb, "  %04d  %s\n", i, in)
	}
	return sb.String()
}
