package compiler

import "github.com/chazu/capscript/vm"

// CompileSource parses every top-level statement of source and lowers them
// with a single Generator into one unoptimized program. The error is a
// *LexError, *ParseError or *GenerateError; no partial program is returned.
func CompileSource(source string) (*vm.Program, error) {
	p := NewParser(source)
	g := NewGenerator()
	program := vm.NewProgram()
	for !p.IsEnd() {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		part, err := g.Generate(stmt)
		if err != nil {
			return nil, err
		}
		program.Append(part.Instructions...)
	}
	return program, nil
}

// Lower generates code for already-parsed statements with one Generator, so
// labels stay unique across the whole program.
func Lower(stmts []Stmt) (*vm.Program, error) {
	g := NewGenerator()
	program := vm.NewProgram()
	for _, stmt := range stmts {
		part, err := g.Generate(stmt)
		if err != nil {
			return nil, err
		}
		program.Append(part.Instructions...)
	}
	return program, nil
}
