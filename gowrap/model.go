// Package gowrap introspects Go packages and generates capscript host
// capability tables from exposure markers in their source.
package gowrap

import (
	"go/types"

	"github.com/chazu/capscript/vm"
)

// PackageModel is the scriptable surface found in one Go package.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "game")
	Dir        string // directory holding the package sources
	Types      []TypeModel
	Warnings   []string // members skipped because their types cannot cross into scripts
}

// TypeModel is one host type. Tables are generated for pointers to it.
type TypeModel struct {
	Name       string // Go type name
	ScriptName string
	Exposed    bool // type-level marker: every member is visible
	Properties []PropertyModel
	Fields     []FieldModel
	Methods    []MethodModel
}

// ValueType pairs a script-facing type with the Go type it converts to.
type ValueType struct {
	Kind   vm.Type
	GoType types.Type
}

// PropertyModel is a getter method marked as a property, with its optional
// Set<Name> partner.
type PropertyModel struct {
	Name      string
	Getter    string
	Setter    string // empty when read-only
	SetterErr bool   // setter returns an error
	Type      ValueType
}

// FieldModel is an exported struct field.
type FieldModel struct {
	Name    string
	Exposed bool
	Type    ValueType
}

// MethodModel is one pointer-receiver method. Several Go methods may share a
// script name, forming overloads.
type MethodModel struct {
	Name       string // script name
	GoName     string
	Exposed    bool
	Params     []ValueType
	Result     *ValueType // nil for void
	ReturnsErr bool       // last Go result is error
}

// HasMarkers reports whether anything in t is exposed.
func (t *TypeModel) HasMarkers() bool {
	if t.Exposed || len(t.Properties) > 0 {
		return true
	}
	for _, f := range t.Fields {
		if f.Exposed {
			return true
		}
	}
	for _, m := range t.Methods {
		if m.Exposed {
			return true
		}
	}
	return false
}
