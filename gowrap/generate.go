package gowrap

import (
	"bytes"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/capscript/vm"
)

// Options controls code generation.
type Options struct {
	// InPackage emits the bindings into the wrapped package itself, so
	// its types are referenced unqualified.
	InPackage bool
	// Package names the output package when InPackage is false. Defaults
	// to OutputPackageName of the wrapped package.
	Package string
}

// Generate renders Go source registering a capability table for every
// type in model.
func Generate(model *PackageModel, opts Options) (string, error) {
	var f *jen.File
	if opts.InPackage {
		f = jen.NewFilePathName(model.ImportPath, model.Name)
	} else {
		name := opts.Package
		if name == "" {
			name = OutputPackageName(model.Name)
		}
		f = jen.NewFile(name)
	}
	f.HeaderComment("Code generated by capscript wrap. DO NOT EDIT.")
	f.ImportName(vmPath, "vm")

	g := &generator{model: model}

	registrations := make([]jen.Code, 0, len(model.Types))
	for _, t := range model.Types {
		registrations = append(registrations,
			jen.Id("r").Dot("Register").Call(jen.Id(HostTypeFuncName(t.Name)).Call()))
	}
	f.Commentf("RegisterHostTypes adds the capability tables of %s to r.", model.ImportPath)
	f.Func().Id("RegisterHostTypes").Params(jen.Id("r").Op("*").Qual(vmPath, "HostRegistry")).Block(registrations...)

	for _, t := range model.Types {
		f.Line()
		g.hostTypeFunc(f, t)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering bindings for %s: %w", model.ImportPath, err)
	}
	return buf.String(), nil
}

type generator struct {
	model *PackageModel
}

// recv renders *T for a type of the wrapped package.
func (g *generator) recv(t TypeModel) *jen.Statement {
	return jen.Op("*").Qual(g.model.ImportPath, t.Name)
}

// self renders o.(*T).
func (g *generator) self(t TypeModel) *jen.Statement {
	return jen.Id("o").Assert(g.recv(t))
}

func (g *generator) hostTypeFunc(f *jen.File, t TypeModel) {
	chain := jen.Qual(vmPath, "DefineHostType").Types(g.recv(t)).Call(jen.Lit(t.ScriptName), jen.Lit(t.Exposed))

	for _, p := range t.Properties {
		chain = chain.Op(".").Line().Id("AddProperty").Call(g.property(t, p))
	}
	for _, fl := range t.Fields {
		chain = chain.Op(".").Line().Id("AddField").Call(g.field(t, fl))
	}
	for _, m := range t.Methods {
		chain = chain.Op(".").Line().Id("AddMethod").Call(g.method(t, m))
	}

	f.Commentf("%s returns the capability table for *%s.", HostTypeFuncName(t.Name), t.Name)
	f.Func().Id(HostTypeFuncName(t.Name)).Params().Op("*").Qual(vmPath, "HostType").Block(
		jen.Return(chain),
	)
}

func (g *generator) property(t TypeModel, p PropertyModel) jen.Code {
	d := jen.Dict{
		jen.Id("Name"):    jen.Lit(p.Name),
		jen.Id("Type"):    vmType(p.Type.Kind),
		jen.Id("Exposed"): jen.True(),
		jen.Id("Get"): jen.Func().Params(jen.Id("o").Id("any")).Qual(vmPath, "Value").Block(
			jen.Return(toValue(p.Type, g.self(t).Dot(p.Getter).Call())),
		),
	}
	if p.Setter != "" {
		call := g.self(t).Dot(p.Setter).Call(fromValue(p.Type, jen.Id("v")))
		var body []jen.Code
		if p.SetterErr {
			body = []jen.Code{jen.Return(call)}
		} else {
			body = []jen.Code{call, jen.Return(jen.Nil())}
		}
		d[jen.Id("Set")] = jen.Func().Params(jen.Id("o").Id("any"), jen.Id("v").Qual(vmPath, "Value")).Error().Block(body...)
	}
	return jen.Qual(vmPath, "Property").Values(d)
}

func (g *generator) field(t TypeModel, fl FieldModel) jen.Code {
	return jen.Qual(vmPath, "Field").Values(jen.Dict{
		jen.Id("Name"):    jen.Lit(fl.Name),
		jen.Id("Type"):    vmType(fl.Type.Kind),
		jen.Id("Exposed"): jen.Lit(fl.Exposed),
		jen.Id("Get"): jen.Func().Params(jen.Id("o").Id("any")).Qual(vmPath, "Value").Block(
			jen.Return(toValue(fl.Type, g.self(t).Dot(fl.Name))),
		),
		jen.Id("Set"): jen.Func().Params(jen.Id("o").Id("any"), jen.Id("v").Qual(vmPath, "Value")).Block(
			g.self(t).Dot(fl.Name).Op("=").Add(fromValue(fl.Type, jen.Id("v"))),
		),
	})
}

func (g *generator) method(t TypeModel, m MethodModel) jen.Code {
	params := make([]jen.Code, len(m.Params))
	args := make([]jen.Code, len(m.Params))
	for i, p := range m.Params {
		params[i] = vmType(p.Kind)
		args[i] = fromValue(p, jen.Id("args").Index(jen.Lit(i)))
	}
	call := g.self(t).Dot(m.GoName).Call(args...)

	var body []jen.Code
	switch {
	case m.Result == nil && !m.ReturnsErr:
		body = []jen.Code{call, jen.Return(jen.Qual(vmPath, "Null"), jen.Nil())}
	case m.Result == nil:
		body = []jen.Code{jen.Return(jen.Qual(vmPath, "Null"), call)}
	case !m.ReturnsErr:
		body = []jen.Code{jen.Return(toValue(*m.Result, call), jen.Nil())}
	default:
		body = []jen.Code{
			jen.List(jen.Id("result"), jen.Err()).Op(":=").Add(call),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Qual(vmPath, "Null"), jen.Err())),
			jen.Return(toValue(*m.Result, jen.Id("result")), jen.Nil()),
		}
	}

	returns := vmType(vm.TypeVoid)
	if m.Result != nil {
		returns = vmType(m.Result.Kind)
	}

	d := jen.Dict{
		jen.Id("Name"):    jen.Lit(m.Name),
		jen.Id("Returns"): returns,
		jen.Id("Exposed"): jen.Lit(m.Exposed),
		jen.Id("Invoke"): jen.Func().Params(jen.Id("o").Id("any"), jen.Id("args").Index().Qual(vmPath, "Value")).
			Parens(jen.List(jen.Qual(vmPath, "Value"), jen.Error())).Block(body...),
	}
	if len(params) > 0 {
		d[jen.Id("Params")] = jen.Index().Qual(vmPath, "Type").Values(params...)
	}
	return jen.Qual(vmPath, "Method").Values(d)
}

var vmTypeNames = map[vm.Type]string{
	vm.TypeInt:         "TypeInt",
	vm.TypeNullableInt: "TypeNullableInt",
	vm.TypeString:      "TypeString",
	vm.TypeObject:      "TypeObject",
	vm.TypeAny:         "TypeAny",
	vm.TypeVoid:        "TypeVoid",
}

func vmType(t vm.Type) jen.Code {
	return jen.Qual(vmPath, vmTypeNames[t])
}

// toValue converts a Go expression of type vt into a vm.Value.
func toValue(vt ValueType, expr jen.Code) jen.Code {
	switch vt.Kind {
	case vm.TypeInt:
		return jen.Qual(vmPath, "Int").Call(jen.Int32().Parens(expr))
	case vm.TypeNullableInt:
		return jen.Qual(vmPath, "FromIntPtr").Call(expr)
	case vm.TypeString:
		return jen.Qual(vmPath, "String").Call(jen.String().Parens(expr))
	case vm.TypeObject:
		return jen.Qual(vmPath, "ObjectOf").Call(expr)
	default:
		return expr
	}
}

// fromValue converts a vm.Value expression into the Go type of vt.
func fromValue(vt ValueType, expr *jen.Statement) jen.Code {
	switch vt.Kind {
	case vm.TypeInt:
		return goType(vt.GoType).Parens(expr.Clone().Dot("Int").Call())
	case vm.TypeNullableInt:
		elem := vt.GoType.Underlying().(*types.Pointer).Elem()
		return jen.Qual(vmPath, "IntPtr").Types(goType(elem)).Call(expr)
	case vm.TypeString:
		return goType(vt.GoType).Parens(expr.Clone().Dot("Str").Call())
	case vm.TypeObject:
		return jen.Qual(vmPath, "ObjectAs").Types(goType(vt.GoType)).Call(expr)
	default:
		return expr
	}
}

// goType renders a Go type expression.
func goType(t types.Type) *jen.Statement {
	switch tt := t.(type) {
	case *types.Basic:
		return jen.Id(tt.Name())
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() == nil {
			return jen.Id(obj.Name())
		}
		return jen.Qual(obj.Pkg().Path(), obj.Name())
	case *types.Pointer:
		return jen.Op("*").Add(goType(tt.Elem()))
	case *types.Interface:
		if tt.Empty() {
			return jen.Id("any")
		}
	}
	return jen.Id(t.String())
}
