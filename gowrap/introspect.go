package gowrap

import (
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/tliron/commonlog"
	"golang.org/x/tools/go/packages"

	"github.com/chazu/capscript/vm"
)

var log = commonlog.GetLogger("capscript.wrap")

const vmPath = "github.com/chazu/capscript/vm"

// IntrospectPackage loads a Go package by import path (or relative
// directory pattern) and returns its scriptable surface. Without a filter,
// only types carrying at least one marker are included; includeFilter, if
// non-nil, selects types by name instead.
func IntrospectPackage(pattern string, includeFilter map[string]bool) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for %s", pattern)
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("package errors: %v", pkgs[0].Errors)
	}

	pkg := pkgs[0]
	if pkg.Types == nil {
		return nil, fmt.Errorf("type information not available for %s", pattern)
	}

	model := &PackageModel{
		ImportPath: pkg.PkgPath,
		Name:       pkg.Name,
	}
	if len(pkg.GoFiles) > 0 {
		model.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	markers := collectMarkers(pkg)
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		if includeFilter != nil && !includeFilter[name] {
			continue
		}
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}
		tm := extractType(tn, markers, model)
		if tm == nil {
			continue
		}
		if includeFilter == nil && !tm.HasMarkers() {
			continue
		}
		model.Types = append(model.Types, *tm)
	}

	log.Debugf("introspected %s: %d types, %d warnings", model.ImportPath, len(model.Types), len(model.Warnings))
	return model, nil
}

// markerSet holds the directives attached to declarations.
type markerSet map[types.Object][]marker

func (s markerSet) find(obj types.Object, kind string) (marker, bool) {
	for _, m := range s[obj] {
		if m.kind == kind {
			return m, true
		}
	}
	return marker{}, false
}

// collectMarkers scans doc comments of type and method declarations.
func collectMarkers(pkg *packages.Package) markerSet {
	set := make(markerSet)
	add := func(ident *ast.Ident, docs ...*ast.CommentGroup) {
		obj := pkg.TypesInfo.Defs[ident]
		if obj == nil {
			return
		}
		for _, doc := range docs {
			if doc == nil {
				continue
			}
			for _, c := range doc.List {
				if m, ok := parseMarker(c.Text); ok {
					set[obj] = append(set[obj], m)
				}
			}
		}
	}

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv != nil {
					add(d.Name, d.Doc)
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					// A lone spec's comment is attached to the GenDecl.
					if len(d.Specs) == 1 {
						add(ts.Name, d.Doc, ts.Doc)
					} else {
						add(ts.Name, ts.Doc)
					}
				}
			}
		}
	}
	return set
}

func extractType(tn *types.TypeName, markers markerSet, model *PackageModel) *TypeModel {
	named, ok := tn.Type().(*types.Named)
	if !ok || named.TypeParams().Len() > 0 {
		return nil
	}

	tm := &TypeModel{
		Name:       tn.Name(),
		ScriptName: tn.Name(),
	}
	if m, ok := markers.find(tn, "expose"); ok {
		tm.Exposed = true
		if m.name != "" {
			tm.ScriptName = m.name
		}
	}

	if st, ok := named.Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			if !f.Exported() || f.Embedded() {
				continue
			}
			vt, ok := classify(f.Type())
			if !ok {
				model.warnf("%s.%s: field type %s is not scriptable", tn.Name(), f.Name(), f.Type())
				continue
			}
			tm.Fields = append(tm.Fields, FieldModel{
				Name:    f.Name(),
				Exposed: reflect.StructTag(st.Tag(i)).Get(tagKey) == tagExpose,
				Type:    vt,
			})
		}
	}

	// Collect pointer-receiver methods declared on this type.
	methods := make(map[string]*types.Func)
	var order []string
	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		sel := mset.At(i)
		fn, ok := sel.Obj().(*types.Func)
		if !ok || !fn.Exported() || len(sel.Index()) > 1 {
			continue
		}
		methods[fn.Name()] = fn
		order = append(order, fn.Name())
	}
	sort.Strings(order)

	consumed := make(map[string]bool)
	for _, name := range order {
		m, ok := markers.find(methods[name], "property")
		if !ok {
			continue
		}
		if p, ok := extractProperty(tn.Name(), methods, name, m, model); ok {
			tm.Properties = append(tm.Properties, p)
			consumed[p.Getter] = true
			if p.Setter != "" {
				consumed[p.Setter] = true
			}
		}
	}

	for _, name := range order {
		if consumed[name] {
			continue
		}
		fn := methods[name]
		mm, ok := extractMethod(tn.Name(), fn, model)
		if !ok {
			continue
		}
		if m, ok := markers.find(fn, "expose"); ok {
			mm.Exposed = true
			if m.name != "" {
				mm.Name = m.name
			}
		}
		tm.Methods = append(tm.Methods, mm)
	}

	return tm
}

func extractProperty(typeName string, methods map[string]*types.Func, getter string, m marker, model *PackageModel) (PropertyModel, bool) {
	sig := methods[getter].Type().(*types.Signature)
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		model.warnf("%s.%s: property getter must take no arguments and return one value", typeName, getter)
		return PropertyModel{}, false
	}
	vt, ok := classify(sig.Results().At(0).Type())
	if !ok {
		model.warnf("%s.%s: property type %s is not scriptable", typeName, getter, sig.Results().At(0).Type())
		return PropertyModel{}, false
	}

	p := PropertyModel{Name: getter, Getter: getter, Type: vt}
	if m.name != "" {
		p.Name = m.name
	}

	setter, ok := methods[SetterName(getter)]
	if !ok {
		return p, true
	}
	ssig := setter.Type().(*types.Signature)
	switch {
	case ssig.Params().Len() != 1 || !types.Identical(ssig.Params().At(0).Type(), vt.GoType):
		model.warnf("%s.%s: setter does not take the getter's type; property is read-only", typeName, setter.Name())
	case ssig.Results().Len() == 0:
		p.Setter = setter.Name()
	case ssig.Results().Len() == 1 && isErrorType(ssig.Results().At(0).Type()):
		p.Setter = setter.Name()
		p.SetterErr = true
	default:
		model.warnf("%s.%s: setter may only return an error; property is read-only", typeName, setter.Name())
	}
	return p, true
}

func extractMethod(typeName string, fn *types.Func, model *PackageModel) (MethodModel, bool) {
	sig := fn.Type().(*types.Signature)
	mm := MethodModel{Name: fn.Name(), GoName: fn.Name()}

	if sig.Variadic() {
		model.warnf("%s.%s: variadic methods are not scriptable", typeName, fn.Name())
		return mm, false
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		vt, ok := classify(params.At(i).Type())
		if !ok {
			model.warnf("%s.%s: parameter type %s is not scriptable", typeName, fn.Name(), params.At(i).Type())
			return mm, false
		}
		mm.Params = append(mm.Params, vt)
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isErrorType(results.At(n-1).Type()) {
		mm.ReturnsErr = true
		n--
	}
	switch n {
	case 0:
	case 1:
		vt, ok := classify(results.At(0).Type())
		if !ok {
			model.warnf("%s.%s: result type %s is not scriptable", typeName, fn.Name(), results.At(0).Type())
			return mm, false
		}
		mm.Result = &vt
	default:
		model.warnf("%s.%s: methods may return at most one value and an error", typeName, fn.Name())
		return mm, false
	}
	return mm, true
}

// classify maps a Go type onto the script value types.
func classify(t types.Type) (ValueType, bool) {
	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == vmPath && obj.Name() == "Value" {
			return ValueType{Kind: vm.TypeAny, GoType: t}, true
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case isIntKind(u.Kind()):
			return ValueType{Kind: vm.TypeInt, GoType: t}, true
		case u.Kind() == types.String:
			return ValueType{Kind: vm.TypeString, GoType: t}, true
		}
	case *types.Pointer:
		elem := u.Elem()
		if b, ok := elem.Underlying().(*types.Basic); ok && isIntKind(b.Kind()) {
			return ValueType{Kind: vm.TypeNullableInt, GoType: t}, true
		}
		if _, ok := elem.(*types.Named); ok {
			if _, ok := elem.Underlying().(*types.Struct); ok {
				return ValueType{Kind: vm.TypeObject, GoType: t}, true
			}
		}
	case *types.Interface:
		if isErrorType(t) {
			return ValueType{}, false
		}
		if _, named := t.(*types.Named); named || u.Empty() {
			return ValueType{Kind: vm.TypeObject, GoType: t}, true
		}
	}
	return ValueType{}, false
}

func isIntKind(k types.BasicKind) bool {
	switch k {
	case types.Int, types.Int8, types.Int16, types.Int32, types.Int64:
		return true
	}
	return false
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

func (m *PackageModel) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	m.Warnings = append(m.Warnings, msg)
	log.Debugf("skipping %s", msg)
}
