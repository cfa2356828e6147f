package gowrap

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/capscript/vm"
)

func TestGenerate_Game(t *testing.T) {
	model, err := IntrospectPackage(fixture, nil)
	if err != nil {
		t.Fatalf("IntrospectPackage: %v", err)
	}

	code, err := Generate(model, Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := parser.ParseFile(token.NewFileSet(), "game_capscript.go", code, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, code)
	}

	for _, want := range []string{
		"// Code generated by capscript wrap. DO NOT EDIT.",
		"package capscript_game",
		`"github.com/chazu/capscript/vm"`,
		"func RegisterHostTypes(r *vm.HostRegistry)",
		"r.Register(HeroHostType())",
		"func HeroHostType() *vm.HostType",
		`vm.DefineHostType[*game.Hero]("Hero", true)`,
		`vm.DefineHostType[*game.Vault]("Vault", false)`,
		"SetHealth(",
		`"Describe"`,
		"DescribeTitle(",
		"vm.IntPtr[int]",
		"vm.ObjectAs[*game.Hero]",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
	if strings.Contains(code, "Position") || strings.Contains(code, "Ready") {
		t.Error("unscriptable methods should not be generated")
	}

}

func TestIntrospect_GameGolden(t *testing.T) {
	model, err := IntrospectPackage(fixture, nil)
	if err != nil {
		t.Fatalf("IntrospectPackage: %v", err)
	}

	got := describeModel(model)
	goldenFile := filepath.Join("testdata", "game.model.golden")
	updateGolden(t, goldenFile, got)
	compareGolden(t, goldenFile, got)
}

// describeModel renders the scriptable surface of a model, one member per
// line, in generation order.
func describeModel(model *PackageModel) string {
	var b strings.Builder
	for _, tm := range model.Types {
		fmt.Fprintf(&b, "type %s script=%s exposed=%t\n", tm.Name, tm.ScriptName, tm.Exposed)
		for _, p := range tm.Properties {
			fmt.Fprintf(&b, "  property %s %s get=%s set=%s\n", p.Name, vmTypeNames[p.Type.Kind], p.Getter, p.Setter)
		}
		for _, f := range tm.Fields {
			fmt.Fprintf(&b, "  field %s %s exposed=%t\n", f.Name, vmTypeNames[f.Type.Kind], f.Exposed)
		}
		for _, m := range tm.Methods {
			params := make([]string, len(m.Params))
			for i, p := range m.Params {
				params[i] = vmTypeNames[p.Kind]
			}
			result := vmTypeNames[vm.TypeVoid]
			if m.Result != nil {
				result = vmTypeNames[m.Result.Kind]
			}
			if m.ReturnsErr {
				result += ",error"
			}
			fmt.Fprintf(&b, "  method %s=%s(%s) %s exposed=%t\n",
				m.Name, m.GoName, strings.Join(params, ","), result, m.Exposed)
		}
	}
	for _, w := range model.Warnings {
		fmt.Fprintf(&b, "warning %s\n", w)
	}
	return b.String()
}

func TestGenerate_InPackage(t *testing.T) {
	model, err := IntrospectPackage(fixture, map[string]bool{"Vault": true})
	if err != nil {
		t.Fatalf("IntrospectPackage: %v", err)
	}

	code, err := Generate(model, Options{InPackage: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(code, "package game") {
		t.Error("expected wrapped package name")
	}
	if !strings.Contains(code, `vm.DefineHostType[*Vault]("Vault", false)`) {
		t.Errorf("types should be unqualified in-package:\n%s", code)
	}
	if strings.Contains(code, "game.Vault") {
		t.Error("in-package bindings must not import the wrapped package")
	}
}

func TestGenerate_EmptyModel(t *testing.T) {
	model := &PackageModel{
		ImportPath: "empty/pkg",
		Name:       "pkg",
	}

	code, err := Generate(model, Options{Package: "bindings"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(code, "package bindings") {
		t.Error("expected package override")
	}
	if !strings.Contains(code, "RegisterHostTypes") {
		t.Error("expected RegisterHostTypes even for empty package")
	}
}

// Golden file helpers

func updateGolden(t *testing.T, path, content string) {
	t.Helper()
	if os.Getenv("UPDATE_GOLDEN") == "" {
		return
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating testdata dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("updating golden file: %v", err)
	}
}

func compareGolden(t *testing.T, path, got string) {
	t.Helper()
	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("Golden file %s does not exist. Run with UPDATE_GOLDEN=1 to create.", path)
	}
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}
	if string(expected) != got {
		t.Errorf("output differs from golden file %s.\nRun with UPDATE_GOLDEN=1 to update.", path)
	}
}
