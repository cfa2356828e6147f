package hash

import (
	"encoding/binary"
	"testing"

	"github.com/chazu/capscript/compiler"
)

func mustParse(t *testing.T, src string) []compiler.Stmt {
	t.Helper()
	stmts, err := compiler.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return stmts
}

func mustSerialize(t *testing.T, src string) []byte {
	t.Helper()
	data, err := Serialize(mustParse(t, src))
	if err != nil {
		t.Fatalf("Serialize(%q): %v", src, err)
	}
	return data
}

func TestSerialize_Deterministic(t *testing.T) {
	src := "for (obj.I = 0; obj.I < 3; obj.I++) { Print(obj.Add(obj.I, 2)); }"
	if string(mustSerialize(t, src)) != string(mustSerialize(t, src)) {
		t.Error("serialization is not deterministic")
	}
}

func TestSerialize_VersionPrefix(t *testing.T) {
	data := mustSerialize(t, "")
	// version(1) + count(4)
	if len(data) != 5 {
		t.Fatalf("length: got %d, want 5", len(data))
	}
	if data[0] != HashVersion {
		t.Errorf("version prefix: got 0x%02X, want 0x%02X", data[0], HashVersion)
	}
}

func TestSerialize_NumberLiteral(t *testing.T) {
	data := mustSerialize(t, "Print(12345)")
	// version(1) + count(4) + print tag(1) + number tag(1) + int32(4) = 11
	if len(data) != 11 {
		t.Fatalf("length: got %d, want 11", len(data))
	}
	if data[5] != TagPrint || data[6] != TagNumberLiteral {
		t.Errorf("tags: got 0x%02X 0x%02X", data[5], data[6])
	}
	if v := int32(binary.BigEndian.Uint32(data[7:11])); v != 12345 {
		t.Errorf("value: got %d, want 12345", v)
	}
}

func TestSerialize_IgnoresLayout(t *testing.T) {
	pairs := [][2]string{
		{"Print(1+2)", "Print( 1 + 2 );"},
		{"obj.X = (3)", "obj.X=3"},
		{"if (obj.A) Print(1)", "if (obj.A)\n\tPrint(1);"},
	}
	for _, p := range pairs {
		if string(mustSerialize(t, p[0])) != string(mustSerialize(t, p[1])) {
			t.Errorf("%q and %q serialize differently", p[0], p[1])
		}
	}
}

func TestSerialize_DistinguishesStructure(t *testing.T) {
	pairs := [][2]string{
		{"Print(1 + 2)", "Print(1 - 2)"},
		{"Print((1 + 2) * 3)", "Print(1 + 2 * 3)"},
		{"++obj.X", "obj.X++"},
		{"++obj.X", "--obj.X"},
		{"obj.F(1, 2)", "obj.F(1)"},
		{"if (obj.A) Print(1)", "if (obj.A) Print(1) else ;"},
		{"for (;;) ;", "for (; obj.A;) ;"},
		{`Print("1")`, "Print(1)"},
		{"Print(a.b)", "Print(b.a)"},
	}
	for _, p := range pairs {
		if string(mustSerialize(t, p[0])) == string(mustSerialize(t, p[1])) {
			t.Errorf("%q and %q serialize identically", p[0], p[1])
		}
	}
}

func TestSerialize_RejectsForeignNodes(t *testing.T) {
	bad := []compiler.Stmt{&compiler.ExprStmt{Expr: &compiler.Assignment{}}}
	if _, err := Serialize(bad); err == nil {
		t.Error("expected error for assignment without target")
	}
}
