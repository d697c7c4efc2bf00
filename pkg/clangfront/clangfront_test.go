//go:build clang

package clangfront

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

func parseString(t *testing.T, src string) *cabs.Header {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.h")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	h, _, err := Parse(path, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return h
}

func TestAnonymousTypedef(t *testing.T) {
	h := parseString(t, "typedef struct { int x; int y; } Point;\n")
	var comp cabs.GComp
	var td cabs.GType
	for _, g := range h.Globals {
		switch g := g.(type) {
		case cabs.GComp:
			comp = g
		case cabs.GType:
			td = g
		}
	}
	ci := h.Arena.Comp(comp.ID)
	if ci.Name != "" || len(ci.Fields) != 2 {
		t.Fatalf("comp = %+v, want anonymous with two fields", ci)
	}
	if got, ok := h.Arena.Typedef(td.ID).Type.(ctypes.Tcomp); !ok || got.ID != comp.ID {
		t.Errorf("Point = %v, want comp#%d", h.Arena.Typedef(td.ID).Type, comp.ID)
	}
}

func TestFunctionsAndVariables(t *testing.T) {
	h := parseString(t, "int foo(int a, char *b, ...);\nextern const double scale;\nstatic int hidden;\n")
	if len(h.Globals) != 3 {
		t.Fatalf("got %d globals, want 3", len(h.Globals))
	}
	fn := h.Globals[0].(cabs.GFunc)
	ft := fn.Type.(ctypes.Tfunction)
	if !ft.VarArg || len(ft.Params) != 2 || ft.Params[1].Name != "b" {
		t.Errorf("foo = %+v", ft)
	}
	if v := h.Globals[1].(cabs.GVar); v.Name != "scale" {
		t.Errorf("var = %q, want scale", v.Name)
	}
	if _, ok := h.Globals[2].(cabs.GOther); !ok {
		t.Errorf("global 2 = %T, want GOther", h.Globals[2])
	}
}

func TestEnumValues(t *testing.T) {
	h := parseString(t, "enum e { A = -2, B, C = 10 };\n")
	ei := h.Arena.Enum(h.Globals[0].(cabs.GEnum).ID)
	want := []int64{-2, -1, 10}
	for i, it := range ei.Items {
		if it.Value != want[i] {
			t.Errorf("%s = %d, want %d", it.Name, it.Value, want[i])
		}
	}
}
