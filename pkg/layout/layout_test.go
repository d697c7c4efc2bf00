package layout

import (
	"strings"
	"testing"

	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

func TestScalarSizes(t *testing.T) {
	tests := []struct {
		name   string
		typ    ctypes.Type
		target Target
		size   int64
		align  int64
	}{
		{"bool", ctypes.Tint{Kind: ctypes.IBool}, LP64, 1, 1},
		{"char", ctypes.Char(), LP64, 1, 1},
		{"short", ctypes.Tint{Kind: ctypes.IShort}, LP64, 2, 2},
		{"int", ctypes.Int(), LP64, 4, 4},
		{"long lp64", ctypes.Long(), LP64, 8, 8},
		{"long llp64", ctypes.Long(), LLP64, 4, 4},
		{"long long ilp32", ctypes.Tint{Kind: ctypes.ILongLong}, ILP32, 8, 8},
		{"float", ctypes.Float(), LP64, 4, 4},
		{"double", ctypes.Double(), LP64, 8, 8},
		{"pointer lp64", ctypes.Pointer(ctypes.Void()), LP64, 8, 8},
		{"pointer ilp32", ctypes.Pointer(ctypes.Void()), ILP32, 4, 4},
		{"array", ctypes.Array(ctypes.Int(), 10), LP64, 40, 4},
		{"void", ctypes.Void(), LP64, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(ctypes.NewArena(), tt.target)
			size, err := c.Sizeof(tt.typ)
			if err != nil {
				t.Fatalf("Sizeof: %v", err)
			}
			align, _ := c.Alignof(tt.typ)
			if size != tt.size || align != tt.align {
				t.Errorf("layout(%v) = (%d, %d), want (%d, %d)", tt.typ, size, align, tt.size, tt.align)
			}
		})
	}
}

func TestCompositeLayout(t *testing.T) {
	a := ctypes.NewArena()
	// struct { char c; int i; char d; } -> 12
	padded := a.AddComp(ctypes.CompInfo{Name: "padded", IsStruct: true, Fields: []ctypes.FieldInfo{
		{Name: "c", Type: ctypes.Char()},
		{Name: "i", Type: ctypes.Int()},
		{Name: "d", Type: ctypes.Char()},
	}})
	// union { int i; double d; char s[12]; } -> 16
	u := a.AddComp(ctypes.CompInfo{Name: "u", Fields: []ctypes.FieldInfo{
		{Name: "i", Type: ctypes.Int()},
		{Name: "d", Type: ctypes.Double()},
		{Name: "s", Type: ctypes.Array(ctypes.Char(), 12)},
	}})
	td := a.AddTypedef(ctypes.TypeInfo{Name: "u_t", Type: ctypes.Tcomp{ID: u}})
	e := a.AddEnum(ctypes.EnumInfo{Name: "e", Kind: ctypes.IUInt})
	outer := a.AddComp(ctypes.CompInfo{Name: "outer", IsStruct: true, Fields: []ctypes.FieldInfo{
		{Name: "e", Type: ctypes.Tenum{ID: e}},
		{Name: "v", Type: ctypes.Tnamed{ID: td}},
	}})

	c := New(a, LP64)
	tests := []struct {
		name string
		id   ctypes.CompID
		want int64
	}{
		{"padded struct", padded, 12},
		{"union", u, 16},
		{"nested through typedef", outer, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CompSize(tt.id)
			if err != nil {
				t.Fatalf("CompSize: %v", err)
			}
			if got != tt.want {
				t.Errorf("CompSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLayoutErrors(t *testing.T) {
	a := ctypes.NewArena()
	self := a.AddComp(ctypes.CompInfo{Name: "self", IsStruct: true})
	a.Comp(self).Fields = []ctypes.FieldInfo{{Name: "me", Type: ctypes.Tcomp{ID: self}}}
	loop := a.AddTypedef(ctypes.TypeInfo{Name: "loop"})
	a.Typedef(loop).Type = ctypes.Tnamed{ID: loop}

	c := New(a, LP64)
	tests := []struct {
		name string
		typ  ctypes.Type
		want string
	}{
		{"self containing", ctypes.Tcomp{ID: self}, "contains itself"},
		{"typedef cycle", ctypes.Tnamed{ID: loop}, "refers to itself"},
		{"dangling", ctypes.Tenum{ID: 5}, "dangling enum handle 5"},
		{"missing", nil, "missing type"},
		{"array overflow", ctypes.Array(ctypes.Long(), 1<<61), "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Sizeof(tt.typ)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Sizeof() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseTarget(t *testing.T) {
	for _, name := range []string{"", "lp64", "LLP64", "ilp32"} {
		if _, err := ParseTarget(name); err != nil {
			t.Errorf("ParseTarget(%q): %v", name, err)
		}
	}
	if _, err := ParseTarget("lp128"); err == nil {
		t.Error("expected error for unknown target")
	}
}
