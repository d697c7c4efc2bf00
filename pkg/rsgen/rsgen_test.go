package rsgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/config"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/layout"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
)

func generate(t *testing.T, h *cabs.Header, opts Options) string {
	t.Helper()
	crate, err := TranslateHeader(h, opts)
	if err != nil {
		t.Fatalf("TranslateHeader: %v", err)
	}
	return rsast.Format(crate)
}

func expectAll(t *testing.T, out string, expect ...string) {
	t.Helper()
	for _, exp := range expect {
		if !strings.Contains(out, exp) {
			t.Errorf("expected output to contain %q\nGot:\n%s", exp, out)
		}
	}
}

func expectNone(t *testing.T, out string, reject ...string) {
	t.Helper()
	for _, r := range reject {
		if strings.Contains(out, r) {
			t.Errorf("expected output not to contain %q\nGot:\n%s", r, out)
		}
	}
}

func fn(ret ctypes.Type, params ...ctypes.Param) ctypes.Type {
	return ctypes.Tfunction{Return: ret, Params: params}
}

func TestTypedefAnonymousStruct(t *testing.T) {
	h := cabs.NewHeader()
	s := h.Arena.AddComp(ctypes.CompInfo{IsStruct: true, Fields: []ctypes.FieldInfo{{Type: ctypes.Int()}}})
	td := h.Arena.AddTypedef(ctypes.TypeInfo{Name: "Point", Type: ctypes.Tcomp{ID: s}})
	h.Add(cabs.GComp{ID: s}, cabs.GType{ID: td})

	out := generate(t, h, Options{})
	expectAll(t, out,
		"/* automatically generated by rust-bindgen */",
		"use std::os::raw::*;",
		"#[repr(C)]\npub struct Struct_Point {\n    pub unnamed_field1: c_int,\n}\n",
	)
	expectNone(t, out, "Unnamed", "pub type Point")
	if n := strings.Count(out, "pub struct Struct_Point"); n != 1 {
		t.Errorf("Struct_Point declared %d times, want 1", n)
	}
}

func TestFunctionWithLink(t *testing.T) {
	h := cabs.NewHeader()
	h.Add(cabs.GFunc{VarInfo: cabs.VarInfo{
		Name: "foo",
		Type: fn(ctypes.Void(), ctypes.Param{Name: "x", Type: ctypes.Pointer(ctypes.Char())}),
	}})

	out := generate(t, h, Options{Link: "mylib"})
	expectAll(t, out, "#[link_args = \"-lmylib\"]\nextern \"C\" {\n    pub fn foo(x: *const c_char);\n}\n")
	if n := strings.Count(out, "extern \"C\""); n != 1 {
		t.Errorf("got %d extern blocks, want 1", n)
	}
}

func TestIdentityNotStructure(t *testing.T) {
	h := cabs.NewHeader()
	fields := []ctypes.FieldInfo{{Name: "a", Type: ctypes.Int()}}
	s1 := h.Arena.AddComp(ctypes.CompInfo{IsStruct: true, Fields: fields})
	s2 := h.Arena.AddComp(ctypes.CompInfo{IsStruct: true, Fields: fields})
	td := h.Arena.AddTypedef(ctypes.TypeInfo{Name: "p2", Type: ctypes.Pointer(ctypes.Tcomp{ID: s2})})
	h.Add(cabs.GComp{ID: s1}, cabs.GComp{ID: s2}, cabs.GType{ID: td})

	out := generate(t, h, Options{})
	expectAll(t, out,
		"pub struct Struct_Unnamed1 {",
		"pub struct Struct_Unnamed2 {",
		"pub type p2 = *const Struct_Unnamed2;",
	)
}

func TestResolverIdempotent(t *testing.T) {
	a := ctypes.NewArena()
	anon := a.AddComp(ctypes.CompInfo{IsStruct: true})
	named := a.AddComp(ctypes.CompInfo{Name: "named", IsStruct: true})
	e := a.AddEnum(ctypes.EnumInfo{})
	r := NewResolver(a, nil)

	first := r.CompName(anon)
	if second := r.CompName(anon); first != second {
		t.Errorf("CompName() = %q then %q, want stable name", first, second)
	}
	if first != "Unnamed1" {
		t.Errorf("CompName() = %q, want Unnamed1", first)
	}
	if got := r.CompName(named); got != "named" {
		t.Errorf("CompName() = %q, want named", got)
	}
	if got := r.EnumName(e); got != "Unnamed2" {
		t.Errorf("EnumName() = %q, want Unnamed2 (counter is shared)", got)
	}
	if a.Comp(anon).Name != "" {
		t.Error("resolver wrote to the arena")
	}
}

func TestIdentifier(t *testing.T) {
	r := NewResolver(ctypes.NewArena(), []string{"extra"})
	tests := []struct {
		raw     string
		want    string
		renamed bool
	}{
		{"type", "_type", true},
		{"match", "_match", true},
		{"Self", "_Self", true},
		{"gen", "_gen", true},
		{"extra", "_extra", true},
		{"typedef", "typedef", false},
		{"count", "count", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, renamed := r.Identifier(tt.raw)
			if got != tt.want || renamed != tt.renamed {
				t.Errorf("Identifier(%q) = (%q, %v), want (%q, %v)", tt.raw, got, renamed, tt.want, tt.renamed)
			}
		})
	}
}

func TestKeywordEscaping(t *testing.T) {
	h := cabs.NewHeader()
	s := h.Arena.AddComp(ctypes.CompInfo{Name: "s", IsStruct: true, Fields: []ctypes.FieldInfo{
		{Name: "type", Type: ctypes.Int()},
		{Name: "len", Type: ctypes.Int()},
	}})
	h.Add(
		cabs.GComp{ID: s},
		cabs.GVar{VarInfo: cabs.VarInfo{Name: "static", Type: ctypes.Int()}},
		cabs.GVar{VarInfo: cabs.VarInfo{Name: "counter", Type: ctypes.Int()}},
		cabs.GFunc{VarInfo: cabs.VarInfo{Name: "move", Type: fn(ctypes.Int(), ctypes.Param{Name: "ref", Type: ctypes.Int()})}},
	)

	out := generate(t, h, Options{})
	expectAll(t, out,
		"    pub _type: c_int,\n    pub len: c_int,\n",
		"    #[link_name = \"static\"]\n    pub static _static: c_int;\n",
		"    pub static counter: c_int;\n",
		"    #[link_name = \"move\"]\n    pub fn _move(_ref: c_int) -> c_int;\n",
	)
	expectNone(t, out, "#[link_name = \"counter\"]")
}

func TestAnonymousFieldNumbering(t *testing.T) {
	h := cabs.NewHeader()
	s := h.Arena.AddComp(ctypes.CompInfo{Name: "three", IsStruct: true, Fields: []ctypes.FieldInfo{
		{Type: ctypes.Int()},
		{Name: "named", Type: ctypes.Int()},
		{Type: ctypes.Char()},
		{Type: ctypes.Double()},
	}})
	u := h.Arena.AddComp(ctypes.CompInfo{Name: "u", Fields: []ctypes.FieldInfo{{Type: ctypes.Int()}}})
	h.Add(
		cabs.GComp{ID: s},
		cabs.GComp{ID: u},
		cabs.GFunc{VarInfo: cabs.VarInfo{Name: "f", Type: fn(ctypes.Void(),
			ctypes.Param{Type: ctypes.Int()}, ctypes.Param{Name: "n", Type: ctypes.Int()}, ctypes.Param{Type: ctypes.Int()})}},
	)

	out := generate(t, h, Options{})
	expectAll(t, out,
		"    pub unnamed_field1: c_int,\n    pub named: c_int,\n    pub unnamed_field2: c_char,\n    pub unnamed_field3: c_double,\n",
		"pub unsafe fn unnamed_field1(&self) -> *const c_int {",
		"pub fn f(arg1: c_int, n: c_int, arg2: c_int);",
	)
}

func TestUnionEmulation(t *testing.T) {
	h := cabs.NewHeader()
	fields := []ctypes.FieldInfo{
		{Name: "i", Type: ctypes.Int()},
		{Name: "d", Type: ctypes.Double()},
		{Name: "s", Type: ctypes.Array(ctypes.Char(), 12)},
	}
	u := h.Arena.AddComp(ctypes.CompInfo{Name: "value", Fields: fields})
	h.Add(cabs.GComp{ID: u})

	out := generate(t, h, Options{})
	expectAll(t, out,
		"/// C union, sixteen bytes of shared storage.\n#[repr(C)]\npub struct Union_value {\n    pub data: [c_uchar; 16],\n}\n",
		"impl Union_value {\n",
		"    /// # Safety\n    ///\n",
		"    pub unsafe fn i(&self) -> *const c_int {\n        self as *const Self as *const c_int\n    }\n",
		"    pub unsafe fn d(&self) -> *const c_double {",
		"    pub unsafe fn s(&self) -> *const [c_char; 12] {",
	)

	calc := layout.New(h.Arena, layout.LP64)
	size, _ := calc.CompSize(u)
	for _, f := range fields {
		fs, _ := calc.Sizeof(f.Type)
		if fs > size {
			t.Errorf("field %s size %d exceeds union size %d", f.Name, fs, size)
		}
	}
}

func TestUnionSizeFollowsTarget(t *testing.T) {
	h := cabs.NewHeader()
	u := h.Arena.AddComp(ctypes.CompInfo{Name: "p", Fields: []ctypes.FieldInfo{{Name: "ptr", Type: ctypes.Pointer(ctypes.Void())}}})
	h.Add(cabs.GComp{ID: u})

	cfg := config.Default()
	cfg.Target = "ilp32"
	out := generate(t, h, Options{Config: cfg})
	expectAll(t, out, "pub data: [c_uchar; 4],", "/// C union, four bytes of shared storage.")
}

func TestUnionSizeDoc(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{1, "C union, one byte of shared storage."},
		{16, "C union, sixteen bytes of shared storage."},
		{999999999999, "C union, nine hundred ninety-nine billion"},
		{1000000000000, "C union, 1000000000000 bytes of shared storage."},
		{8796093022208, "C union, 8796093022208 bytes of shared storage."},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := sizeDoc(tt.size); !strings.HasPrefix(got, tt.want) {
				t.Errorf("sizeDoc(%d) = %q, want prefix %q", tt.size, got, tt.want)
			}
		})
	}
}

func TestEnumFidelity(t *testing.T) {
	h := cabs.NewHeader()
	e := h.Arena.AddEnum(ctypes.EnumInfo{Name: "mode", Kind: ctypes.IInt, Items: []ctypes.EnumItem{
		{Name: "NEG", Value: -5},
		{Name: "ZERO", Value: 0},
		{Name: "ALSO_ZERO", Value: 0},
		{Name: "type", Value: 7},
	}})
	h.Add(cabs.GEnum{ID: e})

	out := generate(t, h, Options{})
	expectAll(t, out,
		"pub type Enum_mode = c_int;\npub const NEG: c_int = -5;\npub const ZERO: c_int = 0;\npub const ALSO_ZERO: c_int = 0;\npub const _type: c_int = 7;\n",
	)
}

func TestEnumUnsignedWide(t *testing.T) {
	h := cabs.NewHeader()
	e := h.Arena.AddEnum(ctypes.EnumInfo{Name: "mask", Kind: ctypes.IULongLong, Items: []ctypes.EnumItem{
		{Name: "NONE", Value: 0},
		{Name: "HI", Value: -1 << 63},
		{Name: "ALL", Value: -1},
	}})
	h.Add(cabs.GEnum{ID: e})

	out := generate(t, h, Options{})
	expectAll(t, out,
		"pub type Enum_mask = c_ulonglong;\npub const NONE: c_ulonglong = 0;\npub const HI: c_ulonglong = 9223372036854775808;\npub const ALL: c_ulonglong = 18446744073709551615;\n",
	)
}

func TestTypedefAnonymousEnumAndAliases(t *testing.T) {
	h := cabs.NewHeader()
	e := h.Arena.AddEnum(ctypes.EnumInfo{Kind: ctypes.IUInt, Items: []ctypes.EnumItem{{Name: "ON", Value: 1}}})
	state := h.Arena.AddTypedef(ctypes.TypeInfo{Name: "state_t", Type: ctypes.Tenum{ID: e}})
	again := h.Arena.AddTypedef(ctypes.TypeInfo{Name: "state_alias", Type: ctypes.Tenum{ID: e}})
	h.Add(
		cabs.GEnum{ID: e},
		cabs.GType{ID: state},
		cabs.GType{ID: again},
		cabs.GVar{VarInfo: cabs.VarInfo{Name: "current", Type: ctypes.Tnamed{ID: state}}},
	)

	out := generate(t, h, Options{})
	expectAll(t, out,
		"pub type Enum_state_t = c_uint;\npub const ON: c_uint = 1;\n",
		"pub type state_alias = Enum_state_t;",
		"pub static current: Enum_state_t;",
	)
	expectNone(t, out, "Unnamed", "pub type state_t")
	if n := strings.Count(out, "pub const ON"); n != 1 {
		t.Errorf("enum emitted %d times, want 1", n)
	}
}

func TestForwardDeclarations(t *testing.T) {
	h := cabs.NewHeader()
	opaqueComp := h.Arena.AddComp(ctypes.CompInfo{Name: "handle", IsStruct: true})
	defined := h.Arena.AddComp(ctypes.CompInfo{Name: "node", IsStruct: true})
	h.Arena.Comp(defined).Fields = []ctypes.FieldInfo{{Name: "next", Type: ctypes.Pointer(ctypes.Tcomp{ID: defined})}}
	opaqueEnum := h.Arena.AddEnum(ctypes.EnumInfo{Name: "flags"})
	h.Add(
		cabs.GCompDecl{ID: opaqueComp},
		cabs.GCompDecl{ID: defined},
		cabs.GComp{ID: defined},
		cabs.GCompDecl{ID: opaqueComp},
		cabs.GEnumDecl{ID: opaqueEnum},
	)

	out := generate(t, h, Options{})
	expectAll(t, out,
		"pub type Struct_handle = c_void;",
		"pub struct Struct_node {\n    pub next: *const Struct_node,\n}",
		"pub type Enum_flags = c_void;",
	)
	expectNone(t, out, "pub type Struct_node = c_void;")
	if n := strings.Count(out, "pub type Struct_handle"); n != 1 {
		t.Errorf("Struct_handle declared %d times, want 1", n)
	}
}

func TestUnnamedOrder(t *testing.T) {
	h := cabs.NewHeader()
	inVar := h.Arena.AddComp(ctypes.CompInfo{IsStruct: true})
	inFunc := h.Arena.AddComp(ctypes.CompInfo{IsStruct: true})
	inType := h.Arena.AddEnum(ctypes.EnumInfo{})
	td := h.Arena.AddTypedef(ctypes.TypeInfo{Name: "eptr", Type: ctypes.Pointer(ctypes.Tenum{ID: inType})})
	h.Add(
		cabs.GFunc{VarInfo: cabs.VarInfo{Name: "f", Type: fn(ctypes.Pointer(ctypes.Tcomp{ID: inFunc}))}},
		cabs.GVar{VarInfo: cabs.VarInfo{Name: "v", Type: ctypes.Tcomp{ID: inVar}}},
		cabs.GType{ID: td},
	)

	out := generate(t, h, Options{})
	expectAll(t, out,
		"pub type eptr = *const Enum_Unnamed1;",
		"pub static v: Struct_Unnamed2;",
		"pub fn f() -> *const Struct_Unnamed3;",
	)
}

func TestTypeTranslation(t *testing.T) {
	h := cabs.NewHeader()
	td := h.Arena.AddTypedef(ctypes.TypeInfo{Name: "impl", Type: ctypes.Int()})
	g := New(h, Options{})
	tests := []struct {
		name string
		typ  ctypes.Type
		want string
	}{
		{"void", ctypes.Void(), "c_void"},
		{"bool", ctypes.Tint{Kind: ctypes.IBool}, "bool"},
		{"schar", ctypes.Tint{Kind: ctypes.ISChar}, "c_schar"},
		{"ushort", ctypes.Tint{Kind: ctypes.IUShort}, "c_ushort"},
		{"ulonglong", ctypes.Tint{Kind: ctypes.IULongLong}, "c_ulonglong"},
		{"float", ctypes.Float(), "c_float"},
		{"pointer to pointer", ctypes.Pointer(ctypes.Pointer(ctypes.Long())), "*const *const c_long"},
		{"array", ctypes.Array(ctypes.UInt(), 3), "[c_uint; 3]"},
		{"function", fn(ctypes.Int()), "*const u8"},
		{"function pointer", ctypes.Pointer(fn(ctypes.Int())), "*const *const u8"},
		{"escaped typedef", ctypes.Tnamed{ID: td}, "_impl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Translate(tt.typ).String(); got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVariadicNote(t *testing.T) {
	h := cabs.NewHeader()
	h.Add(
		cabs.GFunc{VarInfo: cabs.VarInfo{Name: "printf", Type: ctypes.Tfunction{
			Return: ctypes.Int(),
			Params: []ctypes.Param{{Name: "fmt", Type: ctypes.Pointer(ctypes.Char())}},
			VarArg: true,
		}}},
		cabs.GOther{Note: "static int helper(void)"},
	)
	g := New(h, Options{})
	crate, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	expectAll(t, rsast.Format(crate), "pub fn printf(fmt: *const c_char) -> c_int;")
	notes := strings.Join(g.Notes(), "\n")
	expectAll(t, notes, "printf: variadic", "skipped: static int helper(void)")
}

func TestLinkStyleAndImport(t *testing.T) {
	h := cabs.NewHeader()
	cfg := config.Default()
	cfg.LinkStyle = config.LinkName
	cfg.Import = "libc"
	cfg.Link = "z"
	cfg.Header = ""

	out := generate(t, h, Options{Config: cfg})
	if !strings.HasPrefix(out, "use libc::*;") {
		t.Errorf("expected output to start with the import\nGot:\n%s", out)
	}
	expectAll(t, out, "#[link(name = \"z\")]\nextern \"C\" {\n}\n")

	out = generate(t, h, Options{Config: cfg, Link: "png"})
	expectAll(t, out, "#[link(name = \"png\")]")
}

func TestModelErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(h *cabs.Header)
		index int
		want  string
	}{
		{
			name: "function with non-function type",
			build: func(h *cabs.Header) {
				h.Add(cabs.GOther{}, cabs.GFunc{VarInfo: cabs.VarInfo{Name: "f", Type: ctypes.Int()}})
			},
			index: 1,
			want:  "non-function type",
		},
		{
			name: "variable without type",
			build: func(h *cabs.Header) {
				h.Add(cabs.GVar{VarInfo: cabs.VarInfo{Name: "v"}})
			},
			index: 0,
			want:  "missing type",
		},
		{
			name: "dangling composite",
			build: func(h *cabs.Header) {
				h.Add(cabs.GComp{ID: 4})
			},
			index: 0,
			want:  "dangling composite handle 4",
		},
		{
			name: "self containing union",
			build: func(h *cabs.Header) {
				u := h.Arena.AddComp(ctypes.CompInfo{Name: "u"})
				h.Arena.Comp(u).Fields = []ctypes.FieldInfo{{Name: "me", Type: ctypes.Tcomp{ID: u}}}
				h.Add(cabs.GComp{ID: u})
			},
			index: 0,
			want:  "union size",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := cabs.NewHeader()
			tt.build(h)
			crate, err := TranslateHeader(h, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if crate != nil {
				t.Error("partial output returned with error")
			}
			if !errors.Is(err, ErrModelShape) {
				t.Errorf("error %v does not wrap ErrModelShape", err)
			}
			var me *ModelError
			if !errors.As(err, &me) {
				t.Fatalf("error %T is not a *ModelError", err)
			}
			if me.Index != tt.index {
				t.Errorf("Index = %d, want %d", me.Index, tt.index)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestDedup(t *testing.T) {
	a := ctypes.NewArena()
	anon := a.AddComp(ctypes.CompInfo{IsStruct: true})
	named := a.AddComp(ctypes.CompInfo{Name: "tagged", IsStruct: true})
	twin := a.AddComp(ctypes.CompInfo{IsStruct: true})
	t1 := a.AddTypedef(ctypes.TypeInfo{Name: "A", Type: ctypes.Tcomp{ID: anon}})
	t2 := a.AddTypedef(ctypes.TypeInfo{Name: "B", Type: ctypes.Tcomp{ID: named}})

	in := []cabs.Global{
		cabs.GComp{ID: anon}, cabs.GType{ID: t1},
		cabs.GComp{ID: named}, cabs.GType{ID: t2},
		cabs.GComp{ID: twin},
	}
	got := Dedup(a, in)
	want := []cabs.Global{in[1], in[2], in[3], in[4]}
	if len(got) != len(want) {
		t.Fatalf("Dedup() returned %d globals, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dedup()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
