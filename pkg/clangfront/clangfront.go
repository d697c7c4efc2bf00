//go:build clang

// Package clangfront builds a cabs.Header from a header parsed by libclang.
// It is only compiled with -tags clang since it links against libclang.
package clangfront

import (
	"fmt"
	"strings"

	"github.com/go-clang/clang-v13/clang"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// Parse parses filename with libclang. args are passed through as
// compiler flags (-I, -D, -U). Returns the header and informational notes.
func Parse(filename string, args []string) (*cabs.Header, []string, error) {
	idx := clang.NewIndex(0, 0)
	defer idx.Dispose()

	tu := idx.ParseTranslationUnit(filename, args, nil, 0)
	if tu == (clang.TranslationUnit{}) {
		return nil, nil, fmt.Errorf("libclang could not parse %s", filename)
	}
	defer tu.Dispose()

	var errs []string
	for _, d := range tu.Diagnostics() {
		if d.Severity() >= clang.Diagnostic_Error {
			errs = append(errs, d.Spelling())
		}
		d.Dispose()
	}
	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("parse errors:\n  %s", strings.Join(errs, "\n  "))
	}

	b := newBuilder()
	tu.TranslationUnitCursor().Visit(func(c, parent clang.Cursor) clang.ChildVisitResult {
		if !c.Location().IsInSystemHeader() {
			b.decl(c)
		}
		return clang.ChildVisit_Continue
	})
	return b.h, b.notes, nil
}

// builder maps clang cursors to arena entities. Entities are keyed by USR
// so a forward declaration and its definition share one handle.
type builder struct {
	h        *cabs.Header
	typedefs map[string]ctypes.TypeID
	comps    map[string]ctypes.CompID
	enums    map[string]ctypes.EnumID
	defined  map[string]bool
	symbols  map[string]bool
	notes    []string
}

func newBuilder() *builder {
	return &builder{
		h:        cabs.NewHeader(),
		typedefs: make(map[string]ctypes.TypeID),
		comps:    make(map[string]ctypes.CompID),
		enums:    make(map[string]ctypes.EnumID),
		defined:  make(map[string]bool),
		symbols:  make(map[string]bool),
	}
}

func (b *builder) notef(format string, args ...interface{}) {
	b.notes = append(b.notes, fmt.Sprintf(format, args...))
}

func (b *builder) decl(c clang.Cursor) {
	switch c.Kind() {
	case clang.Cursor_StructDecl, clang.Cursor_UnionDecl:
		b.comp(c)
	case clang.Cursor_EnumDecl:
		b.enum(c)
	case clang.Cursor_TypedefDecl:
		b.typedefID(c)
	case clang.Cursor_FunctionDecl:
		name := c.Spelling()
		switch {
		case c.IsCursorDefinition():
			b.h.Add(cabs.GOther{Note: "function definition " + name})
		case c.StorageClass() == clang.SC_Static:
			b.h.Add(cabs.GOther{Note: "static function " + name})
		case !b.symbols[name]:
			b.symbols[name] = true
			b.h.Add(cabs.GFunc{VarInfo: cabs.VarInfo{Name: name, Type: b.funcType(c)}})
		}
	case clang.Cursor_VarDecl:
		name := c.Spelling()
		switch {
		case c.StorageClass() == clang.SC_Static:
			b.h.Add(cabs.GOther{Note: "static variable " + name})
		case !b.symbols[name]:
			b.symbols[name] = true
			b.h.Add(cabs.GVar{VarInfo: cabs.VarInfo{Name: name, Type: b.typ(c.Type())}})
		}
	}
}

// tagName returns the tag of a record or enum, empty when anonymous
func tagName(c clang.Cursor) string {
	name := c.Spelling()
	if strings.Contains(name, "(unnamed") || strings.Contains(name, "(anonymous") {
		return ""
	}
	return name
}

func (b *builder) compID(c clang.Cursor) ctypes.CompID {
	usr := c.USR()
	if id, ok := b.comps[usr]; ok {
		return id
	}
	id := b.h.Arena.AddComp(ctypes.CompInfo{
		Name:     tagName(c),
		IsStruct: c.Kind() == clang.Cursor_StructDecl,
	})
	b.comps[usr] = id
	return id
}

// comp records a struct or union. A definition met later completes a
// handle created by an earlier reference.
func (b *builder) comp(c clang.Cursor) ctypes.CompID {
	usr := c.USR()
	_, seen := b.comps[usr]
	id := b.compID(c)
	if b.defined[usr] {
		return id
	}
	def := c.Definition()
	if def.IsNull() {
		if !seen {
			b.h.Add(cabs.GCompDecl{ID: id})
		}
		return id
	}
	b.defined[usr] = true
	fields := b.fields(def)
	b.h.Arena.Comp(id).Fields = fields
	b.h.Add(cabs.GComp{ID: id})
	return id
}

// fields collects members in order. A nested anonymous record that no
// field refers to is an anonymous member.
func (b *builder) fields(def clang.Cursor) []ctypes.FieldInfo {
	var fields []ctypes.FieldInfo
	pending := ""
	var pendingID ctypes.CompID
	flush := func() {
		if pending != "" {
			fields = append(fields, ctypes.FieldInfo{Type: ctypes.Tcomp{ID: pendingID}})
			pending = ""
		}
	}
	def.Visit(func(child, parent clang.Cursor) clang.ChildVisitResult {
		switch child.Kind() {
		case clang.Cursor_StructDecl, clang.Cursor_UnionDecl:
			flush()
			id := b.comp(child)
			if tagName(child) == "" {
				pending, pendingID = child.USR(), id
			}
		case clang.Cursor_EnumDecl:
			b.enum(child)
		case clang.Cursor_FieldDecl:
			if decl := child.Type().Declaration(); !decl.IsNull() && decl.USR() == pending {
				pending = ""
			}
			flush()
			if w := child.FieldDeclBitWidth(); w >= 0 {
				b.notef("bit-field %s of width %d laid out as a plain type", child.Spelling(), w)
			}
			fields = append(fields, ctypes.FieldInfo{Name: child.Spelling(), Type: b.typ(child.Type())})
		}
		return clang.ChildVisit_Continue
	})
	flush()
	return fields
}

func (b *builder) enum(c clang.Cursor) ctypes.EnumID {
	usr := c.USR()
	id, seen := b.enums[usr]
	if !seen {
		id = b.h.Arena.AddEnum(ctypes.EnumInfo{Name: tagName(c), Kind: ctypes.IUInt})
		b.enums[usr] = id
	}
	if b.defined[usr] {
		return id
	}
	def := c.Definition()
	if def.IsNull() {
		if !seen {
			b.h.Add(cabs.GEnumDecl{ID: id})
		}
		return id
	}
	b.defined[usr] = true
	var items []ctypes.EnumItem
	def.Visit(func(child, parent clang.Cursor) clang.ChildVisitResult {
		if child.Kind() == clang.Cursor_EnumConstantDecl {
			items = append(items, ctypes.EnumItem{Name: child.Spelling(), Value: child.EnumConstantDeclValue()})
		}
		return clang.ChildVisit_Continue
	})
	ei := b.h.Arena.Enum(id)
	ei.Items = items
	if k, ok := intKind(def.EnumDeclIntegerType().CanonicalType().Kind()); ok {
		ei.Kind = k
	}
	b.h.Add(cabs.GEnum{ID: id})
	return id
}

// typedefID registers a typedef the first time it is met, either at top
// level or through a reference from another declaration
func (b *builder) typedefID(c clang.Cursor) ctypes.TypeID {
	usr := c.USR()
	if id, ok := b.typedefs[usr]; ok {
		return id
	}
	id := b.h.Arena.AddTypedef(ctypes.TypeInfo{Name: c.Spelling()})
	b.typedefs[usr] = id
	underlying := b.typ(c.TypedefDeclUnderlyingType())
	b.h.Arena.Typedef(id).Type = underlying
	b.h.Add(cabs.GType{ID: id})
	return id
}

func (b *builder) funcType(c clang.Cursor) ctypes.Type {
	ft, ok := b.typ(c.Type()).(ctypes.Tfunction)
	if !ok {
		return b.typ(c.Type())
	}
	// parameter names live on the cursor, not the type
	n := int(c.NumArguments())
	for i := 0; i < n && i < len(ft.Params); i++ {
		ft.Params[i].Name = c.Argument(uint32(i)).Spelling()
	}
	return ft
}

var intKinds = map[clang.TypeKind]ctypes.IKind{
	clang.Type_Bool:      ctypes.IBool,
	clang.Type_Char_S:    ctypes.IChar,
	clang.Type_Char_U:    ctypes.IChar,
	clang.Type_SChar:     ctypes.ISChar,
	clang.Type_UChar:     ctypes.IUChar,
	clang.Type_Short:     ctypes.IShort,
	clang.Type_UShort:    ctypes.IUShort,
	clang.Type_Int:       ctypes.IInt,
	clang.Type_UInt:      ctypes.IUInt,
	clang.Type_Long:      ctypes.ILong,
	clang.Type_ULong:     ctypes.IULong,
	clang.Type_LongLong:  ctypes.ILongLong,
	clang.Type_ULongLong: ctypes.IULongLong,
}

func intKind(k clang.TypeKind) (ctypes.IKind, bool) {
	ik, ok := intKinds[k]
	return ik, ok
}

func (b *builder) typ(t clang.Type) ctypes.Type {
	if k, ok := intKind(t.Kind()); ok {
		return ctypes.Tint{Kind: k}
	}
	switch t.Kind() {
	case clang.Type_Void:
		return ctypes.Void()
	case clang.Type_Float:
		return ctypes.Float()
	case clang.Type_Double, clang.Type_LongDouble:
		return ctypes.Double()
	case clang.Type_Pointer:
		return ctypes.Pointer(b.typ(t.PointeeType()))
	case clang.Type_ConstantArray:
		return ctypes.Array(b.typ(t.ArrayElementType()), t.ArraySize())
	case clang.Type_IncompleteArray:
		return ctypes.Array(b.typ(t.ArrayElementType()), 0)
	case clang.Type_FunctionProto, clang.Type_FunctionNoProto:
		ft := ctypes.Tfunction{Return: b.typ(t.ResultType()), VarArg: t.IsFunctionTypeVariadic()}
		for i := int32(0); i < t.NumArgTypes(); i++ {
			pt := b.typ(t.ArgType(uint32(i)))
			if arr, ok := pt.(ctypes.Tarray); ok {
				pt = ctypes.Pointer(arr.Elem)
			}
			ft.Params = append(ft.Params, ctypes.Param{Type: pt})
		}
		return ft
	case clang.Type_Elaborated:
		return b.typ(t.NamedType())
	case clang.Type_Typedef:
		return ctypes.Tnamed{ID: b.typedefID(t.Declaration())}
	case clang.Type_Record:
		return ctypes.Tcomp{ID: b.comp(t.Declaration())}
	case clang.Type_Enum:
		return ctypes.Tenum{ID: b.enum(t.Declaration())}
	}
	canon := t.CanonicalType()
	if canon.Kind() != t.Kind() {
		return b.typ(canon)
	}
	b.notef("type %s has no C model, using void", t.Spelling())
	return ctypes.Void()
}
