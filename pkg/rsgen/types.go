package rsgen

import (
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
)

var intTypes = map[ctypes.IKind]string{
	ctypes.IBool:      "bool",
	ctypes.IChar:      "c_char",
	ctypes.ISChar:     "c_schar",
	ctypes.IUChar:     "c_uchar",
	ctypes.IShort:     "c_short",
	ctypes.IUShort:    "c_ushort",
	ctypes.IInt:       "c_int",
	ctypes.IUInt:      "c_uint",
	ctypes.ILong:      "c_long",
	ctypes.IULong:     "c_ulong",
	ctypes.ILongLong:  "c_longlong",
	ctypes.IULongLong: "c_ulonglong",
}

// voidTy is the opaque marker used for void and for forward declarations
var voidTy = rsast.Path("c_void")

// Translate maps a C type to a Rust type reference. Names come from the
// resolver, so Prepare must have run for the output to match emission.
func (g *Generator) Translate(t ctypes.Type) rsast.Ty {
	switch t := t.(type) {
	case ctypes.Tvoid:
		return voidTy
	case ctypes.Tint:
		if name, ok := intTypes[t.Kind]; ok {
			return rsast.Path(name)
		}
		return rsast.Path("c_int")
	case ctypes.Tfloat:
		if t.Kind == ctypes.FFloat {
			return rsast.Path("c_float")
		}
		return rsast.Path("c_double")
	case ctypes.Tpointer:
		return rsast.ConstPtr(g.Translate(t.Elem))
	case ctypes.Tarray:
		return rsast.TyArray{Elem: g.Translate(t.Elem), Len: t.Size}
	case ctypes.Tfunction:
		// function signatures are not reproduced
		return rsast.ConstPtr(rsast.Path("u8"))
	case ctypes.Tnamed:
		if body, ok := g.names.Adopted(t.ID); ok {
			return g.Translate(body)
		}
		return rsast.Path(g.names.ident(g.arena.Typedef(t.ID).Name))
	case ctypes.Tcomp:
		return rsast.Path(g.compTypeName(t.ID))
	case ctypes.Tenum:
		return rsast.Path(g.enumTypeName(t.ID))
	}
	return voidTy
}

func (g *Generator) compTypeName(id ctypes.CompID) string {
	if g.arena.Comp(id).IsStruct {
		return "Struct_" + g.names.CompName(id)
	}
	return "Union_" + g.names.CompName(id)
}

func (g *Generator) enumTypeName(id ctypes.EnumID) string {
	return "Enum_" + g.names.EnumName(id)
}
