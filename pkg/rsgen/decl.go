package rsgen

import (
	"fmt"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
)

// emitType lowers one type-level global to Rust items
func (g *Generator) emitType(idx int, gl cabs.Global) ([]rsast.Item, error) {
	switch gl := gl.(type) {
	case cabs.GType:
		return g.emitTypedef(idx, gl.ID)
	case cabs.GComp:
		return g.emitComp(idx, gl.ID)
	case cabs.GCompDecl:
		return []rsast.Item{opaque(g.compTypeName(gl.ID))}, nil
	case cabs.GEnum:
		return g.emitEnum(gl.ID), nil
	case cabs.GEnumDecl:
		return []rsast.Item{opaque(g.enumTypeName(gl.ID))}, nil
	}
	return nil, nil
}

// emitTypedef emits either the full definition of the anonymous entity the
// typedef names, or a plain alias. Never both.
func (g *Generator) emitTypedef(idx int, id ctypes.TypeID) ([]rsast.Item, error) {
	if body, ok := g.names.Adopted(id); ok {
		switch b := body.(type) {
		case ctypes.Tcomp:
			return g.emitComp(idx, b.ID)
		case ctypes.Tenum:
			return g.emitEnum(b.ID), nil
		}
	}
	ti := g.arena.Typedef(id)
	return []rsast.Item{rsast.TypeAlias{
		Name: g.names.ident(ti.Name),
		Ty:   g.Translate(ti.Type),
	}}, nil
}

func (g *Generator) emitComp(idx int, id ctypes.CompID) ([]rsast.Item, error) {
	if g.arena.Comp(id).IsStruct {
		return []rsast.Item{g.emitStruct(id)}, nil
	}
	return g.emitUnion(idx, id)
}

// fieldNamer hands out member names for one declaration: explicit names are
// escaped, empty ones become prefix<k> with k counting from 1.
type fieldNamer struct {
	r      *Resolver
	prefix string
	n      int
}

func (f *fieldNamer) name(raw string) string {
	if raw == "" {
		f.n++
		return fmt.Sprintf("%s%d", f.prefix, f.n)
	}
	return f.r.ident(raw)
}

func (g *Generator) emitStruct(id ctypes.CompID) rsast.Item {
	ci := g.arena.Comp(id)
	names := fieldNamer{r: g.names, prefix: "unnamed_field"}
	st := rsast.Struct{
		Attrs: []rsast.Attr{rsast.ReprC()},
		Name:  g.compTypeName(id),
	}
	for _, f := range ci.Fields {
		st.Fields = append(st.Fields, rsast.Field{Name: names.name(f.Name), Ty: g.Translate(f.Type)})
	}
	return st
}

// emitEnum emits the storage alias followed by one constant per item, so
// values and width follow the C ABI whatever they are.
func (g *Generator) emitEnum(id ctypes.EnumID) []rsast.Item {
	ei := g.arena.Enum(id)
	storage := g.Translate(ctypes.Tint{Kind: ei.Kind})
	items := []rsast.Item{rsast.TypeAlias{Name: g.enumTypeName(id), Ty: storage}}
	for _, it := range ei.Items {
		items = append(items, rsast.Const{
			Name:     g.names.ident(it.Name),
			Ty:       storage,
			Value:    it.Value,
			Unsigned: !ei.Kind.Signed(),
		})
	}
	return items
}

// opaque is the placeholder for a declared but undefined type
func opaque(name string) rsast.Item {
	return rsast.TypeAlias{Name: name, Ty: voidTy}
}
