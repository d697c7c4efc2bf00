package rsgen

import (
	"fmt"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// rustKeywords are the strict and reserved keywords of Rust 2021, plus gen
var rustKeywords = []string{
	"as", "async", "await", "break", "const", "continue", "crate", "dyn",
	"else", "enum", "extern", "false", "fn", "for", "if", "impl", "in",
	"let", "loop", "match", "mod", "move", "mut", "pub", "ref", "return",
	"self", "Self", "static", "struct", "super", "trait", "true", "type",
	"unsafe", "use", "where", "while",
	"abstract", "become", "box", "do", "final", "gen", "macro", "override",
	"priv", "try", "typeof", "unsized", "virtual", "yield",
}

// Resolver assigns output names. Composite and enum names live in a side
// table keyed by handle; the arena is never written. One anonymous counter
// is shared by structs, unions and enums for the whole run.
type Resolver struct {
	arena    *ctypes.Arena
	keywords map[string]bool
	unnamed  int
	comps    map[ctypes.CompID]string
	enums    map[ctypes.EnumID]string
	adopted  map[ctypes.TypeID]ctypes.Type // typedef -> the anonymous entity it names
}

// NewResolver creates a resolver over an arena. extra names are escaped in
// addition to the Rust keywords.
func NewResolver(a *ctypes.Arena, extra []string) *Resolver {
	r := &Resolver{
		arena:    a,
		keywords: make(map[string]bool),
		comps:    make(map[ctypes.CompID]string),
		enums:    make(map[ctypes.EnumID]string),
		adopted:  make(map[ctypes.TypeID]ctypes.Type),
	}
	for _, k := range rustKeywords {
		r.keywords[k] = true
	}
	for _, k := range extra {
		r.keywords[k] = true
	}
	return r
}

// Identifier escapes raw when it is a reserved word. The bool reports
// whether it was renamed.
func (r *Resolver) Identifier(raw string) (string, bool) {
	if r.keywords[raw] {
		return "_" + raw, true
	}
	return raw, false
}

func (r *Resolver) ident(raw string) string {
	name, _ := r.Identifier(raw)
	return name
}

func (r *Resolver) next() string {
	r.unnamed++
	return fmt.Sprintf("Unnamed%d", r.unnamed)
}

// CompName returns the name of a composite, assigning Unnamed<k> on first
// use when it has none. Later calls return the same name.
func (r *Resolver) CompName(id ctypes.CompID) string {
	if name, ok := r.comps[id]; ok {
		return name
	}
	name := r.arena.Comp(id).Name
	if name == "" {
		name = r.next()
	}
	r.comps[id] = name
	return name
}

// EnumName is CompName for enums
func (r *Resolver) EnumName(id ctypes.EnumID) string {
	if name, ok := r.enums[id]; ok {
		return name
	}
	name := r.arena.Enum(id).Name
	if name == "" {
		name = r.next()
	}
	r.enums[id] = name
	return name
}

// Adopted returns the anonymous composite or enum that typedef id names,
// if any.
func (r *Resolver) Adopted(id ctypes.TypeID) (ctypes.Type, bool) {
	t, ok := r.adopted[id]
	return t, ok
}

// anonymousBody returns t when it is directly an unnamed composite or enum
func anonymousBody(a *ctypes.Arena, t ctypes.Type) (ctypes.Type, bool) {
	switch t := t.(type) {
	case ctypes.Tcomp:
		return t, a.Comp(t.ID).Name == ""
	case ctypes.Tenum:
		return t, a.Enum(t.ID).Name == ""
	}
	return nil, false
}

// Prepare fixes every name before emission. Typedefs first adopt the
// anonymous entities they directly name, first typedef winning. The rest
// are numbered in output order: types, then variables, then functions.
func (r *Resolver) Prepare(types, vars, funcs []cabs.Global) {
	for _, g := range types {
		gt, ok := g.(cabs.GType)
		if !ok {
			continue
		}
		ti := r.arena.Typedef(gt.ID)
		body, ok := anonymousBody(r.arena, ti.Type)
		if !ok {
			continue
		}
		switch b := body.(type) {
		case ctypes.Tcomp:
			if _, named := r.comps[b.ID]; !named {
				r.comps[b.ID] = ti.Name
				r.adopted[gt.ID] = b
			}
		case ctypes.Tenum:
			if _, named := r.enums[b.ID]; !named {
				r.enums[b.ID] = ti.Name
				r.adopted[gt.ID] = b
			}
		}
	}

	for _, g := range types {
		switch g := g.(type) {
		case cabs.GType:
			if body, ok := r.adopted[g.ID]; ok {
				r.walkBody(body)
				continue
			}
			r.walk(r.arena.Typedef(g.ID).Type)
		case cabs.GComp:
			r.CompName(g.ID)
			r.walkBody(ctypes.Tcomp{ID: g.ID})
		case cabs.GCompDecl:
			r.CompName(g.ID)
		case cabs.GEnum:
			r.EnumName(g.ID)
		case cabs.GEnumDecl:
			r.EnumName(g.ID)
		}
	}
	for _, g := range vars {
		if v, ok := g.(cabs.GVar); ok {
			r.walk(v.Type)
		}
	}
	for _, g := range funcs {
		f, ok := g.(cabs.GFunc)
		if !ok {
			continue
		}
		if ft, ok := r.arena.Resolve(f.Type).(ctypes.Tfunction); ok {
			r.walk(ft.Return)
			for _, p := range ft.Params {
				r.walk(p.Type)
			}
		}
	}
}

// walk names the entities a type reference mentions, in the order the
// translator visits them. Nested function types collapse to a code
// pointer and are not entered.
func (r *Resolver) walk(t ctypes.Type) {
	switch t := t.(type) {
	case ctypes.Tpointer:
		r.walk(t.Elem)
	case ctypes.Tarray:
		r.walk(t.Elem)
	case ctypes.Tcomp:
		r.CompName(t.ID)
	case ctypes.Tenum:
		r.EnumName(t.ID)
	}
}

func (r *Resolver) walkBody(t ctypes.Type) {
	switch t := t.(type) {
	case ctypes.Tcomp:
		for _, f := range r.arena.Comp(t.ID).Fields {
			r.walk(f.Type)
		}
	case ctypes.Tenum:
		r.EnumName(t.ID)
	}
}
