// Package cabs provides printing of a header model back to C declarations
package cabs

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// Printer outputs the header model as C declarations, one global per line
// group, in declaration order. Anonymous composites are printed inline.
type Printer struct {
	w      io.Writer
	arena  *ctypes.Arena
	indent int
}

// NewPrinter creates a new header printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintHeader prints every global of the header
func (p *Printer) PrintHeader(h *Header) {
	p.arena = h.Arena
	for _, g := range h.Globals {
		p.printGlobal(g)
	}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printGlobal(g Global) {
	switch g := g.(type) {
	case GType:
		ti := p.arena.Typedef(g.ID)
		fmt.Fprintf(p.w, "typedef %s;\n", p.declString(ti.Type, ti.Name))
	case GComp:
		p.printCompDef(g.ID)
		fmt.Fprintln(p.w, ";")
	case GCompDecl:
		fmt.Fprintf(p.w, "%s;\n", p.compTag(g.ID))
	case GEnum:
		p.printEnumDef(g.ID)
		fmt.Fprintln(p.w, ";")
	case GEnumDecl:
		fmt.Fprintf(p.w, "%s;\n", p.enumTag(g.ID))
	case GFunc:
		fmt.Fprintf(p.w, "extern %s;\n", p.declString(g.Type, g.Name))
	case GVar:
		fmt.Fprintf(p.w, "extern %s;\n", p.declString(g.Type, g.Name))
	case GOther:
		fmt.Fprintf(p.w, "/* %s */\n", g.Note)
	default:
		fmt.Fprintf(p.w, "/* unknown global %T */\n", g)
	}
}

func (p *Printer) compTag(id ctypes.CompID) string {
	ci := p.arena.Comp(id)
	kw := "union"
	if ci.IsStruct {
		kw = "struct"
	}
	if ci.Name == "" {
		return kw
	}
	return kw + " " + ci.Name
}

func (p *Printer) enumTag(id ctypes.EnumID) string {
	ei := p.arena.Enum(id)
	if ei.Name == "" {
		return "enum"
	}
	return "enum " + ei.Name
}

func (p *Printer) printCompDef(id ctypes.CompID) {
	ci := p.arena.Comp(id)
	fmt.Fprintf(p.w, "%s {\n", p.compTag(id))
	p.indent++
	for _, f := range ci.Fields {
		p.writeIndent()
		fmt.Fprintf(p.w, "%s;\n", p.declString(f.Type, f.Name))
	}
	p.indent--
	p.writeIndent()
	fmt.Fprint(p.w, "}")
}

func (p *Printer) printEnumDef(id ctypes.EnumID) {
	ei := p.arena.Enum(id)
	fmt.Fprintf(p.w, "%s {\n", p.enumTag(id))
	p.indent++
	for _, it := range ei.Items {
		p.writeIndent()
		if ei.Kind.Signed() {
			fmt.Fprintf(p.w, "%s = %d,\n", it.Name, it.Value)
		} else {
			fmt.Fprintf(p.w, "%s = %d,\n", it.Name, uint64(it.Value))
		}
	}
	p.indent--
	p.writeIndent()
	fmt.Fprint(p.w, "}")
}

// declString renders a C declarator for name of type t, inside out
func (p *Printer) declString(t ctypes.Type, name string) string {
	switch t := t.(type) {
	case ctypes.Tpointer:
		inner := "*" + name
		switch t.Elem.(type) {
		case ctypes.Tarray, ctypes.Tfunction:
			inner = "(" + inner + ")"
		}
		return p.declString(t.Elem, inner)
	case ctypes.Tarray:
		return p.declString(t.Elem, fmt.Sprintf("%s[%d]", name, t.Size))
	case ctypes.Tfunction:
		var params []string
		for _, prm := range t.Params {
			params = append(params, p.declString(prm.Type, prm.Name))
		}
		if t.VarArg {
			params = append(params, "...")
		}
		if len(params) == 0 {
			params = []string{"void"}
		}
		return p.declString(t.Return, name+"("+strings.Join(params, ", ")+")")
	}
	base := p.baseString(t)
	if name == "" {
		return base
	}
	return base + " " + name
}

func (p *Printer) baseString(t ctypes.Type) string {
	switch t := t.(type) {
	case nil:
		return "/* missing type */ int"
	case ctypes.Tnamed:
		return p.arena.Typedef(t.ID).Name
	case ctypes.Tcomp:
		if p.arena.Comp(t.ID).Name == "" {
			var sb strings.Builder
			w := p.w
			p.w = &sb
			p.printCompDef(t.ID)
			p.w = w
			return sb.String()
		}
		return p.compTag(t.ID)
	case ctypes.Tenum:
		if p.arena.Enum(t.ID).Name == "" {
			var sb strings.Builder
			w := p.w
			p.w = &sb
			p.printEnumDef(t.ID)
			p.w = w
			return sb.String()
		}
		return p.enumTag(t.ID)
	}
	return t.String()
}
