package rsast

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs the item tree as Rust source
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new Rust printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("    ", p.indent))
}

func (p *Printer) line(format string, args ...interface{}) {
	p.writeIndent()
	fmt.Fprintf(p.w, format, args...)
	fmt.Fprintln(p.w)
}

// PrintCrate prints a complete source file
func (p *Printer) PrintCrate(c *Crate) {
	if c.Comment != "" {
		fmt.Fprintf(p.w, "/* %s */\n\n", c.Comment)
	}
	for _, u := range c.Uses {
		fmt.Fprintf(p.w, "use %s::*;\n", u)
	}
	if len(c.Uses) > 0 && len(c.Items) > 0 {
		fmt.Fprintln(p.w)
	}
	var prev Item
	for _, it := range c.Items {
		if prev != nil && !continues(prev, it) {
			fmt.Fprintln(p.w)
		}
		p.PrintItem(it)
		prev = it
	}
}

// continues reports whether it belongs to the same group as prev: an enum
// alias is followed by its constants with no blank line.
func continues(prev, it Item) bool {
	if _, ok := it.(Const); !ok {
		return false
	}
	switch prev.(type) {
	case Const, TypeAlias:
		return true
	}
	return false
}

// PrintItem prints one item
func (p *Printer) PrintItem(it Item) {
	switch it := it.(type) {
	case TypeAlias:
		p.printDoc(it.Doc)
		p.line("pub type %s = %s;", it.Name, it.Ty)
	case Struct:
		p.printDoc(it.Doc)
		p.printAttrs(it.Attrs)
		if len(it.Fields) == 0 {
			p.line("pub struct %s;", it.Name)
			return
		}
		p.line("pub struct %s {", it.Name)
		p.indent++
		for _, f := range it.Fields {
			p.line("pub %s: %s,", f.Name, f.Ty)
		}
		p.indent--
		p.line("}")
	case Const:
		if it.Unsigned {
			p.line("pub const %s: %s = %d;", it.Name, it.Ty, uint64(it.Value))
		} else {
			p.line("pub const %s: %s = %d;", it.Name, it.Ty, it.Value)
		}
	case Impl:
		p.line("impl %s {", it.Type)
		p.indent++
		for i, m := range it.Methods {
			if i > 0 {
				fmt.Fprintln(p.w)
			}
			p.printMethod(m)
		}
		p.indent--
		p.line("}")
	case ForeignMod:
		p.printAttrs(it.Attrs)
		p.line("extern %q {", it.ABI)
		p.indent++
		for _, fi := range it.Items {
			p.printForeignItem(fi)
		}
		p.indent--
		p.line("}")
	case Crate:
		p.PrintCrate(&it)
	default:
		p.line("// unknown item %T", it)
	}
}

func (p *Printer) printDoc(doc []string) {
	for _, d := range doc {
		if d == "" {
			p.line("///")
			continue
		}
		p.line("/// %s", d)
	}
}

func (p *Printer) printAttrs(attrs []Attr) {
	for _, a := range attrs {
		p.line("%s", a)
	}
}

func (p *Printer) printMethod(m Method) {
	p.printDoc(m.Doc)
	sig := "pub fn"
	if m.Unsafe {
		sig = "pub unsafe fn"
	}
	ret := ""
	if m.Ret != nil {
		if _, unit := m.Ret.(TyUnit); !unit {
			ret = " -> " + m.Ret.String()
		}
	}
	p.line("%s %s(&self)%s {", sig, m.Name, ret)
	p.indent++
	p.line("%s", exprString(m.Body))
	p.indent--
	p.line("}")
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case SelfCast:
		return fmt.Sprintf("self as *const Self as %s", ConstPtr(e.To))
	case nil:
		return "()"
	}
	return fmt.Sprintf("/* unknown expression %T */", e)
}

func (p *Printer) printForeignItem(fi ForeignItem) {
	switch fi := fi.(type) {
	case ForeignStatic:
		p.printAttrs(fi.Attrs)
		kw := "static"
		if fi.Mut {
			kw = "static mut"
		}
		p.line("pub %s %s: %s;", kw, fi.Name, fi.Ty)
	case ForeignFn:
		p.printAttrs(fi.Attrs)
		params := make([]string, len(fi.Params))
		for i, prm := range fi.Params {
			params[i] = prm.Name + ": " + prm.Ty.String()
		}
		ret := ""
		if fi.Ret != nil {
			if _, unit := fi.Ret.(TyUnit); !unit {
				ret = " -> " + fi.Ret.String()
			}
		}
		p.line("pub fn %s(%s)%s;", fi.Name, strings.Join(params, ", "), ret)
	default:
		p.line("// unknown foreign item %T", fi)
	}
}

// Format renders a crate to a string
func Format(c *Crate) string {
	var sb strings.Builder
	NewPrinter(&sb).PrintCrate(c)
	return sb.String()
}
