package rsgen

import (
	"fmt"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/config"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
)

// symbol escapes a linked name. A renamed symbol carries a link_name
// attribute holding the C identifier.
func (g *Generator) symbol(name string) (string, []rsast.Attr) {
	rust, renamed := g.names.Identifier(name)
	if renamed {
		return rust, []rsast.Attr{rsast.LinkName(name)}
	}
	return rust, nil
}

func (g *Generator) emitVar(v cabs.GVar) rsast.ForeignItem {
	name, attrs := g.symbol(v.Name)
	return rsast.ForeignStatic{Attrs: attrs, Name: name, Ty: g.Translate(v.Type)}
}

func (g *Generator) emitFunc(idx int, f cabs.GFunc) (rsast.ForeignItem, error) {
	ft, ok := g.arena.Resolve(f.Type).(ctypes.Tfunction)
	if !ok {
		return nil, &ModelError{Index: idx, Name: f.Name, Reason: fmt.Sprintf("function has non-function type %s", f.Type)}
	}
	if ft.VarArg {
		g.notef("%s: variadic arguments are not part of the generated signature", f.Name)
	}

	name, attrs := g.symbol(f.Name)
	fn := rsast.ForeignFn{Attrs: attrs, Name: name}
	args := fieldNamer{r: g.names, prefix: "arg"}
	for _, p := range ft.Params {
		fn.Params = append(fn.Params, rsast.Param{Name: args.name(p.Name), Ty: g.Translate(p.Type)})
	}
	if _, isVoid := g.arena.Resolve(ft.Return).(ctypes.Tvoid); isVoid {
		fn.Ret = rsast.TyUnit{}
	} else {
		fn.Ret = g.Translate(ft.Return)
	}
	return fn, nil
}

// externBlock wraps the foreign items in the single extern "C" block,
// tagged with the library when one is known.
func (g *Generator) externBlock(items []rsast.ForeignItem) rsast.ForeignMod {
	mod := rsast.ForeignMod{ABI: "C", Items: items}
	lib := g.opts.Link
	if lib == "" {
		lib = g.cfg.Link
	}
	if lib == "" {
		return mod
	}
	if g.cfg.LinkStyle == config.LinkName {
		mod.Attrs = []rsast.Attr{{Name: "link", Args: []string{fmt.Sprintf("name = %q", lib)}}}
	} else {
		mod.Attrs = []rsast.Attr{{Name: "link_args", Value: "-l" + lib}}
	}
	return mod
}
