package rsgen

import (
	"fmt"

	"github.com/divan/num2words"

	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
)

// emitUnion emulates a C union as a byte buffer of the union's size with
// one accessor per member. Each accessor reinterprets the buffer address
// as a pointer to the member type.
func (g *Generator) emitUnion(idx int, id ctypes.CompID) ([]rsast.Item, error) {
	ci := g.arena.Comp(id)
	name := g.compTypeName(id)
	size, err := g.layout.CompSize(id)
	if err != nil {
		return nil, &ModelError{Index: idx, Name: name, Reason: fmt.Sprintf("union size: %v", err)}
	}

	st := rsast.Struct{
		Doc:   []string{sizeDoc(size)},
		Attrs: []rsast.Attr{rsast.ReprC()},
		Name:  name,
		Fields: []rsast.Field{{
			Name: "data",
			Ty:   rsast.TyArray{Elem: g.Translate(ctypes.UChar()), Len: size},
		}},
	}

	impl := rsast.Impl{Type: name}
	names := fieldNamer{r: g.names, prefix: "unnamed_field"}
	for _, f := range ci.Fields {
		fname := names.name(f.Name)
		fty := g.Translate(f.Type)
		impl.Methods = append(impl.Methods, rsast.Method{
			Doc: []string{
				"# Safety",
				"",
				fmt.Sprintf("The storage is read as `%s`. `%s` must be the active member.", fty, fname),
			},
			Unsafe: true,
			Name:   fname,
			Ret:    rsast.ConstPtr(fty),
			Body:   rsast.SelfCast{To: fty},
		})
	}

	items := []rsast.Item{st}
	if len(impl.Methods) > 0 {
		items = append(items, impl)
	}
	return items, nil
}

func sizeDoc(size int64) string {
	unit := "bytes"
	if size == 1 {
		unit = "byte"
	}
	// num2words only spells sizes below a trillion
	if size >= 1e12 {
		return fmt.Sprintf("C union, %d %s of shared storage.", size, unit)
	}
	return fmt.Sprintf("C union, %s %s of shared storage.", num2words.Convert(int(size)), unit)
}
