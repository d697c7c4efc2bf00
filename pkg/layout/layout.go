// Package layout computes natural C sizes and alignments of model types.
// Bit-fields and packing attributes are not modelled.
package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// Target is a C data model
type Target struct {
	Name    string
	Long    int64 // sizeof(long)
	Pointer int64 // sizeof(void *)
}

var (
	LP64  = Target{Name: "lp64", Long: 8, Pointer: 8}
	LLP64 = Target{Name: "llp64", Long: 4, Pointer: 8}
	ILP32 = Target{Name: "ilp32", Long: 4, Pointer: 4}
)

// ParseTarget maps a data model name to its Target. The empty string
// selects LP64.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "", "lp64":
		return LP64, nil
	case "llp64":
		return LLP64, nil
	case "ilp32":
		return ILP32, nil
	}
	return Target{}, fmt.Errorf("unknown target %q (want lp64, llp64 or ilp32)", name)
}

// Calc computes layouts against one arena. Composite results are memoized.
type Calc struct {
	arena  *ctypes.Arena
	target Target
	comps  map[ctypes.CompID]info
	active map[ctypes.CompID]bool
	types  map[ctypes.TypeID]bool
}

type info struct {
	size, align int64
}

// New creates a calculator for the given arena and target
func New(a *ctypes.Arena, target Target) *Calc {
	return &Calc{
		arena:  a,
		target: target,
		comps:  make(map[ctypes.CompID]info),
		active: make(map[ctypes.CompID]bool),
		types:  make(map[ctypes.TypeID]bool),
	}
}

// Sizeof returns the size in bytes of t
func (c *Calc) Sizeof(t ctypes.Type) (int64, error) {
	i, err := c.layout(t)
	return i.size, err
}

// Alignof returns the alignment in bytes of t
func (c *Calc) Alignof(t ctypes.Type) (int64, error) {
	i, err := c.layout(t)
	return i.align, err
}

// CompSize returns the size of a struct or union entity
func (c *Calc) CompSize(id ctypes.CompID) (int64, error) {
	i, err := c.comp(id)
	return i.size, err
}

func (c *Calc) scalar(n int64) info {
	return info{size: n, align: n}
}

func (c *Calc) intSize(k ctypes.IKind) int64 {
	switch k {
	case ctypes.IBool, ctypes.IChar, ctypes.ISChar, ctypes.IUChar:
		return 1
	case ctypes.IShort, ctypes.IUShort:
		return 2
	case ctypes.IInt, ctypes.IUInt:
		return 4
	case ctypes.ILong, ctypes.IULong:
		return c.target.Long
	case ctypes.ILongLong, ctypes.IULongLong:
		return 8
	}
	return 4
}

func (c *Calc) layout(t ctypes.Type) (info, error) {
	switch t := t.(type) {
	case nil:
		return info{}, fmt.Errorf("missing type")
	case ctypes.Tvoid:
		return info{size: 0, align: 1}, nil
	case ctypes.Tint:
		return c.scalar(c.intSize(t.Kind)), nil
	case ctypes.Tfloat:
		if t.Kind == ctypes.FFloat {
			return c.scalar(4), nil
		}
		return c.scalar(8), nil
	case ctypes.Tpointer, ctypes.Tfunction:
		// function designators only reach layout as code pointers
		return c.scalar(c.target.Pointer), nil
	case ctypes.Tarray:
		elem, err := c.layout(t.Elem)
		if err != nil {
			return info{}, err
		}
		if elem.size != 0 && t.Size > math.MaxInt64/elem.size {
			return info{}, fmt.Errorf("array of %d elements of %d bytes is too large", t.Size, elem.size)
		}
		return info{size: t.Size * elem.size, align: elem.align}, nil
	case ctypes.Tnamed:
		if !c.arena.HasTypedef(t.ID) {
			return info{}, fmt.Errorf("dangling typedef handle %d", t.ID)
		}
		if c.types[t.ID] {
			return info{}, fmt.Errorf("typedef %s refers to itself", c.arena.Typedef(t.ID).Name)
		}
		c.types[t.ID] = true
		defer delete(c.types, t.ID)
		return c.layout(c.arena.Typedef(t.ID).Type)
	case ctypes.Tcomp:
		return c.comp(t.ID)
	case ctypes.Tenum:
		if !c.arena.HasEnum(t.ID) {
			return info{}, fmt.Errorf("dangling enum handle %d", t.ID)
		}
		return c.scalar(c.intSize(c.arena.Enum(t.ID).Kind)), nil
	}
	return info{}, fmt.Errorf("unknown type %T", t)
}

func (c *Calc) comp(id ctypes.CompID) (info, error) {
	if i, ok := c.comps[id]; ok {
		return i, nil
	}
	if !c.arena.HasComp(id) {
		return info{}, fmt.Errorf("dangling composite handle %d", id)
	}
	ci := c.arena.Comp(id)
	if c.active[id] {
		return info{}, fmt.Errorf("composite %q contains itself", ci.Name)
	}
	c.active[id] = true
	defer delete(c.active, id)

	var size, align int64 = 0, 1
	for _, f := range ci.Fields {
		fi, err := c.layout(f.Type)
		if err != nil {
			return info{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if fi.align > align {
			align = fi.align
		}
		if ci.IsStruct {
			size = alignUp(size, fi.align) + fi.size
		} else if fi.size > size {
			size = fi.size
		}
	}
	i := info{size: alignUp(size, align), align: align}
	c.comps[id] = i
	return i, nil
}

// alignUp rounds n up to the nearest multiple of align
func alignUp(n, align int64) int64 {
	if align == 0 {
		return n
	}
	return ((n + align - 1) / align) * align
}
