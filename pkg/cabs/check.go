package cabs

import (
	"fmt"

	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// CheckType reports the first dangling handle reachable from t without
// entering typedef, composite or enum bodies. A nil t is reported as missing.
func CheckType(a *ctypes.Arena, t ctypes.Type) error {
	switch t := t.(type) {
	case nil:
		return fmt.Errorf("missing type")
	case ctypes.Tvoid, ctypes.Tint, ctypes.Tfloat:
		return nil
	case ctypes.Tpointer:
		return CheckType(a, t.Elem)
	case ctypes.Tarray:
		if t.Size < 0 {
			return fmt.Errorf("negative array length %d", t.Size)
		}
		return CheckType(a, t.Elem)
	case ctypes.Tfunction:
		if err := CheckType(a, t.Return); err != nil {
			return fmt.Errorf("return type: %w", err)
		}
		for i, p := range t.Params {
			if err := CheckType(a, p.Type); err != nil {
				return fmt.Errorf("parameter %d: %w", i+1, err)
			}
		}
		return nil
	case ctypes.Tnamed:
		if !a.HasTypedef(t.ID) {
			return fmt.Errorf("dangling typedef handle %d", t.ID)
		}
		return nil
	case ctypes.Tcomp:
		if !a.HasComp(t.ID) {
			return fmt.Errorf("dangling composite handle %d", t.ID)
		}
		return nil
	case ctypes.Tenum:
		if !a.HasEnum(t.ID) {
			return fmt.Errorf("dangling enum handle %d", t.ID)
		}
		return nil
	}
	return fmt.Errorf("unknown type %T", t)
}

// CheckHandles verifies that every handle in the header, including those
// inside arena entries, refers to an existing entity.
func (h *Header) CheckHandles() error {
	a := h.Arena
	if a == nil {
		return fmt.Errorf("header has no arena")
	}
	for i, ti := range a.Typedefs {
		if err := CheckType(a, ti.Type); err != nil {
			return fmt.Errorf("typedef %d (%s): %w", i, ti.Name, err)
		}
	}
	for i, ci := range a.Comps {
		for j, f := range ci.Fields {
			if err := CheckType(a, f.Type); err != nil {
				return fmt.Errorf("composite %d field %d: %w", i, j+1, err)
			}
		}
	}
	for i, g := range h.Globals {
		var err error
		switch g := g.(type) {
		case GType:
			if !a.HasTypedef(g.ID) {
				err = fmt.Errorf("dangling typedef handle %d", g.ID)
			}
		case GComp:
			if !a.HasComp(g.ID) {
				err = fmt.Errorf("dangling composite handle %d", g.ID)
			}
		case GCompDecl:
			if !a.HasComp(g.ID) {
				err = fmt.Errorf("dangling composite handle %d", g.ID)
			}
		case GEnum:
			if !a.HasEnum(g.ID) {
				err = fmt.Errorf("dangling enum handle %d", g.ID)
			}
		case GEnumDecl:
			if !a.HasEnum(g.ID) {
				err = fmt.Errorf("dangling enum handle %d", g.ID)
			}
		case GFunc:
			if g.Type != nil {
				err = CheckType(a, g.Type)
			}
		case GVar:
			if g.Type != nil {
				err = CheckType(a, g.Type)
			}
		}
		if err != nil {
			return fmt.Errorf("global %d: %w", i, err)
		}
	}
	return nil
}
