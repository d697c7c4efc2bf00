package rsgen

import (
	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// Dedup removes type-level entries that would declare an entity twice.
// A composite or enum definition is dropped when the entity is unnamed and
// is the direct body of some typedef, since the typedef emits it. Forward
// declarations are dropped when the entity is defined in the sequence, is
// such a typedef body, or was already forward-declared. Entities compare
// by handle, never by structure.
func Dedup(a *ctypes.Arena, globals []cabs.Global) []cabs.Global {
	bodyComps := make(map[ctypes.CompID]bool)
	bodyEnums := make(map[ctypes.EnumID]bool)
	definedComps := make(map[ctypes.CompID]bool)
	definedEnums := make(map[ctypes.EnumID]bool)
	for _, g := range globals {
		switch g := g.(type) {
		case cabs.GType:
			switch t := a.Typedef(g.ID).Type.(type) {
			case ctypes.Tcomp:
				bodyComps[t.ID] = true
			case ctypes.Tenum:
				bodyEnums[t.ID] = true
			}
		case cabs.GComp:
			definedComps[g.ID] = true
		case cabs.GEnum:
			definedEnums[g.ID] = true
		}
	}

	declaredComps := make(map[ctypes.CompID]bool)
	declaredEnums := make(map[ctypes.EnumID]bool)
	var out []cabs.Global
	for _, g := range globals {
		switch g := g.(type) {
		case cabs.GComp:
			if bodyComps[g.ID] && a.Comp(g.ID).Name == "" {
				continue
			}
		case cabs.GEnum:
			if bodyEnums[g.ID] && a.Enum(g.ID).Name == "" {
				continue
			}
		case cabs.GCompDecl:
			if definedComps[g.ID] || declaredComps[g.ID] ||
				(bodyComps[g.ID] && a.Comp(g.ID).Name == "") {
				continue
			}
			declaredComps[g.ID] = true
		case cabs.GEnumDecl:
			if definedEnums[g.ID] || declaredEnums[g.ID] ||
				(bodyEnums[g.ID] && a.Enum(g.ID).Name == "") {
				continue
			}
			declaredEnums[g.ID] = true
		}
		out = append(out, g)
	}
	return out
}
