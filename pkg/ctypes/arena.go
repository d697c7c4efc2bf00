package ctypes

// TypeInfo is a typedef: a name bound to an underlying type
type TypeInfo struct {
	Name string
	Type Type
}

// FieldInfo is a struct or union member; Name is empty for anonymous members
type FieldInfo struct {
	Name string
	Type Type
}

// CompInfo is a struct (IsStruct) or union. Name is empty when anonymous.
type CompInfo struct {
	Name     string
	IsStruct bool
	Fields   []FieldInfo
}

// EnumItem is one enumerator
type EnumItem struct {
	Name  string
	Value int64
}

// EnumInfo is an enum with its storage integer kind
type EnumInfo struct {
	Name  string
	Items []EnumItem
	Kind  IKind
}

// Arena owns every typedef, composite and enum of a header.
// Entities are addressed by the handles returned from the Add methods.
type Arena struct {
	Typedefs []TypeInfo
	Comps    []CompInfo
	Enums    []EnumInfo
}

// NewArena returns an empty arena
func NewArena() *Arena {
	return &Arena{}
}

// AddTypedef stores a typedef and returns its handle
func (a *Arena) AddTypedef(ti TypeInfo) TypeID {
	a.Typedefs = append(a.Typedefs, ti)
	return TypeID(len(a.Typedefs) - 1)
}

// AddComp stores a composite and returns its handle
func (a *Arena) AddComp(ci CompInfo) CompID {
	a.Comps = append(a.Comps, ci)
	return CompID(len(a.Comps) - 1)
}

// AddEnum stores an enum and returns its handle
func (a *Arena) AddEnum(ei EnumInfo) EnumID {
	a.Enums = append(a.Enums, ei)
	return EnumID(len(a.Enums) - 1)
}

// Typedef returns the typedef for id. The pointer is only valid until the
// next AddTypedef.
func (a *Arena) Typedef(id TypeID) *TypeInfo {
	return &a.Typedefs[id]
}

// Comp returns the composite for id. The pointer is only valid until the
// next AddComp.
func (a *Arena) Comp(id CompID) *CompInfo {
	return &a.Comps[id]
}

// Enum returns the enum for id. The pointer is only valid until the next
// AddEnum.
func (a *Arena) Enum(id EnumID) *EnumInfo {
	return &a.Enums[id]
}

// HasTypedef reports whether id is a valid typedef handle
func (a *Arena) HasTypedef(id TypeID) bool { return id >= 0 && int(id) < len(a.Typedefs) }

// HasComp reports whether id is a valid composite handle
func (a *Arena) HasComp(id CompID) bool { return id >= 0 && int(id) < len(a.Comps) }

// HasEnum reports whether id is a valid enum handle
func (a *Arena) HasEnum(id EnumID) bool { return id >= 0 && int(id) < len(a.Enums) }

// Resolve strips typedefs until a non-named type is reached. Cyclic
// typedef chains (only possible in a malformed model) stop at the cycle.
func (a *Arena) Resolve(t Type) Type {
	seen := make(map[TypeID]bool)
	for {
		n, ok := t.(Tnamed)
		if !ok || !a.HasTypedef(n.ID) || seen[n.ID] {
			return t
		}
		seen[n.ID] = true
		t = a.Typedefs[n.ID].Type
	}
}
