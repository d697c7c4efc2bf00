// Package ctypes defines the C type model consumed by the binding generator.
// Composite, enum and typedef entities live in an Arena and are referenced
// by handle, so two references to the same entity compare equal by ID.
package ctypes

import "fmt"

// Type is the interface for all C types
type Type interface {
	implType()
	String() string
}

// IKind is the integer subkind of a Tint
type IKind int

const (
	IBool IKind = iota
	IChar
	ISChar
	IUChar
	IShort
	IUShort
	IInt
	IUInt
	ILong
	IULong
	ILongLong
	IULongLong
)

var ikindNames = []string{
	"bool", "char", "schar", "uchar", "short", "ushort",
	"int", "uint", "long", "ulong", "longlong", "ulonglong",
}

func (k IKind) String() string {
	if int(k) >= 0 && int(k) < len(ikindNames) {
		return ikindNames[k]
	}
	return "?"
}

// ParseIKind maps a short kind name ("int", "ushort", ...) back to its IKind.
func ParseIKind(s string) (IKind, bool) {
	for i, n := range ikindNames {
		if n == s {
			return IKind(i), true
		}
	}
	return 0, false
}

// Signed reports whether the kind is a signed integer type. Plain char is
// treated as signed, matching the common ABIs.
func (k IKind) Signed() bool {
	switch k {
	case IChar, ISChar, IShort, IInt, ILong, ILongLong:
		return true
	}
	return false
}

// FKind is the floating-point subkind of a Tfloat
type FKind int

const (
	FFloat FKind = iota
	FDouble
)

func (k FKind) String() string {
	if k == FFloat {
		return "float"
	}
	return "double"
}

// TypeID addresses a TypeInfo in an Arena
type TypeID int

// CompID addresses a CompInfo in an Arena
type CompID int

// EnumID addresses an EnumInfo in an Arena
type EnumID int

// Tvoid represents the void type
type Tvoid struct{}

// Tint represents integer types
type Tint struct {
	Kind IKind
}

// Tfloat represents floating-point types
type Tfloat struct {
	Kind FKind
}

// Tpointer represents pointer types
type Tpointer struct {
	Elem Type
}

// Tarray represents fixed-size array types
type Tarray struct {
	Elem Type
	Size int64
}

// Param is one function parameter; Name may be empty
type Param struct {
	Name string
	Type Type
}

// Tfunction represents function types
type Tfunction struct {
	Return Type
	Params []Param
	VarArg bool
}

// Tnamed references a typedef
type Tnamed struct {
	ID TypeID
}

// Tcomp references a struct or union
type Tcomp struct {
	ID CompID
}

// Tenum references an enum
type Tenum struct {
	ID EnumID
}

// Marker methods for Type interface
func (Tvoid) implType()     {}
func (Tint) implType()      {}
func (Tfloat) implType()    {}
func (Tpointer) implType()  {}
func (Tarray) implType()    {}
func (Tfunction) implType() {}
func (Tnamed) implType()    {}
func (Tcomp) implType()     {}
func (Tenum) implType()     {}

// String methods for types
func (Tvoid) String() string { return "void" }

func (t Tint) String() string {
	switch t.Kind {
	case IBool:
		return "_Bool"
	case IChar:
		return "char"
	case ISChar:
		return "signed char"
	case IUChar:
		return "unsigned char"
	case IShort:
		return "short"
	case IUShort:
		return "unsigned short"
	case IInt:
		return "int"
	case IUInt:
		return "unsigned int"
	case ILong:
		return "long"
	case IULong:
		return "unsigned long"
	case ILongLong:
		return "long long"
	case IULongLong:
		return "unsigned long long"
	}
	return "int"
}

func (t Tfloat) String() string {
	if t.Kind == FFloat {
		return "float"
	}
	return "double"
}

func (t Tpointer) String() string {
	if t.Elem == nil {
		return "void *"
	}
	return t.Elem.String() + " *"
}

func (t Tarray) String() string {
	if t.Elem == nil {
		return fmt.Sprintf("?[%d]", t.Size)
	}
	return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Size)
}

func (t Tfunction) String() string {
	return "function"
}

func (t Tnamed) String() string { return fmt.Sprintf("typedef#%d", t.ID) }
func (t Tcomp) String() string  { return fmt.Sprintf("comp#%d", t.ID) }
func (t Tenum) String() string  { return fmt.Sprintf("enum#%d", t.ID) }

// Common type constructors

// Void returns the void type
func Void() Type {
	return Tvoid{}
}

// Int returns a signed int type
func Int() Type {
	return Tint{Kind: IInt}
}

// UInt returns an unsigned int type
func UInt() Type {
	return Tint{Kind: IUInt}
}

// Char returns a plain char type
func Char() Type {
	return Tint{Kind: IChar}
}

// UChar returns an unsigned char type
func UChar() Type {
	return Tint{Kind: IUChar}
}

// Long returns a signed long type
func Long() Type {
	return Tint{Kind: ILong}
}

// Float returns a float type
func Float() Type {
	return Tfloat{Kind: FFloat}
}

// Double returns a double type
func Double() Type {
	return Tfloat{Kind: FDouble}
}

// Pointer returns a pointer to the given type
func Pointer(elem Type) Type {
	return Tpointer{Elem: elem}
}

// Array returns an array type
func Array(elem Type, size int64) Type {
	return Tarray{Elem: elem, Size: size}
}

// Equal checks if two types are equal. Named, composite and enum
// references compare by handle: two distinct anonymous structs with the
// same fields are different types.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Kind == tb.Kind
	case Tfloat:
		tb, ok := b.(Tfloat)
		return ok && ta.Kind == tb.Kind
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Size == tb.Size && Equal(ta.Elem, tb.Elem)
	case Tnamed:
		tb, ok := b.(Tnamed)
		return ok && ta.ID == tb.ID
	case Tcomp:
		tb, ok := b.(Tcomp)
		return ok && ta.ID == tb.ID
	case Tenum:
		tb, ok := b.(Tenum)
		return ok && ta.ID == tb.ID
	case Tfunction:
		tb, ok := b.(Tfunction)
		if !ok || ta.VarArg != tb.VarArg || len(ta.Params) != len(tb.Params) {
			return false
		}
		if !Equal(ta.Return, tb.Return) {
			return false
		}
		for i, p := range ta.Params {
			if !Equal(p.Type, tb.Params[i].Type) {
				return false
			}
		}
		return true
	}
	return false
}
