// Package rsast defines the Rust item tree produced by the binding
// generator. Only the shapes the generator emits are modelled.
package rsast

import (
	"fmt"
	"strings"
)

// Ty is the interface for Rust types
type Ty interface {
	implTy()
	String() string
}

// TyPath is a named type such as c_int or Struct_foo
type TyPath struct {
	Name string
}

// TyPtr is a raw pointer
type TyPtr struct {
	Mut  bool
	Elem Ty
}

// TyArray is a fixed-length array
type TyArray struct {
	Elem Ty
	Len  int64
}

// TyUnit is ()
type TyUnit struct{}

func (TyPath) implTy()  {}
func (TyPtr) implTy()   {}
func (TyArray) implTy() {}
func (TyUnit) implTy()  {}

func (t TyPath) String() string { return t.Name }

func (t TyPtr) String() string {
	if t.Mut {
		return "*mut " + t.Elem.String()
	}
	return "*const " + t.Elem.String()
}

func (t TyArray) String() string { return fmt.Sprintf("[%s; %d]", t.Elem.String(), t.Len) }

func (TyUnit) String() string { return "()" }

// Path returns a TyPath
func Path(name string) Ty { return TyPath{Name: name} }

// ConstPtr returns *const elem
func ConstPtr(elem Ty) Ty { return TyPtr{Elem: elem} }

// Attr is an outer attribute. It renders as #[name], #[name = "value"]
// or #[name(args)].
type Attr struct {
	Name  string
	Value string
	Args  []string
}

func (a Attr) String() string {
	switch {
	case len(a.Args) > 0:
		return fmt.Sprintf("#[%s(%s)]", a.Name, strings.Join(a.Args, ", "))
	case a.Value != "":
		return fmt.Sprintf("#[%s = %q]", a.Name, a.Value)
	}
	return fmt.Sprintf("#[%s]", a.Name)
}

// ReprC is #[repr(C)]
func ReprC() Attr { return Attr{Name: "repr", Args: []string{"C"}} }

// LinkName is #[link_name = "symbol"]
func LinkName(symbol string) Attr { return Attr{Name: "link_name", Value: symbol} }

// Item is the interface for top-level items
type Item interface {
	implItem()
}

// Crate is the generated source file
type Crate struct {
	Comment string   // leading block comment, without delimiters
	Uses    []string // glob imports: "std::os::raw" prints use std::os::raw::*;
	Items   []Item
}

// TypeAlias is pub type Name = Ty;
type TypeAlias struct {
	Doc  []string
	Name string
	Ty   Ty
}

// Field is a pub struct field
type Field struct {
	Name string
	Ty   Ty
}

// Struct is a struct with named fields
type Struct struct {
	Doc    []string
	Attrs  []Attr
	Name   string
	Fields []Field
}

// Const is pub const Name: Ty = Value;. Unsigned prints Value as a uint64.
type Const struct {
	Name     string
	Ty       Ty
	Value    int64
	Unsigned bool
}

// Impl is an inherent impl block
type Impl struct {
	Type    string
	Methods []Method
}

// Method is a &self method. Ret nil means no return type.
type Method struct {
	Doc    []string
	Unsafe bool
	Name   string
	Ret    Ty
	Body   Expr
}

// ForeignMod is an extern block
type ForeignMod struct {
	Attrs []Attr
	ABI   string
	Items []ForeignItem
}

func (Crate) implItem()      {}
func (TypeAlias) implItem()  {}
func (Struct) implItem()     {}
func (Const) implItem()      {}
func (Impl) implItem()       {}
func (ForeignMod) implItem() {}

// ForeignItem is an item inside an extern block
type ForeignItem interface {
	implForeignItem()
}

// Param is a foreign function parameter
type Param struct {
	Name string
	Ty   Ty
}

// ForeignFn is pub fn name(params) [-> Ret];
type ForeignFn struct {
	Attrs  []Attr
	Name   string
	Params []Param
	Ret    Ty // nil or TyUnit: no return type is printed
}

// ForeignStatic is pub static [mut] NAME: Ty;
type ForeignStatic struct {
	Attrs []Attr
	Mut   bool
	Name  string
	Ty    Ty
}

func (ForeignFn) implForeignItem()     {}
func (ForeignStatic) implForeignItem() {}

// Expr is the interface for method body expressions
type Expr interface {
	implExpr()
}

// SelfCast reinterprets the receiver: self as *const Self as *const To
type SelfCast struct {
	To Ty
}

func (SelfCast) implExpr() {}
