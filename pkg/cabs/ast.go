// Package cabs defines the top-level declarations of a C header as seen by
// the binding generator: an ordered list of globals over a ctypes.Arena.
package cabs

import "github.com/raymyers/ralph-bindgen/pkg/ctypes"

// Global is the interface for all top-level header entries
type Global interface {
	implGlobal()
}

// GType is a typedef declaration
type GType struct {
	ID ctypes.TypeID
}

// GComp is a full struct or union definition
type GComp struct {
	ID ctypes.CompID
}

// GCompDecl is a struct or union forward declaration
type GCompDecl struct {
	ID ctypes.CompID
}

// GEnum is a full enum definition
type GEnum struct {
	ID ctypes.EnumID
}

// GEnumDecl is an enum forward declaration
type GEnumDecl struct {
	ID ctypes.EnumID
}

// VarInfo names an external object or function and its type
type VarInfo struct {
	Name string
	Type ctypes.Type
}

// GFunc is a function declaration. Type is expected to be a Tfunction.
type GFunc struct {
	VarInfo
}

// GVar is an external variable declaration
type GVar struct {
	VarInfo
}

// GOther is an entry the front end kept for information only
// (a function definition with a body, a static object, ...).
type GOther struct {
	Note string
}

// Marker methods for interface implementation
func (GType) implGlobal()     {}
func (GComp) implGlobal()     {}
func (GCompDecl) implGlobal() {}
func (GEnum) implGlobal()     {}
func (GEnumDecl) implGlobal() {}
func (GFunc) implGlobal()     {}
func (GVar) implGlobal()      {}
func (GOther) implGlobal()    {}

// Header is a parsed header: the entity arena plus globals in declaration order
type Header struct {
	Arena   *ctypes.Arena
	Globals []Global
}

// NewHeader returns an empty header with its own arena
func NewHeader() *Header {
	return &Header{Arena: ctypes.NewArena()}
}

// Add appends globals in declaration order
func (h *Header) Add(gs ...Global) {
	h.Globals = append(h.Globals, gs...)
}
