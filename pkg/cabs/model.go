package cabs

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
)

// modelFile is the YAML form of a Header. Globals reference arena entries
// by index.
type modelFile struct {
	Typedefs []typedefNode `yaml:"typedefs,omitempty"`
	Comps    []compNode    `yaml:"comps,omitempty"`
	Enums    []enumNode    `yaml:"enums,omitempty"`
	Globals  []globalNode  `yaml:"globals"`
}

type typedefNode struct {
	Name string   `yaml:"name"`
	Type typeNode `yaml:"type"`
}

type fieldNode struct {
	Name string   `yaml:"name,omitempty"`
	Type typeNode `yaml:"type"`
}

type compNode struct {
	Name   string      `yaml:"name"`
	Kind   string      `yaml:"kind"`
	Fields []fieldNode `yaml:"fields,omitempty"`
}

type itemNode struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

type enumNode struct {
	Name  string     `yaml:"name"`
	Kind  string     `yaml:"kind,omitempty"`
	Items []itemNode `yaml:"items,omitempty"`
}

type varNode struct {
	Name string   `yaml:"name"`
	Type typeNode `yaml:"type"`
}

type globalNode struct {
	Typedef  *int     `yaml:"typedef,omitempty"`
	Comp     *int     `yaml:"comp,omitempty"`
	CompDecl *int     `yaml:"comp_decl,omitempty"`
	Enum     *int     `yaml:"enum,omitempty"`
	EnumDecl *int     `yaml:"enum_decl,omitempty"`
	Func     *varNode `yaml:"func,omitempty"`
	Var      *varNode `yaml:"var,omitempty"`
	Other    *string  `yaml:"other,omitempty"`
}

type arrayNode struct {
	Elem typeNode `yaml:"elem"`
	Len  int64    `yaml:"len"`
}

type paramNode struct {
	Name string   `yaml:"name,omitempty"`
	Type typeNode `yaml:"type"`
}

type funcNode struct {
	Ret      typeNode    `yaml:"ret"`
	Params   []paramNode `yaml:"params,omitempty"`
	Variadic bool        `yaml:"variadic,omitempty"`
}

// typeNode wraps a ctypes.Type for YAML. Scalars are written by name
// ("int", "double", "void"); everything else is a single-key mapping.
type typeNode struct {
	T ctypes.Type
}

func (n *typeNode) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		t, err := scalarType(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		n.T = t
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: type mapping must have exactly one key", value.Line)
		}
		key, body := value.Content[0].Value, value.Content[1]
		switch key {
		case "ptr":
			var elem typeNode
			if err := body.Decode(&elem); err != nil {
				return err
			}
			n.T = ctypes.Tpointer{Elem: elem.T}
		case "array":
			var a arrayNode
			if err := body.Decode(&a); err != nil {
				return err
			}
			n.T = ctypes.Tarray{Elem: a.Elem.T, Size: a.Len}
		case "func":
			var f funcNode
			if err := body.Decode(&f); err != nil {
				return err
			}
			ret := f.Ret.T
			if ret == nil {
				ret = ctypes.Void()
			}
			fn := ctypes.Tfunction{Return: ret, VarArg: f.Variadic}
			for _, p := range f.Params {
				fn.Params = append(fn.Params, ctypes.Param{Name: p.Name, Type: p.Type.T})
			}
			n.T = fn
		case "named", "comp", "enum":
			var id int
			if err := body.Decode(&id); err != nil {
				return err
			}
			switch key {
			case "named":
				n.T = ctypes.Tnamed{ID: ctypes.TypeID(id)}
			case "comp":
				n.T = ctypes.Tcomp{ID: ctypes.CompID(id)}
			default:
				n.T = ctypes.Tenum{ID: ctypes.EnumID(id)}
			}
		default:
			return fmt.Errorf("line %d: unknown type constructor %q", value.Line, key)
		}
		return nil
	}
	return fmt.Errorf("line %d: expected a type", value.Line)
}

func (n typeNode) MarshalYAML() (interface{}, error) {
	switch t := n.T.(type) {
	case nil:
		return nil, nil
	case ctypes.Tvoid:
		return "void", nil
	case ctypes.Tint:
		return t.Kind.String(), nil
	case ctypes.Tfloat:
		return t.Kind.String(), nil
	case ctypes.Tpointer:
		return map[string]typeNode{"ptr": {T: t.Elem}}, nil
	case ctypes.Tarray:
		return map[string]arrayNode{"array": {Elem: typeNode{T: t.Elem}, Len: t.Size}}, nil
	case ctypes.Tfunction:
		f := funcNode{Ret: typeNode{T: t.Return}, Variadic: t.VarArg}
		for _, p := range t.Params {
			f.Params = append(f.Params, paramNode{Name: p.Name, Type: typeNode{T: p.Type}})
		}
		return map[string]funcNode{"func": f}, nil
	case ctypes.Tnamed:
		return map[string]int{"named": int(t.ID)}, nil
	case ctypes.Tcomp:
		return map[string]int{"comp": int(t.ID)}, nil
	case ctypes.Tenum:
		return map[string]int{"enum": int(t.ID)}, nil
	}
	return nil, fmt.Errorf("cannot encode type %T", n.T)
}

func scalarType(s string) (ctypes.Type, error) {
	switch s {
	case "void":
		return ctypes.Void(), nil
	case "float":
		return ctypes.Float(), nil
	case "double":
		return ctypes.Double(), nil
	}
	if k, ok := ctypes.ParseIKind(s); ok {
		return ctypes.Tint{Kind: k}, nil
	}
	return nil, fmt.Errorf("unknown scalar type %q", s)
}

// ReadModel decodes a YAML model and checks its handles
func ReadModel(r io.Reader) (*Header, error) {
	var mf modelFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding model: %w", err)
	}

	h := NewHeader()
	for _, td := range mf.Typedefs {
		h.Arena.AddTypedef(ctypes.TypeInfo{Name: td.Name, Type: td.Type.T})
	}
	for i, c := range mf.Comps {
		ci := ctypes.CompInfo{Name: c.Name}
		switch c.Kind {
		case "struct", "":
			ci.IsStruct = true
		case "union":
		default:
			return nil, fmt.Errorf("composite %d: unknown kind %q", i, c.Kind)
		}
		for _, f := range c.Fields {
			ci.Fields = append(ci.Fields, ctypes.FieldInfo{Name: f.Name, Type: f.Type.T})
		}
		h.Arena.AddComp(ci)
	}
	for i, e := range mf.Enums {
		ei := ctypes.EnumInfo{Name: e.Name, Kind: ctypes.IUInt}
		if e.Kind != "" {
			k, ok := ctypes.ParseIKind(e.Kind)
			if !ok {
				return nil, fmt.Errorf("enum %d: unknown storage kind %q", i, e.Kind)
			}
			ei.Kind = k
		}
		for _, it := range e.Items {
			ei.Items = append(ei.Items, ctypes.EnumItem{Name: it.Name, Value: it.Value})
		}
		h.Arena.AddEnum(ei)
	}
	for i, g := range mf.Globals {
		global, err := g.global()
		if err != nil {
			return nil, fmt.Errorf("global %d: %w", i, err)
		}
		h.Add(global)
	}
	if err := h.CheckHandles(); err != nil {
		return nil, err
	}
	return h, nil
}

func (g globalNode) global() (Global, error) {
	var out []Global
	if g.Typedef != nil {
		out = append(out, GType{ID: ctypes.TypeID(*g.Typedef)})
	}
	if g.Comp != nil {
		out = append(out, GComp{ID: ctypes.CompID(*g.Comp)})
	}
	if g.CompDecl != nil {
		out = append(out, GCompDecl{ID: ctypes.CompID(*g.CompDecl)})
	}
	if g.Enum != nil {
		out = append(out, GEnum{ID: ctypes.EnumID(*g.Enum)})
	}
	if g.EnumDecl != nil {
		out = append(out, GEnumDecl{ID: ctypes.EnumID(*g.EnumDecl)})
	}
	if g.Func != nil {
		out = append(out, GFunc{VarInfo{Name: g.Func.Name, Type: g.Func.Type.T}})
	}
	if g.Var != nil {
		out = append(out, GVar{VarInfo{Name: g.Var.Name, Type: g.Var.Type.T}})
	}
	if g.Other != nil {
		out = append(out, GOther{Note: *g.Other})
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("expected exactly one declaration kind, got %d", len(out))
	}
	return out[0], nil
}

// LoadModel reads a YAML model file
func LoadModel(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModel(f)
}

// WriteModel encodes a header as YAML
func WriteModel(w io.Writer, h *Header) error {
	mf := modelFile{}
	for _, ti := range h.Arena.Typedefs {
		mf.Typedefs = append(mf.Typedefs, typedefNode{Name: ti.Name, Type: typeNode{T: ti.Type}})
	}
	for _, ci := range h.Arena.Comps {
		c := compNode{Name: ci.Name, Kind: "union"}
		if ci.IsStruct {
			c.Kind = "struct"
		}
		for _, f := range ci.Fields {
			c.Fields = append(c.Fields, fieldNode{Name: f.Name, Type: typeNode{T: f.Type}})
		}
		mf.Comps = append(mf.Comps, c)
	}
	for _, ei := range h.Arena.Enums {
		e := enumNode{Name: ei.Name, Kind: ei.Kind.String()}
		for _, it := range ei.Items {
			e.Items = append(e.Items, itemNode{Name: it.Name, Value: it.Value})
		}
		mf.Enums = append(mf.Enums, e)
	}
	for _, g := range h.Globals {
		mf.Globals = append(mf.Globals, nodeFor(g))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&mf); err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}
	return enc.Close()
}

func nodeFor(g Global) globalNode {
	idx := func(i int) *int { return &i }
	switch g := g.(type) {
	case GType:
		return globalNode{Typedef: idx(int(g.ID))}
	case GComp:
		return globalNode{Comp: idx(int(g.ID))}
	case GCompDecl:
		return globalNode{CompDecl: idx(int(g.ID))}
	case GEnum:
		return globalNode{Enum: idx(int(g.ID))}
	case GEnumDecl:
		return globalNode{EnumDecl: idx(int(g.ID))}
	case GFunc:
		return globalNode{Func: &varNode{Name: g.Name, Type: typeNode{T: g.Type}}}
	case GVar:
		return globalNode{Var: &varNode{Name: g.Name, Type: typeNode{T: g.Type}}}
	case GOther:
		note := g.Note
		return globalNode{Other: &note}
	}
	note := fmt.Sprintf("unknown global %T", g)
	return globalNode{Other: &note}
}
