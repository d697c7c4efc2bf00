// Package rsgen translates a C declaration model into Rust FFI items.
// This mirrors the code generator of the early rust-bindgen.
package rsgen

import (
	"errors"
	"fmt"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/config"
	"github.com/raymyers/ralph-bindgen/pkg/ctypes"
	"github.com/raymyers/ralph-bindgen/pkg/layout"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
)

// ErrModelShape is wrapped by every error caused by a malformed input model
var ErrModelShape = errors.New("malformed declaration model")

// ModelError identifies the global that made generation stop. Index is the
// position in Header.Globals, or -1 for arena entries.
type ModelError struct {
	Index  int
	Name   string
	Reason string
}

func (e *ModelError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrModelShape, e.Reason)
	}
	if e.Name == "" {
		return fmt.Sprintf("%v: global %d: %s", ErrModelShape, e.Index, e.Reason)
	}
	return fmt.Sprintf("%v: global %d (%s): %s", ErrModelShape, e.Index, e.Name, e.Reason)
}

func (e *ModelError) Unwrap() error { return ErrModelShape }

// Options selects the library to link and generator settings. A nil
// Config means config.Default().
type Options struct {
	Link   string
	Config *config.Config
}

// Generator holds the state of one generation run
type Generator struct {
	header *cabs.Header
	arena  *ctypes.Arena
	opts   Options
	cfg    *config.Config
	names  *Resolver
	layout *layout.Calc
	notes  []string
}

// New creates a generator for a header
func New(h *cabs.Header, opts Options) *Generator {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Generator{
		header: h,
		arena:  h.Arena,
		opts:   opts,
		cfg:    cfg,
		names:  NewResolver(h.Arena, cfg.Keywords),
		layout: layout.New(h.Arena, cfg.LayoutTarget()),
	}
}

// TranslateHeader generates the Rust items for a header
func TranslateHeader(h *cabs.Header, opts Options) (*rsast.Crate, error) {
	return New(h, opts).Generate()
}

// Notes returns informational messages collected during Generate, such as
// variadic functions whose extra arguments were not encoded.
func (g *Generator) Notes() []string {
	return g.notes
}

func (g *Generator) notef(format string, args ...interface{}) {
	g.notes = append(g.notes, fmt.Sprintf(format, args...))
}

type indexed struct {
	idx int
	g   cabs.Global
}

// Generate runs the generation pass. On error no crate is returned.
func (g *Generator) Generate() (*rsast.Crate, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	// partition, keeping declaration order inside each part
	var types, vars, funcs []indexed
	for i, gl := range g.header.Globals {
		switch gl := gl.(type) {
		case cabs.GFunc:
			funcs = append(funcs, indexed{i, gl})
		case cabs.GVar:
			vars = append(vars, indexed{i, gl})
		case cabs.GOther:
			if gl.Note != "" {
				g.notef("skipped: %s", gl.Note)
			}
		default:
			types = append(types, indexed{i, gl})
		}
	}
	types = g.dedup(types)
	g.names.Prepare(globals(types), globals(vars), globals(funcs))

	crate := &rsast.Crate{Comment: g.cfg.Header}
	if g.cfg.Import != "" {
		crate.Uses = []string{g.cfg.Import}
	}
	for _, t := range types {
		items, err := g.emitType(t.idx, t.g)
		if err != nil {
			return nil, err
		}
		crate.Items = append(crate.Items, items...)
	}

	var foreign []rsast.ForeignItem
	for _, v := range vars {
		foreign = append(foreign, g.emitVar(v.g.(cabs.GVar)))
	}
	for _, f := range funcs {
		fi, err := g.emitFunc(f.idx, f.g.(cabs.GFunc))
		if err != nil {
			return nil, err
		}
		foreign = append(foreign, fi)
	}
	crate.Items = append(crate.Items, g.externBlock(foreign))
	return crate, nil
}

// dedup runs Dedup while keeping the original indexes for error reports
func (g *Generator) dedup(in []indexed) []indexed {
	kept := Dedup(g.arena, globals(in))
	out := make([]indexed, 0, len(kept))
	j := 0
	for _, k := range kept {
		for in[j].g != k {
			j++
		}
		out = append(out, in[j])
		j++
	}
	return out
}

func globals(in []indexed) []cabs.Global {
	out := make([]cabs.Global, len(in))
	for i, x := range in {
		out[i] = x.g
	}
	return out
}

// validate rejects models the generator cannot translate meaningfully
func (g *Generator) validate() error {
	a := g.arena
	if a == nil {
		return &ModelError{Index: -1, Reason: "header has no arena"}
	}
	for i, gl := range g.header.Globals {
		switch gl := gl.(type) {
		case cabs.GFunc:
			if gl.Type == nil {
				return &ModelError{Index: i, Name: gl.Name, Reason: "function has no type"}
			}
			if err := cabs.CheckType(a, gl.Type); err != nil {
				return &ModelError{Index: i, Name: gl.Name, Reason: err.Error()}
			}
			if _, ok := a.Resolve(gl.Type).(ctypes.Tfunction); !ok {
				return &ModelError{Index: i, Name: gl.Name, Reason: fmt.Sprintf("function has non-function type %s", gl.Type)}
			}
		case cabs.GVar:
			if err := cabs.CheckType(a, gl.Type); err != nil {
				return &ModelError{Index: i, Name: gl.Name, Reason: err.Error()}
			}
		case cabs.GType:
			if !a.HasTypedef(gl.ID) {
				return &ModelError{Index: i, Reason: fmt.Sprintf("dangling typedef handle %d", gl.ID)}
			}
			ti := a.Typedef(gl.ID)
			if err := cabs.CheckType(a, ti.Type); err != nil {
				return &ModelError{Index: i, Name: ti.Name, Reason: err.Error()}
			}
		case cabs.GComp:
			if !a.HasComp(gl.ID) {
				return &ModelError{Index: i, Reason: fmt.Sprintf("dangling composite handle %d", gl.ID)}
			}
		case cabs.GCompDecl:
			if !a.HasComp(gl.ID) {
				return &ModelError{Index: i, Reason: fmt.Sprintf("dangling composite handle %d", gl.ID)}
			}
		case cabs.GEnum:
			if !a.HasEnum(gl.ID) {
				return &ModelError{Index: i, Reason: fmt.Sprintf("dangling enum handle %d", gl.ID)}
			}
		case cabs.GEnumDecl:
			if !a.HasEnum(gl.ID) {
				return &ModelError{Index: i, Reason: fmt.Sprintf("dangling enum handle %d", gl.ID)}
			}
		}
	}
	if err := g.header.CheckHandles(); err != nil {
		return &ModelError{Index: -1, Reason: err.Error()}
	}
	return nil
}
