package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/layout"
	"github.com/raymyers/ralph-bindgen/pkg/lexer"
	"github.com/raymyers/ralph-bindgen/pkg/parser"
	"github.com/raymyers/ralph-bindgen/pkg/preproc"
)

type frontendOptions struct {
	cpp    bool
	pp     *preproc.Options
	target layout.Target
}

// frontend turns a header file into a declaration model plus notes
type frontend func(ctx context.Context, filename string, opts frontendOptions) (*cabs.Header, []string, error)

// frontends holds the front ends compiled into this binary. Build tags
// add more in init functions.
var frontends = map[string]frontend{
	"builtin": parseBuiltin,
}

func frontendNames() []string {
	names := make([]string, 0, len(frontends))
	for name := range frontends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// readHeader reads a header, running the system preprocessor when --cpp
// is given. Files with a .i extension are used as is.
func readHeader(ctx context.Context, filename string, opts frontendOptions) (string, error) {
	if opts.cpp && preproc.NeedsPreprocessing(filename) {
		content, err := preproc.Preprocess(ctx, filename, opts.pp)
		if err != nil {
			return "", fmt.Errorf("preprocessing error: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", filename, err)
	}
	return string(content), nil
}

func parseBuiltin(ctx context.Context, filename string, opts frontendOptions) (*cabs.Header, []string, error) {
	content, err := readHeader(ctx, filename, opts)
	if err != nil {
		return nil, nil, err
	}

	p := parser.New(lexer.New(content))
	p.SetTarget(opts.target)
	h := p.ParseHeader()

	if errs := p.Errors(); len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = filename + ": " + e
		}
		return nil, nil, fmt.Errorf("parsing failed with %d errors:\n%s", len(errs), strings.Join(lines, "\n"))
	}
	return h, p.Notes(), nil
}
