//go:build clang

package main

import (
	"context"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/clangfront"
)

func init() {
	frontends["clang"] = parseClang
}

// parseClang hands the header to libclang, which preprocesses it itself
func parseClang(_ context.Context, filename string, opts frontendOptions) (*cabs.Header, []string, error) {
	args := opts.pp.Args(filename)
	// drop -E and the file name
	return clangfront.Parse(filename, args[1:len(args)-1])
}
