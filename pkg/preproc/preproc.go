// Package preproc runs the system C preprocessor (cc -E) over a header
// before it reaches the built-in front end.
package preproc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Options configures the preprocessing step
type Options struct {
	IncludePaths []string          // -I directories
	Defines      map[string]string // -D macros (name -> value, empty string for simple define)
	Undefines    []string          // -U macros
	Command      string            // preprocessor to run; found on PATH when empty
}

// ParseDefine splits a -D argument of the form NAME or NAME=VALUE
func ParseDefine(arg string) (name, value string, err error) {
	name, value, _ = strings.Cut(arg, "=")
	if name == "" {
		return "", "", fmt.Errorf("invalid define %q: missing macro name", arg)
	}
	return name, value, nil
}

// Args returns the preprocessor arguments for filename
func (o *Options) Args(filename string) []string {
	args := []string{"-E"} // Preprocess only
	if o != nil {
		for _, path := range o.IncludePaths {
			args = append(args, "-I"+path)
		}
		// sorted so the command line is reproducible
		names := make([]string, 0, len(o.Defines))
		for name := range o.Defines {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if value := o.Defines[name]; value != "" {
				args = append(args, "-D"+name+"="+value)
			} else {
				args = append(args, "-D"+name)
			}
		}
		for _, name := range o.Undefines {
			args = append(args, "-U"+name)
		}
	}
	return append(args, filename)
}

// Preprocess runs the C preprocessor on the given header and returns the
// preprocessed text. Line markers are kept; the lexer drops them.
func Preprocess(ctx context.Context, filename string, opts *Options) (string, error) {
	command := ""
	if opts != nil {
		command = opts.Command
	}
	if command == "" {
		command = findPreprocessor()
	}
	if command == "" {
		return "", fmt.Errorf("no C preprocessor found (tried: $CC, cc, gcc, clang)")
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, command, opts.Args(abs)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// relative includes resolve against the header's directory
	cmd.Dir = filepath.Dir(abs)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("preprocessing %s failed: %w\n%s", filename, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// PreprocessString preprocesses header text provided as a string. The
// text is written to a temporary file that is removed afterwards.
func PreprocessString(ctx context.Context, source, filename string, opts *Options) (string, error) {
	dir, err := os.MkdirTemp("", "ralph-bindgen-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	baseName := filepath.Base(filename)
	if baseName == "." || baseName == string(filepath.Separator) {
		baseName = "input.h"
	}
	tmpFile := filepath.Join(dir, baseName)
	if err := os.WriteFile(tmpFile, []byte(source), 0644); err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	return Preprocess(ctx, tmpFile, opts)
}

// NeedsPreprocessing returns true if the file might need preprocessing.
// Files ending in .i are considered already preprocessed.
func NeedsPreprocessing(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) != ".i"
}

// findPreprocessor searches for a C compiler driver on the system
func findPreprocessor() string {
	candidates := []string{"cc", "gcc", "clang"}
	if env := os.Getenv("CC"); env != "" {
		candidates = append([]string{env}, candidates...)
	}
	for _, cmd := range candidates {
		if path, err := exec.LookPath(cmd); err == nil {
			return path
		}
	}
	return ""
}
