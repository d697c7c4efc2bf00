package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/raymyers/ralph-bindgen/pkg/cabs"
	"github.com/raymyers/ralph-bindgen/pkg/config"
	"github.com/raymyers/ralph-bindgen/pkg/preproc"
	"github.com/raymyers/ralph-bindgen/pkg/rsast"
	"github.com/raymyers/ralph-bindgen/pkg/rsgen"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug flags for dumping the declaration model
var (
	dParse bool // print the model back as C
	dModel bool // print the model as YAML
)

// Generation options
var (
	linkName     string
	outputFile   string
	configFile   string
	targetName   string
	frontendName string
	verbose      bool
)

// Preprocessor options
var (
	includePaths  []string
	defineFlags   []string
	undefineFlags []string
	useCPP        bool
)

// ErrNotImplemented indicates a feature is not available in this build
var ErrNotImplemented = errors.New("not yet implemented")

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Accept single-dash debug flags like -dparse
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept single-dash style
var debugFlagNames = []string{"dparse", "dmodel"}

// normalizeFlags converts single-dash debug flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-bindgen [file]",
		Short: "ralph-bindgen generates Rust FFI declarations from C headers",
		Long: `ralph-bindgen reads a C header (or a YAML declaration model) and
writes Rust declarations that link against the C library: #[repr(C)]
structs, byte-buffer unions with accessors, enums as integer constants,
and one extern "C" block for functions and variables.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			if err := generate(cmd, args[0], out, errOut); err != nil {
				fmt.Fprintf(errOut, "ralph-bindgen: %v\n", err)
				return err
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Debug flags
	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump the parsed declarations as C")
	rootCmd.Flags().BoolVarP(&dModel, "dmodel", "", false, "Dump the declaration model as YAML")

	// Generation flags
	rootCmd.Flags().StringVarP(&linkName, "link", "l", "", "Library to link the extern block against")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML settings file")
	rootCmd.Flags().StringVar(&targetName, "target", "", "Data model for layout: lp64, llp64 or ilp32")
	rootCmd.Flags().StringVar(&frontendName, "frontend", "builtin", "Header front end: builtin or clang")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print notes about simplified declarations")

	// Preprocessor flags
	rootCmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "Add directory to include search path")
	rootCmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "Define macro (NAME or NAME=VALUE)")
	rootCmd.Flags().StringArrayVarP(&undefineFlags, "undefine", "U", nil, "Undefine macro")
	rootCmd.Flags().BoolVar(&useCPP, "cpp", false, "Run the system C preprocessor first")

	return rootCmd
}

// loadConfig reads --config and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	if targetName != "" {
		cfg.Target = targetName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPreprocessorOptions creates preproc.Options from CLI flags
func buildPreprocessorOptions() (*preproc.Options, error) {
	opts := &preproc.Options{
		IncludePaths: includePaths,
		Defines:      make(map[string]string),
		Undefines:    undefineFlags,
	}
	for _, d := range defineFlags {
		name, value, err := preproc.ParseDefine(d)
		if err != nil {
			return nil, err
		}
		opts.Defines[name] = value
	}
	return opts, nil
}

// isModelFile reports whether filename holds a YAML declaration model
func isModelFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadHeader reads the declaration model from a YAML file or a C header
func loadHeader(cmd *cobra.Command, filename string, cfg *config.Config) (*cabs.Header, []string, error) {
	if isModelFile(filename) {
		h, err := cabs.LoadModel(filename)
		return h, nil, err
	}
	fe, ok := frontends[frontendName]
	if !ok {
		return nil, nil, fmt.Errorf("frontend %q: %w in this build (available: %s)",
			frontendName, ErrNotImplemented, strings.Join(frontendNames(), ", "))
	}
	pp, err := buildPreprocessorOptions()
	if err != nil {
		return nil, nil, err
	}
	return fe(cmd.Context(), filename, frontendOptions{
		cpp:    useCPP,
		pp:     pp,
		target: cfg.LayoutTarget(),
	})
}

func generate(cmd *cobra.Command, filename string, out, errOut io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, notes, err := loadHeader(cmd, filename, cfg)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch {
	case dParse:
		cabs.NewPrinter(&buf).PrintHeader(h)
	case dModel:
		if err := cabs.WriteModel(&buf, h); err != nil {
			return err
		}
	default:
		g := rsgen.New(h, rsgen.Options{Link: linkName, Config: cfg})
		crate, err := g.Generate()
		if err != nil {
			return err
		}
		notes = append(notes, g.Notes()...)
		rsast.NewPrinter(&buf).PrintCrate(crate)
	}

	if verbose {
		for _, n := range notes {
			fmt.Fprintf(errOut, "ralph-bindgen: note: %s\n", n)
		}
	}
	return writeOutput(buf.Bytes(), out)
}

// writeOutput writes the finished output. Nothing is written when an
// earlier step failed.
func writeOutput(data []byte, out io.Writer) error {
	if outputFile == "" || outputFile == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("error creating %s: %w", outputFile, err)
	}
	return nil
}
