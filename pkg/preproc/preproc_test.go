package preproc

import (
	"context"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

func TestParseDefine(t *testing.T) {
	tests := []struct {
		arg         string
		name, value string
		wantErr     bool
	}{
		{"DEBUG", "DEBUG", "", false},
		{"LEVEL=3", "LEVEL", "3", false},
		{"EXPR=a=b", "EXPR", "a=b", false},
		{"=1", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, err := ParseDefine(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDefine(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if name != tt.name || value != tt.value {
				t.Errorf("ParseDefine(%q) = %q, %q; want %q, %q", tt.arg, name, value, tt.name, tt.value)
			}
		})
	}
}

func TestArgs(t *testing.T) {
	opts := &Options{
		IncludePaths: []string{"include", "/usr/local/include"},
		Defines:      map[string]string{"B": "2", "A": ""},
		Undefines:    []string{"NDEBUG"},
	}
	got := opts.Args("api.h")
	want := []string{"-E", "-Iinclude", "-I/usr/local/include", "-DA", "-DB=2", "-UNDEBUG", "api.h"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}

	var none *Options
	if got := none.Args("x.h"); !reflect.DeepEqual(got, []string{"-E", "x.h"}) {
		t.Errorf("nil Args() = %q", got)
	}
}

func TestNeedsPreprocessing(t *testing.T) {
	tests := map[string]bool{
		"api.h":  true,
		"api.H":  true,
		"api.i":  false,
		"dump.I": false,
	}
	for name, want := range tests {
		if got := NeedsPreprocessing(name); got != want {
			t.Errorf("NeedsPreprocessing(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestPreprocessString(t *testing.T) {
	if _, err := exec.LookPath("cc"); err != nil {
		t.Skip("cc not available")
	}
	src := "#define WIDTH 16\n#ifdef WIDE\nextern int wide;\n#endif\nextern char buf[WIDTH];\n"
	out, err := PreprocessString(context.Background(), src, "buf.h", &Options{
		Defines: map[string]string{"WIDE": ""},
	})
	if err != nil {
		t.Fatalf("PreprocessString: %v", err)
	}
	for _, want := range []string{"extern int wide;", "extern char buf[16];"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPreprocessMissingCommand(t *testing.T) {
	_, err := Preprocess(context.Background(), "api.h", &Options{Command: "/nonexistent/cc"})
	if err == nil || !strings.Contains(err.Error(), "preprocessing api.h failed") {
		t.Errorf("error = %v, want preprocessing failure", err)
	}
}
