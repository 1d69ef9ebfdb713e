package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"surge/internal/diag"
	"surge/internal/source"
)

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let x: string = 1;\n")
	fileID := fs.AddVirtual("/home/user/project/src/main.ts", content)
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.SemaNotAssignable,
		source.Span{File: fileID, Start: 16, End: 17}, "Type 'number' is not assignable to type 'string'.")
	bag.Add(&d)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "absolute", mode: PathModeAbsolute, contains: "/home/user/project/src/main.ts"},
		{name: "relative", mode: PathModeRelative, contains: "src/main.ts"},
		{name: "basename", mode: PathModeBasename, contains: "main.ts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, Context: 1})
			if !strings.Contains(buf.String(), tt.contains) {
				t.Fatalf("expected output to contain %q, got:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestPrettyUnderline(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let x: string = 1;\n")
	fileID := fs.AddVirtual("main.ts", content)

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.SemaNotAssignable,
		source.Span{File: fileID, Start: 16, End: 17}, "Type 'number' is not assignable to type 'string'.")
	bag.Add(&d)
	bag.Sort()

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	out := buf.String()

	if !strings.Contains(out, "TS2322") {
		t.Fatalf("expected TS2322 in output, got:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected an underline caret in output, got:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("let x: string = 1;\n")
	fileID := fs.AddVirtual("main.ts", content)

	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.SemaNotAssignable,
		source.Span{File: fileID, Start: 16, End: 17}, "Type 'number' is not assignable to type 'string'.")
	bag.Add(&d)

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true})
	if out.Count != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", out.Count)
	}
	if out.Diagnostics[0].Code != "TS2322" {
		t.Fatalf("expected code TS2322, got %s", out.Diagnostics[0].Code)
	}
	if out.Diagnostics[0].Location.StartLine == 0 {
		t.Fatalf("expected positions to be populated")
	}
}

func TestSummary(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.ts", []byte("x\n"))

	bag := diag.NewBag(10)
	d1 := diag.New(diag.SevError, diag.SemaCannotFind, source.Span{File: fileID, Start: 0, End: 1}, "Cannot find name 'x'.")
	d2 := diag.New(diag.SevError, diag.SemaCannotFind, source.Span{File: fileID, Start: 0, End: 1}, "Cannot find name 'y'.")
	d3 := diag.New(diag.SevWarning, diag.SemaUnreachableCode, source.Span{File: fileID, Start: 0, End: 1}, "Unreachable code.")
	bag.Add(&d1)
	bag.Add(&d2)
	bag.Add(&d3)

	got := Summary(bag, false)
	want := "2 errors, 1 warning"
	if got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

func TestJSONMaxTruncates(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("main.ts", []byte("x\n"))

	bag := diag.NewBag(10)
	for range 3 {
		d := diag.New(diag.SevError, diag.SemaCannotFind, source.Span{File: fileID, Start: 0, End: 1}, "Cannot find name 'x'.")
		bag.Add(&d)
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("expected Max to truncate to 2 diagnostics, got %d", out.Count)
	}
}
