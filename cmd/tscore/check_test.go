package main

import "testing"

func TestLogicalPath(t *testing.T) {
	cases := map[string]string{
		"main.ts":             "main",
		"src/app/widget.ts":   "src/app/widget",
		"src/app/widget.d.ts": "src/app/widget.d",
		"noext":               "noext",
	}
	for in, want := range cases {
		if got := logicalPath(in); got != want {
			t.Errorf("logicalPath(%q) = %q, want %q", in, got, want)
		}
	}
}
