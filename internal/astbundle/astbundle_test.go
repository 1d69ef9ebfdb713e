package astbundle

import (
	"testing"

	"surge/internal/ast"
	"surge/internal/source"
)

// buildFixture constructs a one-file AST for `let x = 1;` the same way
// internal/binder's own tests hand-assemble fixtures.
func buildFixture(t *testing.T) (*ast.Builder, ast.FileID, []File) {
	t.Helper()
	content := []byte("let x = 1;\n")
	b := ast.NewBuilder(ast.Hints{}, nil)
	file := ast.FileID(1)

	xName := b.Intern("x")
	one := b.NewNode(ast.Node{Kind: ast.KindNumericLiteral, Value: 1})
	decl := b.NewVarDecl(ast.VarKindLet, xName, ast.NoNodeIndex, one, 0, source.Span{File: file, Start: 0, End: 10})
	b.NewSourceFile(file, source.Span{File: file, Start: 0, End: uint32(len(content))}, []ast.NodeIndex{decl})

	return b, file, []File{{Path: "main.ts", Content: content}}
}

func TestRoundTrip(t *testing.T) {
	b, file, files := buildFixture(t)

	bundle, err := Encode(b, files, []ast.FileID{file})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data, err := Marshal(bundle)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	fs := source.NewFileSet()
	builder2, fileIDs, err := Decode(fs, decoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(fileIDs) != 1 {
		t.Fatalf("expected 1 file ID, got %d", len(fileIDs))
	}

	root, ok := builder2.FileRoot(fileIDs[0])
	if !ok {
		t.Fatalf("expected a source-file root for the decoded file")
	}
	stmts, ok := builder2.GetSourceFile(root)
	if !ok || len(stmts) != 1 {
		t.Fatalf("expected exactly 1 top-level statement, got %v (ok=%v)", stmts, ok)
	}

	v, ok := builder2.GetVar(stmts[0])
	if !ok {
		t.Fatalf("expected the top-level statement to be a var decl")
	}
	if v.VarKind != ast.VarKindLet {
		t.Fatalf("expected VarKindLet, got %v", v.VarKind)
	}

	decl := builder2.Get(stmts[0])
	if decl.Name == 0 {
		t.Fatalf("expected the var decl to carry an interned name")
	}
	if got, _ := builder2.Strings.Lookup(decl.Name); got != "x" {
		t.Fatalf("expected decl name %q, got %q", "x", got)
	}
}

func TestEncodeMissingRoot(t *testing.T) {
	b := ast.NewBuilder(ast.Hints{}, nil)
	_, err := Encode(b, []File{{Path: "missing.ts"}}, []ast.FileID{1})
	if err == nil {
		t.Fatalf("expected an error when a file has no registered root")
	}
}
