// Package astbundle serializes a hand-assembled ast.Builder (the NodeArena
// spec.md §4.1 says the Checker "consumes from the parser") to and from
// msgpack, the same wire format checker.TypeCache uses for its own
// MarshalBinary/UnmarshalBinary. Parsing TypeScript source text is out of
// scope for this module (spec.md: "Consumed from the parser: an immutable
// NodeArena..."); a Bundle stands in for an external parser's output and is
// what cmd/tscore's check and watch commands read instead of raw source.
package astbundle

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"surge/internal/ast"
	"surge/internal/source"
)

// File is one source file's path and content, enough for source.FileSet to
// re-register it (and for diagfmt to print it back) on decode.
type File struct {
	Path    string
	Content []byte
}

// Bundle is a flattened snapshot of an ast.Builder plus the set of files
// whose roots it holds, in allocation order. Replaying it in order against a
// fresh Builder reproduces identical NodeIndex/StringID values, since those
// arenas are append-only; FileIDs come from the source.FileSet passed to
// Decode and are 0..n-1 in Files order only when that FileSet starts empty.
type Bundle struct {
	Files []File

	// Strings holds every interned string after the builtin empty string at
	// StringID 0, in first-intern order.
	Strings []string

	Funcs      []ast.FuncInfo
	Classes    []ast.ClassInfo
	Interfaces []ast.InterfaceInfo
	Vars       []ast.VarInfo
	Imports    []ast.ImportInfo
	Exports    []ast.ExportInfo
	Enums      []ast.EnumInfo
	Modules    []ast.ModuleInfo
	Aliases    []ast.TypeAliasInfo
	TypeParams []ast.TypeParamInfo

	// Nodes is every node in the arena, in allocation order.
	Nodes []ast.Node
	// FileRoots maps a position in Files to the index (1-based, matching
	// Nodes) of that file's KindSourceFile root node.
	FileRoots []ast.NodeIndex
}

// Encode snapshots builder's arenas and the source-file roots for files into
// a Bundle ready for msgpack marshaling.
func Encode(builder *ast.Builder, files []File, fileIDs []ast.FileID) (Bundle, error) {
	if len(files) != len(fileIDs) {
		return Bundle{}, fmt.Errorf("astbundle: %d files but %d file IDs", len(files), len(fileIDs))
	}

	roots := make([]ast.NodeIndex, len(fileIDs))
	for i, fid := range fileIDs {
		root, ok := builder.FileRoot(fid)
		if !ok {
			return Bundle{}, fmt.Errorf("astbundle: no source-file root registered for %q", files[i].Path)
		}
		roots[i] = root
	}

	return Bundle{
		Files:      files,
		Strings:    builder.Strings.Snapshot()[1:], // drop NoStringID's "" at index 0
		Funcs:      builder.Funcs.Slice(),
		Classes:    builder.Classes.Slice(),
		Interfaces: builder.Interfaces.Slice(),
		Vars:       builder.Vars.Slice(),
		Imports:    builder.Imports.Slice(),
		Exports:    builder.Exports.Slice(),
		Enums:      builder.Enums.Slice(),
		Modules:    builder.Modules.Slice(),
		Aliases:    builder.Aliases.Slice(),
		TypeParams: builder.TypeParams.Slice(),
		Nodes:      builder.Nodes.Slice(),
		FileRoots:  roots,
	}, nil
}

// Marshal encodes a Bundle as msgpack.
func Marshal(b Bundle) ([]byte, error) {
	return msgpack.Marshal(b)
}

// Unmarshal decodes a msgpack-encoded Bundle.
func Unmarshal(data []byte) (Bundle, error) {
	var b Bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("astbundle: decode: %w", err)
	}
	return b, nil
}

// Decode rebuilds a *source.FileSet and *ast.Builder from a Bundle, returning
// the ast.FileID assigned to each bundle.Files entry in order.
func Decode(fs *source.FileSet, b Bundle) (*ast.Builder, []ast.FileID, error) {
	fileIDs := make([]ast.FileID, len(b.Files))
	for i, f := range b.Files {
		sid := fs.AddVirtual(f.Path, f.Content)
		fileIDs[i] = ast.FileID(sid)
	}

	builder := ast.NewBuilder(ast.Hints{Nodes: uint(len(b.Nodes))}, nil)
	for _, s := range b.Strings {
		builder.Intern(s)
	}
	for _, v := range b.Funcs {
		builder.Funcs.Allocate(v)
	}
	for _, v := range b.Classes {
		builder.Classes.Allocate(v)
	}
	for _, v := range b.Interfaces {
		builder.Interfaces.Allocate(v)
	}
	for _, v := range b.Vars {
		builder.Vars.Allocate(v)
	}
	for _, v := range b.Imports {
		builder.Imports.Allocate(v)
	}
	for _, v := range b.Exports {
		builder.Exports.Allocate(v)
	}
	for _, v := range b.Enums {
		builder.Enums.Allocate(v)
	}
	for _, v := range b.Modules {
		builder.Modules.Allocate(v)
	}
	for _, v := range b.Aliases {
		builder.Aliases.Allocate(v)
	}
	for _, v := range b.TypeParams {
		builder.TypeParams.Allocate(v)
	}

	rootAt := make(map[int]int, len(b.FileRoots)) // node position (0-based) -> file index
	for fi, root := range b.FileRoots {
		if root == ast.NoNodeIndex {
			return nil, nil, fmt.Errorf("astbundle: file %q has no root node", b.Files[fi].Path)
		}
		rootAt[int(root)-1] = fi
	}

	for i, n := range b.Nodes {
		if fi, ok := rootAt[i]; ok {
			idx := builder.NewSourceFile(fileIDs[fi], n.Span, n.Children)
			if int(idx) != i+1 {
				return nil, nil, fmt.Errorf("astbundle: source-file root for %q landed at index %d, expected %d", b.Files[fi].Path, idx, i+1)
			}
			continue
		}
		builder.Nodes.Allocate(n)
	}

	return builder, fileIDs, nil
}
