package ast

import "surge/internal/source"

// Builder constructs a NodeArena. Production ASTs are built by an external
// parser; Builder is also what this module's own tests use to hand-assemble
// fixture arenas, standing in for that external collaborator.
type Builder struct {
	Nodes      *Arena[Node]
	Funcs      *Arena[FuncInfo]
	Classes    *Arena[ClassInfo]
	Interfaces *Arena[InterfaceInfo]
	Vars       *Arena[VarInfo]
	Imports    *Arena[ImportInfo]
	Exports    *Arena[ExportInfo]
	Enums      *Arena[EnumInfo]
	Modules    *Arena[ModuleInfo]
	Aliases    *Arena[TypeAliasInfo]
	TypeParams *Arena[TypeParamInfo]
	Strings    *source.Interner
	files      []FileID
	fileRoots  map[FileID]NodeIndex
}

// Hints provides capacity hints for the builder's arenas.
type Hints struct{ Nodes uint }

// NewBuilder creates an empty Builder. If strings is nil a fresh interner is
// allocated.
func NewBuilder(h Hints, strings *source.Interner) *Builder {
	if h.Nodes == 0 {
		h.Nodes = 256
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Nodes:      NewArena[Node](h.Nodes),
		Funcs:      NewArena[FuncInfo](16),
		Classes:    NewArena[ClassInfo](8),
		Interfaces: NewArena[InterfaceInfo](8),
		Vars:       NewArena[VarInfo](32),
		Imports:    NewArena[ImportInfo](8),
		Exports:    NewArena[ExportInfo](8),
		Enums:      NewArena[EnumInfo](4),
		Modules:    NewArena[ModuleInfo](4),
		Aliases:    NewArena[TypeAliasInfo](8),
		TypeParams: NewArena[TypeParamInfo](8),
		Strings:    strings,
		fileRoots:  make(map[FileID]NodeIndex),
	}
}

// Get returns the node at idx, or nil for an invalid index.
func (b *Builder) Get(idx NodeIndex) *Node {
	return b.Nodes.Get(uint32(idx))
}

// NewNode allocates a bare node and returns its index.
func (b *Builder) NewNode(n Node) NodeIndex {
	return NodeIndex(b.Nodes.Allocate(n))
}

// NewSourceFile allocates a KindSourceFile node for the given file, recording
// it as that file's root for FileRoot to find later.
func (b *Builder) NewSourceFile(file FileID, span source.Span, statements []NodeIndex) NodeIndex {
	idx := b.NewNode(Node{Kind: KindSourceFile, Span: span, Children: statements})
	b.fileRoots[file] = idx
	return idx
}

// FileRoot returns the KindSourceFile node previously registered for file.
func (b *Builder) FileRoot(file FileID) (NodeIndex, bool) {
	idx, ok := b.fileRoots[file]
	return idx, ok
}

// Intern is a convenience wrapper around the shared string interner.
func (b *Builder) Intern(s string) source.StringID { return b.Strings.Intern(s) }

// --- typed constructors -----------------------------------------------------

// NewIdentifier allocates a KindIdentifier node.
func (b *Builder) NewIdentifier(name source.StringID, span source.Span) NodeIndex {
	return b.NewNode(Node{Kind: KindIdentifier, Span: span, Name: name})
}

// NewVarDecl allocates a KindVarDecl node.
func (b *Builder) NewVarDecl(kind VarKind, name source.StringID, typeAnn, init NodeIndex, flags Flags, span source.Span) NodeIndex {
	payload := b.Vars.Allocate(VarInfo{VarKind: kind})
	return b.NewNode(Node{Kind: KindVarDecl, Span: span, Name: name, TypeAnn: typeAnn, Init: init, Flags: flags, Payload: payload})
}

// NewFunctionDecl allocates a KindFunctionDecl node.
func (b *Builder) NewFunctionDecl(name source.StringID, info FuncInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Funcs.Allocate(info)
	return b.NewNode(Node{Kind: KindFunctionDecl, Span: span, Name: name, Flags: flags, Payload: payload})
}

// NewClassDecl allocates a KindClassDecl node.
func (b *Builder) NewClassDecl(name source.StringID, info ClassInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Classes.Allocate(info)
	return b.NewNode(Node{Kind: KindClassDecl, Span: span, Name: name, Flags: flags, Payload: payload, Children: info.Members})
}

// NewInterfaceDecl allocates a KindInterfaceDecl node.
func (b *Builder) NewInterfaceDecl(name source.StringID, info InterfaceInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Interfaces.Allocate(info)
	return b.NewNode(Node{Kind: KindInterfaceDecl, Span: span, Name: name, Flags: flags, Payload: payload, Children: info.Members})
}

// NewTypeAliasDecl allocates a KindTypeAliasDecl node.
func (b *Builder) NewTypeAliasDecl(name source.StringID, info TypeAliasInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Aliases.Allocate(info)
	return b.NewNode(Node{Kind: KindTypeAliasDecl, Span: span, Name: name, Flags: flags, Payload: payload})
}

// NewEnumDecl allocates a KindEnumDecl node.
func (b *Builder) NewEnumDecl(name source.StringID, info EnumInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Enums.Allocate(info)
	return b.NewNode(Node{Kind: KindEnumDecl, Span: span, Name: name, Flags: flags, Payload: payload, Children: info.Members})
}

// NewModuleDecl allocates a KindModuleDecl node.
func (b *Builder) NewModuleDecl(info ModuleInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Modules.Allocate(info)
	var name source.StringID
	if len(info.NameSegments) > 0 {
		name = info.NameSegments[0]
	}
	return b.NewNode(Node{Kind: KindModuleDecl, Span: span, Name: name, Flags: flags, Payload: payload, Children: info.Body})
}

// NewImportDecl allocates a KindImportDecl node.
func (b *Builder) NewImportDecl(info ImportInfo, span source.Span) NodeIndex {
	payload := b.Imports.Allocate(info)
	return b.NewNode(Node{Kind: KindImportDecl, Span: span, Payload: payload})
}

// NewExportDecl allocates a KindExportDecl node.
func (b *Builder) NewExportDecl(info ExportInfo, flags Flags, span source.Span) NodeIndex {
	payload := b.Exports.Allocate(info)
	return b.NewNode(Node{Kind: KindExportDecl, Span: span, Flags: flags, Payload: payload})
}

// NewBlock allocates a KindBlock node.
func (b *Builder) NewBlock(stmts []NodeIndex, span source.Span) NodeIndex {
	return b.NewNode(Node{Kind: KindBlock, Span: span, Children: stmts})
}

// --- typed accessors (the "get_function/get_class/..." contract) -----------

// GetSourceFile returns the statement list of a KindSourceFile node.
func (b *Builder) GetSourceFile(idx NodeIndex) ([]NodeIndex, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindSourceFile {
		return nil, false
	}
	return n.Children, true
}

// GetIdentifier returns the name atom of a KindIdentifier node.
func (b *Builder) GetIdentifier(idx NodeIndex) (source.StringID, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindIdentifier {
		return source.NoStringID, false
	}
	return n.Name, true
}

// GetFunction returns the FuncInfo for a function-shaped node (function
// declaration, method, arrow function, function expression, constructor).
func (b *Builder) GetFunction(idx NodeIndex) (*FuncInfo, bool) {
	n := b.Get(idx)
	if n == nil {
		return nil, false
	}
	switch n.Kind {
	case KindFunctionDecl, KindMethodDecl, KindArrowFunction, KindFunctionExpr, KindConstructor:
		return b.Funcs.Get(n.Payload), true
	default:
		return nil, false
	}
}

// GetClass returns the ClassInfo for a KindClassDecl node.
func (b *Builder) GetClass(idx NodeIndex) (*ClassInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindClassDecl {
		return nil, false
	}
	return b.Classes.Get(n.Payload), true
}

// GetInterface returns the InterfaceInfo for a KindInterfaceDecl node.
func (b *Builder) GetInterface(idx NodeIndex) (*InterfaceInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindInterfaceDecl {
		return nil, false
	}
	return b.Interfaces.Get(n.Payload), true
}

// GetVar returns the VarInfo for a KindVarDecl node.
func (b *Builder) GetVar(idx NodeIndex) (*VarInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindVarDecl {
		return nil, false
	}
	return b.Vars.Get(n.Payload), true
}

// GetImport returns the ImportInfo for a KindImportDecl node.
func (b *Builder) GetImport(idx NodeIndex) (*ImportInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindImportDecl {
		return nil, false
	}
	return b.Imports.Get(n.Payload), true
}

// GetExport returns the ExportInfo for a KindExportDecl node.
func (b *Builder) GetExport(idx NodeIndex) (*ExportInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindExportDecl {
		return nil, false
	}
	return b.Exports.Get(n.Payload), true
}

// GetEnum returns the EnumInfo for a KindEnumDecl node.
func (b *Builder) GetEnum(idx NodeIndex) (*EnumInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindEnumDecl {
		return nil, false
	}
	return b.Enums.Get(n.Payload), true
}

// GetModule returns the ModuleInfo for a KindModuleDecl node.
func (b *Builder) GetModule(idx NodeIndex) (*ModuleInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindModuleDecl {
		return nil, false
	}
	return b.Modules.Get(n.Payload), true
}

// GetTypeAlias returns the TypeAliasInfo for a KindTypeAliasDecl node.
func (b *Builder) GetTypeAlias(idx NodeIndex) (*TypeAliasInfo, bool) {
	n := b.Get(idx)
	if n == nil || n.Kind != KindTypeAliasDecl {
		return nil, false
	}
	return b.Aliases.Get(n.Payload), true
}
