package ast

import "surge/internal/source"

// VarKind distinguishes the three declaration forms `var`/`let`/`const`.
type VarKind uint8

const (
	VarKindVar VarKind = iota
	VarKindLet
	VarKindConst
)

// VarInfo is the side-table payload for KindVarDecl.
type VarInfo struct {
	VarKind VarKind
}

// ParamInfo describes one function/method parameter.
type ParamInfo struct {
	Name    source.StringID
	TypeAnn NodeIndex
	Default NodeIndex
	Flags   Flags // FlagRest, FlagOptional
}

// FuncInfo is the side-table payload for KindFunctionDecl, KindMethodDecl,
// KindArrowFunction, KindFunctionExpr, and KindConstructor.
type FuncInfo struct {
	Params     []ParamInfo
	TypeParams []NodeIndex
	ReturnType NodeIndex
	Body       NodeIndex // KindBlock, or NoNodeIndex for overload signatures
	Decorators []NodeIndex
	IsOverload bool // declaration with no body, merged with its implementation
}

// HeritageClause is one `extends`/`implements` entry with its type arguments.
type HeritageClause struct {
	TypeRef NodeIndex // KindTypeReference
}

// ClassInfo is the side-table payload for KindClassDecl.
type ClassInfo struct {
	TypeParams []NodeIndex
	Extends    NodeIndex // single KindTypeReference, or NoNodeIndex
	Implements []HeritageClause
	Members    []NodeIndex
	Decorators []NodeIndex
}

// InterfaceInfo is the side-table payload for KindInterfaceDecl.
type InterfaceInfo struct {
	TypeParams []NodeIndex
	Extends    []NodeIndex
	Members    []NodeIndex
}

// TypeAliasInfo is the side-table payload for KindTypeAliasDecl.
type TypeAliasInfo struct {
	TypeParams []NodeIndex
	Value      NodeIndex // the aliased type-syntax node
}

// EnumInfo is the side-table payload for KindEnumDecl.
type EnumInfo struct {
	Members []NodeIndex // KindEnumMember
}

// ModuleInfo is the side-table payload for KindModuleDecl.
type ModuleInfo struct {
	// NameSegments holds dotted namespace segments (`namespace A.B.C`); for
	// `declare module "specifier"` it holds exactly one segment carrying the
	// quoted specifier text in Name.
	NameSegments []source.StringID
	IsStringName bool // true for `declare module "specifier"`
	Body         []NodeIndex
}

// ImportSpecifier is one named import binding, with an optional alias.
type ImportSpecifier struct {
	ImportedName source.StringID
	LocalName    source.StringID
}

// ImportInfo is the side-table payload for KindImportDecl.
type ImportInfo struct {
	ModuleSpecifier source.StringID
	DefaultLocal    source.StringID // NoStringID if no default import
	NamespaceLocal  source.StringID // NoStringID if no `* as ns` import
	Named           []ImportSpecifier
}

// ExportSpecifier is one named export binding, with an optional alias.
type ExportSpecifier struct {
	LocalName   source.StringID
	ExportedName source.StringID
}

// ExportInfo is the side-table payload for KindExportDecl.
type ExportInfo struct {
	// Decl is set for `export <decl>` (re-exports the declaration itself).
	Decl NodeIndex
	// Named holds `export { a, b as c }`.
	Named []ExportSpecifier
	// ModuleSpecifier is set for `export { x } from "mod"` and for
	// `export * from "mod"` / `export * as ns from "mod"`.
	ModuleSpecifier source.StringID
	IsWildcard      bool
	WildcardAlias   source.StringID // NoStringID unless `export * as ns from`
}

// TypeParamInfo is the side-table payload for KindTypeParam.
type TypeParamInfo struct {
	Constraint NodeIndex
	Default    NodeIndex
}
