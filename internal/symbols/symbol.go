package symbols

import (
	"surge/internal/ast"
	"surge/internal/source"
	"surge/internal/types"
)

// Flags is the bit-flag set spec.md §3 assigns to Symbol.
type Flags uint32

const (
	FlagVariable Flags = 1 << iota
	FlagBlockScopedVariable
	FlagFunctionScopedVariable
	FlagFunction
	FlagClass
	FlagInterface
	FlagTypeAlias
	FlagEnum
	FlagEnumMember
	FlagMethod
	FlagProperty
	FlagGetAccessor
	FlagSetAccessor
	FlagConstructor
	FlagTypeParameter
	FlagValueModule
	FlagNamespaceModule
	FlagAbstract
	FlagStatic
	FlagPrivate
	FlagAlias // import alias to another module's export
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether at least one bit in mask is set.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }

// Symbol is the Binder's record of a named declarable entity across all of
// its declarations (spec.md §3).
type Symbol struct {
	ID                SymbolID
	EscapedName       source.StringID
	Flags             Flags
	Declarations      []ast.NodeIndex
	ValueDeclaration  ast.NodeIndex
	Parent            SymbolID
	Members           *Table // nil unless this symbol has its own member scope
	Exports           *Table // nil unless this symbol is a module/namespace
	ImportModule      source.StringID // set when this symbol aliases another module's export
	ImportName        source.StringID
	IsExported        bool
	OriginFile         ast.FileID
	Type              types.TypeID // cached declared type, filled in by the Checker

	// ResolvedImport is filled in by the driver's cross-file resolution pass
	// (internal/driver's resolveCrossFileImports) once every file in a
	// program has been bound; nil until then, and for symbols that are not
	// import aliases.
	ResolvedImport *CrossFileRef
}

// CrossFileRef names a symbol in another bound file, reached by following an
// import alias or a re-export chain across module boundaries.
type CrossFileRef struct {
	Module string
	Symbol SymbolID
}

// AddDeclaration appends a declaration node, tracking the first one seen for
// kinds where a single value_declaration is meaningful (everything except
// pure type-space declarations like interfaces, which can have many).
func (s *Symbol) AddDeclaration(node ast.NodeIndex, isValueDecl bool) {
	s.Declarations = append(s.Declarations, node)
	if isValueDecl && !s.ValueDeclaration.IsValid() {
		s.ValueDeclaration = node
	}
}
