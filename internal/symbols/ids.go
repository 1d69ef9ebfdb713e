// Package symbols holds the Binder's SymbolArena and scope tree: the data
// the Binder populates in one pass over a file and the Checker later reads
// read-only.
package symbols

// SymbolID identifies a symbol inside a SymbolArena.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol.
const NoSymbolID SymbolID = 0

// IsValid reports whether id refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// ScopeID identifies a scope inside a Scopes arena.
type ScopeID uint32

// NoScopeID marks the absence of a scope.
const NoScopeID ScopeID = 0

// IsValid reports whether id refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }
