package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"surge/internal/ast"
)

// Arena is the SymbolArena from spec.md §3: a compact slice-based store of
// Symbols, addressed by a stable SymbolID for the life of the Binder that
// created them.
type Arena struct {
	data []Symbol
	// declArenas supports symbols whose declarations come from more than one
	// lib file and therefore share colliding NodeIndex values across arenas
	// (spec.md §4.1's get_arena_for_declaration / §9's "Symbols with
	// multiple declaration arenas"). Keyed by (SymbolID, NodeIndex).
	declArenas map[declKey]*ast.Builder
}

type declKey struct {
	Symbol SymbolID
	Node   ast.NodeIndex
}

// NewArena creates an empty symbol arena.
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = 64
	}
	return &Arena{
		data:       make([]Symbol, 1, capacity+1), // index 0 reserved for NoSymbolID
		declArenas: make(map[declKey]*ast.Builder),
	}
}

// New allocates a symbol and returns its id.
func (a *Arena) New(sym Symbol) SymbolID {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("symbols: arena overflow: %w", err))
	}
	id := SymbolID(n)
	sym.ID = id
	a.data = append(a.data, sym)
	return id
}

// Get returns a pointer to the symbol, or nil for an invalid id.
func (a *Arena) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

// Len reports the number of allocated symbols.
func (a *Arena) Len() int { return len(a.data) - 1 }

// RecordDeclarationArena associates a (symbol, declaration node) pair with
// the *ast.Builder that owns that node, so a later lookup can tell which
// arena a colliding NodeIndex belongs to.
func (a *Arena) RecordDeclarationArena(sym SymbolID, node ast.NodeIndex, owner *ast.Builder) {
	a.declArenas[declKey{sym, node}] = owner
}

// GetArenaForDeclaration returns the arena owning decl for sym, used when
// declarations of the same symbol come from multiple lib files.
func (a *Arena) GetArenaForDeclaration(sym SymbolID, decl ast.NodeIndex) (*ast.Builder, bool) {
	owner, ok := a.declArenas[declKey{sym, decl}]
	return owner, ok
}
