package binder

import (
	"surge/internal/ast"
	"surge/internal/source"
	"surge/internal/symbols"
)

// ResolveIdentifier looks up name starting at scope and walking outward
// through parent scopes, the same chain bindExpression used while binding.
// The Checker calls this directly when it needs to re-resolve a name
// outside of the original walk order (e.g. while expanding a deferred
// generic instantiation).
func ResolveIdentifier(res *Result, scope symbols.ScopeID, name source.StringID) (symbols.SymbolID, bool) {
	id, _, ok := res.Scopes.Lookup(scope, name)
	return id, ok
}

// CollectVisibleSymbolNames returns every name visible from scope, walking
// outward through parent scopes and deduplicating on first (innermost)
// sight. Used for completion and "did you mean" diagnostics.
func CollectVisibleSymbolNames(res *Result, scope symbols.ScopeID) []source.StringID {
	seen := make(map[source.StringID]bool)
	var out []source.StringID
	res.Scopes.Chain(scope, func(s *symbols.Scope) bool {
		for _, n := range s.Table.Names() {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
		return true
	})
	return out
}

// GetArenaForDeclaration resolves which *ast.Builder owns decl for sym, for
// symbols whose declarations span more than one lib-file arena (spec.md §9).
func GetArenaForDeclaration(res *Result, sym symbols.SymbolID, decl ast.NodeIndex) (*ast.Builder, bool) {
	return res.Symbols.GetArenaForDeclaration(sym, decl)
}

// SymbolAt returns the symbol an identifier-shaped expression node resolved
// to during binding, if any.
func SymbolAt(res *Result, node ast.NodeIndex) (symbols.SymbolID, bool) {
	id, ok := res.ExprSymbol[node]
	return id, ok
}

// FlowAt returns the flow graph node representing program state immediately
// before node executed (for a call or assignment expression, the flow node
// that expression created, i.e. the state after it), for the Checker's
// narrowing algorithm to start from.
func FlowAt(res *Result, node ast.NodeIndex) (FlowNodeID, bool) {
	id, ok := res.NodeFlow[node]
	return id, ok
}
