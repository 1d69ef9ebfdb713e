package checker

import (
	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/symbols"
)

// scopeIndex maps every scope's container node back to its ScopeID, so the
// statement/expression walk can recover "the scope a node was bound in"
// without re-deriving the binder's own enter/leave scope stack. Built once
// per file since symbols.Scopes has no container->id lookup of its own.
func buildScopeIndex(res *binder.Result) map[ast.NodeIndex]symbols.ScopeID {
	idx := make(map[ast.NodeIndex]symbols.ScopeID, res.Scopes.Len())
	for i := 1; i <= res.Scopes.Len(); i++ {
		id := symbols.ScopeID(i)
		if s := res.Scopes.Get(id); s != nil {
			idx[s.ContainerNode] = id
		}
	}
	return idx
}

// scopeAt returns the narrowest known scope for node: node's own scope if it
// is itself a scope container (a function/class/block/module), otherwise the
// enclosing scope passed in by the caller.
func (c *Checker) scopeAt(node ast.NodeIndex, enclosing symbols.ScopeID) symbols.ScopeID {
	if id, ok := c.scopeByContainer[node]; ok {
		return id
	}
	return enclosing
}
