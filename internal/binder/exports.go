package binder

import (
	"surge/internal/ast"
	"surge/internal/source"
	"surge/internal/symbols"
)

// computeExports builds the file's export table: the subset of fileScope's
// bindings that are visible to importers, under their externally-visible
// (possibly aliased) names.
//
// Re-exports that name another module (`export { x } from "mod"` and
// `export * from "mod"`) cannot be resolved here — the Binder only ever
// sees one file — so they are left for the driver's cross-file resolution
// pass once every file in a program has been bound (spec.md §5's "driver
// wires files together after binding").
func (b *Binder) computeExports(fileScope symbols.ScopeID) *symbols.Table {
	exports := symbols.NewTable()
	scope := b.scopes.Get(fileScope)
	if scope == nil {
		return exports
	}

	scope.Table.Iter(func(name source.StringID, sid symbols.SymbolID) bool {
		if sym := b.symbolArena.Get(sid); sym != nil && sym.IsExported {
			exports.Set(name, sid)
		}
		return true
	})

	for _, named := range b.pendingNamedExports {
		if sid, ok := scope.Table.Get(named.local); ok {
			exports.Set(named.exportedAs, sid)
			if sym := b.symbolArena.Get(sid); sym != nil {
				sym.IsExported = true
			}
		}
	}

	return exports
}

type namedExport struct {
	local      source.StringID
	exportedAs source.StringID
}

// recordNamedExports stages `export { a as b, c }` specifiers so
// computeExports can resolve them against the finished file scope, after
// every statement (including ones textually after the export clause) has
// been bound.
func (b *Binder) recordNamedExports(stmt ast.NodeIndex) {
	info, ok := b.builder.GetExport(stmt)
	if !ok || info == nil || info.ModuleSpecifier != source.NoStringID {
		return
	}
	for _, spec := range info.Named {
		b.pendingNamedExports = append(b.pendingNamedExports, namedExport{local: spec.LocalName, exportedAs: spec.ExportedName})
	}
}
