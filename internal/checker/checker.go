// Package checker implements the Checker from spec.md §4: it walks a bound
// file's AST, assigns a TypeID to every declaration and expression, and
// reports assignability/shape diagnostics. It reads the Binder's symbol
// table, scope tree, and flow graph read-only, and writes derived types into
// the shared types.Interner / defs.Store so results are visible to every
// other file in a program (spec.md's "one interner, one definition store,
// many per-file binder results").
package checker

import (
	"fmt"

	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/defs"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
	"surge/internal/types"
)

// ResolveModule looks up another file's bind result by its logical module
// path, the way internal/driver's Program.File does. The Checker depends on
// this function rather than on internal/driver directly, so that package can
// depend on internal/checker without an import cycle.
type ResolveModule func(path string) (*binder.Result, *ast.Builder, bool)

// Checker holds the shared Type Solver handles plus the mutable state of
// checking one file at a time. A single Checker is reused across every file
// in a program so the Interner/QueryDB/Defs caches stay warm (spec.md §5's
// "one process-wide interner").
type Checker struct {
	Interner *types.Interner
	Queries  *types.QueryDB
	Defs     *defs.Store
	Config   Config
	Reporter diag.Reporter

	resolveModule ResolveModule

	builtins types.Builtins

	// Per-file state, reset by CheckSourceFile.
	builder          *ast.Builder
	res              *binder.Result
	scopeByContainer map[ast.NodeIndex]symbols.ScopeID

	// resolving is the symbol resolution stack (spec.md's "get_type_of_symbol
	// pushes the symbol onto a resolution stack; a cycle returns a
	// placeholder type"), keyed across the whole program since an import
	// cycle can route back through another file's symbol.
	resolving map[symbolKey]bool

	// nodeTypes memoizes GetTypeOfNode per (file, node) so re-checking an
	// expression reached through more than one path (e.g. a narrowed
	// reference and its flow antecedent) does no repeat work.
	nodeTypes map[nodeKey]types.TypeID

	// defSites remembers which declaration node backs each lazily-registered
	// Definition, so its BodyComputer (invoked on first defs.Store.GetBody
	// call, possibly while checking a different file) can find its way back
	// to the declaring file's builder/scope.
	defSites map[defs.DefID]defSite

	// fileScopeIndex caches buildScopeIndex per file across the whole
	// program's lifetime, since computeDefBody may need another file's scope
	// index long after that file's own CheckSourceFile call returned.
	fileScopeIndex map[ast.FileID]map[ast.NodeIndex]symbols.ScopeID

	// deps records, for each symbol whose type was computed, every other
	// symbol that computation observed (spec.md §4.5's symbol_dependencies
	// reverse-edge graph, built forward here and reversed on demand by
	// ExtractCache). depStack is the current chain of GetTypeOfSymbol calls
	// in progress, so a nested resolution can attribute its dependency to
	// whichever symbol asked for it.
	deps     map[symbolKey]map[symbolKey]bool
	depStack []symbolKey

	// observed is every symbol whose type has been asked for at least once,
	// the candidate set ExtractCache walks to build TypeCache.SymbolTypes.
	observed map[symbolKey]bool

	// fileResults remembers the *binder.Result backing each file a symbol
	// lookup has touched, so ExtractCache can read back sym.Type for any
	// symbol in observed regardless of which file is "currently loaded".
	fileResults map[ast.FileID]*binder.Result

	// flowMemo memoizes narrowFromFlow's result per (flow node, symbol,
	// declared type) triple, matching spec.md §4.4's "memoized on (flowNode,
	// symbol, declaredType)" and forming TypeCache's flow_analysis_cache.
	flowMemo map[flowKey]types.TypeID
}

type flowKey struct {
	File    ast.FileID
	Flow    binder.FlowNodeID
	Sym     symbols.SymbolID
	Declared types.TypeID
}

type defSite struct {
	res     *binder.Result
	builder *ast.Builder
	decl    ast.NodeIndex
	kind    defs.Kind
}

type symbolKey struct {
	File ast.FileID
	Sym  symbols.SymbolID
}

type nodeKey struct {
	File ast.FileID
	Node ast.NodeIndex
}

// New creates a Checker sharing in/defStore across every file it checks.
func New(in *types.Interner, defStore *defs.Store, cfg Config, reporter diag.Reporter, resolveModule ResolveModule) *Checker {
	return &Checker{
		Interner:      in,
		Queries:       types.NewQueryDB(in),
		Defs:          defStore,
		Config:        cfg,
		Reporter:      reporter,
		resolveModule: resolveModule,
		builtins:      in.Builtins(),
		resolving:     make(map[symbolKey]bool),
		nodeTypes:     make(map[nodeKey]types.TypeID),
		defSites:      make(map[defs.DefID]defSite),
		fileScopeIndex: make(map[ast.FileID]map[ast.NodeIndex]symbols.ScopeID),
		deps:          make(map[symbolKey]map[symbolKey]bool),
		flowMemo:      make(map[flowKey]types.TypeID),
		observed:      make(map[symbolKey]bool),
		fileResults:   make(map[ast.FileID]*binder.Result),
	}
}

// recordDependency notes that the symbol currently being resolved (the top
// of depStack, if any) observed dep's type. Recorded even on a cache hit —
// InvalidateSymbols needs to know dep was consulted regardless of whether
// computing it did any work this time.
func (c *Checker) recordDependency(dep symbolKey) {
	c.observed[dep] = true
	if len(c.depStack) == 0 {
		return
	}
	dependent := c.depStack[len(c.depStack)-1]
	if dependent == dep {
		return
	}
	c.observed[dependent] = true
	set := c.deps[dependent]
	if set == nil {
		set = make(map[symbolKey]bool)
		c.deps[dependent] = set
	}
	set[dep] = true
}

// CheckSourceFile is the Checker's entry point (spec.md's check_source_file):
// it walks every top-level statement of res's file, assigning and validating
// types, and reports diagnostics through c.Reporter.
func (c *Checker) CheckSourceFile(builder *ast.Builder, res *binder.Result) {
	c.builder = builder
	c.res = res
	c.fileResults[res.File] = res
	if idx, ok := c.fileScopeIndex[res.File]; ok {
		c.scopeByContainer = idx
	} else {
		c.scopeByContainer = buildScopeIndex(res)
		c.fileScopeIndex[res.File] = c.scopeByContainer
	}

	root, ok := builder.FileRoot(res.File)
	if !ok {
		return
	}
	stmts, _ := builder.GetSourceFile(root)
	for _, stmt := range stmts {
		c.checkStatement(stmt, res.FileScope)
	}
}

// GetTypeOfSymbol returns sym's type, computing and caching it on first
// observation. A symbol observed while its own computation is still on the
// stack (a directly or mutually self-referential declaration) gets the
// shared circular placeholder instead of recursing (spec.md's resolution
// stack rule, mirroring defs.Store.GetBody's cycle guard).
func (c *Checker) GetTypeOfSymbol(res *binder.Result, builder *ast.Builder, sid symbols.SymbolID) types.TypeID {
	sym := res.Symbols.Get(sid)
	if sym == nil {
		return c.builtins.Any
	}
	key := symbolKey{File: res.File, Sym: sid}
	c.recordDependency(key)
	if sym.Type.IsValid() {
		return sym.Type
	}
	if sym.ResolvedImport != nil {
		return c.resolveImportSymbol(sym.ResolvedImport)
	}

	if c.resolving[key] {
		return c.Defs.Circular()
	}
	c.resolving[key] = true
	c.depStack = append(c.depStack, key)
	defer func() {
		delete(c.resolving, key)
		c.depStack = c.depStack[:len(c.depStack)-1]
	}()

	// A symbol from another file (reached via an import/export chain) can be
	// observed while a different file is loaded into the Checker; swap in
	// its own builder/result/scope-index for the duration, matching
	// computeDefBody's cross-file swap.
	prevBuilder, prevRes, prevIdx := c.builder, c.res, c.scopeByContainer
	c.builder, c.res = builder, res
	c.fileResults[res.File] = res
	if idx, ok := c.fileScopeIndex[res.File]; ok {
		c.scopeByContainer = idx
	} else {
		c.scopeByContainer = buildScopeIndex(res)
		c.fileScopeIndex[res.File] = c.scopeByContainer
	}
	defer func() { c.builder, c.res, c.scopeByContainer = prevBuilder, prevRes, prevIdx }()

	t := c.computeSymbolType(res, builder, sym)
	sym.Type = t
	return t
}

// resolveImportSymbol follows an import alias or re-exported binding into the
// file that actually declares it (spec.md's cross-file resolve_import_symbol,
// built on top of internal/driver's Symbol.ResolvedImport linking pass).
func (c *Checker) resolveImportSymbol(ref *symbols.CrossFileRef) types.TypeID {
	if c.resolveModule == nil {
		return c.builtins.Any
	}
	targetRes, targetBuilder, ok := c.resolveModule(ref.Module)
	if !ok {
		return c.builtins.Any
	}
	return c.GetTypeOfSymbol(targetRes, targetBuilder, ref.Symbol)
}

// GetTypeOfNode returns the type of an already-bound expression or
// type-syntax node, computing and memoizing it on first request.
func (c *Checker) GetTypeOfNode(node ast.NodeIndex) types.TypeID {
	if !node.IsValid() {
		return c.builtins.Any
	}
	key := nodeKey{File: c.res.File, Node: node}
	if t, ok := c.nodeTypes[key]; ok {
		return t
	}
	t := c.computeNodeType(node)
	c.nodeTypes[key] = t
	return t
}

func (c *Checker) reportError(code diag.Code, span source.Span, msg string) {
	if c.Reporter == nil {
		return
	}
	if b := diag.ReportError(c.Reporter, code, span, msg); b != nil {
		b.Emit()
	}
}

func (c *Checker) errorf(code diag.Code, span source.Span, format string, args ...any) {
	c.reportError(code, span, fmt.Sprintf(format, args...))
}
