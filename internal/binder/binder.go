package binder

import (
	"fmt"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
)

// KindMask restricts a lookup to specific symbol flag bits.
type KindMask symbols.Flags

// KindMaskAny matches every symbol kind.
const KindMaskAny KindMask = KindMask(^symbols.Flags(0))

// Result is everything one Bind call produces for a single file: its symbol
// arena, scope tree, flow graph, and the node-to-symbol/flow side tables the
// Checker queries afterward.
type Result struct {
	File        ast.FileID
	Symbols     *symbols.Arena
	Scopes      *symbols.Scopes
	Flow        *Arena
	FileScope   symbols.ScopeID
	ExprSymbol  map[ast.NodeIndex]symbols.SymbolID
	NodeFlow    map[ast.NodeIndex]FlowNodeID
	Exports     *symbols.Table
	Features    Features
	Diagnostics []*diag.Diagnostic
}

// Features records which optional syntax forms appeared in a file, so the
// Checker can skip work (e.g. generator/async desugaring) that the file
// never needs.
type Features struct {
	HasAsync     bool
	HasGenerator bool
	HasDecorator bool
	HasNamespace bool
	HasJSX       bool
}

// Binder drives one file's scope/symbol/flow construction. It owns a
// scope stack, mirroring the teacher's own resolver (see surge/symbols.Resolver):
// Enter/Leave push and pop, Declare installs into the current scope, and
// Lookup walks the chain outward.
type Binder struct {
	builder  *ast.Builder
	reporter diag.Reporter
	file     ast.FileID

	symbolArena *symbols.Arena
	scopes      *symbols.Scopes
	flow        *Arena

	stack []symbols.ScopeID
	flows []FlowNodeID // one current flow cursor per nesting depth, mirrors stack

	exprSymbol map[ast.NodeIndex]symbols.SymbolID
	nodeFlow   map[ast.NodeIndex]FlowNodeID

	// loop/switch/label context for break/continue target resolution.
	breakTargets    []FlowNodeID
	continueTargets []FlowNodeID
	labelTargets    map[source.StringID]FlowNodeID

	pendingNamedExports []namedExport

	features Features
}

// Options configures a Binder.
type Options struct {
	Reporter diag.Reporter
}

// New creates a Binder over builder for the given file, with fresh symbol,
// scope, and flow arenas.
func New(builder *ast.Builder, file ast.FileID, opts Options) *Binder {
	return &Binder{
		builder:     builder,
		reporter:    opts.Reporter,
		file:        file,
		symbolArena: symbols.NewArena(256),
		scopes:      symbols.NewScopes(64),
		flow:        NewArena(),
		exprSymbol:  make(map[ast.NodeIndex]symbols.SymbolID),
		nodeFlow:    make(map[ast.NodeIndex]FlowNodeID),
		labelTargets: make(map[source.StringID]FlowNodeID),
	}
}

// Bind runs the full five-step scoping algorithm over file's root and
// returns the populated Result. It never consults other files' exports —
// that part of identifier resolution belongs to the driver/Checker, which
// call ResolveIdentifier after all files in a program have been bound.
func Bind(builder *ast.Builder, file ast.FileID, opts Options) (*Result, error) {
	root, ok := builder.FileRoot(file)
	if !ok {
		return nil, fmt.Errorf("binder: no root node recorded for file %d", file)
	}
	b := New(builder, file, opts)

	// Step 1: create Start flow (done by NewArena) and enter the file scope.
	fileScope := b.scopes.New(symbols.ScopeSourceFile, symbols.NoScopeID, root)
	b.stack = append(b.stack, fileScope)
	b.flows = append(b.flows, b.flow.Start())

	// Step 2: strict mode is always on — this checker never models sloppy
	// mode, matching spec.md's TS-without-legacy-JS scope.

	stmts, _ := builder.GetSourceFile(root)

	// Step 3: hoisting pre-pass. Function/class/interface/type/enum/module
	// declarations and `var`-kind bindings are visible to every statement in
	// the same scope, including ones that lexically precede them.
	b.hoist(stmts)

	// Step 4 + 5: main pass, constructing flow alongside symbol resolution.
	for _, stmt := range stmts {
		b.flows[len(b.flows)-1] = b.bindStatement(stmt, b.currentFlow())
	}

	b.stack = b.stack[:len(b.stack)-1]

	exports := b.computeExports(fileScope)

	return &Result{
		File:        file,
		Symbols:     b.symbolArena,
		Scopes:      b.scopes,
		Flow:        b.flow,
		FileScope:   fileScope,
		ExprSymbol:  b.exprSymbol,
		NodeFlow:    b.nodeFlow,
		Exports:     exports,
		Features:    b.features,
		Diagnostics: nil,
	}, nil
}

// BindWithLibs runs Bind and then merges each lib file's exported ambient
// declarations (`declare` statements with no module specifier) into the
// file scope, so unqualified global names like Promise or Array resolve.
// libs are bound once per program and shared read-only across files.
func BindWithLibs(builder *ast.Builder, file ast.FileID, libs []*Result, opts Options) (*Result, error) {
	res, err := Bind(builder, file, opts)
	if err != nil {
		return nil, err
	}
	fileScope := b_scope(res)
	for _, lib := range libs {
		lib.Exports.Iter(func(name source.StringID, sid symbols.SymbolID) bool {
			if !fileScope.Table.Has(name) {
				fileScope.Table.Set(name, sid)
			}
			return true
		})
	}
	return res, nil
}

func b_scope(res *Result) *symbols.Scope {
	return res.Scopes.Get(res.FileScope)
}

// IncrementalBind re-binds only the statement suffix starting at fromIndex
// within an already-bound file's top-level statement list, reusing the
// existing file scope's earlier bindings and flow prefix. This supports a
// language server re-running the Binder after an edit without discarding
// everything parsed before the edit point (spec.md §4.1's "incremental
// re-binding of the changed suffix" requirement).
func IncrementalBind(builder *ast.Builder, file ast.FileID, prior *Result, fromIndex int, opts Options) (*Result, error) {
	root, ok := builder.FileRoot(file)
	if !ok {
		return nil, fmt.Errorf("binder: no root node recorded for file %d", file)
	}
	stmts, _ := builder.GetSourceFile(root)
	if fromIndex < 0 || fromIndex > len(stmts) {
		return nil, fmt.Errorf("binder: incremental suffix index %d out of range", fromIndex)
	}

	b := &Binder{
		builder:      builder,
		reporter:     opts.Reporter,
		file:         file,
		symbolArena:  prior.Symbols,
		scopes:       prior.Scopes,
		flow:         prior.Flow,
		exprSymbol:   prior.ExprSymbol,
		nodeFlow:     prior.NodeFlow,
		labelTargets: make(map[source.StringID]FlowNodeID),
	}
	b.stack = append(b.stack, prior.FileScope)
	cursor := prior.Flow.Start()
	if fromIndex > 0 {
		if fn, ok := prior.NodeFlow[stmts[fromIndex-1]]; ok {
			cursor = fn
		}
	}
	b.flows = append(b.flows, cursor)

	b.hoist(stmts[fromIndex:])
	for _, stmt := range stmts[fromIndex:] {
		b.flows[len(b.flows)-1] = b.bindStatement(stmt, b.currentFlow())
	}
	b.stack = b.stack[:len(b.stack)-1]

	exports := b.computeExports(prior.FileScope)
	return &Result{
		File:        file,
		Symbols:     b.symbolArena,
		Scopes:      b.scopes,
		Flow:        b.flow,
		FileScope:   prior.FileScope,
		ExprSymbol:  b.exprSymbol,
		NodeFlow:    b.nodeFlow,
		Exports:     exports,
		Features:    b.features,
		Diagnostics: nil,
	}, nil
}

func (b *Binder) currentScope() symbols.ScopeID { return b.stack[len(b.stack)-1] }
func (b *Binder) currentFlow() FlowNodeID       { return b.flows[len(b.flows)-1] }

// enterScope pushes a new scope of kind under the current one.
func (b *Binder) enterScope(kind symbols.ScopeKind, container ast.NodeIndex) symbols.ScopeID {
	id := b.scopes.New(kind, b.currentScope(), container)
	b.stack = append(b.stack, id)
	b.flows = append(b.flows, b.currentFlow())
	return id
}

func (b *Binder) leaveScope() FlowNodeID {
	flow := b.flows[len(b.flows)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.flows = b.flows[:len(b.flows)-1]
	return flow
}

// declare installs name into the current scope, reporting a conflict
// diagnostic when an incompatible prior binding exists (merge rules live in
// merge.go's canMerge).
func (b *Binder) declare(name source.StringID, flags symbols.Flags, node ast.NodeIndex, span source.Span, isValueDecl bool) symbols.SymbolID {
	scope := b.scopes.Get(b.currentScope())
	if existing, ok := scope.Table.Get(name); ok {
		if sym := b.symbolArena.Get(existing); sym != nil && canMerge(sym.Flags, flags) {
			sym.Flags |= flags
			sym.AddDeclaration(node, isValueDecl)
			return existing
		}
		b.reportDuplicate(name, span)
	}
	sym := symbols.Symbol{
		EscapedName: name,
		Flags:       flags,
		Parent:      symbols.NoSymbolID,
		OriginFile:  b.file,
	}
	id := b.symbolArena.New(sym)
	b.symbolArena.Get(id).AddDeclaration(node, isValueDecl)
	scope.Table.Set(name, id)
	return id
}

func (b *Binder) reportDuplicate(name source.StringID, span source.Span) {
	if b.reporter == nil {
		return
	}
	nameStr := b.builder.Strings.MustLookup(name)
	msg := fmt.Sprintf("Duplicate identifier '%s'.", nameStr)
	if builder := diag.ReportError(b.reporter, diag.SemaDuplicateIdentifier, span, msg); builder != nil {
		builder.Emit()
	}
}

func (b *Binder) reportUnresolved(name source.StringID, span source.Span) {
	if b.reporter == nil {
		return
	}
	nameStr := b.builder.Strings.MustLookup(name)
	if nameStr == "_" {
		return
	}
	msg := fmt.Sprintf("Cannot find name '%s'.", nameStr)
	if builder := diag.ReportError(b.reporter, diag.SemaCannotFind, span, msg); builder != nil {
		builder.Emit()
	}
}
