// Package driver wires many bound files together into one program: it
// resolves import specifiers into module paths, orders files so every
// dependency is bound before its dependents, and completes the
// cross-file resolution the Binder defers (see internal/binder/exports.go)
// — following named and wildcard re-export chains and linking import
// aliases to the symbol they actually name.
package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"surge/internal/ast"
	"surge/internal/binder"
	"surge/internal/checker"
	"surge/internal/defs"
	"surge/internal/diag"
	"surge/internal/observ"
	"surge/internal/project"
	"surge/internal/project/dag"
	"surge/internal/source"
	"surge/internal/symbols"
	"surge/internal/types"
)

// FileInput is one source file handed to the driver, already fully parsed
// into an AST arena by an external collaborator (see ast.Builder's doc
// comment — this module never lexes or parses source text itself).
type FileInput struct {
	// Path is this file's logical module path, e.g. "src/app/widget" for
	// "src/app/widget.ts". Import specifiers are resolved against it.
	Path    string
	Builder *ast.Builder
	File    ast.FileID
}

// BoundFile is one file after binding and cross-file resolution.
type BoundFile struct {
	Path    string
	Input   FileInput
	Result  *binder.Result
	Broken  bool
	Timing  observ.Report
}

// Program is every file in a build, bound, cross-linked, and checked.
type Program struct {
	Files  []*BoundFile
	byPath map[string]*BoundFile
	Order  []string // dependency-first module paths
	Bag    *diag.Bag

	// Interner and Defs are the process-wide Type Solver handles every file
	// in this Program shares (spec.md §5's "one interner, one definition
	// store"); a second Build call with the same Options reuses neither —
	// construct a fresh Options.Interner/Defs pair to share state across
	// builds (e.g. an LSP-style incremental host).
	Interner *types.Interner
	Defs     *defs.Store
	Checker  *checker.Checker
	Cache    *checker.TypeCache
}

// File looks up a bound file by its logical module path.
func (p *Program) File(path string) (*BoundFile, bool) {
	f, ok := p.byPath[path]
	return f, ok
}

// Options configures a Build run.
type Options struct {
	Reporter       diag.Reporter
	Libs           []*binder.Result // ambient `declare` exports merged into every file
	Jobs           int              // 0 = GOMAXPROCS
	MaxDiagnostics int              // 0 = NewBag default of 256
	PhaseObserver  PhaseObserver

	// CheckerConfig is the strictness configuration every file in this
	// Program is checked under (spec.md §4.3's CheckerConfig). Zero value
	// means checker.DefaultConfig().
	CheckerConfig checker.Config
	// Interner and Defs let a caller share the Type Solver across more than
	// one Build call (an LSP-style host rebuilding one changed file at a
	// time); nil means Build allocates its own, private to this Program.
	Interner *types.Interner
	Defs     *defs.Store
	// SkipCheck disables the Checker phase entirely, leaving Program.Checker
	// and Program.Cache nil — useful for callers that only want binding and
	// cross-file resolution (e.g. a pure symbol-navigation LSP feature).
	SkipCheck bool
}

// Build resolves imports, topologically batches files, binds each batch in
// parallel, and then runs the cross-file resolution pass (spec.md §4.1's
// "driver wires files together after binding", and §4.3's cross-file
// resolution of re-exports and import aliases).
func Build(ctx context.Context, inputs []FileInput, opts Options) (*Program, error) {
	timer := observ.NewTimer()

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}
	bag := diag.NewBag(maxDiag)
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.BagReporter{Bag: bag}
	}

	ph := beginPhase(timer, opts.PhaseObserver, "resolve-imports")
	metas, byPath, err := buildModuleGraph(inputs, reporter)
	ph.end("")
	if err != nil {
		return nil, err
	}

	ph = beginPhase(timer, opts.PhaseObserver, "toposort")
	idx := dag.BuildIndex(metas)
	nodes := make([]dag.ModuleNode, 0, len(metas))
	for _, m := range metas {
		nodes = append(nodes, dag.ModuleNode{Meta: *m, Reporter: reporter})
	}
	graph, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, slots, *topo)
	ph.end("")

	prog := &Program{byPath: make(map[string]*BoundFile, len(inputs))}

	ph = beginPhase(timer, opts.PhaseObserver, "bind")
	// Kahn's batches put importers ahead of the modules they import (dag
	// edges run from importer to import), so walk them last-to-first.
	for i := len(topo.Batches) - 1; i >= 0; i-- {
		batchIDs := topo.Batches[i]
		batch := make([]string, 0, len(batchIDs))
		for _, id := range batchIDs {
			batch = append(batch, idx.IDToName[int(id)])
		}
		if err := bindBatch(ctx, batch, byPath, prog, reporter, opts); err != nil {
			return nil, err
		}
		prog.Order = append(prog.Order, batch...)
	}
	ph.end("")

	ph = beginPhase(timer, opts.PhaseObserver, "cross-file-resolve")
	resolveCrossFileImports(prog, reporter)
	resolveReExports(prog, reporter)
	ph.end("")

	dag.ReportBrokenDeps(idx, slots)

	if !opts.SkipCheck {
		ph = beginPhase(timer, opts.PhaseObserver, "check")
		checkProgram(prog, reporter, opts)
		ph.end("")
	}

	prog.Bag = bag
	report := timer.Report()
	appendTimingDiagnostic(bag, timingPayload{Kind: "build", TotalMS: report.TotalMS, Phases: report.Phases})
	return prog, nil
}

// checkProgram runs one Checker over every bound file in dependency order
// (spec.md §4.1's hand-off: *NodeArena → Binder → Checker*, generalized
// across a whole program by sharing one Checker so its Interner/Defs caches
// stay warm file-to-file). resolveModule closes over prog so a file's lazy
// reference into another file's symbol table (an imported type, a
// cross-file class extension) resolves through Program.File the same way
// resolveCrossFileImports already looked up the target module.
func checkProgram(prog *Program, reporter diag.Reporter, opts Options) {
	interner := opts.Interner
	if interner == nil && len(prog.Files) > 0 {
		// Every file in a Program shares one source.Interner (StringIDs must
		// compare equal across files for cross-file export-table lookups to
		// work at all — see resolveCrossFileImports), so any file's Strings
		// handle is the right one to seed the Type Solver with.
		interner = types.NewInterner(prog.Files[0].Input.Builder.Strings)
	}
	if interner == nil {
		return
	}
	defStore := opts.Defs
	if defStore == nil {
		defStore = defs.New(interner)
	}
	cfg := opts.CheckerConfig
	if cfg == (checker.Config{}) {
		cfg = checker.DefaultConfig()
	}

	resolveModule := func(path string) (*binder.Result, *ast.Builder, bool) {
		bf, ok := prog.File(path)
		if !ok {
			return nil, nil, false
		}
		return bf.Result, bf.Input.Builder, true
	}

	c := checker.New(interner, defStore, cfg, reporter, resolveModule)
	for _, path := range prog.Order {
		bf, ok := prog.File(path)
		if !ok || bf.Result == nil {
			continue
		}
		c.CheckSourceFile(bf.Input.Builder, bf.Result)
	}

	prog.Interner = interner
	prog.Defs = defStore
	prog.Checker = c
	prog.Cache = c.ExtractCache()
}

func bindBatch(ctx context.Context, batch []string, byPath map[string]FileInput, prog *Program, reporter diag.Reporter, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	results := make([]*BoundFile, len(batch))
	for i, path := range batch {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			input, ok := byPath[path]
			if !ok {
				return fmt.Errorf("driver: no input registered for module %q", path)
			}
			t := observ.NewTimer()
			idx := t.Begin("bind")
			res, err := binder.BindWithLibs(input.Builder, input.File, opts.Libs, binder.Options{Reporter: reporter})
			t.End(idx, "")
			if err != nil {
				return fmt.Errorf("driver: bind %q: %w", path, err)
			}
			results[i] = &BoundFile{Path: path, Input: input, Result: res, Timing: t.Report()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, bf := range results {
		prog.Files = append(prog.Files, bf)
		prog.byPath[bf.Path] = bf
	}
	return nil
}

// buildModuleGraph turns every file's import declarations into
// project.ImportMeta edges, and returns both the ModuleMeta slice (for
// dag.BuildIndex/BuildGraph) and a path -> FileInput lookup for binding.
func buildModuleGraph(inputs []FileInput, reporter diag.Reporter) ([]*project.ModuleMeta, map[string]FileInput, error) {
	byPath := make(map[string]FileInput, len(inputs))
	metas := make([]*project.ModuleMeta, 0, len(inputs))

	for _, in := range inputs {
		norm, err := project.NormalizeModulePath(in.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("driver: invalid module path %q: %w", in.Path, err)
		}
		byPath[norm] = in
	}

	for path, in := range byPath {
		root, ok := in.Builder.FileRoot(in.File)
		if !ok {
			return nil, nil, fmt.Errorf("driver: no file root recorded for module %q", path)
		}
		stmts, _ := in.Builder.GetSourceFile(root)

		imports := make([]project.ImportMeta, 0, 4)
		for _, stmt := range stmts {
			n := in.Builder.Get(stmt)
			if n == nil {
				continue
			}
			var specifier source.StringID
			switch n.Kind {
			case ast.KindImportDecl:
				info, ok := in.Builder.GetImport(stmt)
				if !ok || info == nil {
					continue
				}
				specifier = info.ModuleSpecifier
			case ast.KindExportDecl:
				info, ok := in.Builder.GetExport(stmt)
				if !ok || info == nil || info.ModuleSpecifier == source.NoStringID {
					continue
				}
				specifier = info.ModuleSpecifier
			default:
				continue
			}
			raw, ok := in.Builder.Strings.Lookup(specifier)
			if !ok || raw == "" {
				continue
			}
			if raw[0] != '.' && raw[0] != '/' {
				// Bare specifier ("react", "node:fs"): not part of this
				// program's own file graph, so it contributes no dag edge.
				// Cross-file resolution looks it up among the program's
				// files like any other path; opts.Libs is not searched.
				continue
			}
			resolved, err := resolveSpecifier(path, raw)
			if err != nil {
				reporter.Report(diag.ProjInvalidModulePath, diag.SevError, n.Span, fmt.Sprintf("invalid import specifier %q: %v", raw, err), nil, nil)
				continue
			}
			imports = append(imports, project.ImportMeta{Path: resolved, Span: n.Span})
		}

		metas = append(metas, &project.ModuleMeta{
			Name:    path,
			Path:    path,
			Kind:    project.ModuleKindModule,
			Imports: imports,
		})
	}

	return metas, byPath, nil
}

// resolveSpecifier resolves a raw import specifier (e.g. "./sibling",
// "../lib/util") against the importing module's own path into a canonical
// module path. Non-relative specifiers ("lodash") are only normalized here;
// cross-file resolution looks the result up among the program's own files
// (opts.Libs is not searched) and reports SemaCannotFindModule when no file
// has that path.
func resolveSpecifier(fromPath, raw string) (string, error) {
	if len(raw) == 0 || (raw[0] != '.' && raw[0] != '/') {
		// bare specifier: keep as-is, NormalizeModulePath validates shape only.
		return project.NormalizeModulePath(raw)
	}
	segments := splitSegments(raw)
	return project.ResolveImportPath(fromPath, "", segments)
}

func splitSegments(path string) []string {
	out := make([]string, 0, 4)
	curr := ""
	for _, r := range path {
		if r == '/' {
			out = append(out, curr)
			curr = ""
			continue
		}
		curr += string(r)
	}
	out = append(out, curr)
	return out
}

// resolveCrossFileImports links every FlagAlias symbol produced by
// binder.hoistImport (Symbol.ImportModule/ImportName) to the symbol it
// actually names in the target file's export table, emitting
// SemaCannotFindModule / SemaModuleHasNoExport when it cannot.
func resolveCrossFileImports(prog *Program, reporter diag.Reporter) {
	for _, bf := range prog.Files {
		scope := bf.Result.Scopes.Get(bf.Result.FileScope)
		if scope == nil {
			continue
		}
		scope.Table.Iter(func(_ source.StringID, sid symbols.SymbolID) bool {
			sym := bf.Result.Symbols.Get(sid)
			if sym == nil || !sym.Flags.Has(symbols.FlagAlias) || sym.ImportModule == source.NoStringID {
				return true
			}
			raw, ok := bf.Input.Builder.Strings.Lookup(sym.ImportModule)
			if !ok {
				return true
			}
			targetPath, err := resolveSpecifier(bf.Path, raw)
			if err != nil {
				return true
			}
			target, ok := prog.File(targetPath)
			if !ok {
				reporter.Report(diag.SemaCannotFindModule, diag.SevError, symbolDeclSpan(bf, sid), fmt.Sprintf("cannot find module %q or its corresponding type declarations", raw), nil, nil)
				return true
			}
			if sym.ImportName == source.NoStringID {
				// `import * as ns` — the alias refers to the whole module,
				// nothing further to link against a single export.
				return true
			}
			exportedSid, ok := target.Result.Exports.Get(sym.ImportName)
			if !ok {
				name, _ := bf.Input.Builder.Strings.Lookup(sym.ImportName)
				reporter.Report(diag.SemaModuleHasNoExport, diag.SevError, symbolDeclSpan(bf, sid), fmt.Sprintf("module %q has no exported member %q", targetPath, name), nil, nil)
				return true
			}
			sym.ResolvedImport = &symbols.CrossFileRef{Module: targetPath, Symbol: exportedSid}
			return true
		})
	}
}

func symbolDeclSpan(bf *BoundFile, sid symbols.SymbolID) source.Span {
	sym := bf.Result.Symbols.Get(sid)
	if sym == nil || len(sym.Declarations) == 0 {
		return source.Span{}
	}
	if n := bf.Input.Builder.Get(sym.Declarations[0]); n != nil {
		return n.Span
	}
	return source.Span{}
}

// resolveReExports follows `export * from "mod"` and `export { x } from
// "mod"` chains across files, merging the target module's exports into the
// re-exporting file's export table. A visited set per starting file guards
// against re-export cycles (spec.md §8 scenario 8).
func resolveReExports(prog *Program, reporter diag.Reporter) {
	for _, bf := range prog.Files {
		visited := map[string]bool{bf.Path: true}
		applyReExports(prog, bf, bf, visited, reporter)
	}
}

func applyReExports(prog *Program, root, bf *BoundFile, visited map[string]bool, reporter diag.Reporter) {
	root2, ok := bf.Input.Builder.FileRoot(bf.Input.File)
	if !ok {
		return
	}
	stmts, _ := bf.Input.Builder.GetSourceFile(root2)
	for _, stmt := range stmts {
		info, ok := bf.Input.Builder.GetExport(stmt)
		if !ok || info == nil || info.ModuleSpecifier == source.NoStringID {
			continue
		}
		raw, ok := bf.Input.Builder.Strings.Lookup(info.ModuleSpecifier)
		if !ok {
			continue
		}
		targetPath, err := resolveSpecifier(bf.Path, raw)
		if err != nil {
			continue
		}
		if visited[targetPath] {
			reporter.Report(diag.ProjImportCycle, diag.SevError, source.Span{}, fmt.Sprintf("re-export cycle involving module %q", targetPath), nil, nil)
			continue
		}
		target, ok := prog.File(targetPath)
		if !ok {
			reporter.Report(diag.SemaCannotFindModule, diag.SevError, source.Span{}, fmt.Sprintf("cannot find module %q or its corresponding type declarations", raw), nil, nil)
			continue
		}
		visited[targetPath] = true
		applyReExports(prog, root, target, visited, reporter)

		if info.IsWildcard {
			target.Result.Exports.Iter(func(name source.StringID, sid symbols.SymbolID) bool {
				alias := name
				if info.WildcardAlias != source.NoStringID {
					alias = info.WildcardAlias
				}
				root.Result.Exports.Set(alias, sid)
				return true
			})
			continue
		}
		for _, spec := range info.Named {
			if sid, ok := target.Result.Exports.Get(spec.LocalName); ok {
				root.Result.Exports.Set(spec.ExportedName, sid)
			} else {
				name, _ := bf.Input.Builder.Strings.Lookup(spec.LocalName)
				reporter.Report(diag.SemaModuleHasNoExport, diag.SevError, source.Span{}, fmt.Sprintf("module %q has no exported member %q", targetPath, name), nil, nil)
			}
		}
	}
}
